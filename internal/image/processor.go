package image

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
)

// Processor normalizes incoming photos to JPEG
type Processor struct {
	jpegQuality int
}

// NewProcessor creates a new image processor
func NewProcessor(jpegQuality int) *Processor {
	return &Processor{
		jpegQuality: jpegQuality,
	}
}

// ReencodeJPEG decodes photo bytes in any registered format and encodes
// them as JPEG at the configured quality
func (p *Processor) ReencodeJPEG(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	var buf bytes.Buffer
	opts := &jpeg.Options{Quality: p.jpegQuality}
	if err := jpeg.Encode(&buf, img, opts); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	return buf.Bytes(), nil
}

package errors

import (
	"errors"
)

// UserError represents an error with both technical and user-friendly messages
type UserError struct {
	Err       error
	UserMsg   string
	Retryable bool
}

func (e *UserError) Error() string {
	return e.Err.Error()
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// Predefined errors
var (
	ErrNotApprovedSeller = &UserError{
		Err:       errors.New("user is not an approved seller"),
		UserMsg:   "Vous devez être approuvé en tant que vendeur pour utiliser cette fonctionnalité.",
		Retryable: false,
	}

	ErrMalformedSubmission = &UserError{
		Err:       errors.New("product submission does not have five fields"),
		UserMsg:   "❌ Format invalide. Envoyez : nom, description, catégorie, prix, WhatsApp (séparés par des virgules).",
		Retryable: true,
	}

	ErrInvalidContactFormat = &UserError{
		Err:       errors.New("whatsapp number does not match +228 format"),
		UserMsg:   "❌ Le numéro de WhatsApp doit commencer par +228 et être suivi de 8 chiffres.",
		Retryable: true,
	}

	ErrNoDraftInProgress = &UserError{
		Err:       errors.New("no product entry in progress"),
		UserMsg:   "Utilisez le menu 'Gérer mes produits' puis 'Ajouter un produit' avant d'envoyer les détails.",
		Retryable: true,
	}
)

// Wrap wraps a technical error with a user message
func Wrap(err error, userMsg string, retryable bool) *UserError {
	return &UserError{
		Err:       err,
		UserMsg:   userMsg,
		Retryable: retryable,
	}
}

// GetUserMessage extracts user-friendly message from error
func GetUserMessage(err error) string {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMsg
	}
	// Default message for unexpected errors
	return "Une erreur inattendue s'est produite. Veuillez réessayer plus tard."
}

// IsRetryable checks if an error can be retried
func IsRetryable(err error) bool {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.Retryable
	}
	return false
}

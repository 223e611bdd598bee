package registry

import (
	"context"
	"sync"
)

// MemoryStore implements Store with process-local state and is the
// default backend. State does not survive a restart.
type MemoryStore struct {
	mu       sync.Mutex
	pending  map[int64]PendingRequest
	approved map[int64]struct{}
}

// NewMemoryStore creates an empty in-memory registry
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		pending:  make(map[int64]PendingRequest),
		approved: make(map[int64]struct{}),
	}
}

func (s *MemoryStore) IsApproved(_ context.Context, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.approved[userID]
	return ok, nil
}

func (s *MemoryStore) AddPending(_ context.Context, req PendingRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[req.UserID] = req
	return nil
}

func (s *MemoryStore) GetPending(_ context.Context, userID int64) (*PendingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.pending[userID]
	if !ok {
		return nil, nil
	}
	return &req, nil
}

func (s *MemoryStore) Approve(_ context.Context, userID int64) (PendingRequest, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.pending[userID]
	if !ok {
		return PendingRequest{}, false, nil
	}
	delete(s.pending, userID)
	s.approved[userID] = struct{}{}
	return req, true, nil
}

func (s *MemoryStore) Reject(_ context.Context, userID int64) (PendingRequest, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.pending[userID]
	if !ok {
		return PendingRequest{}, false, nil
	}
	delete(s.pending, userID)
	return req, true, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

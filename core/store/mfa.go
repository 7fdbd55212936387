package store

import (
	"context"
	"errors"
	"sync"
	"time"
)

type MFAStore interface {
	Put(ctx context.Context, st *MFAState) error
	Get(ctx context.Context, userID string) (*MFAState, error)
	All(ctx context.Context) ([]*MFAState, error)
	Delete(ctx context.Context, userID string) error
}

type mfaStore struct {
	mu     sync.RWMutex
	ins    *Instrumentation
	byUser map[string]*MFAState
}

func newMFAStore(ins *Instrumentation) *mfaStore {
	return &mfaStore{ins: ins, byUser: make(map[string]*MFAState)}
}

func (s *mfaStore) Put(ctx context.Context, st *MFAState) error {
	if err := s.ins.observe(ctx, "mfa.put"); err != nil {
		return err
	}
	if st == nil || st.UserID == "" {
		return errors.New("mfa state requires a user id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := cloneMFAState(st)
	cp.UpdatedAt = time.Now().UTC()
	s.byUser[st.UserID] = cp
	return nil
}

func (s *mfaStore) Get(ctx context.Context, userID string) (*MFAState, error) {
	if err := s.ins.observe(ctx, "mfa.get"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.byUser[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneMFAState(st), nil
}

func (s *mfaStore) All(ctx context.Context) ([]*MFAState, error) {
	if err := s.ins.observe(ctx, "mfa.all"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*MFAState, 0, len(s.byUser))
	for _, st := range s.byUser {
		out = append(out, cloneMFAState(st))
	}
	return out, nil
}

// Delete is idempotent; removing an absent state is a no-op.
func (s *mfaStore) Delete(ctx context.Context, userID string) error {
	if err := s.ins.observe(ctx, "mfa.delete"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byUser, userID)
	return nil
}

func (s *mfaStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser = make(map[string]*MFAState)
}

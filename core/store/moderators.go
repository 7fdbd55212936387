package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"clipper-mock/core/ids"
)

type ModeratorStore interface {
	Seed(ctx context.Context, m *Moderator) (string, error)
	Get(ctx context.Context, id string) (*Moderator, error)
	List(ctx context.Context, f ModeratorFilter) ([]*Moderator, int, error)
	FindByUser(ctx context.Context, userID, channelID string) (*Moderator, error)
	Delete(ctx context.Context, id string) (*Moderator, error)
}

type moderatorStore struct {
	mu    sync.RWMutex
	ins   *Instrumentation
	byID  map[string]*Moderator
	order []string
}

func newModeratorStore(ins *Instrumentation) *moderatorStore {
	return &moderatorStore{ins: ins, byID: make(map[string]*Moderator)}
}

func (s *moderatorStore) Seed(ctx context.Context, m *Moderator) (string, error) {
	if err := s.ins.observe(ctx, "moderators.seed"); err != nil {
		return "", err
	}
	if m == nil {
		return "", errors.New("nil moderator")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	if cp.ID == "" {
		cp.ID = ids.New()
	}
	if cp.Role == "" {
		cp.Role = "moderator"
	}
	if cp.AddedAt.IsZero() {
		cp.AddedAt = time.Now().UTC()
	}
	if _, exists := s.byID[cp.ID]; !exists {
		s.order = append(s.order, cp.ID)
	}
	s.byID[cp.ID] = &cp
	return cp.ID, nil
}

func (s *moderatorStore) Get(ctx context.Context, id string) (*Moderator, error) {
	if err := s.ins.observe(ctx, "moderators.get"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneModerator(m), nil
}

// List returns moderators in insertion order. The second return value is the
// total match count before limit/offset.
func (s *moderatorStore) List(ctx context.Context, f ModeratorFilter) ([]*Moderator, int, error) {
	if err := s.ins.observe(ctx, "moderators.list"); err != nil {
		return nil, 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]*Moderator, 0, len(s.order))
	for _, id := range s.order {
		m := s.byID[id]
		if m == nil {
			continue
		}
		if f.ChannelID != "" && m.ChannelID != f.ChannelID {
			continue
		}
		matched = append(matched, cloneModerator(m))
	}
	total := len(matched)

	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return []*Moderator{}, total, nil
	}
	matched = matched[offset:]
	if f.Limit > 0 && f.Limit < len(matched) {
		matched = matched[:f.Limit]
	}
	return matched, total, nil
}

func (s *moderatorStore) FindByUser(ctx context.Context, userID, channelID string) (*Moderator, error) {
	if err := s.ins.observe(ctx, "moderators.find_by_user"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		m := s.byID[id]
		if m == nil || m.UserID != userID {
			continue
		}
		if channelID != "" && m.ChannelID != channelID {
			continue
		}
		return cloneModerator(m), nil
	}
	return nil, ErrNotFound
}

// Delete removes the record and returns it. Unknown IDs return ErrNotFound.
func (s *moderatorStore) Delete(ctx context.Context, id string) (*Moderator, error) {
	if err := s.ins.observe(ctx, "moderators.delete"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.byID, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return cloneModerator(m), nil
}

func (s *moderatorStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID = make(map[string]*Moderator)
	s.order = nil
}

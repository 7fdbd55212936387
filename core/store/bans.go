package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"clipper-mock/core/ids"
)

type BanStore interface {
	Seed(ctx context.Context, b *Ban) (string, error)
	Get(ctx context.Context, id string) (*Ban, error)
	List(ctx context.Context, f BanFilter) ([]*Ban, int, error)
	Deactivate(ctx context.Context, id string) (*Ban, error)
	CountActive(ctx context.Context, channelID string) (int, error)
}

type banStore struct {
	mu    sync.RWMutex
	ins   *Instrumentation
	byID  map[string]*Ban
	order []string
}

func newBanStore(ins *Instrumentation) *banStore {
	return &banStore{ins: ins, byID: make(map[string]*Ban)}
}

func (s *banStore) Seed(ctx context.Context, b *Ban) (string, error) {
	if err := s.ins.observe(ctx, "bans.seed"); err != nil {
		return "", err
	}
	if b == nil {
		return "", errors.New("nil ban")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *b
	cp.ExpiresAt = cloneTime(b.ExpiresAt)
	if cp.ID == "" {
		cp.ID = ids.New()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	if _, exists := s.byID[cp.ID]; !exists {
		s.order = append(s.order, cp.ID)
	}
	s.byID[cp.ID] = &cp
	return cp.ID, nil
}

func (s *banStore) Get(ctx context.Context, id string) (*Ban, error) {
	if err := s.ins.observe(ctx, "bans.get"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneBan(b), nil
}

// List returns bans newest-created-first. Ties on CreatedAt order by most
// recent insertion. The second return value is the total match count before
// limit/offset.
func (s *banStore) List(ctx context.Context, f BanFilter) ([]*Ban, int, error) {
	if err := s.ins.observe(ctx, "bans.list"); err != nil {
		return nil, 0, err
	}
	s.mu.RLock()
	matched := make([]*Ban, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		b := s.byID[s.order[i]]
		if b == nil {
			continue
		}
		if f.ChannelID != "" && b.ChannelID != f.ChannelID {
			continue
		}
		if f.UserID != "" && b.UserID != f.UserID {
			continue
		}
		if f.ActiveOnly && !b.IsActive {
			continue
		}
		matched = append(matched, cloneBan(b))
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := len(matched)
	return paginateBans(matched, f.Limit, f.Offset), total, nil
}

func paginateBans(in []*Ban, limit, offset int) []*Ban {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(in) {
		return []*Ban{}
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}

func (s *banStore) Deactivate(ctx context.Context, id string) (*Ban, error) {
	if err := s.ins.observe(ctx, "bans.deactivate"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	b.IsActive = false
	return cloneBan(b), nil
}

func (s *banStore) CountActive(ctx context.Context, channelID string) (int, error) {
	if err := s.ins.observe(ctx, "bans.count_active"); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, b := range s.byID {
		if !b.IsActive {
			continue
		}
		if channelID != "" && b.ChannelID != channelID {
			continue
		}
		n++
	}
	return n, nil
}

func (s *banStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID = make(map[string]*Ban)
	s.order = nil
}

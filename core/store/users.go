package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"clipper-mock/core/ids"
)

type UserStore interface {
	Seed(ctx context.Context, u *User) (string, error)
	Get(ctx context.Context, id string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByTwitchID(ctx context.Context, twitchID string) (*User, error)
	List(ctx context.Context, f UserFilter) ([]*User, error)
	Update(ctx context.Context, u *User) error
	SetBanned(ctx context.Context, id string, banned bool, reason string, expiresAt *time.Time) error
	SetRole(ctx context.Context, id string, role string) error
	SetMFAEnabled(ctx context.Context, id string, enabled bool) error
	Count(ctx context.Context) (int, error)
}

type userStore struct {
	mu    sync.RWMutex
	ins   *Instrumentation
	byID  map[string]*User
	order []string
}

func newUserStore(ins *Instrumentation) *userStore {
	return &userStore{ins: ins, byID: make(map[string]*User)}
}

// Seed inserts or, when the ID already exists, overwrites in place. The
// entity keeps its original position in insertion order.
func (s *userStore) Seed(ctx context.Context, u *User) (string, error) {
	if err := s.ins.observe(ctx, "users.seed"); err != nil {
		return "", err
	}
	if u == nil {
		return "", errors.New("nil user")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	cp.BanExpiresAt = cloneTime(u.BanExpiresAt)
	if cp.ID == "" {
		cp.ID = ids.New()
	}
	if cp.Role == "" {
		cp.Role = "user"
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

func (s *userStore) Get(ctx context.Context, id string) (*User, error) {
	if err := s.ins.observe(ctx, "users.get"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *userStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	if err := s.ins.observe(ctx, "users.find_by_username"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if u := s.byID[id]; u != nil && strings.EqualFold(u.Username, username) {
			return cloneUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (s *userStore) FindByTwitchID(ctx context.Context, twitchID string) (*User, error) {
	if err := s.ins.observe(ctx, "users.find_by_twitch_id"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if u := s.byID[id]; u != nil && u.TwitchID == twitchID {
			return cloneUser(u), nil
		}
	}
	return nil, ErrNotFound
}

// List returns users in insertion order.
func (s *userStore) List(ctx context.Context, f UserFilter) ([]*User, error) {
	if err := s.ins.observe(ctx, "users.list"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*User, 0, len(s.order))
	for _, id := range s.order {
		u := s.byID[id]
		if u == nil {
			continue
		}
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Banned != nil && u.IsBanned != *f.Banned {
			continue
		}
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (s *userStore) Update(ctx context.Context, u *User) error {
	if err := s.ins.observe(ctx, "users.update"); err != nil {
		return err
	}
	if u == nil || u.ID == "" {
		return errors.New("user id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[u.ID]; !ok {
		return ErrNotFound
	}
	cp := *u
	cp.BanExpiresAt = cloneTime(u.BanExpiresAt)
	s.byID[u.ID] = &cp
	return nil
}

func (s *userStore) SetBanned(ctx context.Context, id string, banned bool, reason string, expiresAt *time.Time) error {
	if err := s.ins.observe(ctx, "users.set_banned"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.IsBanned = banned
	if banned {
		u.BanReason = reason
		u.BanExpiresAt = cloneTime(expiresAt)
	} else {
		u.BanReason = ""
		u.BanExpiresAt = nil
	}
	return nil
}

func (s *userStore) SetRole(ctx context.Context, id string, role string) error {
	if err := s.ins.observe(ctx, "users.set_role"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.Role = role
	return nil
}

func (s *userStore) SetMFAEnabled(ctx context.Context, id string, enabled bool) error {
	if err := s.ins.observe(ctx, "users.set_mfa_enabled"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.MFAEnabled = enabled
	return nil
}

func (s *userStore) Count(ctx context.Context) (int, error) {
	if err := s.ins.observe(ctx, "users.count"); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}

func (s *userStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID = make(map[string]*User)
	s.order = nil
}

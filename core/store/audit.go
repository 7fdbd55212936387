package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"clipper-mock/core/ids"
)

// AuditStore is append-only. Nothing exposes mutation or deletion of
// recorded entries; Reset on the owning Store is the only way to clear it.
type AuditStore interface {
	Append(ctx context.Context, e *AuditEntry) (string, error)
	List(ctx context.Context, f AuditFilter) ([]*AuditEntry, int, error)
	Count(ctx context.Context) (int, error)
}

type auditStore struct {
	mu      sync.RWMutex
	ins     *Instrumentation
	entries []*AuditEntry
}

func newAuditStore(ins *Instrumentation) *auditStore {
	return &auditStore{ins: ins}
}

func (s *auditStore) Append(ctx context.Context, e *AuditEntry) (string, error) {
	if err := s.ins.observe(ctx, "audit.append"); err != nil {
		return "", err
	}
	if e == nil {
		return "", errors.New("nil audit entry")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	cp.Details = cloneStringMap(e.Details)
	if cp.ID == "" {
		cp.ID = ids.New()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	s.entries = append(s.entries, &cp)
	return cp.ID, nil
}

// List returns entries newest-first. The second return value is the total
// match count before limit/offset.
func (s *auditStore) List(ctx context.Context, f AuditFilter) ([]*AuditEntry, int, error) {
	if err := s.ins.observe(ctx, "audit.list"); err != nil {
		return nil, 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]*AuditEntry, 0, len(s.entries))
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		if f.ResourceType != "" && e.ResourceType != f.ResourceType {
			continue
		}
		if f.ResourceID != "" && e.ResourceID != f.ResourceID {
			continue
		}
		if f.ActorID != "" && e.ActorID != f.ActorID {
			continue
		}
		matched = append(matched, cloneAuditEntry(e))
	}
	total := len(matched)

	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return []*AuditEntry{}, total, nil
	}
	matched = matched[offset:]
	if f.Limit > 0 && f.Limit < len(matched) {
		matched = matched[:f.Limit]
	}
	return matched, total, nil
}

func (s *auditStore) Count(ctx context.Context) (int, error) {
	if err := s.ins.observe(ctx, "audit.count"); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

func (s *auditStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

package store

import (
	"context"
	"errors"
	"sync"
	"time"
)

type SyncJobStore interface {
	Put(ctx context.Context, j *SyncJob) error
	Get(ctx context.Context, id string) (*SyncJob, error)
	List(ctx context.Context) ([]*SyncJob, error)
}

type syncJobStore struct {
	mu    sync.RWMutex
	ins   *Instrumentation
	byID  map[string]*SyncJob
	order []string
}

func newSyncJobStore(ins *Instrumentation) *syncJobStore {
	return &syncJobStore{ins: ins, byID: make(map[string]*SyncJob)}
}

func (s *syncJobStore) Put(ctx context.Context, j *SyncJob) error {
	if err := s.ins.observe(ctx, "jobs.put"); err != nil {
		return err
	}
	if j == nil || j.ID == "" {
		return errors.New("sync job requires an id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := cloneSyncJob(j)
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	if _, exists := s.byID[cp.ID]; !exists {
		s.order = append(s.order, cp.ID)
	}
	s.byID[cp.ID] = cp
	return nil
}

func (s *syncJobStore) Get(ctx context.Context, id string) (*SyncJob, error) {
	if err := s.ins.observe(ctx, "jobs.get"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneSyncJob(j), nil
}

func (s *syncJobStore) List(ctx context.Context) ([]*SyncJob, error) {
	if err := s.ins.observe(ctx, "jobs.list"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*SyncJob, 0, len(s.order))
	for _, id := range s.order {
		if j := s.byID[id]; j != nil {
			out = append(out, cloneSyncJob(j))
		}
	}
	return out, nil
}

func (s *syncJobStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID = make(map[string]*SyncJob)
	s.order = nil
}

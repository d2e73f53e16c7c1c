package store

import (
	"context"
	"sort"
	"sync"

	"roster/internal/record/models"
	"roster/pkg/requestcontext"
)

// InMemory keeps records in maps guarded by one RWMutex. Insert checks both
// keys under the write lock, which gives it the same guarantees as the SQL
// stores' constraints.
type InMemory struct {
	mu      sync.RWMutex
	byID    map[int64]*models.Record
	byEmail map[string]int64
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:    make(map[int64]*models.Record),
		byEmail: make(map[string]int64),
	}
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return s.byID[id].Clone(), nil
}

func (s *InMemory) FindMaxIdentifier(_ context.Context) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var top *models.Record
	for _, r := range s.byID {
		if top == nil || r.ID > top.ID {
			top = r
		}
	}
	if top == nil {
		return nil, ErrNotFound
	}
	return top.Clone(), nil
}

func (s *InMemory) FindByID(_ context.Context, id int64) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r.Clone(), nil
}

func (s *InMemory) Insert(ctx context.Context, record *models.Record) error {
	now := requestcontext.Now(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byID[record.ID]; taken {
		return ErrDuplicateIdentifier
	}
	if _, taken := s.byEmail[record.Email]; taken {
		return ErrDuplicateEmail
	}
	record.CreatedAt = now
	record.UpdatedAt = now
	s.byID[record.ID] = record.Clone()
	s.byEmail[record.Email] = record.ID
	return nil
}

func (s *InMemory) UpdateByID(ctx context.Context, id int64, fields models.UpdateFields) (*models.Record, error) {
	now := requestcontext.Now(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	fields.Apply(r, now)
	return r.Clone(), nil
}

func (s *InMemory) DeleteByID(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	if !ok {
		return false, nil
	}
	delete(s.byID, id)
	delete(s.byEmail, r.Email)
	return true, nil
}

// List returns all records ordered by identifier.
func (s *InMemory) List(_ context.Context) ([]*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Record, 0, len(s.byID))
	for _, r := range s.byID {
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Ping satisfies the health check contract; memory is always reachable.
func (s *InMemory) Ping(context.Context) error {
	return nil
}

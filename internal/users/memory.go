package users

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultLatency mirrors the round trip the demo backend simulates.
const DefaultLatency = 500 * time.Millisecond

// MemoryStoreConfig describes the in-process mock store.
type MemoryStoreConfig struct {
	Latency    time.Duration
	IDProvider IDProvider
	Seed       []Fields
	Logger     *zap.Logger
}

// MemoryStore keeps records in process memory and simulates network latency.
// Mutations are serialized, so concurrent updates of one record never interleave.
type MemoryStore struct {
	mu      sync.Mutex
	records []UserRecord
	index   map[string]int
	latency time.Duration
	ids     IDProvider
	logger  *zap.Logger
}

// NewMemoryStore constructs the store and assigns identifiers to the seed records.
func NewMemoryStore(cfg MemoryStoreConfig) (*MemoryStore, error) {
	if cfg.IDProvider == nil {
		return nil, newServiceError(opMemoryStoreNew, "missing_id_provider", errMissingIDProvider)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	latency := cfg.Latency
	if latency < 0 {
		latency = 0
	}

	store := &MemoryStore{
		records: make([]UserRecord, 0, len(cfg.Seed)),
		index:   make(map[string]int, len(cfg.Seed)),
		latency: latency,
		ids:     cfg.IDProvider,
		logger:  logger,
	}
	for _, fields := range cfg.Seed {
		if err := fields.validate(); err != nil {
			return nil, newServiceError(opMemoryStoreNew, reasonInvalidFields, err)
		}
		id, err := store.ids.NewID()
		if err != nil {
			return nil, newServiceError(opMemoryStoreNew, reasonIDFailed, err)
		}
		store.appendLocked(UserRecord{ID: id, Fields: fields})
	}
	return store, nil
}

// List returns a copy of the collection in insertion order.
func (s *MemoryStore) List(ctx context.Context) ([]UserRecord, error) {
	if err := s.wait(ctx); err != nil {
		return nil, newServiceError(opList, reasonCanceled, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make([]UserRecord, len(s.records))
	copy(snapshot, s.records)
	return snapshot, nil
}

// Get returns the record with the given id.
func (s *MemoryStore) Get(ctx context.Context, id string) (UserRecord, error) {
	if err := s.wait(ctx); err != nil {
		return UserRecord{}, newServiceError(opGet, reasonCanceled, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	position, ok := s.index[id]
	if !ok {
		return UserRecord{}, newServiceError(opGet, reasonNotFound, ErrNotFound)
	}
	return s.records[position], nil
}

// Create appends a new record. A context cancelled before the append leaves the collection untouched.
func (s *MemoryStore) Create(ctx context.Context, fields Fields) (UserRecord, error) {
	if err := fields.validate(); err != nil {
		return UserRecord{}, newServiceError(opCreate, reasonInvalidFields, err)
	}
	if err := s.wait(ctx); err != nil {
		return UserRecord{}, newServiceError(opCreate, reasonCanceled, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return UserRecord{}, newServiceError(opCreate, reasonCanceled, err)
	}
	id, err := s.ids.NewID()
	if err != nil {
		logError(s.logger, opCreate, reasonIDFailed, err)
		return UserRecord{}, newServiceError(opCreate, reasonIDFailed, err)
	}
	record := UserRecord{ID: id, Fields: fields}
	s.appendLocked(record)
	return record, nil
}

// Update replaces the fields of the record with the given id, keeping its position.
func (s *MemoryStore) Update(ctx context.Context, id string, fields Fields) error {
	if err := fields.validate(); err != nil {
		return newServiceError(opUpdate, reasonInvalidFields, err)
	}
	if err := s.wait(ctx); err != nil {
		return newServiceError(opUpdate, reasonCanceled, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return newServiceError(opUpdate, reasonCanceled, err)
	}
	position, ok := s.index[id]
	if !ok {
		return newServiceError(opUpdate, reasonNotFound, ErrNotFound)
	}
	s.records[position].Fields = fields
	return nil
}

// Len reports the number of stored records without simulating latency.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *MemoryStore) appendLocked(record UserRecord) {
	s.index[record.ID] = len(s.records)
	s.records = append(s.records, record)
}

func (s *MemoryStore) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

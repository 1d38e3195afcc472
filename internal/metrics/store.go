package metrics

import (
	"context"
	"time"

	"github.com/MarcoPoloResearchLab/roster/internal/users"
)

const (
	operationList   = "list"
	operationGet    = "get"
	operationCreate = "create"
	operationUpdate = "update"
)

// InstrumentedStore decorates a users.Store with operation counters and latency.
type InstrumentedStore struct {
	next       users.Store
	collectors *Collectors
	clock      func() time.Time
}

// InstrumentStore wraps next. A nil collectors value returns next unchanged.
func InstrumentStore(next users.Store, collectors *Collectors) users.Store {
	if collectors == nil {
		return next
	}
	return &InstrumentedStore{next: next, collectors: collectors, clock: time.Now}
}

func (s *InstrumentedStore) List(ctx context.Context) ([]users.UserRecord, error) {
	started := s.clock()
	records, err := s.next.List(ctx)
	s.collectors.ObserveStore(operationList, err == nil, s.clock().Sub(started))
	return records, err
}

func (s *InstrumentedStore) Get(ctx context.Context, id string) (users.UserRecord, error) {
	started := s.clock()
	record, err := s.next.Get(ctx, id)
	s.collectors.ObserveStore(operationGet, err == nil, s.clock().Sub(started))
	return record, err
}

func (s *InstrumentedStore) Create(ctx context.Context, fields users.Fields) (users.UserRecord, error) {
	started := s.clock()
	record, err := s.next.Create(ctx, fields)
	s.collectors.ObserveStore(operationCreate, err == nil, s.clock().Sub(started))
	return record, err
}

func (s *InstrumentedStore) Update(ctx context.Context, id string, fields users.Fields) error {
	started := s.clock()
	err := s.next.Update(ctx, id, fields)
	s.collectors.ObserveStore(operationUpdate, err == nil, s.clock().Sub(started))
	return err
}

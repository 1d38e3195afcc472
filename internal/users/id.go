package users

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDProvider issues collision-free record identifiers.
type IDProvider interface {
	NewID() (string, error)
}

type uuidProvider struct{}

// NewUUIDProvider constructs an IDProvider that issues UUIDv7 identifiers.
func NewUUIDProvider() IDProvider {
	return &uuidProvider{}
}

func (p *uuidProvider) NewID() (string, error) {
	value, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return value.String(), nil
}

type sequenceProvider struct {
	prefix string
	next   atomic.Int64
}

// NewSequenceProvider issues monotonically increasing identifiers such as "user-1", "user-2".
func NewSequenceProvider(prefix string) IDProvider {
	return &sequenceProvider{prefix: prefix}
}

func (p *sequenceProvider) NewID() (string, error) {
	return p.prefix + strconv.FormatInt(p.next.Add(1), 10), nil
}

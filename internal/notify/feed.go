package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultBufferSize = 16

// FeedConfig configures a notification feed.
type FeedConfig struct {
	TTL        time.Duration
	BufferSize int
	Clock      func() time.Time
	Logger     *zap.Logger
}

// Feed keeps the visible notifications and fans new ones out to subscribers.
// Publishing never blocks: a subscriber with a full buffer misses the event.
type Feed struct {
	mu          sync.Mutex
	active      []Event
	subscribers map[int64]chan Event
	nextEventID int64
	nextSubID   int64
	ttl         time.Duration
	bufferSize  int
	clock       func() time.Time
	logger      *zap.Logger
}

// NewFeed constructs a feed with the given configuration.
func NewFeed(cfg FeedConfig) *Feed {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{
		subscribers: make(map[int64]chan Event),
		ttl:         ttl,
		bufferSize:  bufferSize,
		clock:       clock,
		logger:      logger,
	}
}

// Notify records a new event and delivers it to current subscribers.
func (f *Feed) Notify(kind Kind, recordID, message string) Event {
	f.mu.Lock()
	now := f.clock().UTC()
	f.nextEventID++
	event := Event{
		ID:           f.nextEventID,
		Kind:         kind,
		Message:      message,
		RecordID:     recordID,
		CreatedAt:    now,
		ExpiresAfter: f.ttl,
	}
	f.pruneLocked(now)
	f.active = append(f.active, event)
	// Sends never block, so delivering under the lock keeps cleanup from closing a stream mid-send.
	for _, stream := range f.subscribers {
		select {
		case stream <- event:
		default:
		}
	}
	f.mu.Unlock()

	f.logger.Debug("notification published",
		zap.String("kind", string(kind)),
		zap.String("record_id", recordID))
	return event
}

// Active returns the events that have not expired, oldest first.
func (f *Feed) Active() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pruneLocked(f.clock().UTC())
	events := make([]Event, len(f.active))
	copy(events, f.active)
	return events
}

// Dismiss removes an event before it expires. It reports whether the event was visible.
func (f *Feed) Dismiss(eventID int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for index, event := range f.active {
		if event.ID == eventID {
			f.active = append(f.active[:index], f.active[index+1:]...)
			return true
		}
	}
	return false
}

// Subscribe streams future events until ctx ends or the returned cleanup runs.
// The stream is closed once the subscription ends.
func (f *Feed) Subscribe(ctx context.Context) (<-chan Event, func()) {
	stream := make(chan Event, f.bufferSize)

	f.mu.Lock()
	f.nextSubID++
	subscriberID := f.nextSubID
	f.subscribers[subscriberID] = stream
	f.mu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subscribers, subscriberID)
			close(stream)
			f.mu.Unlock()
			close(done)
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			cleanup()
		case <-done:
		}
	}()
	return stream, cleanup
}

func (f *Feed) pruneLocked(now time.Time) {
	kept := f.active[:0]
	for _, event := range f.active {
		if !event.Expired(now) {
			kept = append(kept, event)
		}
	}
	for index := len(kept); index < len(f.active); index++ {
		f.active[index] = Event{}
	}
	f.active = kept
}

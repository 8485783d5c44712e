package learning

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/khanglvm/strapd/internal/storage"
	"github.com/khanglvm/strapd/internal/usage"
)

const (
	// DefaultStorageKey is the key the serialized state is stored under.
	DefaultStorageKey = "usage.state"

	// eventQueueSize is the buffer size for the event queue.
	// If full, events are dropped (non-blocking).
	eventQueueSize = 1000

	// batchFlushSize is the number of events that triggers an immediate flush.
	batchFlushSize = 10

	// flushInterval is how often pending events are flushed.
	flushInterval = 50 * time.Millisecond
)

// Tracker holds the live usage state and persists it.
type Tracker struct {
	store  storage.Storage
	key    string
	clock  usage.Clock
	logger *zap.Logger

	stateMu   sync.RWMutex
	state     usage.State
	persistMu sync.Mutex

	eventQueue chan Event
	stopChan   chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup

	// mu guards enabled and stopped. Track holds it for reading while it
	// enqueues, so no event can slip in after Stop has started draining.
	enabled bool
	stopped bool
	mu      sync.RWMutex
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock sets the time source used to stamp events.
func WithClock(c usage.Clock) Option {
	return func(t *Tracker) {
		if c != nil {
			t.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithStorageKey overrides DefaultStorageKey.
func WithStorageKey(key string) Option {
	return func(t *Tracker) {
		if key != "" {
			t.key = key
		}
	}
}

// NewTracker loads the persisted state from s and starts background processing.
// A nil store keeps the state in memory only.
func NewTracker(s storage.Storage, opts ...Option) *Tracker {
	t := &Tracker{
		store:      s,
		key:        DefaultStorageKey,
		clock:      usage.SystemClock{},
		logger:     zap.NewNop(),
		state:      usage.NewState(),
		eventQueue: make(chan Event, eventQueueSize),
		stopChan:   make(chan struct{}),
		enabled:    true,
	}
	for _, opt := range opts {
		opt(t)
	}

	t.state = t.load()

	t.wg.Add(1)
	go t.processEvents()

	return t
}

// load reads the persisted state. Unreadable data is logged and replaced by
// an empty state.
func (t *Tracker) load() usage.State {
	if t.store == nil {
		return usage.NewState()
	}

	raw, ok, err := t.store.Get(t.key)
	if err != nil {
		t.logger.Warn("failed to load usage state", zap.String("key", t.key), zap.Error(err))
		return usage.NewState()
	}
	if !ok {
		return usage.NewState()
	}

	state, err := usage.DeserializeWithError(raw)
	if err != nil {
		t.logger.Warn("recovered from unreadable usage state",
			zap.String("key", t.key),
			zap.Int("records", state.Len()),
			zap.Error(err))
	}
	return state
}

// Use records a tool use synchronously and persists the new state.
func (t *Tracker) Use(toolID string) error {
	if !t.IsEnabled() {
		return nil
	}

	if err := t.applyEvents([]Event{NewEvent(toolID, t.clock)}); err != nil {
		return err
	}
	t.persist()
	return nil
}

// Track queues a tool use (non-blocking).
// If the queue is full, the event is dropped and a warning is logged.
func (t *Tracker) Track(toolID string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.enabled {
		return
	}
	if t.stopped {
		t.logger.Warn("tracker stopped, dropping usage event", zap.String("tool", toolID))
		return
	}
	if strings.TrimSpace(toolID) == "" {
		t.logger.Warn("ignoring usage event with empty tool id")
		return
	}

	select {
	case t.eventQueue <- NewEvent(toolID, t.clock):
	default:
		t.logger.Warn("usage queue full, dropping event", zap.String("tool", toolID))
	}
}

// Snapshot returns the current state. The value is immutable and stays valid
// after later writes.
func (t *Tracker) Snapshot() usage.State {
	t.stateMu.RLock()
	defer t.stateMu.RUnlock()
	return t.state
}

// Top returns the ids of the limit highest ranked tools.
func (t *Tracker) Top(limit int) []string {
	return usage.TopIDs(t.Snapshot(), limit)
}

// Replace swaps in a whole state (e.g. an imported file) and persists it.
func (t *Tracker) Replace(s usage.State) {
	t.stateMu.Lock()
	t.state = s
	t.stateMu.Unlock()
	t.persist()
}

// Reset forgets all usage and removes the persisted copy.
func (t *Tracker) Reset() error {
	t.persistMu.Lock()
	defer t.persistMu.Unlock()

	t.stateMu.Lock()
	t.state = usage.NewState()
	t.stateMu.Unlock()

	if t.store == nil {
		return nil
	}
	return t.store.Remove(t.key)
}

// Stop gracefully shuts down the tracker, flushing remaining events. Track
// calls after Stop are dropped with a warning; Use keeps working.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() {
		t.mu.Lock()
		t.stopped = true
		t.mu.Unlock()

		close(t.stopChan)
		t.wg.Wait()
	})
}

// Disable disables tracking (events are ignored).
func (t *Tracker) Disable() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = false
}

// Enable enables tracking.
func (t *Tracker) Enable() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = true
}

// IsEnabled returns whether tracking is enabled.
func (t *Tracker) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// QueueSize returns the current number of events in the queue.
func (t *Tracker) QueueSize() int {
	return len(t.eventQueue)
}

// processEvents runs in the background, batching and flushing events.
func (t *Tracker) processEvents() {
	defer t.wg.Done()

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]Event, 0, batchFlushSize)

	for {
		select {
		case event := <-t.eventQueue:
			batch = append(batch, event)
			if len(batch) >= batchFlushSize {
				t.flush(batch)
				batch = make([]Event, 0, batchFlushSize)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				t.flush(batch)
				batch = make([]Event, 0, batchFlushSize)
			}

		case <-t.stopChan:
			// Drain whatever is still queued, then flush once and exit.
			for {
				select {
				case event := <-t.eventQueue:
					batch = append(batch, event)
				default:
					t.flush(batch)
					return
				}
			}
		}
	}
}

// flush applies a batch of events in order and persists the result once.
func (t *Tracker) flush(events []Event) {
	if len(events) == 0 {
		return
	}

	if err := t.applyEvents(events); err != nil {
		t.logger.Warn("failed to record usage", zap.Error(err))
	}
	t.persist()
}

// applyEvents folds events into the live state under the write lock.
// Invalid events are skipped; the first error is returned.
func (t *Tracker) applyEvents(events []Event) error {
	t.stateMu.Lock()
	defer t.stateMu.Unlock()

	var firstErr error
	state := t.state
	for _, event := range events {
		next, err := event.apply(state)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		state = next
	}
	t.state = state

	return firstErr
}

// persist writes the serialized state to storage. Writers are serialized so
// a stale snapshot can never overwrite a newer one.
func (t *Tracker) persist() {
	if t.store == nil {
		return
	}

	t.persistMu.Lock()
	defer t.persistMu.Unlock()

	data := usage.Serialize(t.Snapshot())
	if err := t.store.Set(t.key, data); err != nil {
		t.logger.Warn("failed to persist usage state", zap.String("key", t.key), zap.Error(err))
	}
}

package learning

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/khanglvm/strapd/internal/storage"
	"github.com/khanglvm/strapd/internal/usage"
)

const testNow = int64(1_700_000_000_000)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// errorStorage fails every operation.
type errorStorage struct {
	sets atomic.Int32
}

func (e *errorStorage) Init() error { return nil }
func (e *errorStorage) Get(string) (string, bool, error) {
	return "", false, errors.New("boom")
}
func (e *errorStorage) Set(string, string) error {
	e.sets.Add(1)
	return errors.New("boom")
}
func (e *errorStorage) Remove(string) error { return errors.New("boom") }
func (e *errorStorage) Close() error        { return nil }

func newTestTracker(t *testing.T, store storage.Storage, opts ...Option) *Tracker {
	t.Helper()
	opts = append([]Option{WithLogger(zaptest.NewLogger(t)), WithClock(usage.FixedClock(testNow))}, opts...)
	tracker := NewTracker(store, opts...)
	t.Cleanup(tracker.Stop)
	return tracker
}

func countOf(s usage.State, id string) int {
	rec, _ := s.Lookup(id)
	return rec.Count
}

func TestNewTracker(t *testing.T) {
	tracker := newTestTracker(t, storage.NewMemoryStorage())

	require.NotNil(t, tracker)
	assert.True(t, tracker.IsEnabled())
	assert.Equal(t, 0, tracker.Snapshot().Len())
}

func TestTracker_Use(t *testing.T) {
	store := storage.NewMemoryStorage()
	tracker := newTestTracker(t, store)

	require.NoError(t, tracker.Use("base64-encode"))
	require.NoError(t, tracker.Use("base64-encode"))
	require.NoError(t, tracker.Use("hash-md5"))

	snap := tracker.Snapshot()
	assert.Equal(t, 2, countOf(snap, "base64-encode"))
	assert.Equal(t, []string{"base64-encode", "hash-md5"}, tracker.Top(usage.DefaultTopLimit))

	// Persisted immediately
	raw, ok, err := store.Get(DefaultStorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, usage.Serialize(snap), raw)
}

func TestTracker_UseEmptyID(t *testing.T) {
	tracker := newTestTracker(t, storage.NewMemoryStorage())

	err := tracker.Use("")
	assert.ErrorIs(t, err, usage.ErrEmptyToolID)
	assert.Equal(t, 0, tracker.Snapshot().Len())
}

func TestTracker_Track(t *testing.T) {
	tracker := newTestTracker(t, storage.NewMemoryStorage())

	tracker.Track("uuid-v4")

	require.Eventually(t, func() bool {
		return countOf(tracker.Snapshot(), "uuid-v4") == 1
	}, time.Second, 10*time.Millisecond)
}

func TestTracker_TrackMultiple(t *testing.T) {
	store := storage.NewMemoryStorage()
	tracker := newTestTracker(t, store)

	for i := 0; i < 25; i++ {
		tracker.Track("json-beautify")
	}
	tracker.Stop()

	assert.Equal(t, 25, countOf(tracker.Snapshot(), "json-beautify"))

	raw, _, _ := store.Get(DefaultStorageKey)
	assert.Equal(t, 25, countOf(usage.Deserialize(raw), "json-beautify"))
}

func TestTracker_TrackEmptyIDIgnored(t *testing.T) {
	tracker := newTestTracker(t, storage.NewMemoryStorage())

	tracker.Track("  ")
	assert.Equal(t, 0, tracker.QueueSize())
}

func TestTracker_ConcurrentWritesAreSerialized(t *testing.T) {
	tracker := newTestTracker(t, storage.NewMemoryStorage())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if j%2 == 0 {
					tracker.Track("shared")
				} else {
					_ = tracker.Use("shared")
				}
				tracker.Track(fmt.Sprintf("tool-%d", i))
			}
		}(i)
	}
	wg.Wait()
	tracker.Stop()

	snap := tracker.Snapshot()
	assert.Equal(t, 200, countOf(snap, "shared"))
	assert.Equal(t, 21, snap.Len())
	assert.Len(t, snap.RankedIDs(), 21)
	assert.Equal(t, "shared", snap.RankedIDs()[0])
}

func TestTracker_Disable(t *testing.T) {
	tracker := newTestTracker(t, storage.NewMemoryStorage())

	tracker.Disable()
	assert.False(t, tracker.IsEnabled())

	tracker.Track("hex-encode")
	require.NoError(t, tracker.Use("hex-encode"))
	tracker.Stop()

	assert.Equal(t, 0, tracker.Snapshot().Len())
}

func TestTracker_Enable(t *testing.T) {
	tracker := newTestTracker(t, storage.NewMemoryStorage())

	tracker.Disable()
	tracker.Enable()
	assert.True(t, tracker.IsEnabled())

	require.NoError(t, tracker.Use("hex-encode"))
	assert.Equal(t, 1, countOf(tracker.Snapshot(), "hex-encode"))
}

func TestTracker_StopIsIdempotent(t *testing.T) {
	tracker := newTestTracker(t, storage.NewMemoryStorage())

	tracker.Track("a")
	tracker.Stop()
	tracker.Stop()

	assert.Equal(t, 1, countOf(tracker.Snapshot(), "a"))
}

func TestTracker_TrackAfterStopIsDropped(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	store := storage.NewMemoryStorage()
	tracker := NewTracker(store, WithLogger(zap.New(core)), WithClock(usage.FixedClock(testNow)))

	tracker.Track("before")
	tracker.Stop()
	tracker.Track("after")

	assert.Zero(t, tracker.QueueSize(), "event queued with no consumer")
	assert.Equal(t, 1, countOf(tracker.Snapshot(), "before"))
	assert.Zero(t, countOf(tracker.Snapshot(), "after"))
	assert.Equal(t, 1, logs.FilterMessage("tracker stopped, dropping usage event").Len())

	// Synchronous uses still land after Stop.
	require.NoError(t, tracker.Use("after"))
	assert.Equal(t, 1, countOf(tracker.Snapshot(), "after"))
}

func TestTracker_TrackNonBlocking(t *testing.T) {
	tracker := newTestTracker(t, storage.NewMemoryStorage())

	start := time.Now()
	for i := 0; i < eventQueueSize*2; i++ {
		tracker.Track("spam")
	}
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 500*time.Millisecond, "Track is blocking")
	assert.LessOrEqual(t, tracker.QueueSize(), eventQueueSize)
}

func TestTracker_LoadsPersistedState(t *testing.T) {
	store := storage.NewMemoryStorage()

	first := newTestTracker(t, store)
	require.NoError(t, first.Use("url-encode"))
	require.NoError(t, first.Use("url-encode"))
	require.NoError(t, first.Use("url-decode"))
	first.Stop()

	second := newTestTracker(t, store)
	snap := second.Snapshot()

	assert.Equal(t, 2, countOf(snap, "url-encode"))
	assert.Equal(t, []string{"url-encode", "url-decode"}, snap.RankedIDs())
}

func TestTracker_CorruptPersistedState(t *testing.T) {
	store := storage.NewMemoryStorage()
	require.NoError(t, store.Set(DefaultStorageKey, "not json"))

	tracker := newTestTracker(t, store)

	assert.Equal(t, 0, tracker.Snapshot().Len())
	require.NoError(t, tracker.Use("hash-sha1"))
	assert.Equal(t, []string{"hash-sha1"}, tracker.Top(5))
}

func TestTracker_StorageKey(t *testing.T) {
	store := storage.NewMemoryStorage()
	tracker := newTestTracker(t, store, WithStorageKey("custom"))

	require.NoError(t, tracker.Use("a"))

	_, ok, _ := store.Get("custom")
	assert.True(t, ok)
	_, ok, _ = store.Get(DefaultStorageKey)
	assert.False(t, ok)
}

func TestTracker_StorageError(t *testing.T) {
	store := &errorStorage{}
	tracker := newTestTracker(t, store)

	// Storage failures are logged, never surfaced
	require.NoError(t, tracker.Use("a"))
	tracker.Track("a")
	tracker.Stop()

	assert.True(t, tracker.IsEnabled())
	assert.Equal(t, 2, countOf(tracker.Snapshot(), "a"))
	assert.GreaterOrEqual(t, store.sets.Load(), int32(2))
}

func TestTracker_Reset(t *testing.T) {
	store := storage.NewMemoryStorage()
	tracker := newTestTracker(t, store)

	require.NoError(t, tracker.Use("a"))
	require.NoError(t, tracker.Reset())

	assert.Equal(t, 0, tracker.Snapshot().Len())
	_, ok, _ := store.Get(DefaultStorageKey)
	assert.False(t, ok)
}

func TestTracker_Replace(t *testing.T) {
	store := storage.NewMemoryStorage()
	tracker := newTestTracker(t, store)

	imported := usage.Deserialize(`{"records":[{"toolId":"x","count":4,"lastUsed":1}],"rankedIds":["x"]}`)
	tracker.Replace(imported)

	assert.Equal(t, []string{"x"}, tracker.Top(5))
	raw, _, _ := store.Get(DefaultStorageKey)
	assert.Equal(t, 4, countOf(usage.Deserialize(raw), "x"))
}

func TestTracker_NilStore(t *testing.T) {
	tracker := newTestTracker(t, nil)

	require.NoError(t, tracker.Use("a"))
	require.NoError(t, tracker.Reset())
	assert.Equal(t, 0, tracker.Snapshot().Len())
}

func TestEvent_LastUsedNeverMovesBackwards(t *testing.T) {
	s, err := usage.RecordUse(usage.NewState(), "a", usage.FixedClock(testNow))
	require.NoError(t, err)

	late := Event{ToolID: "a", At: testNow - 1000}
	s, err = late.apply(s)
	require.NoError(t, err)

	rec, _ := s.Lookup("a")
	assert.Equal(t, testNow, rec.LastUsed)
	assert.Equal(t, 2, rec.Count)
}

func TestNewEvent(t *testing.T) {
	e := NewEvent("hash-sha512", usage.FixedClock(42))
	assert.Equal(t, Event{ToolID: "hash-sha512", At: 42}, e)

	e = NewEvent("hash-sha512", nil)
	assert.Greater(t, e.At, int64(0))
}

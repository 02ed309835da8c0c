package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType describes the nature of a persistence change notification.
type EventType int

const (
	// EventKeyChanged indicates the value stored under Key in Partition was
	// written or removed.
	EventKeyChanged EventType = iota

	// EventInvalidated signals that the change could not be attributed to a
	// single key and callers should reload everything they hold.
	EventInvalidated
)

// Event is emitted by Persistence.Watch when underlying storage changes.
type Event struct {
	Type      EventType
	Partition Partition
	Key       string
}

// Watch streams change events until ctx is cancelled. Callers should drain the
// returned channel to avoid blocking the watcher. The channel is closed once
// ctx is done or the watcher encounters an unrecoverable error.
func (p *persistence) Watch(ctx context.Context) (<-chan Event, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "store: watcher close: %v\n", err)
			}
		})
	}

	for _, part := range Partitions {
		dir := filepath.Join(p.basePath, string(part))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			closeWatcher()
			return nil, fmt.Errorf("store: ensure partition %s: %w", part, err)
		}
		if err := watcher.Add(dir); err != nil {
			closeWatcher()
			return nil, fmt.Errorf("store: watch %s: %w", dir, err)
		}
	}

	events := make(chan Event, 64)

	go func() {
		defer close(events)
		defer closeWatcher()

		send := func(ev Event) {
			select {
			case events <- ev:
			default:
				// Drop events if the consumer is not ready; the next
				// event triggers a reload that picks up the change.
			}
		}

		throttle := newEventThrottle(100 * time.Millisecond)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				throttle.Enqueue(Event{Type: EventInvalidated}, send)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				part, key, ok := p.keyForPath(evt.Name)
				if !ok {
					throttle.Enqueue(Event{Type: EventInvalidated}, send)
					continue
				}
				throttle.Enqueue(Event{Type: EventKeyChanged, Partition: part, Key: key}, send)
			}
		}
	}()

	return events, nil
}

// keyForPath maps a file under the base path back to its partition and key.
func (p *persistence) keyForPath(path string) (Partition, string, bool) {
	rel, err := filepath.Rel(p.basePath, path)
	if err != nil {
		return "", "", false
	}
	parts := strings.Split(rel, string(os.PathSeparator))
	if len(parts) != 2 {
		return "", "", false
	}
	part := Partition(parts[0])
	if _, known := p.parts[part]; !known {
		return "", "", false
	}
	if parts[1] == "" || strings.HasPrefix(parts[1], ".") {
		return "", "", false
	}
	return part, parts[1], true
}

// eventThrottle coalesces rapid change notifications so consumers reload once
// per burst of filesystem activity instead of on every single write.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[Event]struct{}
	delay   time.Duration
	stopped bool
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[Event]struct{}),
	}
}

func (t *eventThrottle) Enqueue(ev Event, send func(Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.pending[ev] = struct{}{}
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
}

// flush holds the lock while sending so Stop cannot return mid-flush; send
// must not block.
func (t *eventThrottle) flush(send func(Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	pending := t.pending
	t.pending = make(map[Event]struct{})
	t.timer = nil
	if t.stopped {
		return
	}
	for ev := range pending {
		send(ev)
	}
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}

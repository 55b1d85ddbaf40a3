// Package notify is the process-wide ephemeral feed of user-facing messages.
// Entries auto-expire after a fixed display duration; subscribers receive the
// full ordered live set on every change.
package notify

import (
	"sort"
	"sync"
	"time"
)

type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
)

type Entry struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

const DefaultTTL = 5 * time.Second

// Bus owns the live entry set. All mutation happens under a single mutex that
// is never held across a subscriber callback, so a listener may publish or
// dismiss reentrantly without deadlocking.
type Bus struct {
	ttl       time.Duration
	nowFunc   func() time.Time
	scheduler Scheduler

	mu      sync.Mutex
	nextID  int64
	nextSub int
	entries map[int64]Entry
	timers  map[int64]Timer
	subs    map[int]func([]Entry)
}

type Option func(*Bus)

func WithTTL(ttl time.Duration) Option {
	return func(b *Bus) {
		if ttl > 0 {
			b.ttl = ttl
		}
	}
}

func WithNowFunc(now func() time.Time) Option {
	return func(b *Bus) {
		if now != nil {
			b.nowFunc = now
		}
	}
}

func WithScheduler(s Scheduler) Option {
	return func(b *Bus) {
		if s != nil {
			b.scheduler = s
		}
	}
}

func NewBus(opts ...Option) *Bus {
	b := &Bus{
		ttl:       DefaultTTL,
		nowFunc:   time.Now,
		scheduler: realScheduler{},
		entries:   make(map[int64]Entry),
		timers:    make(map[int64]Timer),
		subs:      make(map[int]func([]Entry)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish assigns the entry an ID and timestamp, adds it to the live set, and
// schedules its expiry. Kind defaults to info.
func (b *Bus) Publish(title, message string, kind Kind) int64 {
	if kind == "" {
		kind = KindInfo
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.entries[id] = Entry{
		ID:        id,
		Title:     title,
		Message:   message,
		Kind:      kind,
		CreatedAt: b.nowFunc(),
	}
	b.timers[id] = b.scheduler.AfterFunc(b.ttl, func() { b.expire(id) })
	snapshot, listeners := b.snapshotLocked()
	b.mu.Unlock()

	broadcast(listeners, snapshot)
	return id
}

// Dismiss removes an entry immediately and cancels its expiry timer. Unknown
// IDs are a no-op, so dismissing twice is safe.
func (b *Bus) Dismiss(id int64) {
	b.mu.Lock()
	if _, ok := b.entries[id]; !ok {
		b.mu.Unlock()
		return
	}
	delete(b.entries, id)
	if t, ok := b.timers[id]; ok {
		t.Stop()
		delete(b.timers, id)
	}
	snapshot, listeners := b.snapshotLocked()
	b.mu.Unlock()

	broadcast(listeners, snapshot)
}

// expire runs once per entry from the scheduler. A dismissal may have raced
// the timer firing; the presence check makes that a no-op.
func (b *Bus) expire(id int64) {
	b.mu.Lock()
	if _, ok := b.entries[id]; !ok {
		b.mu.Unlock()
		return
	}
	delete(b.entries, id)
	delete(b.timers, id)
	snapshot, listeners := b.snapshotLocked()
	b.mu.Unlock()

	broadcast(listeners, snapshot)
}

// Subscribe registers a listener that receives the full ordered set on every
// change, starting with the current state. The returned function removes it.
func (b *Bus) Subscribe(listener func([]Entry)) func() {
	b.mu.Lock()
	b.nextSub++
	key := b.nextSub
	b.subs[key] = listener
	snapshot, _ := b.snapshotLocked()
	b.mu.Unlock()

	listener(snapshot)

	return func() {
		b.mu.Lock()
		delete(b.subs, key)
		b.mu.Unlock()
	}
}

// Entries returns the live set ordered newest first.
func (b *Bus) Entries() []Entry {
	b.mu.Lock()
	snapshot, _ := b.snapshotLocked()
	b.mu.Unlock()
	return snapshot
}

func (b *Bus) snapshotLocked() ([]Entry, []func([]Entry)) {
	entries := make([]Entry, 0, len(b.entries))
	for _, e := range b.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID > entries[j].ID
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	listeners := make([]func([]Entry), 0, len(b.subs))
	for _, fn := range b.subs {
		listeners = append(listeners, fn)
	}
	return entries, listeners
}

func broadcast(listeners []func([]Entry), entries []Entry) {
	for _, fn := range listeners {
		fn(entries)
	}
}

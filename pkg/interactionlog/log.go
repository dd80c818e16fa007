package interactionlog

import (
	"fmt"
	"sync"
	"time"
)

// DefaultMaxSize is the ring capacity used when no option overrides it.
const DefaultMaxSize = 1000

// TimestampField is the entry field stamped by the log at insertion time.
// Its value is the insertion time in UTC, RFC 3339 format.
const TimestampField = "timestamp"

// TypeField is the entry field aggregated by Stats. Entries without it are
// counted in the total but excluded from the per-type breakdown.
const TypeField = "type"

// Entry is one recorded interaction: an open set of caller-supplied fields
// plus the timestamp stamped by the log. Entries are immutable once stored.
type Entry map[string]any

// Stats summarizes the currently retained entries.
type Stats struct {
	// Total is the number of retained entries.
	Total int `json:"total"`

	// ByType counts retained entries per value of their "type" field.
	// Always non-nil so it serializes as {} when empty.
	ByType map[string]int `json:"by_type"`
}

// Log is a fixed-capacity circular interaction log. All operations are
// serialized through a single mutex, so a Log is safe for concurrent use
// by any number of goroutines. The zero value is not usable; construct
// with New.
type Log struct {
	mu    sync.Mutex
	slots []Entry
	head  int // next slot to write
	count int // occupied slots, <= len(slots)
}

// Option configures a Log at construction time.
type Option func(*options)

type options struct {
	maxSize int
}

// WithMaxSize sets the ring capacity. Non-positive values are rejected by
// New rather than clamped.
func WithMaxSize(n int) Option {
	return func(o *options) {
		o.maxSize = n
	}
}

// New creates an interaction log. Capacity defaults to DefaultMaxSize and
// is fixed for the life of the log. An explicitly configured non-positive
// capacity is a configuration error.
func New(opts ...Option) (*Log, error) {
	o := options{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxSize <= 0 {
		return nil, fmt.Errorf("interactionlog: max size must be positive, got %d", o.maxSize)
	}
	return &Log{slots: make([]Entry, o.maxSize)}, nil
}

// Cap returns the fixed capacity of the log.
func (l *Log) Cap() int {
	return len(l.slots)
}

// Len returns the number of currently retained entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// Add records an interaction. The caller's fields are copied into a new
// entry and stamped with the current UTC timestamp, so later mutation of
// the argument does not affect the stored entry. Once the log is full,
// each Add overwrites the oldest retained entry.
func (l *Log) Add(fields map[string]any) {
	entry := make(Entry, len(fields)+1)
	for k, v := range fields {
		entry[k] = v
	}
	entry[TimestampField] = time.Now().UTC().Format(time.RFC3339Nano)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.slots[l.head] = entry
	l.head = (l.head + 1) % len(l.slots)
	if l.count < len(l.slots) {
		l.count++
	}
}

// Recent returns the last min(n, Len) entries in chronological order,
// oldest of the window first. Requesting more than is retained simply
// yields fewer; n <= 0 yields an empty slice.
func (l *Log) Recent(n int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	window := n
	if window > l.count {
		window = l.count
	}
	if window <= 0 {
		return []Entry{}
	}

	result := make([]Entry, 0, window)
	l.walk(l.count-window, window, func(e Entry) {
		result = append(result, e)
	})
	return result
}

// Stats returns the retained total and per-type counts.
func (l *Log) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := Stats{
		Total:  l.count,
		ByType: make(map[string]int),
	}
	l.walk(0, l.count, func(e Entry) {
		if t, ok := e[TypeField].(string); ok {
			stats.ByType[t]++
		}
	})
	return stats
}

// Clear atomically resets the log to empty. Slot contents are retained
// until overwritten but are unreachable: count gates all reads.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.head = 0
	l.count = 0
}

// walk visits n retained entries in insertion order, starting at the given
// offset from the oldest retained entry. Caller must hold l.mu.
func (l *Log) walk(offset, n int, fn func(Entry)) {
	start := (l.head - l.count + offset + len(l.slots)) % len(l.slots)
	for i := 0; i < n; i++ {
		idx := (start + i) % len(l.slots)
		if e := l.slots[idx]; e != nil {
			fn(e)
		}
	}
}

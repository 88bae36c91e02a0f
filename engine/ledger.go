package engine

import (
	"sync"
	"time"

	"github.com/teranos/ASE/transport"
)

// DefaultHistoryCapacity is the strict FIFO cap on retained history entries.
const DefaultHistoryCapacity = 50

// HistoryEntry is one record of an executed submission, successful or not.
type HistoryEntry struct {
	ID            string            `json:"id"`
	StatementText string            `json:"statement_text"`
	Kind          StatementKind     `json:"kind"`
	Timestamp     time.Time         `json:"timestamp"`
	Elapsed       time.Duration     `json:"elapsed"`
	Favorite      bool              `json:"favorite"`
	Result        *transport.Result `json:"result,omitempty"`
}

// SavedStatement is a user-curated statement. Never auto-evicted; created
// only by an explicit save action.
type SavedStatement struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	StatementText string        `json:"statement_text"`
	Kind          StatementKind `json:"kind"`
	SavedAt       time.Time     `json:"saved_at"`
}

// Ledger is the one intentionally stateful component of the engine: an
// append-only, size-bounded in-memory history log plus a separate unbounded
// saved list. The two storages are disjoint; saving a statement never
// touches its history entry.
//
// The internal mutex makes individual calls safe from multiple goroutines,
// but callers must not rely on cross-call atomicity.
type Ledger struct {
	mu       sync.Mutex
	capacity int
	history  []HistoryEntry // head = most recent
	saved    []SavedStatement
}

// NewLedger creates a ledger with the given history capacity.
// Non-positive capacity falls back to DefaultHistoryCapacity.
func NewLedger(capacity int) *Ledger {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &Ledger{capacity: capacity}
}

// Record inserts an entry at the head, then truncates the tail so at most
// the capacity's worth of most recent entries survive (strict FIFO cap,
// not an LRU).
func (l *Ledger) Record(entry HistoryEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.history = append([]HistoryEntry{entry}, l.history...)
	if len(l.history) > l.capacity {
		l.history = l.history[:l.capacity]
	}
}

// ToggleFavorite flips the favorite flag of the entry with the given id.
// No-op if no entry matches.
func (l *Ledger) ToggleFavorite(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.history {
		if l.history[i].ID == id {
			l.history[i].Favorite = !l.history[i].Favorite
			return
		}
	}
}

// Recent returns up to n entries, most recent first.
func (l *Ledger) Recent(n int) []HistoryEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n > len(l.history) {
		n = len(l.history)
	}
	if n <= 0 {
		return nil
	}
	out := make([]HistoryEntry, n)
	copy(out, l.history[:n])
	return out
}

// Favorites returns all favorited history entries, most recent first.
func (l *Ledger) Favorites() []HistoryEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []HistoryEntry
	for _, e := range l.history {
		if e.Favorite {
			out = append(out, e)
		}
	}
	return out
}

// Save appends to the saved list. Independent of the history cap.
func (l *Ledger) Save(s SavedStatement) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.saved = append(l.saved, s)
}

// Saved returns all saved statements in insertion order.
func (l *Ledger) Saved() []SavedStatement {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]SavedStatement, len(l.saved))
	copy(out, l.saved)
	return out
}

// Len returns the current number of history entries.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.history)
}

package memory

import (
	"sync"
	"time"
)

const recentPromptCap = 5

// PromptRecord is one remembered prompt build, kept for inspection of what
// the model actually saw.
type PromptRecord struct {
	Query   string
	Context string
	At      time.Time
}

// promptRing is a bounded, concurrency-safe buffer of recent prompt
// builds. Once full, each add evicts the oldest record.
type promptRing struct {
	mu   sync.Mutex
	buf  []PromptRecord
	next int
	full bool
}

func newPromptRing(capacity int) *promptRing {
	return &promptRing{buf: make([]PromptRecord, capacity)}
}

func (r *promptRing) add(rec PromptRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buf[r.next] = rec
	r.next = (r.next + 1) % len(r.buf)
	if r.next == 0 {
		r.full = true
	}
}

// records returns the buffered entries oldest first.
func (r *promptRing) records() []PromptRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.full {
		out := make([]PromptRecord, r.next)
		copy(out, r.buf[:r.next])
		return out
	}

	out := make([]PromptRecord, 0, len(r.buf))
	out = append(out, r.buf[r.next:]...)
	out = append(out, r.buf[:r.next]...)
	return out
}

package rpcchan

import (
	"sync"
	"time"
)

// pendingResult is what a pending request resolves to: either a decoded
// result value or an error (a TimeoutError, a *RemoteError, or whatever
// the transport produced).
type pendingResult struct {
	value any
	err   error
}

type pendingEntry struct {
	resultCh chan pendingResult
}

// pendingRegistry tracks in-flight request/get/set/construct calls by id.
// Every id present in timers is also present in entries, and clearing one
// always clears the other — the invariant spec §4 calls out for the
// pending/timer pairing.
type pendingRegistry struct {
	mu      sync.Mutex
	entries map[string]*pendingEntry
	timers  map[string]*time.Timer
}

func newPendingRegistry() *pendingRegistry {
	return &pendingRegistry{
		entries: make(map[string]*pendingEntry),
		timers:  make(map[string]*time.Timer),
	}
}

// register creates a pending entry for id and, when timeoutMs > 0, arms a
// timer that calls onTimeout once. It returns the entry's result channel.
func (p *pendingRegistry) register(id string, timeoutMs int64, onTimeout func()) chan pendingResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	entry := &pendingEntry{resultCh: make(chan pendingResult, 1)}
	p.entries[id] = entry
	if timeoutMs > 0 {
		p.timers[id] = time.AfterFunc(time.Duration(timeoutMs)*time.Millisecond, onTimeout)
	}
	return entry.resultCh
}

// resolve delivers value/err to the pending call for id, if it is still
// outstanding, and clears its bookkeeping. It reports whether a pending
// call was found — a response or timeout arriving twice for the same id
// is silently a no-op the second time.
func (p *pendingRegistry) resolve(id string, value any, err error) bool {
	p.mu.Lock()
	entry, ok := p.entries[id]
	if !ok {
		p.mu.Unlock()
		return false
	}
	delete(p.entries, id)
	if t, ok := p.timers[id]; ok {
		t.Stop()
		delete(p.timers, id)
	}
	p.mu.Unlock()

	entry.resultCh <- pendingResult{value: value, err: err}
	return true
}

// clear rejects every outstanding call with err, used when the channel is
// destroyed.
func (p *pendingRegistry) clear(err error) {
	p.mu.Lock()
	entries := p.entries
	timers := p.timers
	p.entries = make(map[string]*pendingEntry)
	p.timers = make(map[string]*time.Timer)
	p.mu.Unlock()

	for _, t := range timers {
		t.Stop()
	}
	for _, entry := range entries {
		entry.resultCh <- pendingResult{err: err}
	}
}

func (p *pendingRegistry) len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

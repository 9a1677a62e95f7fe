package analytics

import "sync"

// Tracker guards against stale-response races: every computation request is
// tagged with a monotonically increasing generation, and a completed result
// is applied only while its generation is still the latest issued one.
// Results arriving after a newer request are discarded instead of
// overwriting fresher state.
type Tracker struct {
	mu     sync.Mutex
	issued uint64
}

// Issue returns a new generation token, invalidating all earlier tokens.
func (t *Tracker) Issue() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.issued++
	return t.issued
}

// Latest returns the most recently issued token.
func (t *Tracker) Latest() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.issued
}

// Apply runs fn only if token is still the latest generation and reports
// whether it ran. The lock is held across fn so a discarded late result can
// never interleave with a current one.
func (t *Tracker) Apply(token uint64, fn func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if token != t.issued {
		return false
	}
	fn()
	return true
}

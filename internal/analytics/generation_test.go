package analytics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker_StaleTokenIsDiscarded(t *testing.T) {
	var tr Tracker

	first := tr.Issue()
	second := tr.Issue()

	var state string
	// The late result from the first request must not overwrite the second.
	assert.False(t, tr.Apply(first, func() { state = "stale" }))
	assert.True(t, tr.Apply(second, func() { state = "fresh" }))
	assert.Equal(t, "fresh", state)
}

func TestTracker_LatestTracksIssued(t *testing.T) {
	var tr Tracker

	assert.Equal(t, uint64(0), tr.Latest())
	token := tr.Issue()
	assert.Equal(t, token, tr.Latest())
	tr.Issue()
	assert.NotEqual(t, token, tr.Latest())
}

func TestTracker_ConcurrentAppliesOnlyLatestWins(t *testing.T) {
	var tr Tracker

	tokens := make([]uint64, 50)
	for i := range tokens {
		tokens[i] = tr.Issue()
	}
	latest := tokens[len(tokens)-1]

	var applied int
	var wg sync.WaitGroup
	for _, token := range tokens {
		wg.Add(1)
		go func(token uint64) {
			defer wg.Done()
			tr.Apply(token, func() { applied++ })
		}(token)
	}
	wg.Wait()

	// Apply holds the lock across fn, so the single increment is safe.
	assert.Equal(t, 1, applied)
	assert.Equal(t, latest, tr.Latest())
}

package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualClock_DefaultsToEpoch(t *testing.T) {
	clock := NewManualClock(time.Time{})
	assert.Equal(t, Epoch, clock.Now())
}

func TestManualClock_OnlyMovesOnAdvance(t *testing.T) {
	start := time.Date(2030, time.June, 1, 0, 0, 0, 0, time.UTC)
	clock := NewManualClock(start)

	assert.Equal(t, start, clock.Now())
	assert.Equal(t, start, clock.Now())

	got := clock.Advance(90 * time.Minute)
	assert.Equal(t, start.Add(90*time.Minute), got)
	assert.Equal(t, got, clock.Now())
}

func TestManualClock_ThreadSafe(t *testing.T) {
	clock := NewManualClock(time.Time{})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			clock.Advance(time.Second)
			_ = clock.Now()
		}()
	}
	wg.Wait()

	assert.Equal(t, Epoch.Add(100*time.Second), clock.Now())
}

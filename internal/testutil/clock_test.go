package testutil

import (
	"sync"
	"testing"
	"time"
)

var testBase = time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)

func TestClockAdvances(t *testing.T) {
	c := NewClock(testBase, time.Minute)

	first := c.Now()
	second := c.Now()

	if got, want := first, testBase.Add(time.Minute); !got.Equal(want) {
		t.Errorf("first tick = %v, want %v", got, want)
	}
	if got, want := second, testBase.Add(2*time.Minute); !got.Equal(want) {
		t.Errorf("second tick = %v, want %v", got, want)
	}
	if got := c.Current(); !got.Equal(second) {
		t.Errorf("Current() = %v, want %v", got, second)
	}
}

func TestClockReset(t *testing.T) {
	c := NewClock(testBase, time.Second)

	c.Now()
	c.Now()
	c.Reset()

	if got, want := c.Now(), testBase.Add(time.Second); !got.Equal(want) {
		t.Errorf("tick after reset = %v, want %v", got, want)
	}
}

func TestClockConcurrent(t *testing.T) {
	c := NewClock(testBase, time.Second)

	const calls = 100
	var wg sync.WaitGroup
	seen := make(chan time.Time, calls)

	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- c.Now()
		}()
	}
	wg.Wait()
	close(seen)

	unique := map[time.Time]bool{}
	for ts := range seen {
		if unique[ts] {
			t.Fatalf("duplicate tick %v", ts)
		}
		unique[ts] = true
	}
	if got, want := c.Current(), testBase.Add(calls*time.Second); !got.Equal(want) {
		t.Errorf("Current() after %d calls = %v, want %v", calls, got, want)
	}
}

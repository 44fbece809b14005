package meteor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/starsky/pkg/rng"
)

// instantTimer fires every wait immediately and records the requested
// durations.
type instantTimer struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (t *instantTimer) after(d time.Duration) <-chan time.Time {
	t.mu.Lock()
	t.waits = append(t.waits, d)
	t.mu.Unlock()
	c := make(chan time.Time, 1)
	c <- time.Time{}
	return c
}

func never(time.Duration) <-chan time.Time { return nil }

func drain(t *testing.T, ch <-chan Meteor) int {
	t.Helper()
	n := 0
	timeout := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return n
			}
			n++
		case <-timeout:
			t.Fatal("meteor channel was not closed")
		}
	}
}

func TestSchedulerEmits(t *testing.T) {
	timer := &instantTimer{}
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewScheduler(DefaultConfig(), rng.NewSequence(0.1), 1000, 800,
		WithTimer(timer.after, func() time.Time { return fixed }))

	ch := s.Start(context.Background())
	for i := range 3 {
		m := <-ch
		if m.Type != "small" {
			t.Errorf("meteor %d type = %s, want small", i, m.Type)
		}
		if !m.SpawnedAt.Equal(fixed) {
			t.Errorf("SpawnedAt = %v", m.SpawnedAt)
		}
	}
	s.Stop()
	s.Stop()
	drain(t, ch)

	timer.mu.Lock()
	defer timer.mu.Unlock()
	if len(timer.waits) < 3 {
		t.Fatalf("waits = %v", timer.waits)
	}
	if timer.waits[0] != 3*time.Second {
		t.Errorf("start delay = %v, want 3s", timer.waits[0])
	}
	if timer.waits[1] != 2600*time.Millisecond {
		t.Errorf("tick delay = %v, want 2.6s", timer.waits[1])
	}
}

func TestSchedulerRespectsSpawnRate(t *testing.T) {
	timer := &instantTimer{}
	// 0.5 is above the 0.3 spawn rate, so no tick spawns.
	s := NewScheduler(DefaultConfig(), rng.NewSequence(0.5), 1000, 800, WithTimer(timer.after, nil))
	ch := s.Start(context.Background())

	select {
	case m := <-ch:
		t.Fatalf("unexpected meteor %+v", m)
	case <-time.After(50 * time.Millisecond):
	}
	s.Stop()
	if n := drain(t, ch); n != 0 {
		t.Errorf("got %d meteors, want 0", n)
	}
}

func TestSchedulerStopBeforeStart(t *testing.T) {
	s := NewScheduler(DefaultConfig(), rng.NewSequence(0.1), 100, 100, WithTimer(never, nil))
	ch := s.Start(context.Background())
	if again := s.Start(context.Background()); again != ch {
		t.Error("Start should return the same channel")
	}
	s.Stop()
	if n := drain(t, ch); n != 0 {
		t.Errorf("got %d meteors before the start delay", n)
	}
}

func TestSchedulerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewScheduler(DefaultConfig(), rng.NewSequence(0.1), 100, 100, WithTimer(never, nil))
	ch := s.Start(ctx)
	cancel()
	drain(t, ch)
}

func TestSchedulerResize(t *testing.T) {
	timer := &instantTimer{}
	// Draws: spawn, pick, startX, startY, delay.
	s := NewScheduler(DefaultConfig(), rng.NewSequence(0.1, 0, 1, 1, 0), 100, 100, WithTimer(timer.after, nil))
	s.Resize(2000, 1000)
	ch := s.Start(context.Background())

	m := <-ch
	s.Stop()
	drain(t, ch)
	if m.StartX != 500 || m.StartY != 200 {
		t.Errorf("start = (%v,%v), want (500,200)", m.StartX, m.StartY)
	}
}

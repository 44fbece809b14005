package meteor

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/starsky/pkg/rng"
)

// Scheduler emits meteors at random intervals. After StartDelay, every tick
// spawns a meteor with probability SpawnRate and re-arms after a uniform
// delay in [MinDelay, MaxDelay).
//
// The random source is only used by the scheduler goroutine once Start has
// been called.
type Scheduler struct {
	cfg    Config
	src    rng.Source
	after  func(time.Duration) <-chan time.Time
	now    func() time.Time
	logger *log.Logger

	mu            sync.Mutex
	width, height float64

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	out       chan Meteor
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithTimer replaces time.After and time.Now, for tests.
func WithTimer(after func(time.Duration) <-chan time.Time, now func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		if after != nil {
			s.after = after
		}
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the scheduler logger.
func WithLogger(l *log.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewScheduler creates a stopped scheduler for a width×height viewport.
func NewScheduler(cfg Config, src rng.Source, width, height float64, opts ...SchedulerOption) *Scheduler {
	cfg.SetDefaults()
	s := &Scheduler{
		cfg:    cfg,
		src:    src,
		after:  time.After,
		now:    time.Now,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
		width:  width,
		height: height,
		stop:   make(chan struct{}),
		out:    make(chan Meteor, 4),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resize changes the viewport used for meteors spawned from now on.
func (s *Scheduler) Resize(width, height float64) {
	s.mu.Lock()
	s.width, s.height = width, height
	s.mu.Unlock()
}

// Start launches the scheduler and returns the meteor channel. The channel
// is closed when ctx is done or Stop is called. Calling Start again returns
// the same channel.
func (s *Scheduler) Start(ctx context.Context) <-chan Meteor {
	s.startOnce.Do(func() {
		go s.loop(ctx)
	})
	return s.out
}

// Stop halts the scheduler. It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.out)

	if !s.wait(ctx, s.cfg.StartDelay) {
		return
	}
	s.logger.Debug("meteor scheduler started", "spawn_rate", s.cfg.SpawnRate)

	for {
		if s.src.Float64() < s.cfg.SpawnRate {
			s.mu.Lock()
			w, h := s.width, s.height
			s.mu.Unlock()

			m := Spawn(s.cfg.Types, s.src, w, h)
			m.SpawnedAt = s.now()
			select {
			case s.out <- m:
				s.logger.Debug("meteor", "type", m.Type, "duration", m.Duration, "tail", m.TailLength)
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			}
		}

		delay := s.cfg.MinDelay + time.Duration(s.src.Float64()*float64(s.cfg.MaxDelay-s.cfg.MinDelay))
		if !s.wait(ctx, delay) {
			return
		}
	}
}

func (s *Scheduler) wait(ctx context.Context, d time.Duration) bool {
	select {
	case <-s.after(d):
		return true
	case <-ctx.Done():
		return false
	case <-s.stop:
		return false
	}
}

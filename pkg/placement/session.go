package placement

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/starsky/pkg/catalog"
	"github.com/matzehuels/starsky/pkg/density"
	"github.com/matzehuels/starsky/pkg/observability"
)

// Session is one placement run. It owns the accepted set and is not safe
// for concurrent use. Start a new Session to re-run; never reuse one.
type Session struct {
	id       string
	cfg      Config
	sampler  density.Sampler
	bounds   density.Bounds
	logger   *log.Logger
	hooks    observability.PlacementHooks
	accepted []Point
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRunID overrides the generated run ID.
func WithRunID(id string) Option { return func(s *Session) { s.id = id } }

// WithHooks overrides the globally registered placement hooks.
func WithHooks(h observability.PlacementHooks) Option {
	return func(s *Session) {
		if h != nil {
			s.hooks = h
		}
	}
}

// NewSession creates an empty session drawing candidates from sampler.
// bounds is only consulted to detect an empty placeable area.
func NewSession(cfg Config, sampler density.Sampler, bounds density.Bounds, opts ...Option) *Session {
	cfg.SetDefaults()
	s := &Session{
		id:      uuid.NewString(),
		cfg:     cfg,
		sampler: sampler,
		bounds:  bounds,
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
		hooks:   observability.Placement(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the run ID.
func (s *Session) ID() string { return s.id }

// Points returns a copy of the accepted set in acceptance order.
func (s *Session) Points() []Point {
	return append([]Point(nil), s.accepted...)
}

// Run places every tier of cat in order, then runs the forced pass for
// important tiers that fell short. A cancelled context stops the run early
// and returns the partial result with ctx.Err().
func (s *Session) Run(ctx context.Context, cat *catalog.Catalog) (*Result, error) {
	start := time.Now()
	if cat.BaseSize > 0 {
		s.cfg.BaseSize = cat.BaseSize
	}
	s.hooks.OnRunStart(ctx, s.id, len(cat.Tiers), cat.Total())
	s.logger.Debug("placement started", "run", s.id, "tiers", len(cat.Tiers), "target", cat.Total())

	reports := make([]TierReport, len(cat.Tiers))
	for i, t := range cat.Tiers {
		reports[i] = s.PlaceTier(ctx, i, t)
		if err := ctx.Err(); err != nil {
			return s.result(reports[:i+1], start), err
		}
	}

	for i, t := range cat.Tiers {
		if !t.Important || reports[i].Missing() == 0 {
			continue
		}
		s.Force(ctx, i, t, &reports[i])
		if err := ctx.Err(); err != nil {
			return s.result(reports, start), err
		}
	}

	for _, rep := range reports {
		if rep.Short {
			s.hooks.OnTierShort(ctx, s.id, rep.Name, rep.Placed, rep.Target)
		}
	}

	res := s.result(reports, start)
	s.hooks.OnRunComplete(ctx, s.id, res.Placed(), res.Target(), res.Duration)
	s.logger.Debug("placement finished", "run", s.id, "placed", res.Placed(), "target", res.Target(), "duration", res.Duration)
	return res, nil
}

func (s *Session) result(reports []TierReport, start time.Time) *Result {
	return &Result{
		RunID:    s.id,
		Points:   s.Points(),
		Reports:  reports,
		Stats:    ComputeStats(s.accepted, statsThreshold(s.sampler)),
		Duration: time.Since(start),
	}
}

// SpacingSteps returns the spacing ladder for a tier. Important tiers step
// down from their own minimum to max(relaxedFloor, 0.4 of it); ordinary
// tiers use a single spacing.
func SpacingSteps(t catalog.Tier, relaxed bool, relaxedFloor float64) []float64 {
	if t.Important {
		d := t.MinSpacing
		return []float64{d, 0.8 * d, 0.6 * d, max(relaxedFloor, 0.4*d)}
	}
	if relaxed {
		return []float64{relaxedFloor}
	}
	return []float64{t.MinSpacing}
}

// ForcedSpacing returns the spacing for a forced round (1-based).
func ForcedSpacing(minSpacing float64, round int, floor float64) float64 {
	return max(floor, minSpacing*(0.3-float64(round)*0.1))
}

// PlaceTier places up to t.Count points for the tier at index idx. The
// number of candidate draws never exceeds the tier's attempt budget.
func (s *Session) PlaceTier(ctx context.Context, idx int, t catalog.Tier) TierReport {
	start := time.Now()
	steps := SpacingSteps(t, s.cfg.Relaxed, s.cfg.RelaxedDistance)
	rep := TierReport{
		Name:         t.Name,
		Target:       t.Count,
		Steps:        steps,
		FinalSpacing: steps[0],
	}
	if t.Count <= 0 {
		return rep
	}
	if s.bounds.Empty() {
		s.logger.Warn("no placeable area", "tier", t.Name, "bounds", s.bounds)
		rep.Short = true
		return rep
	}

	maxAttempts := s.cfg.MaxAttempts
	if t.Important {
		maxAttempts = s.cfg.ImportantMaxAttempts
	}
	perStep := maxAttempts / len(steps)
	footprint := s.footprint(t)

	step, stall := 0, 0
	for rep.Attempts < maxAttempts && rep.Placed < t.Count {
		if rep.Attempts%progressInterval == 0 && rep.Attempts > 0 {
			if ctx.Err() != nil {
				break
			}
			s.logger.Debug("placing", "tier", t.Name, "attempt", rep.Attempts, "placed", rep.Placed, "target", t.Count, "spacing", steps[step])
		}
		rep.Attempts++

		c := s.sampler.Sample()
		spacing := steps[step] + footprint
		if s.tooClose(c.X, c.Y, spacing) {
			stall++
			if stall >= perStep && step < len(steps)-1 {
				step++
				stall = 0
				rep.FinalSpacing = steps[step]
				s.logger.Debug("relaxing spacing", "tier", t.Name, "step", step, "spacing", steps[step])
				s.hooks.OnSpacingRelaxed(ctx, s.id, t.Name, step, steps[step])
			}
			continue
		}

		s.accept(Point{
			X: c.X, Y: c.Y,
			Tier: t.Name, TierIndex: idx, Scale: t.Scale,
			Noise: c.Noise, Probability: c.Probability,
			Spacing: spacing, Step: step,
		})
		rep.Placed++
		stall = 0
	}

	if rep.Placed < t.Count {
		rep.Short = true
		// Important tiers still get the forced pass, which warns if it fails.
		logf := s.logger.Warn
		if t.Important {
			logf = s.logger.Debug
		}
		logf("tier short of target", "tier", t.Name, "placed", rep.Placed, "target", t.Count, "attempts", rep.Attempts)
	}
	s.hooks.OnTierComplete(ctx, s.id, t.Name, rep.Placed, t.Count, rep.Attempts, time.Since(start))
	return rep
}

// Force runs the forced post-pass for an important tier, updating rep.
func (s *Session) Force(ctx context.Context, idx int, t catalog.Tier, rep *TierReport) {
	if s.bounds.Empty() {
		return
	}
	footprint := s.footprint(t)

	for round := 1; round <= s.cfg.ForcedRounds && rep.Missing() > 0; round++ {
		base := ForcedSpacing(t.MinSpacing, round, s.cfg.ForcedFloor)
		spacing := base + footprint
		before := rep.Placed

		for attempt := 0; attempt < s.cfg.ForcedAttempts && rep.Missing() > 0; attempt++ {
			if attempt%progressInterval == 0 && ctx.Err() != nil {
				return
			}
			rep.ForcedAttempts++

			c := s.sampler.Sample()
			if s.tooClose(c.X, c.Y, spacing) {
				continue
			}
			s.accept(Point{
				X: c.X, Y: c.Y,
				Tier: t.Name, TierIndex: idx, Scale: t.Scale,
				Noise: c.Noise, Probability: c.Probability,
				Spacing: spacing, Step: ForcedStep, Forced: true,
			})
			rep.Placed++
			rep.Forced++
		}

		rep.FinalSpacing = base
		s.logger.Info("forced placement", "tier", t.Name, "round", round, "spacing", base, "added", rep.Placed-before, "missing", rep.Missing())
	}

	rep.Short = rep.Missing() > 0
	if rep.Short {
		s.logger.Warn("tier still short after forced placement", "tier", t.Name, "placed", rep.Placed, "target", rep.Target)
	}
}

func (s *Session) footprint(t catalog.Tier) float64 {
	return s.cfg.BaseSize * t.Scale * 0.5
}

// tooClose reports whether any accepted point lies strictly closer than
// spacing to (x, y).
func (s *Session) tooClose(x, y, spacing float64) bool {
	for _, p := range s.accepted {
		if p.Distance(x, y) < spacing {
			return true
		}
	}
	return false
}

func (s *Session) accept(p Point) {
	s.accepted = append(s.accepted, p)
}

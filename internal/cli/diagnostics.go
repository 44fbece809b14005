package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/starsky/pkg/observability"
)

// diagnostics reports placement and cache events at debug level, so
// --verbose shows how each tier was placed.
type diagnostics struct {
	observability.NoopPlacementHooks
	observability.NoopCacheHooks
	logger *log.Logger
}

func newDiagnostics(l *log.Logger) *diagnostics {
	return &diagnostics{logger: l}
}

func (d *diagnostics) OnRunStart(_ context.Context, runID string, tiers, target int) {
	d.logger.Debug("placement started", "run", runID, "tiers", tiers, "target", target)
}

func (d *diagnostics) OnTierComplete(_ context.Context, runID, tier string, placed, target, attempts int, duration time.Duration) {
	d.logger.Debug("tier placed", "run", runID, "tier", tier, "placed", placed, "target", target,
		"attempts", attempts, "took", duration.Round(time.Microsecond))
}

func (d *diagnostics) OnSpacingRelaxed(_ context.Context, runID, tier string, step int, spacing float64) {
	d.logger.Debug("spacing relaxed", "run", runID, "tier", tier, "step", step, "spacing", spacing)
}

func (d *diagnostics) OnRunComplete(_ context.Context, runID string, placed, target int, duration time.Duration) {
	d.logger.Debug("placement finished", "run", runID, "placed", placed, "target", target,
		"took", duration.Round(time.Microsecond))
}

func (d *diagnostics) OnCacheHit(_ context.Context, keyType string) {
	d.logger.Debug("cache hit", "type", keyType)
}

func (d *diagnostics) OnCacheMiss(_ context.Context, keyType string) {
	d.logger.Debug("cache miss", "type", keyType)
}

func (d *diagnostics) OnCacheSet(_ context.Context, keyType string, size int) {
	d.logger.Debug("cache stored", "type", keyType, "bytes", size)
}

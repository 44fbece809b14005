// Package cli implements the starsky command-line interface.
//
// The CLI generates starry skies from a tier catalog and renders them to
// HTML, SVG, PNG or JSON, previews them live in the terminal, and serves
// them over HTTP. It is built using cobra and logs via charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - generate: Place stars and write the rendered sky
//   - render: Re-render a saved sky document
//   - catalog: Show or validate a tier catalog
//   - preview: Interactive terminal preview with filter and meteors
//   - serve: Serve fresh skies over HTTP
//   - cache: Manage the result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// reports every placement tier and cache lookup. Loggers are passed through
// context.Context.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates the CLI logger. Timestamps read "15:04:05.00".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Prefix:          appName,
		Level:           level,
	})
}

// placementTimer logs how long a placement run took and how close it came
// to the catalog target.
type placementTimer struct {
	logger *log.Logger
	start  time.Time
}

func startPlacement(l *log.Logger) *placementTimer {
	return &placementTimer{logger: l, start: time.Now()}
}

// done logs e.g. "placed 31/33 stars (12ms)" with the shortfall as a field.
func (p *placementTimer) done(placed, target int) {
	took := time.Since(p.start).Round(time.Millisecond)
	p.logger.Info(fmt.Sprintf("placed %d/%d stars (%s)", placed, target, took), "short", max(0, target-placed))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the command logger, or a discard logger when
// the command ran without the root pre-run.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.NewWithOptions(io.Discard, log.Options{})
}

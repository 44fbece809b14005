package sink

import (
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/starsky/pkg/meteor"
	"github.com/matzehuels/starsky/pkg/sky"
)

// Terminal glyphs, brightest first.
const (
	glyphSuper   = '✶'
	glyphBright  = '✸'
	glyphMedium  = '✦'
	glyphSmall   = '+'
	glyphMicro   = '·'
	glyphFocused = '◆'
	glyphMeteor  = '●'
	glyphTail    = '╲'

	colorBackground = "236"
	colorFocused    = "229"
	colorMeteor     = "255"
	colorTail       = "245"

	maxTailCells = 6
)

// TerminalOption configures terminal rendering.
type TerminalOption func(*terminalRenderer)

type terminalRenderer struct {
	filter  *sky.Filter
	focus   int
	meteors []meteor.Meteor
	now     time.Time
	plain   bool
}

// WithFilter draws only the tiers f selects.
func WithFilter(f *sky.Filter) TerminalOption { return func(r *terminalRenderer) { r.filter = f } }

// WithFocus highlights the star with the given ID.
func WithFocus(id int) TerminalOption { return func(r *terminalRenderer) { r.focus = id } }

// WithMeteorOverlay draws meteors at their position at now.
func WithMeteorOverlay(ms []meteor.Meteor, now time.Time) TerminalOption {
	return func(r *terminalRenderer) { r.meteors, r.now = ms, now }
}

// WithPlain disables colour.
func WithPlain() TerminalOption { return func(r *terminalRenderer) { r.plain = true } }

type cell struct {
	glyph rune
	color string
	rank  int
}

// RenderTerminal draws s on a cols×rows character grid. When two stars
// share a cell the larger one wins.
func RenderTerminal(s *sky.Sky, cols, rows int, opts ...TerminalOption) string {
	r := terminalRenderer{focus: -1}
	for _, opt := range opts {
		opt(&r)
	}
	if cols <= 0 || rows <= 0 {
		return ""
	}

	grid := make([][]cell, rows)
	for y := range grid {
		grid[y] = make([]cell, cols)
		for x := range grid[y] {
			grid[y][x] = cell{glyph: ' ', color: colorBackground, rank: -1}
		}
	}

	for _, st := range s.Visible(r.filter) {
		x, y, ok := project(st.X, st.Y, s.Width, s.Height, cols, rows)
		if !ok {
			continue
		}
		c := cell{glyph: StarGlyph(st.Scale), color: starColor(st), rank: int(st.Scale * 100)}
		if st.ID == r.focus {
			c = cell{glyph: glyphFocused, color: colorFocused, rank: math.MaxInt}
		}
		if c.rank > grid[y][x].rank {
			grid[y][x] = c
		}
	}

	for _, m := range r.meteors {
		drawMeteor(grid, m, r.now, s.Width, s.Height)
	}

	var b strings.Builder
	for y := range grid {
		for _, c := range grid[y] {
			if r.plain {
				b.WriteRune(c.glyph)
				continue
			}
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c.color)).Render(string(c.glyph)))
		}
		if y < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// StarGlyph returns the terminal glyph for a tier scale.
func StarGlyph(scale float64) rune {
	switch {
	case scale >= 0.9:
		return glyphSuper
	case scale >= 0.6:
		return glyphBright
	case scale >= 0.45:
		return glyphMedium
	case scale >= 0.3:
		return glyphSmall
	default:
		return glyphMicro
	}
}

// CellOf maps a sky coordinate to its grid cell.
func CellOf(x, y, width, height float64, cols, rows int) (int, int, bool) {
	return project(x, y, width, height, cols, rows)
}

func project(x, y, width, height float64, cols, rows int) (int, int, bool) {
	if width <= 0 || height <= 0 {
		return 0, 0, false
	}
	cx := int(math.Floor(x / width * float64(cols)))
	cy := int(math.Floor(y / height * float64(rows)))
	if cx < 0 || cx >= cols || cy < 0 || cy >= rows {
		return 0, 0, false
	}
	return cx, cy, true
}

func drawMeteor(grid [][]cell, m meteor.Meteor, now time.Time, width, height float64) {
	if m.Done(now) || now.Before(m.SpawnedAt) {
		return
	}
	rows, cols := len(grid), len(grid[0])
	hx, hy := m.Position(now)

	cellW := width / float64(cols)
	tail := min(maxTailCells, max(1, int(m.TailLength/cellW)))
	for i := tail; i >= 1; i-- {
		off := float64(i) * cellW
		if x, y, ok := project(hx-off, hy-off, width, height, cols, rows); ok {
			grid[y][x] = cell{glyph: glyphTail, color: colorTail, rank: math.MaxInt - 1}
		}
	}
	if x, y, ok := project(hx, hy, width, height, cols, rows); ok {
		grid[y][x] = cell{glyph: glyphMeteor, color: colorMeteor, rank: math.MaxInt}
	}
}

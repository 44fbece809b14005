package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/starsky/pkg/catalog"
	"github.com/matzehuels/starsky/pkg/meteor"
	"github.com/matzehuels/starsky/pkg/pipeline"
	"github.com/matzehuels/starsky/pkg/render/sink"
	"github.com/matzehuels/starsky/pkg/rng"
	"github.com/matzehuels/starsky/pkg/sky"
)

// A terminal cell stands for this many sky pixels. Cells are about twice
// as tall as they are wide.
const (
	pxPerCol = 10.0
	pxPerRow = 20.0

	chromeRows  = 3 // tooltip, status and help lines
	meteorFrame = 50 * time.Millisecond
)

// previewCommand creates the preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		src      sourceFlags
		caching  cacheFlags
		seed     uint64
		strategy string
		relaxed  bool
		meteors  bool
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Preview a sky in the terminal",
		Long: `Preview draws a sky sized to the terminal and redraws it on resize.

Keys:
  r          new sky
  tab        focus the next star (shift+tab: previous, esc: clear)
  f          open the tier filter (space: toggle, a: all, n: none, enter: apply)
  q          quit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts := c.config().PipelineOptions()
			fs := cmd.Flags()
			if fs.Changed("seed") {
				opts.Seed = seed
			}
			if fs.Changed("strategy") {
				opts.Strategy = strategy
			}
			if fs.Changed("relaxed") {
				opts.Relaxed = relaxed
			}
			if fs.Changed("meteors") {
				opts.Meteors = meteors
			}
			opts.Formats = []string{pipeline.FormatJSON}
			check := opts
			if err := check.ValidateAndSetDefaults(); err != nil {
				return err
			}

			runner := c.newRunner(ctx, caching)
			defer runner.Close()
			cat, info := runner.LoadCatalog(ctx, c.source(src), false)
			c.Logger.Debug("catalog loaded", "source", info.Source, "fallback", info.Fallback)

			m := newPreviewModel(ctx, runner, cat, opts)
			defer m.stop()
			_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}

	src.register(cmd)
	caching.register(cmd)
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 for a fresh sky)")
	cmd.Flags().StringVar(&strategy, "strategy", pipeline.DefaultStrategy, "density strategy: noise or constellation")
	cmd.Flags().BoolVar(&relaxed, "relaxed", false, "relax spacing further before forcing stars")
	cmd.Flags().BoolVar(&meteors, "meteors", false, "show meteors")

	return cmd
}

// =============================================================================
// Messages
// =============================================================================

// skyMsg carries a finished placement. gen identifies the request so
// results for an older terminal size are dropped.
type skyMsg struct {
	gen int
	sky *sky.Sky
	err error
}

type meteorMsg meteor.Meteor

type frameMsg time.Time

// =============================================================================
// Model
// =============================================================================

type previewModel struct {
	ctx    context.Context
	runner *pipeline.Runner
	cat    *catalog.Catalog
	opts   pipeline.Options

	sky        *sky.Sky
	err        error
	loading    bool
	gen        int
	cols, rows int

	filter     *sky.Filter
	filterOpen bool
	cursor     int

	visible []sky.Star
	focus   int // index into visible, -1 for none

	sched     *meteor.Scheduler
	meteorCh  <-chan meteor.Meteor
	meteors   []meteor.Meteor
	animating bool
	now       func() time.Time
}

func newPreviewModel(ctx context.Context, runner *pipeline.Runner, cat *catalog.Catalog, opts pipeline.Options) *previewModel {
	m := &previewModel{
		ctx:    ctx,
		runner: runner,
		cat:    cat,
		opts:   opts,
		focus:  -1,
		now:    time.Now,
	}
	if opts.Meteors {
		m.sched = meteor.NewScheduler(opts.MeteorConfig, rng.New(uint64(time.Now().UnixNano())), 0, 0)
	}
	return m
}

func (m *previewModel) Init() tea.Cmd {
	if m.sched == nil {
		return nil
	}
	m.meteorCh = m.sched.Start(m.ctx)
	return waitForMeteor(m.meteorCh)
}

func (m *previewModel) stop() {
	if m.sched != nil {
		m.sched.Stop()
	}
}

func waitForMeteor(ch <-chan meteor.Meteor) tea.Cmd {
	return func() tea.Msg {
		mt, ok := <-ch
		if !ok {
			return nil
		}
		return meteorMsg(mt)
	}
}

func frame() tea.Cmd {
	return tea.Tick(meteorFrame, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// viewport returns the sky size for the current terminal.
func (m *previewModel) viewport() (w, h float64) {
	return float64(m.cols) * pxPerCol, float64(max(m.rows-chromeRows, 1)) * pxPerRow
}

// generate places a sky for the current terminal size.
func (m *previewModel) generate() tea.Cmd {
	opts := m.opts
	opts.Width, opts.Height = m.viewport()
	ctx, runner, cat := m.ctx, m.runner, m.cat
	m.loading = true
	m.gen++
	gen := m.gen
	return func() tea.Msg {
		s, err := runner.Generate(ctx, cat, opts)
		return skyMsg{gen: gen, sky: s, err: err}
	}
}

func (m *previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height
		if m.sched != nil {
			m.sched.Resize(m.viewport())
		}
		return m, m.generate()

	case skyMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.setSky(msg.sky)
		}
		return m, nil

	case meteorMsg:
		m.meteors = append(m.meteors, meteor.Meteor(msg))
		var cmds []tea.Cmd
		if m.meteorCh != nil {
			cmds = append(cmds, waitForMeteor(m.meteorCh))
		}
		if !m.animating {
			m.animating = true
			cmds = append(cmds, frame())
		}
		return m, tea.Batch(cmds...)

	case frameMsg:
		now := m.now()
		m.meteors = slices.DeleteFunc(m.meteors, func(mt meteor.Meteor) bool { return mt.Done(now) })
		if len(m.meteors) == 0 {
			m.animating = false
			return m, nil
		}
		return m, frame()

	case tea.KeyMsg:
		if m.filterOpen {
			return m.updateFilter(msg)
		}
		return m.updateSky(msg)
	}
	return m, nil
}

func (m *previewModel) setSky(s *sky.Sky) {
	m.sky = s
	if m.filter == nil || !slices.Equal(m.filter.Tiers(), s.TierNames()) {
		m.filter = sky.NewFilter(s.TierNames())
	}
	m.focus = -1
	m.visible = s.Visible(m.filter)
}

func (m *previewModel) updateSky(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.stop()
		return m, tea.Quit
	case "r":
		if m.loading || m.cols == 0 {
			return m, nil
		}
		m.opts.Seed = 0
		return m, m.generate()
	case "f":
		if m.filter != nil {
			m.filterOpen = true
			m.cursor = 0
		}
	case "tab":
		if n := len(m.visible); n > 0 {
			m.focus = (m.focus + 1) % n
		}
	case "shift+tab":
		if n := len(m.visible); n > 0 {
			m.focus = (m.focus - 1 + n) % n
		}
	case "esc":
		m.focus = -1
	}
	return m, nil
}

func (m *previewModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tiers := m.filter.Tiers()
	switch msg.String() {
	case "ctrl+c":
		m.stop()
		return m, tea.Quit
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case "down", "j":
		m.cursor = min(m.cursor+1, len(tiers)-1)
	case " ":
		if m.cursor < len(tiers) {
			m.filter.Toggle(tiers[m.cursor])
		}
	case "a":
		m.filter.SelectAll()
	case "n":
		m.filter.SelectNone()
	case "enter":
		m.filter.Apply()
		m.filterOpen = false
		m.visible = m.sky.Visible(m.filter)
		m.focus = -1
	case "esc", "f", "q":
		m.filter.Reset()
		m.filterOpen = false
	}
	return m, nil
}

// focused returns the focused star.
func (m *previewModel) focused() (sky.Star, bool) {
	if m.focus < 0 || m.focus >= len(m.visible) {
		return sky.Star{}, false
	}
	return m.visible[m.focus], true
}

// =============================================================================
// View
// =============================================================================

var (
	stylePanel   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
	styleCursor  = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	styleTooltip = lipgloss.NewStyle().Foreground(colorWhite)
)

func (m *previewModel) View() string {
	if m.cols == 0 {
		return ""
	}

	var b strings.Builder
	panel := ""
	if m.filterOpen {
		panel = m.filterView()
	}
	canvasRows := max(m.rows-chromeRows-lipgloss.Height(panel), 1)

	switch {
	case m.err != nil:
		b.WriteString(styleIconError.Render(iconError) + " " + m.err.Error())
	case m.sky == nil:
		b.WriteString(StyleDim.Render("Placing stars..."))
	default:
		opts := []sink.TerminalOption{sink.WithFilter(m.filter), sink.WithMeteorOverlay(m.meteors, m.now())}
		if st, ok := m.focused(); ok {
			opts = append(opts, sink.WithFocus(st.ID))
		}
		b.WriteString(sink.RenderTerminal(m.sky, m.cols, canvasRows, opts...))
	}
	b.WriteByte('\n')
	if panel != "" {
		b.WriteString(panel)
		b.WriteByte('\n')
	}

	b.WriteString(m.tooltipLine())
	b.WriteByte('\n')
	b.WriteString(m.statusLine())
	b.WriteByte('\n')
	b.WriteString(StyleDim.Render("r new · tab focus · f filter · q quit"))
	return b.String()
}

func (m *previewModel) filterView() string {
	var b strings.Builder
	for i, t := range m.filter.Tiers() {
		check := "[ ]"
		if m.filter.Pending(t) {
			check = "[x]"
		}
		line := check + " " + t
		if i == m.cursor {
			line = styleCursor.Render("› " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		if i < len(m.filter.Tiers())-1 {
			b.WriteByte('\n')
		}
	}
	return stylePanel.Render(b.String())
}

func (m *previewModel) tooltipLine() string {
	st, ok := m.focused()
	if !ok {
		return ""
	}
	tt := sky.NewTooltip(st)
	parts := []string{tt.Title, tt.Level, fmt.Sprintf("%dpx", tt.Size)}
	if tt.Description != "" {
		parts = append(parts, tt.Description)
	}
	if tt.URL != "" {
		parts = append(parts, StyleLink.Render(tt.URL))
	}
	return styleTooltip.Render(strings.Join(parts, " · "))
}

func (m *previewModel) statusLine() string {
	if m.sky == nil {
		return ""
	}
	target := 0
	for _, r := range m.sky.Reports {
		target += r.Target
	}
	parts := []string{
		StyleHighlight.Render(fmt.Sprintf("seed=%d", m.sky.Seed)),
		fmt.Sprintf("%d/%d stars", len(m.sky.Stars), target),
		m.sky.Strategy,
		m.filter.Icon(),
	}
	if m.sched != nil {
		parts = append(parts, fmt.Sprintf("%d meteors", len(m.meteors)))
	}
	if m.loading {
		parts = append(parts, "placing...")
	}
	return StyleDim.Render(strings.Join(parts, " · "))
}

package sink

import (
	"bytes"
	"image/png"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/matzehuels/starsky/pkg/catalog"
	"github.com/matzehuels/starsky/pkg/meteor"
	"github.com/matzehuels/starsky/pkg/placement"
	"github.com/matzehuels/starsky/pkg/rng"
	"github.com/matzehuels/starsky/pkg/sky"
)

func testSky(t *testing.T) *sky.Sky {
	t.Helper()
	cat := catalog.Default()
	cat.Subscriptions = []catalog.Subscription{
		{Level: "super", BlogName: "<script>alert(1)</script>", BlogURL: "https://blog.example", Description: "a blog"},
	}
	res := &placement.Result{
		RunID: "run-test",
		Points: []placement.Point{
			{X: 40, Y: 40, Tier: "micro", TierIndex: 0},
			{X: 120, Y: 80, Tier: "medium", TierIndex: 2},
			{X: 160, Y: 100, Tier: "super", TierIndex: 4},
		},
	}
	return sky.Build(res, cat, rng.NewSequence(0.5), sky.Options{Seed: 42, Strategy: "noise", Width: 200, Height: 120})
}

func TestRenderSVG(t *testing.T) {
	s := testSky(t)
	out := string(RenderSVG(s))

	if !strings.HasPrefix(out, "<svg") || !strings.HasSuffix(out, "</svg>\n") {
		t.Fatalf("not an SVG document: %.80s", out)
	}
	if n := strings.Count(out, `class="star `); n != 3 {
		t.Errorf("star groups = %d, want 3", n)
	}
	for i := range 5 {
		if !strings.Contains(out, `id="glow-`+string(rune('0'+i))+`"`) {
			t.Errorf("missing glow gradient %d", i)
		}
	}
	if strings.Contains(out, "<title>") {
		t.Error("titles should only appear with popups")
	}
	if !strings.Contains(out, "star-super") {
		t.Error("special class missing")
	}
}

func TestRenderSVGPopups(t *testing.T) {
	out := string(RenderSVG(testSky(t), WithPopups()))
	if n := strings.Count(out, "<title>"); n != 3 {
		t.Errorf("titles = %d, want 3", n)
	}
	if strings.Contains(out, "<script>alert") {
		t.Error("blog name was not escaped")
	}
	if !strings.Contains(out, `data-url="https://blog.example"`) {
		t.Error("blog URL missing")
	}
}

func TestRenderSVGFilter(t *testing.T) {
	s := testSky(t)
	f := sky.NewFilter(s.TierNames())
	f.Toggle("micro")
	f.Apply()
	out := string(RenderSVG(s, WithSVGFilter(f)))
	if n := strings.Count(out, `class="star `); n != 2 {
		t.Errorf("star groups = %d, want 2", n)
	}
	if strings.Contains(out, "tier-micro") {
		t.Error("filtered tier rendered")
	}
}

func TestSinksReplaceUnsafeColors(t *testing.T) {
	s := testSky(t)
	s.Stars[0].Color = `#ffffff" onload="alert(1)`
	s.Stars[1].Color = `red;background:url(x)`

	svg := string(RenderSVG(s))
	if strings.Contains(svg, "onload") || strings.Contains(svg, "url(x)") {
		t.Error("svg kept an unsafe color")
	}
	if !strings.Contains(svg, `fill="`+fallbackColor+`"`) {
		t.Error("svg should fall back to white")
	}

	page, err := RenderHTML(s)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(page), "url(x)") || strings.Contains(string(page), "onload") {
		t.Error("html kept an unsafe color")
	}
}

func TestRenderHTML(t *testing.T) {
	s := testSky(t)
	out, err := RenderHTML(s, WithTitle("Test Sky"))
	if err != nil {
		t.Fatal(err)
	}
	page := string(out)

	if !strings.Contains(page, "<title>Test Sky</title>") {
		t.Error("title missing")
	}
	if n := strings.Count(page, `data-tier=`); n != 3 {
		t.Errorf("stars = %d, want 3", n)
	}
	if strings.Contains(page, "<script>alert") {
		t.Error("blog name was not escaped")
	}
	if strings.Contains(page, "meteorConfig") {
		t.Error("meteor script rendered without WithMeteors")
	}
	if strings.Contains(page, `http-equiv="refresh"`) {
		t.Error("refresh rendered without WithRefresh")
	}
	if !strings.Contains(page, "left:160.0px;top:100.0px") {
		t.Error("star position missing")
	}
}

func TestRenderHTMLOptions(t *testing.T) {
	out, err := RenderHTML(testSky(t),
		WithMeteors(meteor.DefaultConfig()),
		WithRefresh(30*time.Second),
		WithRegenerateURL("/?strategy=noise"),
	)
	if err != nil {
		t.Fatal(err)
	}
	page := string(out)
	for _, want := range []string{
		"meteorConfig",
		`"spawnRate":0.3`,
		`"name":"golden"`,
		`content="30"`,
		"New sky",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if !strings.Contains(page, "<title>"+DefaultTitle+"</title>") {
		t.Error("default title missing")
	}
}

func TestRenderPNG(t *testing.T) {
	data, err := RenderPNG(testSky(t), WithScale(1))
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("invalid PNG: %v", err)
	}
	if cfg.Width != 200 || cfg.Height != 120 {
		t.Errorf("size = %dx%d, want 200x120", cfg.Width, cfg.Height)
	}

	data, err = RenderPNG(testSky(t))
	if err != nil {
		t.Fatal(err)
	}
	if cfg, _ := png.DecodeConfig(bytes.NewReader(data)); cfg.Width != 400 {
		t.Errorf("default scale width = %d, want 400", cfg.Width)
	}
}

func TestClampScale(t *testing.T) {
	tests := []struct {
		w, h, scale, want float64
	}{
		{1920, 1080, 2, 2},
		{4096, 1000, 4, 4},
		{16384, 100, 2, 1},
		{1000, 8192, 1e12, 2},
	}
	for _, tt := range tests {
		if got := clampScale(tt.w, tt.h, tt.scale); got != tt.want {
			t.Errorf("clampScale(%g, %g, %g) = %g, want %g", tt.w, tt.h, tt.scale, got, tt.want)
		}
	}
}

func TestRenderJSON(t *testing.T) {
	s := testSky(t)
	data, err := RenderJSON(s)
	if err != nil {
		t.Fatal(err)
	}
	back, err := sky.Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if back.RunID != "run-test" || len(back.Stars) != 3 || back.Stars[2].Blog == nil {
		t.Errorf("round trip = %+v", back)
	}
}

func gridSky() *sky.Sky {
	return &sky.Sky{
		Width:  100,
		Height: 50,
		Tiers:  []catalog.Tier{{Name: "micro"}, {Name: "super"}},
		Stars: []sky.Star{
			{ID: 0, X: 55, Y: 25, Tier: "micro", Scale: 0.2, Color: "#ffffff"},
			{ID: 1, X: 57, Y: 28, Tier: "super", Scale: 1, Color: "#ffeeaa"},
			{ID: 2, X: 5, Y: 5, Tier: "micro", Scale: 0.2, Color: "#ffffff"},
		},
	}
}

func lines(s string) [][]rune {
	var out [][]rune
	for _, l := range strings.Split(s, "\n") {
		out = append(out, []rune(l))
	}
	return out
}

func TestRenderTerminal(t *testing.T) {
	out := RenderTerminal(gridSky(), 10, 5, WithPlain())
	grid := lines(out)
	if len(grid) != 5 {
		t.Fatalf("rows = %d, want 5", len(grid))
	}
	for i, row := range grid {
		if len(row) != 10 {
			t.Errorf("row %d has %d cells", i, utf8.RuneCountInString(string(row)))
		}
	}
	if grid[2][5] != '✶' {
		t.Errorf("cell (5,2) = %q, want the larger star", grid[2][5])
	}
	if grid[0][0] != '·' {
		t.Errorf("cell (0,0) = %q, want micro star", grid[0][0])
	}
}

func TestRenderTerminalFocusAndFilter(t *testing.T) {
	s := gridSky()
	grid := lines(RenderTerminal(s, 10, 5, WithPlain(), WithFocus(2)))
	if grid[0][0] != '◆' {
		t.Errorf("focused cell = %q", grid[0][0])
	}

	f := sky.NewFilter(s.TierNames())
	f.Toggle("super")
	f.Apply()
	grid = lines(RenderTerminal(s, 10, 5, WithPlain(), WithFilter(f)))
	if grid[2][5] != '·' {
		t.Errorf("filtered cell = %q, want micro star", grid[2][5])
	}
}

func TestRenderTerminalMeteor(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := meteor.Meteor{EndX: 100, EndY: 100, Duration: 10 * time.Second, TailLength: 60, SpawnedAt: t0}
	s := &sky.Sky{Width: 100, Height: 100}

	grid := lines(RenderTerminal(s, 10, 10, WithPlain(), WithMeteorOverlay([]meteor.Meteor{m}, t0.Add(4*time.Second))))
	if grid[4][4] != '●' {
		t.Errorf("head cell = %q", grid[4][4])
	}
	if grid[3][3] != '╲' {
		t.Errorf("tail cell = %q", grid[3][3])
	}

	grid = lines(RenderTerminal(s, 10, 10, WithPlain(), WithMeteorOverlay([]meteor.Meteor{m}, t0.Add(20*time.Second))))
	for _, row := range grid {
		if strings.TrimSpace(string(row)) != "" {
			t.Fatalf("finished meteor still drawn: %q", string(row))
		}
	}
}

func TestRenderTerminalEmpty(t *testing.T) {
	if out := RenderTerminal(gridSky(), 0, 5); out != "" {
		t.Errorf("zero columns rendered %q", out)
	}
}

func TestStarGlyph(t *testing.T) {
	tests := []struct {
		scale float64
		want  rune
	}{
		{0.2, '·'},
		{0.35, '+'},
		{0.5, '✦'},
		{0.7, '✸'},
		{1.0, '✶'},
	}
	for _, tt := range tests {
		if got := StarGlyph(tt.scale); got != tt.want {
			t.Errorf("StarGlyph(%v) = %q, want %q", tt.scale, got, tt.want)
		}
	}
}

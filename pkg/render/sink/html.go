package sink

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/matzehuels/starsky/pkg/meteor"
	"github.com/matzehuels/starsky/pkg/sky"
)

// DefaultTitle is the page title when none is set.
const DefaultTitle = "Starry Sky"

// HTMLOption configures HTML rendering.
type HTMLOption func(*htmlRenderer)

type htmlRenderer struct {
	title   string
	meteors *meteor.Config
	refresh time.Duration
	reload  string
}

// WithTitle sets the page title.
func WithTitle(t string) HTMLOption { return func(r *htmlRenderer) { r.title = t } }

// WithMeteors enables the meteor shower with cfg.
func WithMeteors(cfg meteor.Config) HTMLOption {
	return func(r *htmlRenderer) {
		cfg.SetDefaults()
		r.meteors = &cfg
	}
}

// WithRefresh reloads the page every d, producing a new sky each time when
// served without a pinned seed.
func WithRefresh(d time.Duration) HTMLOption { return func(r *htmlRenderer) { r.refresh = d } }

// WithRegenerateURL sets the target of the page's "new sky" button.
func WithRegenerateURL(u string) HTMLOption { return func(r *htmlRenderer) { r.reload = u } }

type htmlStar struct {
	sky.Star
	Style   template.CSS
	Classes string
	Tooltip sky.Tooltip
}

type htmlTier struct {
	Name  string
	Level string
	Count int
	Color string
}

type htmlMeteorType struct {
	Name       string  `json:"name"`
	Weight     float64 `json:"weight"`
	Duration   int64   `json:"duration"`
	TailLength float64 `json:"tailLength"`
	Speed      string  `json:"speed"`
}

type htmlMeteorConfig struct {
	SpawnRate  float64          `json:"spawnRate"`
	MinDelay   int64            `json:"minDelay"`
	MaxDelay   int64            `json:"maxDelay"`
	StartDelay int64            `json:"startDelay"`
	Types      []htmlMeteorType `json:"types"`
}

type htmlPage struct {
	Title          string
	Width, Height  float64
	Sky            *sky.Sky
	Stars          []htmlStar
	Tiers          []htmlTier
	Meteors        *htmlMeteorConfig
	RefreshSeconds int
	Regenerate     string
	Margin         float64
	TooltipLimit   int
}

// RenderHTML renders s as a full HTML page.
func RenderHTML(s *sky.Sky, opts ...HTMLOption) ([]byte, error) {
	r := htmlRenderer{title: DefaultTitle}
	for _, opt := range opts {
		opt(&r)
	}

	page := htmlPage{
		Title:          r.title,
		Width:          s.Width,
		Height:         s.Height,
		Sky:            s,
		RefreshSeconds: int(r.refresh.Seconds()),
		Regenerate:     r.reload,
		Margin:         sky.TooltipMargin,
		TooltipLimit:   sky.DescriptionLimit,
	}

	counts := make(map[string]int, len(s.Tiers))
	for _, st := range s.Stars {
		counts[st.Tier]++
		page.Stars = append(page.Stars, newHTMLStar(st))
	}
	for _, t := range s.Tiers {
		level := t.Label
		if level == "" {
			level = t.Name
		}
		page.Tiers = append(page.Tiers, htmlTier{Name: t.Name, Level: level, Count: counts[t.Name], Color: sky.TierColor(t)})
	}
	if r.meteors != nil {
		page.Meteors = newHTMLMeteorConfig(*r.meteors)
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

func newHTMLStar(st sky.Star) htmlStar {
	classes := "star"
	if st.SpecialClass != "" {
		classes += " " + st.SpecialClass
	}
	style := fmt.Sprintf(
		"left:%.1fpx;top:%.1fpx;--size:%dpx;--color:%s;--glow-size:%.1fpx;--glow:%.2f;--hue-rotate:%.0fdeg;--saturate:%.2f;--opacity:%.2f;opacity:%.2f;animation-duration:%.2fs;animation-delay:%.2fs",
		st.X, st.Y, st.Size, starColor(st), st.Glow, st.Scale, st.HueRotate, st.Saturate, st.Opacity, st.Opacity, st.Duration, st.Delay,
	)
	return htmlStar{
		Star:    st,
		Style:   template.CSS(style),
		Classes: classes,
		Tooltip: sky.NewTooltip(st),
	}
}

func newHTMLMeteorConfig(cfg meteor.Config) *htmlMeteorConfig {
	out := &htmlMeteorConfig{
		SpawnRate:  cfg.SpawnRate,
		MinDelay:   cfg.MinDelay.Milliseconds(),
		MaxDelay:   cfg.MaxDelay.Milliseconds(),
		StartDelay: cfg.StartDelay.Milliseconds(),
	}
	for _, t := range cfg.Types {
		out.Types = append(out.Types, htmlMeteorType{
			Name:       t.Name,
			Weight:     t.Weight,
			Duration:   t.Duration.Milliseconds(),
			TailLength: t.TailLength,
			Speed:      t.Speed,
		})
	}
	return out
}

var pageTemplate = template.Must(template.New("page").Parse(pageHTML))

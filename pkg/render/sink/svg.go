package sink

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/starsky/pkg/sky"
)

const svgTwinkleCSS = `
    .star { animation-name: twinkle; animation-iteration-count: infinite; animation-timing-function: ease-in-out; transform-box: fill-box; transform-origin: center; }
    .star-bright .core { filter: brightness(1.2); }
    .star-super .core { filter: brightness(1.4); }
    .avatar { font-family: sans-serif; fill: #1b1f3a; pointer-events: none; }
    @keyframes twinkle { 0%, 100% { opacity: var(--o); } 50% { opacity: calc(var(--o) * 0.45); } }`

// Night sky gradient stops, top to bottom.
var nightStops = []struct {
	offset float64
	color  string
}{
	{0, "#0b1026"},
	{0.55, "#1c2260"},
	{1, "#2b2f77"},
}

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	popups bool
	filter *sky.Filter
}

// WithPopups adds a native tooltip and data attributes to every star.
func WithPopups() SVGOption { return func(r *svgRenderer) { r.popups = true } }

// WithSVGFilter renders only the tiers f selects.
func WithSVGFilter(f *sky.Filter) SVGOption { return func(r *svgRenderer) { r.filter = f } }

// RenderSVG renders s as a standalone SVG document.
func RenderSVG(s *sky.Sky, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.0f %.0f" width="%.0f" height="%.0f">`+"\n",
		s.Width, s.Height, s.Width, s.Height)

	renderSVGDefs(&buf, s)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", svgTwinkleCSS)
	buf.WriteString(`  <rect width="100%" height="100%" fill="url(#night)"/>` + "\n")

	buf.WriteString(`  <g class="stars">` + "\n")
	for _, st := range s.Visible(r.filter) {
		renderSVGStar(&buf, st, r.popups)
	}
	buf.WriteString("  </g>\n")
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderSVGDefs(buf *bytes.Buffer, s *sky.Sky) {
	buf.WriteString("  <defs>\n")
	buf.WriteString(`    <linearGradient id="night" x1="0" y1="0" x2="0" y2="1">` + "\n")
	for _, st := range nightStops {
		fmt.Fprintf(buf, `      <stop offset="%.2f" stop-color="%s"/>`+"\n", st.offset, st.color)
	}
	buf.WriteString("    </linearGradient>\n")

	for i, t := range s.Tiers {
		c := sky.TierColor(t)
		fmt.Fprintf(buf, `    <radialGradient id="glow-%d">`+"\n", i)
		fmt.Fprintf(buf, `      <stop offset="0" stop-color="%s" stop-opacity="%.2f"/>`+"\n", c, min(1, 0.6+0.4*t.Scale))
		fmt.Fprintf(buf, `      <stop offset="0.35" stop-color="%s" stop-opacity="%.2f"/>`+"\n", c, 0.35*t.Scale+0.1)
		fmt.Fprintf(buf, `      <stop offset="1" stop-color="%s" stop-opacity="0"/>`+"\n", c)
		buf.WriteString("    </radialGradient>\n")
	}
	buf.WriteString("  </defs>\n")
}

// fallbackColor replaces star colours that are not plain hex.
const fallbackColor = "#ffffff"

func starColor(st sky.Star) string {
	if sky.ValidColor(st.Color) {
		return st.Color
	}
	return fallbackColor
}

func renderSVGStar(buf *bytes.Buffer, st sky.Star, popups bool) {
	class := "star tier-" + html.EscapeString(st.Tier)
	if st.SpecialClass != "" {
		class += " " + html.EscapeString(st.SpecialClass)
	}
	fmt.Fprintf(buf, `    <g id="star-%d" class="%s" transform="translate(%.1f %.1f)" style="--o:%.2f;opacity:%.2f;animation-duration:%.2fs;animation-delay:%.2fs"`,
		st.ID, class, st.X, st.Y, st.Opacity, st.Opacity, st.Duration, st.Delay)
	if popups {
		tt := sky.NewTooltip(st)
		fmt.Fprintf(buf, ` data-level="%s" data-size="%d"`, html.EscapeString(tt.Level), tt.Size)
		if tt.URL != "" {
			fmt.Fprintf(buf, ` data-url="%s"`, html.EscapeString(tt.URL))
		}
	}
	buf.WriteString(">\n")

	if popups {
		fmt.Fprintf(buf, "      <title>%s</title>\n", html.EscapeString(svgTitle(sky.NewTooltip(st))))
	}

	fmt.Fprintf(buf, `      <circle class="glow" r="%.1f" fill="url(#glow-%d)"/>`+"\n", st.Glow, st.TierIndex)
	radius := float64(st.Size) / 2
	fmt.Fprintf(buf, `      <circle class="core" r="%.1f" fill="%s"/>`+"\n", radius, starColor(st))

	switch {
	case st.Avatar.URL != "":
		fmt.Fprintf(buf, `      <image href="%s" x="%.1f" y="%.1f" width="%d" height="%d" preserveAspectRatio="xMidYMid slice"/>`+"\n",
			html.EscapeString(st.Avatar.URL), -radius, -radius, st.Size, st.Size)
	case st.Avatar.Text != "":
		fmt.Fprintf(buf, `      <text class="avatar" text-anchor="middle" dominant-baseline="central" font-size="%.1f">%s</text>`+"\n",
			max(radius, 4), html.EscapeString(st.Avatar.Text))
	}
	buf.WriteString("    </g>\n")
}

func svgTitle(tt sky.Tooltip) string {
	title := fmt.Sprintf("%s · %s · %dpx", tt.Title, tt.Level, tt.Size)
	if tt.Description != "" {
		title += "\n" + tt.Description
	}
	return title
}

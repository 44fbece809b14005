package sky

import (
	"fmt"
	"unicode/utf8"
)

const (
	// DescriptionLimit is the number of runes of a blog description shown
	// in a tooltip.
	DescriptionLimit = 50

	// TooltipMargin keeps tooltips this far from the screen edge and from
	// their anchor.
	TooltipMargin = 10.0
)

// Tooltip is the content shown when a star is clicked.
type Tooltip struct {
	Title       string `json:"title"`
	Level       string `json:"level"`
	Description string `json:"description,omitempty"`
	Size        int    `json:"size"`
	URL         string `json:"url,omitempty"`
	RSS         bool   `json:"rss"`
}

// NewTooltip builds the tooltip for st. Blog stars show the blog name and a
// shortened description; other stars show their placeholder user name.
func NewTooltip(st Star) Tooltip {
	tt := Tooltip{Level: st.Level, Size: st.Size}
	switch {
	case st.Blog != nil:
		tt.Title = st.Blog.Name
		tt.Description = Truncate(st.Blog.Description, DescriptionLimit)
		tt.URL = st.Blog.URL
		tt.RSS = true
	case st.Avatar.UserName != "":
		tt.Title = st.Avatar.UserName
	default:
		tt.Title = fmt.Sprintf("#%d", st.ID)
	}
	return tt
}

// Truncate shortens s to n runes followed by "..." when it is longer.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}

// Rect is an axis-aligned screen rectangle.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) right() float64  { return r.X + r.W }
func (r Rect) bottom() float64 { return r.Y + r.H }

// Size is a width/height pair.
type Size struct {
	W, H float64
}

// PositionTooltip returns the top-left corner for a tooltip of size tip
// anchored at anchor on a screen of size screen.
//
// The tooltip goes above the anchor, shifted left to stay on screen. When
// there is no room above it goes below; when it would then run off the
// bottom it moves beside the anchor (right, else left) and is clamped
// vertically.
func PositionTooltip(anchor Rect, tip, screen Size) (x, y float64) {
	const m = TooltipMargin

	x = anchor.X
	y = anchor.Y - tip.H - m
	if x+tip.W > screen.W-m {
		x = screen.W - tip.W - m
	}
	if x < m {
		x = m
	}

	if y < m {
		y = anchor.bottom() + m
	}
	if y+tip.H > screen.H-m {
		x = anchor.right() + m
		if x+tip.W > screen.W-m {
			x = anchor.X - tip.W - m
		}
		if x < m {
			x = m
		}
		y = max(m, min(anchor.Y, screen.H-tip.H-m))
	}
	return x, y
}

package sink

import (
	"bytes"
	"math"

	"github.com/gogpu/gg"

	"github.com/matzehuels/starsky/pkg/errors"
	"github.com/matzehuels/starsky/pkg/sky"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale  float64
	filter *sky.Filter
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// WithPNGFilter renders only the tiers f selects.
func WithPNGFilter(f *sky.Filter) PNGOption { return func(r *pngRenderer) { r.filter = f } }

// RenderPNG rasterises s. Avatars are not drawn; each star is a glow and a
// solid core.
func RenderPNG(s *sky.Sky, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0}
	for _, opt := range opts {
		opt(&r)
	}

	scale := clampScale(s.Width, s.Height, r.scale)
	w := max(1, int(math.Round(s.Width*scale)))
	h := max(1, int(math.Round(s.Height*scale)))
	dc := gg.NewContext(w, h)
	defer dc.Close()

	bg := gg.NewLinearGradientBrush(0, 0, 0, float64(h))
	for _, st := range nightStops {
		bg.AddColorStop(st.offset, gg.Hex(st.color))
	}
	dc.SetFillBrush(bg)
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	if err := dc.Fill(); err != nil {
		return nil, err
	}

	for _, st := range s.Visible(r.filter) {
		if err := drawPNGStar(dc, st, scale); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// clampScale shrinks scale so neither canvas side exceeds errors.MaxViewport.
func clampScale(width, height, scale float64) float64 {
	if side := max(width, height); side*scale > errors.MaxViewport {
		return errors.MaxViewport / side
	}
	return scale
}

func drawPNGStar(dc *gg.Context, st sky.Star, scale float64) error {
	x, y := st.X*scale, st.Y*scale
	c := gg.Hex(starColor(st))

	inner, mid, outer := c, c, c
	inner.A = st.Opacity
	mid.A = 0.35 * st.Opacity
	outer.A = 0

	glow := gg.NewRadialGradientBrush(x, y, 0, st.Glow*scale).
		AddColorStop(0, inner).
		AddColorStop(0.35, mid).
		AddColorStop(1, outer)
	dc.SetFillBrush(glow)
	dc.DrawCircle(x, y, st.Glow*scale)
	if err := dc.Fill(); err != nil {
		return err
	}

	core := c
	core.A = st.Opacity
	dc.SetFillBrush(gg.Solid(core))
	dc.DrawCircle(x, y, max(0.5, float64(st.Size)/2*scale))
	return dc.Fill()
}

// Package sky turns a placement result into the document every renderer
// consumes.
//
// [Build] decorates each accepted point with its glyph size, opacity, glow,
// twinkle timing, colour and avatar. The resulting [Sky] is plain data and
// serialises to JSON, so a sky can be generated once and rendered many
// times.
package sky

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/starsky/pkg/catalog"
	"github.com/matzehuels/starsky/pkg/placement"
	"github.com/matzehuels/starsky/pkg/rng"
)

// Avatar kinds.
const (
	AvatarText  = "text"
	AvatarImage = "image"
	AvatarBlog  = "blog"
)

// PlaceholderAvatarURL is the image avatar service used for stars without a
// subscription.
const PlaceholderAvatarURL = "https://api.dicebear.com/7.x/avataaars/svg?seed=%d"

// placeholderNames are sample user names for stars without a subscription.
var placeholderNames = []string{
	"张三", "李四", "王五", "赵六", "孙七", "周八", "吴九", "郑十",
	"小明", "小红", "小刚", "小丽", "小华", "小强", "小美", "小芳",
	"Alex", "Bob", "Charlie", "Diana", "Eva", "Frank", "Grace", "Henry",
}

// Avatar is the content drawn inside a star glyph.
type Avatar struct {
	Kind string `json:"kind"`
	// Text is the single glyph of a text avatar, or the fallback glyph of an
	// image or blog avatar whose image fails to load.
	Text     string `json:"text"`
	URL      string `json:"url,omitempty"`
	UserName string `json:"user_name,omitempty"`
}

// Blog is the subscription a star represents.
type Blog struct {
	Name        string   `json:"name"`
	URL         string   `json:"url,omitempty"`
	RSSURL      string   `json:"rss_url,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Star is a decorated point.
type Star struct {
	ID           int     `json:"id"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Tier         string  `json:"tier"`
	Level        string  `json:"level"`
	TierIndex    int     `json:"tier_index"`
	Scale        float64 `json:"scale"`
	Size         int     `json:"size"`
	Opacity      float64 `json:"opacity"`
	Glow         float64 `json:"glow"`
	Duration     float64 `json:"duration"`
	Delay        float64 `json:"delay"`
	HueRotate    float64 `json:"hue_rotate"`
	Saturate     float64 `json:"saturate"`
	Color        string  `json:"color"`
	SpecialClass string  `json:"special_class,omitempty"`
	Forced       bool    `json:"forced,omitempty"`
	Noise        float64 `json:"noise"`
	Probability  float64 `json:"probability"`
	Avatar       Avatar  `json:"avatar"`
	Blog         *Blog   `json:"blog,omitempty"`
}

// Sky is a generated, decorated star field.
type Sky struct {
	RunID    string                 `json:"run_id"`
	Seed     uint64                 `json:"seed"`
	Strategy string                 `json:"strategy"`
	Width    float64                `json:"width"`
	Height   float64                `json:"height"`
	Margin   float64                `json:"margin"`
	BaseSize float64                `json:"base_size"`
	Tiers    []catalog.Tier         `json:"tiers"`
	Stars    []Star                 `json:"stars"`
	Reports  []placement.TierReport `json:"reports"`
	Stats    placement.Stats        `json:"stats"`
}

// Options describes the run a sky came from.
type Options struct {
	Seed     uint64
	Strategy string
	Width    float64
	Height   float64
}

// Build decorates res. Random decoration (twinkle timing and placeholder
// avatars) is drawn from src in star order, so the same source yields the
// same sky.
func Build(res *placement.Result, cat *catalog.Catalog, src rng.Source, opts Options) *Sky {
	s := &Sky{
		RunID:    res.RunID,
		Seed:     opts.Seed,
		Strategy: opts.Strategy,
		Width:    opts.Width,
		Height:   opts.Height,
		Margin:   cat.Margin,
		BaseSize: cat.BaseSize,
		Tiers:    append([]catalog.Tier(nil), cat.Tiers...),
		Reports:  res.Reports,
		Stats:    res.Stats,
		Stars:    make([]Star, 0, len(res.Points)),
	}
	subs := newRoundRobin(cat)

	for i, p := range res.Points {
		t := cat.Tiers[p.TierIndex]
		star := Star{
			ID:           i,
			X:            p.X,
			Y:            p.Y,
			Tier:         t.Name,
			Level:        levelName(t),
			TierIndex:    p.TierIndex,
			Scale:        t.Scale,
			Size:         int(math.Round(cat.BaseSize * t.Scale)),
			Opacity:      0.3 + 0.7*t.Scale,
			Glow:         max(16, 20*t.Scale),
			Duration:     rng.Range(src, 3, 7),
			Delay:        rng.Range(src, 0, 10),
			HueRotate:    t.HueRotate,
			Saturate:     t.Saturate,
			Color:        TierColor(t),
			SpecialClass: t.SpecialClass,
			Forced:       p.Forced,
			Noise:        p.Noise,
			Probability:  p.Probability,
		}
		if sub, ok := subs.next(p.TierIndex); ok {
			star.Avatar, star.Blog = blogAvatar(sub)
		} else {
			star.Avatar = placeholderAvatar(src)
		}
		s.Stars = append(s.Stars, star)
	}
	return s
}

// TierColor maps a tier's hue rotation and saturation to a hex colour.
func TierColor(t catalog.Tier) string {
	sat := math.Min(1, math.Max(0, 0.4*t.Saturate))
	hue := math.Mod(45+t.HueRotate, 360)
	return colorful.Hsl(hue, sat, 0.8).Hex()
}

// Visible returns the stars whose tier f selects.
func (s *Sky) Visible(f *Filter) []Star {
	if f == nil {
		return s.Stars
	}
	out := make([]Star, 0, len(s.Stars))
	for _, st := range s.Stars {
		if f.Selected(st.Tier) {
			out = append(out, st)
		}
	}
	return out
}

// Star returns the star with the given ID.
func (s *Sky) Star(id int) (Star, bool) {
	if id < 0 || id >= len(s.Stars) {
		return Star{}, false
	}
	return s.Stars[id], true
}

// TierNames returns the tier names in catalog order.
func (s *Sky) TierNames() []string {
	names := make([]string, len(s.Tiers))
	for i, t := range s.Tiers {
		names[i] = t.Name
	}
	return names
}

func levelName(t catalog.Tier) string {
	if t.Label != "" {
		return t.Label
	}
	return t.Name
}

func blogAvatar(sub catalog.Subscription) (Avatar, *Blog) {
	a := Avatar{Kind: AvatarBlog, Text: firstRune(sub.BlogName), URL: sub.FavoriteIcon}
	return a, &Blog{
		Name:        sub.BlogName,
		URL:         sub.BlogURL,
		RSSURL:      sub.RSSURL,
		Description: sub.Description,
		Tags:        sub.Tags,
	}
}

func placeholderAvatar(src rng.Source) Avatar {
	name := placeholderNames[rng.Intn(src, len(placeholderNames))]
	if src.Float64() > 0.3 {
		return Avatar{Kind: AvatarText, Text: firstRune(name), UserName: name}
	}
	return Avatar{
		Kind:     AvatarImage,
		Text:     firstRune(name),
		URL:      fmt.Sprintf(PlaceholderAvatarURL, rng.Intn(src, 100)),
		UserName: name,
	}
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}

// roundRobin hands out each tier's subscriptions in order, wrapping around.
type roundRobin struct {
	byTier [][]catalog.Subscription
	cursor []int
}

func newRoundRobin(cat *catalog.Catalog) *roundRobin {
	rr := &roundRobin{
		byTier: make([][]catalog.Subscription, len(cat.Tiers)),
		cursor: make([]int, len(cat.Tiers)),
	}
	for _, sub := range cat.Subscriptions {
		for i, t := range cat.Tiers {
			if t.Matches(sub.Level) {
				rr.byTier[i] = append(rr.byTier[i], sub)
				break
			}
		}
	}
	return rr
}

func (rr *roundRobin) next(tier int) (catalog.Subscription, bool) {
	if tier < 0 || tier >= len(rr.byTier) || len(rr.byTier[tier]) == 0 {
		return catalog.Subscription{}, false
	}
	subs := rr.byTier[tier]
	sub := subs[rr.cursor[tier]]
	rr.cursor[tier] = (rr.cursor[tier] + 1) % len(subs)
	return sub, true
}

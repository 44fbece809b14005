// Package catalog defines the star size tiers and where they come from.
//
// A [Catalog] is an ordered list of [Tier] values plus the base glyph size
// and viewport margin. Tiers are placed in catalog order, which is normally
// smallest to largest. The catalog can be loaded from a subscription
// document (file or HTTP) or a MongoDB collection; when loading fails,
// [LoadOrDefault] substitutes [Default].
package catalog

import (
	"cmp"
	"slices"

	"github.com/matzehuels/starsky/pkg/errors"
)

// =============================================================================
// Defaults
// =============================================================================

const (
	DefaultBaseSize = 18.0
	DefaultMargin   = 40.0
)

// Tier names of the default catalog.
const (
	TierMicro  = "micro"
	TierSmall  = "small"
	TierMedium = "medium"
	TierBright = "bright"
	TierSuper  = "super"
)

// =============================================================================
// Types
// =============================================================================

// Tier is one class of star size. Visual fields (HueRotate, Saturate,
// SpecialClass) are opaque to placement.
type Tier struct {
	Name         string  `json:"name" toml:"name" bson:"name"`
	Label        string  `json:"label,omitempty" toml:"label" bson:"label,omitempty"`
	Scale        float64 `json:"scale" toml:"scale" bson:"scale"`
	Count        int     `json:"count" toml:"count" bson:"count"`
	MinSpacing   float64 `json:"min_distance" toml:"min_distance" bson:"min_distance"`
	HueRotate    float64 `json:"hue_rotate" toml:"hue_rotate" bson:"hue_rotate"`
	Saturate     float64 `json:"saturate" toml:"saturate" bson:"saturate"`
	SpecialClass string  `json:"special_class,omitempty" toml:"special_class" bson:"special_class,omitempty"`
	Important    bool    `json:"important,omitempty" toml:"important" bson:"important,omitempty"`
}

// Matches reports whether level names this tier by name or label.
func (t Tier) Matches(level string) bool {
	return level != "" && (t.Name == level || t.Label == level)
}

// Catalog is the ordered tier list with shared geometry.
type Catalog struct {
	Tiers         []Tier         `json:"tiers"`
	BaseSize      float64        `json:"base_size"`
	Margin        float64        `json:"margin"`
	Subscriptions []Subscription `json:"subscriptions,omitempty"`
}

// Default returns the built-in fallback catalog of 33 stars.
func Default() *Catalog {
	return &Catalog{
		BaseSize: DefaultBaseSize,
		Margin:   DefaultMargin,
		Tiers: []Tier{
			{Name: TierMicro, Label: "微星", Scale: 0.2, Count: 10, MinSpacing: 20, HueRotate: 0, Saturate: 0.5},
			{Name: TierSmall, Label: "小星", Scale: 0.35, Count: 7, MinSpacing: 25, HueRotate: 200, Saturate: 1.2},
			{Name: TierMedium, Label: "中星", Scale: 0.5, Count: 6, MinSpacing: 35, HueRotate: 30, Saturate: 1.3},
			{Name: TierBright, Label: "亮星", Scale: 0.7, Count: 6, MinSpacing: 40, HueRotate: 50, Saturate: 1.5, SpecialClass: "star-bright", Important: true},
			{Name: TierSuper, Label: "超星", Scale: 1.0, Count: 4, MinSpacing: 45, HueRotate: 45, Saturate: 2, SpecialClass: "star-super", Important: true},
		},
	}
}

// Tier returns the tier whose name or label is level.
func (c *Catalog) Tier(level string) (Tier, bool) {
	for _, t := range c.Tiers {
		if t.Matches(level) {
			return t, true
		}
	}
	return Tier{}, false
}

// Total returns the sum of tier counts.
func (c *Catalog) Total() int {
	n := 0
	for _, t := range c.Tiers {
		n += t.Count
	}
	return n
}

// SetDefaults fills zero geometry with defaults.
func (c *Catalog) SetDefaults() {
	if c.BaseSize == 0 {
		c.BaseSize = DefaultBaseSize
	}
	if c.Margin == 0 {
		c.Margin = DefaultMargin
	}
}

// MarkImportant flags the two largest-scale tiers as important when no
// tier carries the flag yet. Catalogs with fewer than two tiers mark what
// they have.
func (c *Catalog) MarkImportant() {
	for _, t := range c.Tiers {
		if t.Important {
			return
		}
	}

	idx := make([]int, len(c.Tiers))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(c.Tiers[b].Scale, c.Tiers[a].Scale)
	})
	for _, i := range idx[:min(2, len(idx))] {
		c.Tiers[i].Important = true
	}
}

// Validate checks every tier and the shared geometry.
func (c *Catalog) Validate() error {
	if len(c.Tiers) == 0 {
		return errors.New(errors.ErrCodeInvalidCatalog, "catalog has no tiers")
	}
	if err := errors.ValidatePositive(errors.ErrCodeInvalidCatalog, "base_size", c.BaseSize); err != nil {
		return err
	}
	if c.Margin < 0 {
		return errors.New(errors.ErrCodeInvalidCatalog, "margin must be non-negative, got %v", c.Margin)
	}

	seen := make(map[string]bool, len(c.Tiers))
	for _, t := range c.Tiers {
		if err := t.Validate(); err != nil {
			return err
		}
		if seen[t.Name] {
			return errors.New(errors.ErrCodeInvalidTier, "duplicate tier name %q", t.Name)
		}
		seen[t.Name] = true
	}
	return nil
}

// Validate checks a single tier.
func (t Tier) Validate() error {
	if err := errors.ValidateTierName(t.Name); err != nil {
		return err
	}
	if t.Count < 0 {
		return errors.New(errors.ErrCodeInvalidTier, "tier %q: count must be non-negative, got %d", t.Name, t.Count)
	}
	if err := errors.ValidatePositive(errors.ErrCodeInvalidTier, "tier "+t.Name+" scale", t.Scale); err != nil {
		return err
	}
	return errors.ValidatePositive(errors.ErrCodeInvalidTier, "tier "+t.Name+" min_distance", t.MinSpacing)
}

// Clone returns a deep copy.
func (c *Catalog) Clone() *Catalog {
	out := *c
	out.Tiers = slices.Clone(c.Tiers)
	out.Subscriptions = slices.Clone(c.Subscriptions)
	return &out
}

package catalog

import (
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/starsky/pkg/errors"
)

// Subscription is a blog feed whose avatar can decorate a star.
type Subscription struct {
	Level        string   `json:"level" bson:"level"`
	BlogName     string   `json:"blog_name" bson:"blog_name"`
	BlogURL      string   `json:"blog_url,omitempty" bson:"blog_url,omitempty"`
	RSSURL       string   `json:"rss_url,omitempty" bson:"rss_url,omitempty"`
	FavoriteIcon string   `json:"favorite_icon,omitempty" bson:"favorite_icon,omitempty"`
	Description  string   `json:"description,omitempty" bson:"description,omitempty"`
	Tags         []string `json:"tags,omitempty" bson:"tags,omitempty"`
}

// Metadata carries per-level star counts.
type Metadata struct {
	LevelDistribution map[string]int `json:"level_distribution,omitempty"`
}

// Document is the on-disk/over-the-wire catalog format. A document either
// lists tiers explicitly or only overrides counts of the default tiers via
// metadata.level_distribution (keyed by tier name or label).
type Document struct {
	Tiers         []Tier         `json:"tiers,omitempty"`
	BaseSize      float64        `json:"base_size,omitempty"`
	Margin        float64        `json:"margin,omitempty"`
	Subscriptions []Subscription `json:"subscriptions,omitempty"`
	Metadata      Metadata       `json:"metadata"`
}

// ReadDocument decodes a document from r.
func ReadDocument(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "decode catalog document")
	}
	return &doc, nil
}

// ReadDocumentFile decodes the document stored at path.
func ReadDocumentFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeCatalogNotFound, err, "catalog %s", path)
		}
		return nil, err
	}
	defer f.Close()
	return ReadDocument(f)
}

// Build turns a document into a validated catalog.
func (d *Document) Build() (*Catalog, error) {
	var c *Catalog
	if len(d.Tiers) > 0 {
		c = &Catalog{Tiers: append([]Tier(nil), d.Tiers...)}
		c.MarkImportant()
	} else {
		c = Default()
	}
	if d.BaseSize != 0 {
		c.BaseSize = d.BaseSize
	}
	if d.Margin != 0 {
		c.Margin = d.Margin
	}
	c.SetDefaults()

	// A distribution supplies every count: levels it omits place nothing.
	if len(d.Metadata.LevelDistribution) > 0 {
		for i := range c.Tiers {
			c.Tiers[i].Count = 0
		}
	}
	for level, count := range d.Metadata.LevelDistribution {
		for i := range c.Tiers {
			if c.Tiers[i].Matches(level) {
				c.Tiers[i].Count = count
			}
		}
	}
	c.Subscriptions = append([]Subscription(nil), d.Subscriptions...)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Document converts the catalog back to its document form.
func (c *Catalog) Document() *Document {
	dist := make(map[string]int, len(c.Tiers))
	for _, t := range c.Tiers {
		dist[t.Name] = t.Count
	}
	return &Document{
		Tiers:         append([]Tier(nil), c.Tiers...),
		BaseSize:      c.BaseSize,
		Margin:        c.Margin,
		Subscriptions: append([]Subscription(nil), c.Subscriptions...),
		Metadata:      Metadata{LevelDistribution: dist},
	}
}

// Distribution counts subscriptions per level.
func Distribution(subs []Subscription) map[string]int {
	dist := make(map[string]int)
	for _, s := range subs {
		if s.Level != "" {
			dist[s.Level]++
		}
	}
	return dist
}

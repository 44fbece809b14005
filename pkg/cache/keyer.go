package cache

// Keyer builds cache keys. Every option that changes the cached value is
// part of the key.
type Keyer interface {
	// SkyKey identifies a generated sky for a catalog and run options.
	SkyKey(catalogHash string, opts SkyKeyOpts) string

	// ArtifactKey identifies one rendered output of a sky.
	ArtifactKey(skyHash string, opts ArtifactKeyOpts) string

	// CatalogKey identifies a catalog fetched from a remote source.
	CatalogKey(source string) string
}

// SkyKeyOpts are the generation inputs besides the catalog.
type SkyKeyOpts struct {
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Margin   float64 `json:"margin"`
	Seed     uint64  `json:"seed"`
	Strategy string  `json:"strategy"`
	Relaxed  bool    `json:"relaxed"`
	// Engine is a hash of the engine and sampler configuration.
	Engine string `json:"engine,omitempty"`
}

// ArtifactKeyOpts are the render inputs besides the sky.
type ArtifactKeyOpts struct {
	Format  string  `json:"format"`
	Scale   float64 `json:"scale,omitempty"`
	Popups  bool    `json:"popups,omitempty"`
	Meteors bool    `json:"meteors,omitempty"`
	// Page is a hash of page-level settings such as the HTML title.
	Page string `json:"page,omitempty"`
}

// DefaultKeyer hashes key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SkyKey returns "sky:<hash>".
func (DefaultKeyer) SkyKey(catalogHash string, opts SkyKeyOpts) string {
	return hashKey("sky", catalogHash, opts)
}

// ArtifactKey returns "artifact:<format>:<hash>".
func (DefaultKeyer) ArtifactKey(skyHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact:"+opts.Format, skyHash, opts)
}

// CatalogKey returns "catalog:<hash>".
func (DefaultKeyer) CatalogKey(source string) string {
	return hashKey("catalog", source)
}

var _ Keyer = DefaultKeyer{}

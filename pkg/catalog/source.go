package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/starsky/pkg/errors"
	"github.com/matzehuels/starsky/pkg/httputil"
)

// Source yields a catalog document.
type Source interface {
	Load(ctx context.Context) (*Document, error)
	String() string
}

// =============================================================================
// File
// =============================================================================

// FileSource reads a JSON document from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Load(ctx context.Context) (*Document, error) {
	if err := errors.ValidatePath(s.Path); err != nil {
		return nil, err
	}
	return ReadDocumentFile(s.Path)
}

func (s FileSource) String() string { return "file:" + s.Path }

// =============================================================================
// HTTP
// =============================================================================

// HTTPSource fetches a JSON document over HTTP with retry.
type HTTPSource struct {
	URL    string
	Client *httputil.Client
}

func (s HTTPSource) Load(ctx context.Context) (*Document, error) {
	if err := errors.ValidateURL(s.URL); err != nil {
		return nil, err
	}
	client := s.Client
	if client == nil {
		client = httputil.NewClient()
	}

	var doc Document
	if err := client.GetJSON(ctx, s.URL, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetch catalog %s", s.URL)
	}
	return &doc, nil
}

func (s HTTPSource) String() string { return s.URL }

// =============================================================================
// MongoDB
// =============================================================================

const (
	DefaultMongoDatabase   = "starsky"
	DefaultMongoCollection = "subscriptions"
	mongoTimeout           = 10 * time.Second
)

// MongoSource reads subscriptions from a MongoDB collection. Tier counts
// are the number of subscriptions per level, so a level with no
// subscriptions places no stars.
type MongoSource struct {
	URI        string
	Database   string
	Collection string
}

func (s MongoSource) Load(ctx context.Context) (*Document, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongodb")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	coll := client.Database(s.database()).Collection(s.collection())
	cur, err := coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "level", Value: 1}, {Key: "blog_name", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "query %s", s)
	}

	var subs []Subscription
	if err := cur.All(ctx, &subs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "decode %s", s)
	}
	return &Document{
		Subscriptions: subs,
		Metadata:      Metadata{LevelDistribution: Distribution(subs)},
	}, nil
}

func (s MongoSource) database() string {
	if s.Database == "" {
		return DefaultMongoDatabase
	}
	return s.Database
}

func (s MongoSource) collection() string {
	if s.Collection == "" {
		return DefaultMongoCollection
	}
	return s.Collection
}

func (s MongoSource) String() string {
	return fmt.Sprintf("mongodb:%s.%s", s.database(), s.collection())
}

// =============================================================================
// Static
// =============================================================================

// StaticSource returns a fixed document.
type StaticSource struct {
	Doc *Document
}

func (s StaticSource) Load(ctx context.Context) (*Document, error) {
	if s.Doc == nil {
		return &Document{}, nil
	}
	return s.Doc, nil
}

func (s StaticSource) String() string { return "static" }

// =============================================================================
// Loading
// =============================================================================

// Load reads and builds a catalog from src.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	doc, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Build()
}

// LoadOrDefault loads from src and falls back to [Default] on any failure.
// The returned bool reports whether the fallback was used. A nil src
// yields the default catalog without logging.
func LoadOrDefault(ctx context.Context, src Source, logger *log.Logger) (*Catalog, bool) {
	if src == nil {
		return Default(), true
	}
	c, err := Load(ctx, src)
	if err != nil {
		if logger != nil {
			logger.Error("catalog load failed, using default catalog", "source", src.String(), "err", err)
		}
		return Default(), true
	}
	if logger != nil {
		logger.Debug("loaded catalog", "source", src.String(), "tiers", len(c.Tiers), "stars", c.Total(), "subscriptions", len(c.Subscriptions))
	}
	return c, false
}

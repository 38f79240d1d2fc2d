package gallery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/moldraw/moldraw/pkg/observability"
)

// DefaultDatabase is the database used when the caller has no opinion.
const DefaultDatabase = "moldraw"

// collectionName holds all drawings. One collection keeps index management
// trivial; sharding concerns belong to the deployment, not this package.
const collectionName = "drawings"

// connectTimeout bounds the initial connect and ping.
const connectTimeout = 10 * time.Second

// Mongo is a gallery store backed by MongoDB.
type Mongo struct {
	client *mongo.Client
	col    *mongo.Collection
}

// Connect dials MongoDB and verifies the connection with a ping. An empty
// database name selects [DefaultDatabase].
func Connect(ctx context.Context, uri, database string) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect gallery: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("ping gallery: %w", err)
	}

	if database == "" {
		database = DefaultDatabase
	}
	return &Mongo{
		client: client,
		col:    client.Database(database).Collection(collectionName),
	}, nil
}

// EnsureIndexes creates the indexes listing and lookups rely on. Safe to
// call on every startup; existing indexes are left alone.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "source", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("ensure gallery indexes: %w", err)
	}
	return nil
}

// Save stores a new drawing.
func (m *Mongo) Save(ctx context.Context, d *Drawing) error {
	if err := normalize(d); err != nil {
		return err
	}

	start := time.Now()
	_, err := m.col.InsertOne(ctx, d)
	if mongo.IsDuplicateKeyError(err) {
		err = ErrExists
	}
	observability.Store().OnSave(ctx, d.ID, time.Since(start), err)

	if err != nil {
		return fmt.Errorf("save %s: %w", d.ID, err)
	}
	return nil
}

// Get returns the drawing with the given ID.
func (m *Mongo) Get(ctx context.Context, id string) (*Drawing, error) {
	start := time.Now()

	var d Drawing
	err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		err = ErrNotFound
	}
	observability.Store().OnGet(ctx, id, err == nil, time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("get %s: %w", id, err)
	}
	return &d, nil
}

// List returns the newest drawings, most recent first. The snapshot payload
// stays on the server.
func (m *Mongo) List(ctx context.Context, limit int) ([]Summary, error) {
	start := time.Now()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(clampLimit(limit))).
		SetProjection(bson.M{"snapshot": 0})

	cursor, err := m.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		observability.Store().OnList(ctx, 0, time.Since(start), err)
		return nil, fmt.Errorf("list drawings: %w", err)
	}

	var entries []Summary
	err = cursor.All(ctx, &entries)
	observability.Store().OnList(ctx, len(entries), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("decode drawings: %w", err)
	}
	return entries, nil
}

// Close disconnects from MongoDB.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

var _ Store = (*Mongo)(nil)

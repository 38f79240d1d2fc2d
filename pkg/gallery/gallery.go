// Package gallery persists finished drawings.
//
// A gallery entry is a [Drawing]: the layout snapshot together with the
// source notation and a creation timestamp. Entries are immutable once
// saved; re-rendering a stored drawing goes through the snapshot, never
// back through the parser.
//
// [Mongo] backs the server deployment and [Memory] serves tests and
// cache-free CLI runs. Both implement [Store].
package gallery

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/moldraw/moldraw/pkg/layout"
)

var (
	// ErrNotFound is returned when no drawing has the requested ID.
	ErrNotFound = errors.New("drawing not found")

	// ErrExists is returned when saving under an ID that is already taken.
	ErrExists = errors.New("drawing already exists")

	// ErrNoSnapshot is returned when saving a drawing without a snapshot.
	ErrNoSnapshot = errors.New("drawing has no snapshot")
)

// List limits. Listing without a limit returns DefaultListLimit entries;
// requests above MaxListLimit are clamped.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Drawing is one stored gallery entry.
type Drawing struct {
	ID        string           `json:"id" bson:"_id"`
	Source    string           `json:"source" bson:"source"`
	Formula   string           `json:"formula" bson:"formula"`
	Snapshot  *layout.Snapshot `json:"snapshot" bson:"snapshot"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at"`
}

// Summary is the listing view of a drawing, without the snapshot payload.
type Summary struct {
	ID        string    `json:"id" bson:"_id"`
	Source    string    `json:"source" bson:"source"`
	Formula   string    `json:"formula" bson:"formula"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Store persists drawings.
type Store interface {
	// Save stores a new drawing. Missing identity and timestamp fields
	// are filled from the snapshot; saving an ID twice fails with
	// [ErrExists].
	Save(ctx context.Context, d *Drawing) error

	// Get returns the drawing with the given ID, or [ErrNotFound].
	Get(ctx context.Context, id string) (*Drawing, error)

	// List returns the newest drawings, most recent first.
	List(ctx context.Context, limit int) ([]Summary, error)

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}

// normalize fills identity and timestamp defaults in place. The snapshot
// is the source of truth for everything it knows.
func normalize(d *Drawing) error {
	if d == nil || d.Snapshot == nil {
		return ErrNoSnapshot
	}
	if d.ID == "" {
		d.ID = d.Snapshot.ID
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Source == "" {
		d.Source = d.Snapshot.Meta.Source
	}
	if d.Formula == "" {
		d.Formula = d.Snapshot.Meta.Formula
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	return nil
}

// clampLimit normalizes a caller-supplied listing limit.
func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

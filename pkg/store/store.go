// Package store persists board documents.
//
// A [Document] bundles a board's configuration with its exported layout,
// so a stored board can be rebuilt exactly with [Document.Board].
// Implementations for different backends:
//   - file: JSON files in a directory, for the CLI and single instances
//   - redis: shared storage for multi-instance servers
//   - mongo: a "boards" collection keyed by document ID
//
// # Usage
//
// Open a store from a URL:
//
//	s, err := store.Open(ctx, "file:///var/lib/dashgrid")
//	s, err := store.Open(ctx, "redis://localhost:6379/0")
//	s, err := store.Open(ctx, "mongodb://localhost:27017/dashgrid")
//
// Round-trip a board:
//
//	doc := store.NewDocument(cfg, b.Export())
//	if err := s.Put(ctx, doc); err != nil {
//	    return err
//	}
//	doc, err = s.Get(ctx, doc.ID)
//	b, err = doc.Board()
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/dashgrid/pkg/board"
	"github.com/matzehuels/dashgrid/pkg/config"
	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/layout"
	"github.com/matzehuels/dashgrid/pkg/observability"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New(errors.ErrCodeBoardNotFound, "board not found")

// Document is a stored board.
type Document struct {
	ID        string        `json:"id" bson:"_id"`
	Name      string        `json:"name" bson:"name"`
	Config    config.Board  `json:"config" bson:"config"`
	Layout    layout.Layout `json:"layout" bson:"layout"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" bson:"updated_at"`
}

// NewDocument creates a document with a fresh ID.
func NewDocument(cfg config.Board, l layout.Layout) *Document {
	now := time.Now().UTC()
	return &Document{
		ID:        NewID(),
		Name:      cfg.Name,
		Config:    cfg,
		Layout:    l,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Board rebuilds the board the document describes.
func (d *Document) Board() (*board.Board, error) {
	return board.Load(d.Config, d.Layout)
}

// Update replaces the stored layout with b's current one.
func (d *Document) Update(b *board.Board) {
	d.Layout = b.Export()
	d.UpdatedAt = time.Now().UTC()
}

// Store is the interface for board document backends.
type Store interface {
	// Get retrieves a document by ID. Returns ErrNotFound if it does not
	// exist.
	Get(ctx context.Context, id string) (*Document, error)

	// Put creates or replaces a document.
	Put(ctx context.Context, doc *Document) error

	// Delete removes a document. Deleting a missing document is not an
	// error.
	Delete(ctx context.Context, id string) error

	// List returns every document, most recently updated first.
	List(ctx context.Context) ([]*Document, error)

	// Close releases backend resources.
	Close() error
}

// NewID returns a random document ID.
func NewID() string {
	return uuid.NewString()
}

func validateID(id string) error {
	return errors.ValidateKey("board id", id)
}

func validateDocument(doc *Document) error {
	if doc == nil {
		return errors.New(errors.ErrCodeInvalidInput, "document is nil")
	}
	if err := validateID(doc.ID); err != nil {
		return err
	}
	if err := doc.Config.Validate(); err != nil {
		return err
	}
	return doc.Layout.Validate()
}

func loaded(ctx context.Context, backend, id string, err error) {
	observability.Store().OnLoad(ctx, backend, id, err)
}

func saved(ctx context.Context, backend, id string, size int, err error) {
	observability.Store().OnSave(ctx, backend, id, size, err)
}

// Package store abstracts the document database the editor sits on.
// Documents are ground truth and live entirely in the backend; nothing in
// this process caches them past a single call.
package store

import (
	"context"

	"github.com/docgrid/docgrid/document"
)

// CollectionStats is what the backend can tell us about a collection.
// Everything past EstimatedCount is best effort and may be absent.
type CollectionStats struct {
	EstimatedCount  int64            `json:"estimatedCount"`
	ExactCount      *int64           `json:"exactCount,omitempty"`
	AvgDocumentSize *int64           `json:"avgDocumentSize,omitempty"`
	TotalSize       *int64           `json:"totalSize,omitempty"`
	IndexSizes      map[string]int64 `json:"indexSizes,omitempty"`
}

// Page is one page of documents plus enough bookkeeping to render a pager.
type Page struct {
	Data    []document.Document `json:"data"`
	Total   int64               `json:"total"`
	Page    int                 `json:"page"`
	Limit   int                 `json:"limit"`
	HasNext bool                `json:"hasNext"`
	HasPrev bool                `json:"hasPrev"`
}

// Store is the backend contract. Implementations must be safe for
// concurrent use; per-document update atomicity is the backend's problem,
// cross-document coordination is the caller's.
type Store interface {
	Ping(ctx context.Context) error
	ListCollections(ctx context.Context) ([]string, error)
	Stats(ctx context.Context, collection string) (CollectionStats, error)

	FindPage(ctx context.Context, collection string, page, limit int) (Page, error)
	Sample(ctx context.Context, collection string, limit int) ([]document.Document, error)

	Insert(ctx context.Context, collection string, doc document.Document) (document.Document, error)
	UpdateByID(ctx context.Context, collection, id string, fields document.Document) (document.Document, error)
	DeleteByID(ctx context.Context, collection, id string) error

	// HasField reports whether any document in the collection carries the
	// field. An existence probe, not a scan result the caller can hold on to.
	HasField(ctx context.Context, collection, field string) (bool, error)

	// SetFieldWhereMissing sets field to value on every document lacking it
	// and returns how many documents changed.
	SetFieldWhereMissing(ctx context.Context, collection, field string, value any) (int64, error)

	// RenameField renames the field on every document holding it, value
	// untouched.
	RenameField(ctx context.Context, collection, oldName, newName string) (int64, error)

	// UnsetField removes the field from every document holding it.
	UnsetField(ctx context.Context, collection, field string) (int64, error)

	// Validator returns the collection's stored validator document, or nil
	// when the collection has none. Absence is not an error.
	Validator(ctx context.Context, collection string) (map[string]any, error)

	// SetValidator installs a validator in warn-only mode so it can never
	// reject a write.
	SetValidator(ctx context.Context, collection string, validator map[string]any) error

	// DisableValidation turns validation off entirely, used around bulk
	// mutations that would otherwise fight the installed validator.
	DisableValidation(ctx context.Context, collection string) error
}

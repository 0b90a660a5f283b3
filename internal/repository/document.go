package repository

import (
	"context"

	"doctrack/internal/model"
)

// DocumentRepository defines data access for the document metadata collection
// using SQL queries only. No business logic here — strictly persistence.
//
// Absent rows are reported as sql.ErrNoRows; the service layer translates
// them into its own not-found error.
type DocumentRepository interface {
	// Create inserts a new document row. The caller provides all fields
	// (ID, timestamps, status); nothing is defaulted by the database.
	// Returns the stored document.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns the entire collection ordered by created_at descending,
	// ties broken by insertion order. Returns an empty slice when no
	// documents exist.
	List(ctx context.Context) ([]model.Document, error)

	// Update overwrites the full row matching doc.ID with doc's fields
	// (except created_at, which is immutable). Returns sql.ErrNoRows when
	// no row matched.
	Update(ctx context.Context, doc *model.Document) (*model.Document, error)
}

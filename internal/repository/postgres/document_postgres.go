package postgres

import (
	"context"
	"database/sql"

	"doctrack/internal/model"
	"doctrack/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, client_reference, document_type, file_name, status, rejection_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, client_reference, document_type, file_name, status, rejection_reason, created_at, updated_at
	`
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.ClientReference,
		doc.DocumentType,
		doc.FileName,
		string(doc.Status),
		nullString(doc.RejectionReason),
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return scanDocument(row)
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `
		SELECT id, client_reference, document_type, file_name, status, rejection_reason, created_at, updated_at
		FROM documents
		WHERE id = $1
	`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// List returns every document ordered by created_at descending. Rows created
// at the same instant keep their insertion order via the seq column.
func (r *DocumentPostgres) List(ctx context.Context) ([]model.Document, error) {
	const q = `
		SELECT id, client_reference, document_type, file_name, status, rejection_reason, created_at, updated_at
		FROM documents
		ORDER BY created_at DESC, seq ASC
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]model.Document, 0)
	for rows.Next() {
		var d model.Document
		var reason sql.NullString
		if err := rows.Scan(
			&d.ID,
			&d.ClientReference,
			&d.DocumentType,
			&d.FileName,
			&d.Status,
			&reason,
			&d.CreatedAt,
			&d.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if reason.Valid {
			d.RejectionReason = &reason.String
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Update overwrites the row matching doc.ID. created_at is never touched.
// Returns sql.ErrNoRows when no row matched.
func (r *DocumentPostgres) Update(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		UPDATE documents
		SET client_reference = $2, document_type = $3, file_name = $4, status = $5, rejection_reason = $6, updated_at = $7
		WHERE id = $1
		RETURNING id, client_reference, document_type, file_name, status, rejection_reason, created_at, updated_at
	`
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.ClientReference,
		doc.DocumentType,
		doc.FileName,
		string(doc.Status),
		nullString(doc.RejectionReason),
		doc.UpdatedAt,
	)
	return scanDocument(row)
}

func scanDocument(row *sql.Row) (*model.Document, error) {
	var d model.Document
	var reason sql.NullString
	if err := row.Scan(
		&d.ID,
		&d.ClientReference,
		&d.DocumentType,
		&d.FileName,
		&d.Status,
		&reason,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if reason.Valid {
		d.RejectionReason = &reason.String
	}
	return &d, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

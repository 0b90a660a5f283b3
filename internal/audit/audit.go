package audit

import (
	"context"
	"database/sql"
	"time"
)

// Logger records business-significant operations in an append-only trail.
// Callers treat it as best-effort: a failed append must never fail the
// operation being audited.
type Logger interface {
	Append(ctx context.Context, message string) error
}

// PostgresLogger writes audit lines to the audit_log table.
type PostgresLogger struct {
	db *sql.DB
}

// NewPostgresLogger creates an audit logger backed by the given database.
func NewPostgresLogger(db *sql.DB) *PostgresLogger {
	return &PostgresLogger{db: db}
}

var _ Logger = (*PostgresLogger)(nil)

// Append inserts one timestamped line. Lines are never updated or deleted.
func (l *PostgresLogger) Append(ctx context.Context, message string) error {
	const q = `INSERT INTO audit_log (logged_at, message) VALUES ($1, $2)`
	_, err := l.db.ExecContext(ctx, q, time.Now().UTC(), message)
	return err
}

package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestPostgresLogger_Append(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	logger := NewPostgresLogger(db)

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO audit_log").
			WithArgs(sqlmock.AnyArg(), "CREATE doc=abc clientReference=ACME type=INVOICE").
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := logger.Append(context.Background(), "CREATE doc=abc clientReference=ACME type=INVOICE")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert failure surfaces to the caller", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO audit_log").
			WillReturnError(errors.New("db down"))

		err := logger.Append(context.Background(), "STATUS doc=abc RECEIVED -> VALIDATED")

		assert.Error(t, err)
	})
}

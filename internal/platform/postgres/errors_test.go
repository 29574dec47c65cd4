package postgres_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/opsboard/internal/platform/postgres"
	"github.com/phrazzld/opsboard/internal/store"
	"github.com/stretchr/testify/assert"
)

func newPgError(code string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		SchemaName:     "public",
		TableName:      "deployments",
		ColumnName:     "status",
		ConstraintName: "deployments_status_check",
	}
}

// MockResult implements sql.Result for testing
type MockResult struct {
	rowsAffected int64
	err          error
}

func (m MockResult) LastInsertId() (int64, error) {
	return 0, m.err
}

func (m MockResult) RowsAffected() (int64, error) {
	return m.rowsAffected, m.err
}

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("generic error"), false},
		{"sql.ErrNoRows", sql.ErrNoRows, true},
		{"store.ErrNotFound", store.ErrNotFound, true},
		{"store.ErrDeploymentNotFound", store.ErrDeploymentNotFound, true},
		{"wrapped store.ErrNotFound", fmt.Errorf("wrapped: %w", store.ErrNotFound), true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, postgres.IsNotFoundError(tt.err))
		})
	}
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		result   sql.Result
		notFound error
		wantErr  bool
		errIs    error
	}{
		{name: "nil result", result: nil, wantErr: true},
		{
			name:    "zero rows affected",
			result:  MockResult{rowsAffected: 0},
			wantErr: true,
			errIs:   store.ErrNotFound,
		},
		{
			name:     "zero rows affected with entity error",
			result:   MockResult{rowsAffected: 0},
			notFound: store.ErrTaskNotFound,
			wantErr:  true,
			errIs:    store.ErrTaskNotFound,
		},
		{name: "one row affected", result: MockResult{rowsAffected: 1}},
		{
			name:    "error getting rows affected",
			result:  MockResult{err: errors.New("rows affected error")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := postgres.CheckRowsAffected(tt.result, tt.notFound)

			if tt.wantErr {
				assert.Error(t, err)
				if tt.errIs != nil {
					assert.ErrorIs(t, err, tt.errIs)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		err   error
		errIs error
	}{
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"unique violation", newPgError("23505"), store.ErrDuplicate},
		{"check violation", newPgError("23514"), store.ErrInvalidEntity},
		{"not null violation", newPgError("23502"), store.ErrInvalidEntity},
		{"invalid text representation", newPgError("22P02"), store.ErrInvalidEntity},
		{"value too long", newPgError("22001"), store.ErrInvalidEntity},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, postgres.MapError(tt.err), tt.errIs)
		})
	}

	assert.NoError(t, postgres.MapError(nil))

	other := errors.New("connection reset")
	assert.Same(t, other, postgres.MapError(other), "unmapped errors pass through")
}

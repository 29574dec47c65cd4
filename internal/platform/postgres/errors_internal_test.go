package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/opsboard/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapDBError(t *testing.T) {
	t.Parallel()

	t.Run("mapped postgres error", func(t *testing.T) {
		t.Parallel()

		err := wrapDBError("task", "create", &pgconn.PgError{Code: stringDataRightTruncationCode})

		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		var storeErr *store.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "task", storeErr.Entity)
		assert.Equal(t, "create", storeErr.Operation)
	})

	t.Run("connection error keeps its cause", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("connection reset by peer")
		err := wrapDBError("deployment", "transition", cause)

		assert.ErrorIs(t, err, cause)
		assert.Equal(t,
			"transition operation on deployment failed: database error: connection reset by peer",
			err.Error())
	})
}

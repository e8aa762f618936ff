package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := New(mock, "session-1")

	t.Run("present", func(t *testing.T) {
		mock.ExpectQuery(`SELECT value`).
			WithArgs("session-1", "cart").
			WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow("[]"))

		v, ok, err := store.Get("cart")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "[]", v)
	})

	t.Run("missing", func(t *testing.T) {
		mock.ExpectQuery(`SELECT value`).
			WithArgs("session-1", "cartRestaurantId").
			WillReturnError(pgx.ErrNoRows)

		_, ok, err := store.Get("cartRestaurantId")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("driver error", func(t *testing.T) {
		boom := errors.New("connection reset")
		mock.ExpectQuery(`SELECT value`).
			WithArgs("session-1", "cart").
			WillReturnError(boom)

		_, _, err := store.Get("cart")
		assert.ErrorIs(t, err, boom)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SetAndRemove(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := New(mock, "session-2")

	mock.ExpectExec(`INSERT INTO cart_storage`).
		WithArgs("session-2", "cartRestaurantId", "3").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`DELETE FROM cart_storage`).
		WithArgs("session-2", "cartRestaurantId").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, store.Set("cartRestaurantId", "3"))
	require.NoError(t, store.Remove("cartRestaurantId"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SetError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	boom := errors.New("disk full")
	mock.ExpectExec(`INSERT INTO cart_storage`).
		WithArgs("s", "cart", "[]").
		WillReturnError(boom)

	err = New(mock, "s").Set("cart", "[]")
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

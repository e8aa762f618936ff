package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CRUD(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.Get("cart")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("cart", "[]"))
	require.NoError(t, s.Set("cart", `[{"quantity":2}]`))

	v, ok, err := s.Get("cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"quantity":2}]`, v)

	require.NoError(t, s.Remove("cart"))
	_, ok, err = s.Get("cart")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cart.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("cartRestaurantId", "7"))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	v, ok, err := reopened.Get("cartRestaurantId")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "7", v)
}

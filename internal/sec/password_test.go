package sec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("mypassword")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	t.Run("over length limit", func(t *testing.T) {
		t.Parallel()
		long := make([]byte, 100)
		_, err := HashPassword(long)
		require.Error(t, err)
	})
}

func TestComparePassword(t *testing.T) {
	t.Parallel()

	password := "correctpassword"
	hash, err := HashPassword(password)
	require.NoError(t, err)

	t.Run("correct password", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, ComparePassword(password, hash))
	})

	t.Run("incorrect password", func(t *testing.T) {
		t.Parallel()
		assert.Error(t, ComparePassword("wrongpassword", hash))
	})

	t.Run("empty password", func(t *testing.T) {
		t.Parallel()
		assert.Error(t, ComparePassword("", hash))
	})
}

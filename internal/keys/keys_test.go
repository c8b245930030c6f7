package keys

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tradepost.key")

	generated, err := Generate(path)
	require.NoError(t, err)

	t.Run("file is 0600", func(t *testing.T) {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("load derives the same key", func(t *testing.T) {
		loaded, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, generated, loaded)
		assert.Equal(t, Identity(generated), Identity(loaded))
	})

	t.Run("generate refuses to overwrite", func(t *testing.T) {
		_, err := Generate(path)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})
}

func TestLoad(t *testing.T) {
	writeKey := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "key")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	t.Run("tolerates surrounding whitespace", func(t *testing.T) {
		seedHex := "9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60"
		priv, err := Load(writeKey(t, "  "+seedHex+"\n"))
		require.NoError(t, err)
		assert.NotNil(t, priv)
	})

	t.Run("rejects non-hex content", func(t *testing.T) {
		_, err := Load(writeKey(t, "not a key"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not valid hex")
	})

	t.Run("rejects short seed", func(t *testing.T) {
		_, err := Load(writeKey(t, "deadbeef"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "32 bytes")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing"))
		assert.Error(t, err)
	})
}

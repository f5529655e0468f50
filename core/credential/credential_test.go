package credential_test

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/restokit/core/credential"
	"github.com/dmitrymomot/restokit/pkg/secrets"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"k1", "k1"},
		{"  k1  ", "k1"},
		{"", ""},
		{"null", ""},
		{"undefined", ""},
		{" null ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, credential.Normalize(tt.in), "input %q", tt.in)
	}
	assert.True(t, credential.IsValid("abc"))
	assert.False(t, credential.IsValid("undefined"))
}

// storeContract runs the behaviour every Store must share.
func storeContract(t *testing.T, store credential.Store) {
	t.Helper()
	ctx := t.Context()

	_, err := store.Load(ctx)
	require.ErrorIs(t, err, credential.ErrNotFound)

	require.NoError(t, store.Save(ctx, "k1"))
	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "k1", got)

	require.NoError(t, store.Save(ctx, "k2"))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "k2", got)

	require.NoError(t, store.Clear(ctx))
	_, err = store.Load(ctx)
	require.ErrorIs(t, err, credential.ErrNotFound)

	require.NoError(t, store.Clear(ctx), "clearing an empty store")
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	storeContract(t, credential.NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	t.Parallel()

	t.Run("contract", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "nested", "credential")
		store, err := credential.NewFileStore(path)
		require.NoError(t, err)
		assert.Equal(t, path, store.Path())
		storeContract(t, store)
	})

	t.Run("file is private", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "credential")
		store, err := credential.NewFileStore(path)
		require.NoError(t, err)
		require.NoError(t, store.Save(t.Context(), "secret"))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("whitespace-only file is empty", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "credential")
		require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o600))
		store, err := credential.NewFileStore(path)
		require.NoError(t, err)
		_, err = store.Load(t.Context())
		assert.ErrorIs(t, err, credential.ErrNotFound)
	})
}

func TestEncryptedFileStore(t *testing.T) {
	t.Parallel()

	appKey, err := secrets.GenerateKey()
	require.NoError(t, err)
	deviceKey, err := secrets.GenerateKey()
	require.NoError(t, err)

	t.Run("contract", func(t *testing.T) {
		t.Parallel()
		store, err := credential.NewEncryptedFileStore(filepath.Join(t.TempDir(), "credential"), appKey, deviceKey)
		require.NoError(t, err)
		storeContract(t, store)
	})

	t.Run("plaintext never hits disk", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "credential")
		store, err := credential.NewEncryptedFileStore(path, appKey, deviceKey)
		require.NoError(t, err)
		require.NoError(t, store.Save(t.Context(), "very-secret-api-key"))

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "very-secret-api-key")
	})

	t.Run("wrong device key reports corrupt data", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "credential")
		store, err := credential.NewEncryptedFileStore(path, appKey, deviceKey)
		require.NoError(t, err)
		require.NoError(t, store.Save(t.Context(), "k1"))

		other, err := secrets.GenerateKey()
		require.NoError(t, err)
		moved, err := credential.NewEncryptedFileStore(path, appKey, other)
		require.NoError(t, err)
		_, err = moved.Load(t.Context())
		assert.ErrorIs(t, err, credential.ErrCorrupt)
	})

	t.Run("rejects short keys", func(t *testing.T) {
		t.Parallel()
		_, err := credential.NewEncryptedFileStore("", []byte("short"), deviceKey)
		assert.ErrorIs(t, err, credential.ErrInvalidConfig)
	})
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("memory", func(t *testing.T) {
		t.Parallel()
		store, err := credential.NewFromConfig(credential.Config{Kind: "memory"})
		require.NoError(t, err)
		assert.IsType(t, &credential.MemoryStore{}, store)
	})

	t.Run("file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "credential")
		store, err := credential.NewFromConfig(credential.Config{Kind: "FILE", File: path})
		require.NoError(t, err)
		fs, ok := store.(*credential.FileStore)
		require.True(t, ok)
		assert.Equal(t, path, fs.Path())
	})

	t.Run("encrypted", func(t *testing.T) {
		t.Parallel()
		key := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", secrets.KeySize)))
		store, err := credential.NewFromConfig(credential.Config{
			Kind:      "encrypted",
			File:      filepath.Join(t.TempDir(), "credential"),
			AppKey:    key,
			DeviceKey: key,
		})
		require.NoError(t, err)
		assert.IsType(t, &credential.EncryptedFileStore{}, store)
	})

	t.Run("encrypted without keys", func(t *testing.T) {
		t.Parallel()
		_, err := credential.NewFromConfig(credential.Config{Kind: "encrypted"})
		assert.ErrorIs(t, err, credential.ErrInvalidConfig)
	})

	t.Run("unknown kind", func(t *testing.T) {
		t.Parallel()
		_, err := credential.NewFromConfig(credential.Config{Kind: "vault"})
		assert.ErrorIs(t, err, credential.ErrInvalidConfig)
	})
}

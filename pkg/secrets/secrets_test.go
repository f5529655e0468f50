package secrets_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/restokit/pkg/secrets"
)

func keys(t *testing.T) ([]byte, []byte) {
	t.Helper()
	app, err := secrets.GenerateKey()
	require.NoError(t, err)
	dev, err := secrets.GenerateKey()
	require.NoError(t, err)
	return app, dev
}

func TestEncryptDecryptString(t *testing.T) {
	t.Parallel()
	app, dev := keys(t)

	sealed, err := secrets.EncryptString(app, dev, "k1-api-key")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "k1-api-key")

	plain, err := secrets.DecryptString(app, dev, sealed)
	require.NoError(t, err)
	assert.Equal(t, "k1-api-key", plain)
}

func TestEncryptUsesFreshNonce(t *testing.T) {
	t.Parallel()
	app, dev := keys(t)

	a, err := secrets.EncryptString(app, dev, "same")
	require.NoError(t, err)
	b, err := secrets.EncryptString(app, dev, "same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	t.Parallel()
	app, dev := keys(t)
	_, other := keys(t)

	sealed, err := secrets.EncryptBytes(app, dev, []byte("payload"))
	require.NoError(t, err)

	_, err = secrets.DecryptBytes(app, other, sealed)
	assert.ErrorIs(t, err, secrets.ErrDecryptionFailed)
}

func TestDecryptTampered(t *testing.T) {
	t.Parallel()
	app, dev := keys(t)

	sealed, err := secrets.EncryptBytes(app, dev, []byte("payload"))
	require.NoError(t, err)
	sealed[len(sealed)-1] ^= 0xff

	_, err = secrets.DecryptBytes(app, dev, sealed)
	assert.ErrorIs(t, err, secrets.ErrDecryptionFailed)

	_, err = secrets.DecryptBytes(app, dev, []byte("short"))
	assert.ErrorIs(t, err, secrets.ErrInvalidCiphertext)

	_, err = secrets.DecryptString(app, dev, "%%%not-base64")
	assert.ErrorIs(t, err, secrets.ErrInvalidCiphertext)
}

func TestInvalidKeys(t *testing.T) {
	t.Parallel()
	app, dev := keys(t)

	_, err := secrets.EncryptBytes(app[:16], dev, []byte("x"))
	assert.ErrorIs(t, err, secrets.ErrInvalidAppKey)

	_, err = secrets.EncryptBytes(app, dev[:5], []byte("x"))
	assert.ErrorIs(t, err, secrets.ErrInvalidDeviceKey)
}

func TestParseKey(t *testing.T) {
	t.Parallel()
	app, _ := keys(t)

	parsed, err := secrets.ParseKey(base64.StdEncoding.EncodeToString(app))
	require.NoError(t, err)
	assert.Equal(t, app, parsed)

	parsed, err = secrets.ParseKey(base64.RawURLEncoding.EncodeToString(app))
	require.NoError(t, err)
	assert.Equal(t, app, parsed)

	_, err = secrets.ParseKey(base64.StdEncoding.EncodeToString([]byte("too short")))
	assert.Error(t, err)

	_, err = secrets.ParseKey("!!!")
	assert.Error(t, err)
}

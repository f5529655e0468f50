package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// KeySize is the required length of both input keys.
const KeySize = 32

// hkdfInfo binds derived keys to this package's purpose.
var hkdfInfo = []byte("restokit/secrets/v1")

var (
	ErrInvalidAppKey       = errors.New("secrets: app key must be 32 bytes")
	ErrInvalidDeviceKey    = errors.New("secrets: device key must be 32 bytes")
	ErrKeyDerivationFailed = errors.New("secrets: key derivation failed")
	ErrEncryptionFailed    = errors.New("secrets: encryption failed")
	ErrDecryptionFailed    = errors.New("secrets: decryption failed")
	ErrInvalidCiphertext   = errors.New("secrets: invalid ciphertext")
)

// GenerateKey returns a random 32-byte key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("secrets: generate key: %w", err)
	}
	return key, nil
}

// EncryptBytes seals plaintext with AES-256-GCM under a key derived from appKey and deviceKey.
// Output layout: nonce || ciphertext || tag.
func EncryptBytes(appKey, deviceKey, plaintext []byte) ([]byte, error) {
	aead, err := newAEAD(appKey, deviceKey)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}

	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// DecryptBytes reverses EncryptBytes. Tampered input fails with ErrDecryptionFailed.
func DecryptBytes(appKey, deviceKey, ciphertext []byte) ([]byte, error) {
	aead, err := newAEAD(appKey, deviceKey)
	if err != nil {
		return nil, err
	}

	ns := aead.NonceSize()
	if len(ciphertext) < ns+aead.Overhead() {
		return nil, ErrInvalidCiphertext
	}

	plaintext, err := aead.Open(nil, ciphertext[:ns], ciphertext[ns:], nil)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

// EncryptString encrypts s and returns standard base64.
func EncryptString(appKey, deviceKey []byte, s string) (string, error) {
	out, err := EncryptBytes(appKey, deviceKey, []byte(s))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(out), nil
}

// DecryptString decodes base64 input and decrypts it.
func DecryptString(appKey, deviceKey []byte, encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", errors.Join(ErrInvalidCiphertext, err)
	}
	out, err := DecryptBytes(appKey, deviceKey, raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ParseKey decodes a base64 (standard or URL) 32-byte key.
func ParseKey(encoded string) ([]byte, error) {
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.URLEncoding, base64.RawStdEncoding, base64.RawURLEncoding} {
		if key, err := enc.DecodeString(encoded); err == nil {
			if len(key) != KeySize {
				return nil, fmt.Errorf("secrets: key must decode to %d bytes, got %d", KeySize, len(key))
			}
			return key, nil
		}
	}
	return nil, fmt.Errorf("secrets: key is not valid base64")
}

func newAEAD(appKey, deviceKey []byte) (cipher.AEAD, error) {
	if len(appKey) != KeySize {
		return nil, ErrInvalidAppKey
	}
	if len(deviceKey) != KeySize {
		return nil, ErrInvalidDeviceKey
	}

	key := make([]byte, KeySize)
	defer clear(key)

	kdf := hkdf.New(sha256.New, appKey, deviceKey, hkdfInfo)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}
	return cipher.NewGCM(block)
}

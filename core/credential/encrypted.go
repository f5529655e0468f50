package credential

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrymomot/restokit/pkg/secrets"
)

// EncryptedFileStore is a FileStore whose contents are sealed with pkg/secrets.
type EncryptedFileStore struct {
	file      *FileStore
	appKey    []byte
	deviceKey []byte
}

// NewEncryptedFileStore returns an encrypted store at path (empty selects DefaultPath).
// Both keys must be 32 bytes.
func NewEncryptedFileStore(path string, appKey, deviceKey []byte) (*EncryptedFileStore, error) {
	if len(appKey) != secrets.KeySize || len(deviceKey) != secrets.KeySize {
		return nil, fmt.Errorf("%w: encryption keys must be %d bytes", ErrInvalidConfig, secrets.KeySize)
	}
	fs, err := NewFileStore(path)
	if err != nil {
		return nil, err
	}
	return &EncryptedFileStore{file: fs, appKey: appKey, deviceKey: deviceKey}, nil
}

// Path returns the backing file path.
func (s *EncryptedFileStore) Path() string {
	return s.file.Path()
}

func (s *EncryptedFileStore) Load(ctx context.Context) (string, error) {
	sealed, err := s.file.Load(ctx)
	if err != nil {
		return "", err
	}
	token, err := secrets.DecryptString(s.appKey, s.deviceKey, strings.TrimSpace(sealed))
	if err != nil {
		return "", errors.Join(ErrCorrupt, err)
	}
	if token == "" {
		return "", ErrNotFound
	}
	return token, nil
}

func (s *EncryptedFileStore) Save(ctx context.Context, token string) error {
	sealed, err := secrets.EncryptString(s.appKey, s.deviceKey, token)
	if err != nil {
		return fmt.Errorf("credential: seal: %w", err)
	}
	return s.file.Save(ctx, sealed)
}

func (s *EncryptedFileStore) Clear(ctx context.Context) error {
	return s.file.Clear(ctx)
}

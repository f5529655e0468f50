// Package secrets provides AES-256-GCM encryption with HKDF compound key derivation.
//
// Two 32-byte inputs are combined: an application key shared by every install and
// a device key specific to one machine or user. HKDF-SHA256 derives the actual
// AES key from both, so leaking one input alone does not expose stored data. The
// encrypted credential store uses this to keep API keys at rest.
//
//	appKey, _ := secrets.GenerateKey()
//	deviceKey, _ := secrets.GenerateKey()
//
//	sealed, err := secrets.EncryptString(appKey, deviceKey, apiKey)
//	if err != nil {
//		return err
//	}
//
//	plain, err := secrets.DecryptString(appKey, deviceKey, sealed)
//
// Keys are usually kept as base64 in the environment and decoded with ParseKey.
//
// # Errors
//
//   - ErrInvalidAppKey, ErrInvalidDeviceKey: input key is not 32 bytes
//   - ErrDecryptionFailed: wrong keys or tampered data
//   - ErrInvalidCiphertext: input too short or not base64
package secrets

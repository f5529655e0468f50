// Package credential persists the single API credential used by the gateway.
//
// A Store holds at most one value. Three local implementations are provided:
//
//	store := credential.NewMemoryStore()               // process lifetime only
//	store, err := credential.NewFileStore("")          // <config dir>/restoctl/credential, mode 0600
//	store, err := credential.NewEncryptedFileStore(path, appKey, deviceKey)
//
// A Redis-backed store lives in integration/redis.
//
// Load returns ErrNotFound when nothing is stored. Values such as "null" and
// "undefined" are not credentials; use Normalize before trusting a loaded value.
package credential

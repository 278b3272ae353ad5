package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/keychain_service_mock.go -package=mock

// KeyChainService protects the WebDAV credentials at rest. It knows nothing
// about the network, the database, or sync; its only job is deriving and
// applying the local encryption key.
//
// Scheme:
//
//	salt = GenerateSalt()                 (stored next to the ciphertext)
//	key  = DeriveKey(secret, salt)        (Argon2id, in-memory only)
//	blob = EncryptString(plain, key)      (AES-256-GCM, nonce ‖ ciphertext)
type KeyChainService interface {
	// GenerateSalt generates a random 16-byte salt. The salt is not a
	// secret; it is persisted in plaintext alongside the ciphertext so the
	// key can be re-derived on the next start.
	GenerateSalt() ([]byte, error)

	// DeriveKey derives a 256-bit encryption key from the application
	// secret and salt via Argon2id. The key exists only in memory.
	DeriveKey(secret string, salt []byte) []byte

	// EncryptString encrypts plain with key using AES-256-GCM and returns a
	// base64 blob (nonce ‖ ciphertext) safe to persist.
	EncryptString(plain string, key []byte) (string, error)

	// DecryptString reverses EncryptString. Returns an error if the blob is
	// malformed or the key is wrong (authentication-tag mismatch).
	DecryptString(encryptedB64 string, key []byte) (string, error)
}

package crypto

// Provider defines the interface for cryptographic operations.
type Provider interface {
	// Encrypt seals plaintext under the master key into an
	// IV || ciphertext || tag blob.
	Encrypt(plaintext, masterKey []byte) ([]byte, error)

	// Decrypt verifies and opens a blob produced by Encrypt. Blobs from
	// before integrity protection existed (IV || ciphertext, no tag) are
	// detected and decrypted without verification.
	Decrypt(blob, masterKey []byte) ([]byte, error)

	// DeriveStorePassphrase derives the storage-engine passphrase from the
	// master key. Independent of the blob authentication key.
	DeriveStorePassphrase(masterKey []byte) (string, error)
}

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/panplumousse-star/AIScan-sub002/internal/models"
)

const (
	// KeySize is the master key length (AES-256).
	KeySize = 32

	// IVSize is the CBC initialization vector length.
	IVSize = aes.BlockSize

	// TagSize is the HMAC-SHA256 authentication tag length.
	TagSize = sha256.Size

	// MinBlobSize is the smallest well-formed new-format blob:
	// IV + one cipher block + tag.
	MinBlobSize = IVSize + aes.BlockSize + TagSize

	// MinLegacyBlobSize is the smallest pre-tag blob: IV + one block.
	MinLegacyBlobSize = IVSize + aes.BlockSize

	// PBKDF2 parameters for the store passphrase. The input is a full
	// entropy key, not a password, so the count stays low.
	passphraseIterations = 4096
)

// Domain-separation constants. Changing either breaks every blob and
// store written so far.
var (
	authKeyLabel   = []byte("aiscan.blob.auth.v1")
	passphraseSalt = []byte("aiscan.store.passphrase.v1")
)

// Errors
var (
	ErrInvalidKey = errors.New("invalid key size")
)

// CipherProvider implements authenticated encryption for opaque byte
// buffers: AES-256-CBC with an encrypt-then-MAC HMAC-SHA256 tag over
// IV || ciphertext. Stateless and safe for concurrent use.
type CipherProvider struct{}

// NewProvider creates a crypto provider.
func NewProvider() Provider {
	return &CipherProvider{}
}

// DeriveAuthKey derives the authentication key from the master key via
// HMAC over a fixed domain-separation constant. One-way and deterministic;
// exported for testing.
func DeriveAuthKey(masterKey []byte) []byte {
	h := hmac.New(sha256.New, masterKey)
	h.Write(authKeyLabel)
	return h.Sum(nil)
}

// Encrypt seals plaintext into IV || ciphertext || tag with a fresh
// random IV per call.
func (p *CipherProvider) Encrypt(plaintext, masterKey []byte) ([]byte, error) {
	if len(masterKey) != KeySize {
		return nil, ErrInvalidKey
	}

	block, err := aes.NewCipher(masterKey)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	iv := make([]byte, IVSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("generate iv: %w", err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	tag := computeTag(masterKey, iv, ciphertext)

	blob := make([]byte, 0, IVSize+len(ciphertext)+TagSize)
	blob = append(blob, iv...)
	blob = append(blob, ciphertext...)
	blob = append(blob, tag...)

	return blob, nil
}

// Decrypt verifies and opens a blob. Layout detection is heuristic: a blob
// of at least MinBlobSize whose length minus IV and tag is block-aligned is
// treated as new-format, and a bad tag is an integrity failure — never a
// silent retry. Only blobs that cannot be new-format take the legacy
// 2-part path, which has no integrity check.
func (p *CipherProvider) Decrypt(blob, masterKey []byte) ([]byte, error) {
	if len(masterKey) != KeySize {
		return nil, ErrInvalidKey
	}

	if len(blob) < MinLegacyBlobSize {
		return nil, &models.EncryptionError{
			Reason: fmt.Sprintf("blob too short: %d bytes", len(blob)),
		}
	}

	if len(blob) >= MinBlobSize && (len(blob)-IVSize-TagSize)%aes.BlockSize == 0 {
		iv := blob[:IVSize]
		ciphertext := blob[IVSize : len(blob)-TagSize]
		tag := blob[len(blob)-TagSize:]

		// hmac.Equal compares every byte regardless of earlier mismatches.
		expected := computeTag(masterKey, iv, ciphertext)
		if !hmac.Equal(tag, expected) {
			return nil, &models.IntegrityError{Reason: "authentication tag mismatch"}
		}

		return cbcDecrypt(masterKey, iv, ciphertext)
	}

	// Legacy layout: IV || ciphertext, written before tags existed.
	if (len(blob)-IVSize)%aes.BlockSize != 0 {
		return nil, &models.EncryptionError{
			Reason: fmt.Sprintf("ciphertext not block-aligned: %d bytes", len(blob)),
		}
	}

	return cbcDecrypt(masterKey, blob[:IVSize], blob[IVSize:])
}

// DeriveStorePassphrase stretches the master key into the hex passphrase
// handed to the storage engine's page cipher.
func (p *CipherProvider) DeriveStorePassphrase(masterKey []byte) (string, error) {
	if len(masterKey) != KeySize {
		return "", ErrInvalidKey
	}

	dk := pbkdf2.Key(masterKey, passphraseSalt, passphraseIterations, KeySize, sha256.New)
	return hex.EncodeToString(dk), nil
}

// computeTag computes HMAC-SHA256 over IV || ciphertext with the derived
// authentication key.
func computeTag(masterKey, iv, ciphertext []byte) []byte {
	h := hmac.New(sha256.New, DeriveAuthKey(masterKey))
	h.Write(iv)
	h.Write(ciphertext)
	return h.Sum(nil)
}

func cbcDecrypt(masterKey, iv, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(masterKey)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	plaintext, err := pkcs7Unpad(padded, aes.BlockSize)
	if err != nil {
		return nil, &models.EncryptionError{Reason: "malformed padding", Err: err}
	}

	return plaintext, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length: %d", len(data))
	}

	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, fmt.Errorf("invalid padding byte: %d", n)
	}

	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errors.New("inconsistent padding bytes")
		}
	}

	return data[:len(data)-n], nil
}

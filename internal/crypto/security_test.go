package crypto_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panplumousse-star/AIScan-sub002/internal/crypto"
	"github.com/panplumousse-star/AIScan-sub002/internal/models"
)

func TestSecurityRequirements(t *testing.T) {
	provider := crypto.NewProvider()

	t.Run("key size is 256 bits", func(t *testing.T) {
		assert.Equal(t, 32, crypto.KeySize)
	})

	t.Run("iv is random for each encryption", func(t *testing.T) {
		key := testKey(t)
		plaintext := []byte("same message")

		results := make([][]byte, 10)
		for i := range results {
			blob, err := provider.Encrypt(plaintext, key)
			require.NoError(t, err)
			results[i] = blob
		}

		for i := 0; i < len(results); i++ {
			for j := i + 1; j < len(results); j++ {
				assert.NotEqual(t, results[i], results[j],
					"blobs %d and %d should differ", i, j)
			}
		}
	})

	t.Run("authentication tag prevents tampering", func(t *testing.T) {
		key := testKey(t)

		blob, err := provider.Encrypt([]byte("sensitive data"), key)
		require.NoError(t, err)

		// Flip one bit at every position; each must be detected.
		for i := 0; i < len(blob); i++ {
			tampered := make([]byte, len(blob))
			copy(tampered, blob)
			tampered[i] ^= 0x01

			_, err := provider.Decrypt(tampered, key)

			var integrityErr *models.IntegrityError
			assert.ErrorAs(t, err, &integrityErr, "flip at byte %d not detected", i)
		}
	})

	t.Run("truncation is detected", func(t *testing.T) {
		key := testKey(t)

		blob, err := provider.Encrypt([]byte("sensitive data"), key)
		require.NoError(t, err)

		_, err = provider.Decrypt(blob[:len(blob)-1], key)
		assert.Error(t, err)
	})

	t.Run("authentication key differs from master key", func(t *testing.T) {
		key := testKey(t)
		assert.NotEqual(t, key, crypto.DeriveAuthKey(key))
	})

	t.Run("authentication keys are key separated", func(t *testing.T) {
		key1 := testKey(t)
		key2 := testKey(t)
		assert.NotEqual(t, crypto.DeriveAuthKey(key1), crypto.DeriveAuthKey(key2))
	})

	t.Run("store passphrase differs from authentication key", func(t *testing.T) {
		key := make([]byte, crypto.KeySize)
		_, err := rand.Read(key)
		require.NoError(t, err)

		passphrase, err := provider.DeriveStorePassphrase(key)
		require.NoError(t, err)

		assert.NotContains(t, passphrase, string(key))
		assert.NotEqual(t, passphrase, string(crypto.DeriveAuthKey(key)))
	})
}

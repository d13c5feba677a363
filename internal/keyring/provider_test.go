package keyring_test

import (
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panplumousse-star/AIScan-sub002/internal/keyring"
)

func randomKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestStaticProvider(t *testing.T) {
	t.Run("returns the key", func(t *testing.T) {
		key := randomKey(t)
		provider := keyring.Static(key)

		got, err := provider.GetOrCreateEncryptionKey()
		require.NoError(t, err)
		assert.Equal(t, key, got)
	})

	t.Run("idempotent", func(t *testing.T) {
		provider := keyring.Static(randomKey(t))

		k1, err := provider.GetOrCreateEncryptionKey()
		require.NoError(t, err)
		k2, err := provider.GetOrCreateEncryptionKey()
		require.NoError(t, err)

		assert.Equal(t, k1, k2)
	})

	t.Run("caller cannot mutate the stored key", func(t *testing.T) {
		key := randomKey(t)
		provider := keyring.Static(key)

		got, err := provider.GetOrCreateEncryptionKey()
		require.NoError(t, err)
		got[0] ^= 0xFF

		again, err := provider.GetOrCreateEncryptionKey()
		require.NoError(t, err)
		assert.Equal(t, key, again)
	})

	t.Run("rejects wrong size", func(t *testing.T) {
		provider := keyring.Static([]byte("too short"))

		_, err := provider.GetOrCreateEncryptionKey()
		assert.Error(t, err)
	})
}

func TestEnvProvider(t *testing.T) {
	t.Run("reads hex key", func(t *testing.T) {
		key := randomKey(t)
		t.Setenv("AISCAN_TEST_KEY", hex.EncodeToString(key))

		provider := keyring.Env("AISCAN_TEST_KEY")
		got, err := provider.GetOrCreateEncryptionKey()
		require.NoError(t, err)
		assert.Equal(t, key, got)
	})

	t.Run("unset variable yields ErrNoKey", func(t *testing.T) {
		provider := keyring.Env("AISCAN_TEST_KEY_UNSET")

		_, err := provider.GetOrCreateEncryptionKey()
		assert.ErrorIs(t, err, keyring.ErrNoKey)
	})

	t.Run("invalid hex fails", func(t *testing.T) {
		t.Setenv("AISCAN_TEST_KEY", "not hex at all")

		provider := keyring.Env("AISCAN_TEST_KEY")
		_, err := provider.GetOrCreateEncryptionKey()
		assert.Error(t, err)
		assert.NotErrorIs(t, err, keyring.ErrNoKey)
	})

	t.Run("wrong length fails", func(t *testing.T) {
		t.Setenv("AISCAN_TEST_KEY", "deadbeef")

		provider := keyring.Env("AISCAN_TEST_KEY")
		_, err := provider.GetOrCreateEncryptionKey()
		assert.Error(t, err)
	})
}

func TestChainProvider(t *testing.T) {
	t.Run("falls through missing sources", func(t *testing.T) {
		key := randomKey(t)
		chain := keyring.Chain(
			keyring.Env("AISCAN_TEST_KEY_UNSET"),
			keyring.Static(key),
		)

		got, err := chain.GetOrCreateEncryptionKey()
		require.NoError(t, err)
		assert.Equal(t, key, got)
	})

	t.Run("real errors stop the chain", func(t *testing.T) {
		t.Setenv("AISCAN_TEST_KEY", "not hex")
		chain := keyring.Chain(
			keyring.Env("AISCAN_TEST_KEY"),
			keyring.Static(randomKey(t)),
		)

		_, err := chain.GetOrCreateEncryptionKey()
		assert.Error(t, err)
	})

	t.Run("empty chain yields ErrNoKey", func(t *testing.T) {
		_, err := keyring.Chain().GetOrCreateEncryptionKey()
		assert.ErrorIs(t, err, keyring.ErrNoKey)
	})
}

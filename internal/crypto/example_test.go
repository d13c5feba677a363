package crypto_test

import (
	"fmt"

	"github.com/panplumousse-star/AIScan-sub002/internal/crypto"
)

func ExampleCipherProvider_Encrypt() {
	provider := crypto.NewProvider()

	// In practice, this key comes from the keyring
	key := make([]byte, crypto.KeySize)
	for i := range key {
		key[i] = byte(i % 256)
	}

	plaintext := []byte("Hello, World!")
	blob, err := provider.Encrypt(plaintext, key)
	if err != nil {
		fmt.Printf("Encryption failed: %v\n", err)
		return
	}

	decrypted, err := provider.Decrypt(blob, key)
	if err != nil {
		fmt.Printf("Decryption failed: %v\n", err)
		return
	}

	fmt.Printf("Decrypted: %s\n", decrypted)
	// Output: Decrypted: Hello, World!
}

func ExampleCipherProvider_DeriveStorePassphrase() {
	provider := crypto.NewProvider()

	key := make([]byte, crypto.KeySize)
	for i := range key {
		key[i] = byte(i % 256)
	}

	passphrase, err := provider.DeriveStorePassphrase(key)
	if err != nil {
		fmt.Printf("Derivation failed: %v\n", err)
		return
	}

	fmt.Printf("Passphrase length: %d hex characters\n", len(passphrase))
	// Output: Passphrase length: 64 hex characters
}

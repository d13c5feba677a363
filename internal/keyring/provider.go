// Package keyring defines the key-retrieval contract consumed by the
// data-protection core. The key itself lives in platform-secure storage;
// this core never writes it to disk.
package keyring

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
)

// ErrNoKey indicates no provider in a chain could supply a key.
var ErrNoKey = errors.New("no encryption key available")

// Provider supplies the stable symmetric master key.
type Provider interface {
	// GetOrCreateEncryptionKey returns the 32-byte master key. Idempotent:
	// repeated calls return the same key.
	GetOrCreateEncryptionKey() ([]byte, error)
}

// StaticProvider wraps a fixed key. Used by tests and by embedding
// applications that bridge a platform keystore themselves.
type StaticProvider struct {
	key []byte
}

// Static creates a provider for a fixed key.
func Static(key []byte) *StaticProvider {
	k := make([]byte, len(key))
	copy(k, key)
	return &StaticProvider{key: k}
}

func (p *StaticProvider) GetOrCreateEncryptionKey() ([]byte, error) {
	if len(p.key) != 32 {
		return nil, fmt.Errorf("static key must be 32 bytes, got %d", len(p.key))
	}
	k := make([]byte, len(p.key))
	copy(k, p.key)
	return k, nil
}

// EnvProvider reads a hex-encoded key from an environment variable.
type EnvProvider struct {
	varName string
}

// Env creates a provider reading the named environment variable.
func Env(varName string) *EnvProvider {
	return &EnvProvider{varName: varName}
}

func (p *EnvProvider) GetOrCreateEncryptionKey() ([]byte, error) {
	v := os.Getenv(p.varName)
	if v == "" {
		return nil, ErrNoKey
	}

	key, err := hex.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", p.varName, err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("%s must decode to 32 bytes, got %d", p.varName, len(key))
	}

	return key, nil
}

// ChainProvider tries providers in order until one yields a key.
type ChainProvider struct {
	providers []Provider
}

// Chain creates a provider that falls through its sources in order.
func Chain(providers ...Provider) *ChainProvider {
	return &ChainProvider{providers: providers}
}

func (p *ChainProvider) GetOrCreateEncryptionKey() ([]byte, error) {
	for _, provider := range p.providers {
		key, err := provider.GetOrCreateEncryptionKey()
		if err == nil {
			return key, nil
		}
		if !errors.Is(err, ErrNoKey) {
			return nil, err
		}
	}
	return nil, ErrNoKey
}

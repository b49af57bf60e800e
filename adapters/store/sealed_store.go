package store

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/layer-3/faucet/ports"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	sealedPrefix = "sealed:v1:"
	saltLength   = 16

	argonTime    = 2
	argonMemory  = 19 * 1024
	argonThreads = 1
)

// ErrUnsealFailed is returned when a sealed value cannot be decrypted
var ErrUnsealFailed = errors.New("failed to unseal value")

// SealedStore encrypts the values of selected keys before handing them to the
// wrapped store. All other keys pass through untouched.
type SealedStore struct {
	inner      ports.Store
	passphrase []byte
	sealed     map[string]struct{}
}

// NewSealedStore wraps inner so that the listed keys are stored encrypted
func NewSealedStore(inner ports.Store, passphrase string, keys ...string) *SealedStore {
	sealed := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		sealed[k] = struct{}{}
	}
	return &SealedStore{
		inner:      inner,
		passphrase: []byte(passphrase),
		sealed:     sealed,
	}
}

var _ ports.Store = (*SealedStore)(nil)

// Set seals value when key is protected
func (s *SealedStore) Set(ctx context.Context, key, value string) error {
	if !s.protects(key) {
		return s.inner.Set(ctx, key, value)
	}

	sealed, err := s.seal(value)
	if err != nil {
		return fmt.Errorf("failed to seal %s: %w", key, err)
	}
	return s.inner.Set(ctx, key, sealed)
}

// Get unseals the stored value when key is protected.
// A plaintext value written before sealing was enabled is returned as is.
func (s *SealedStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if !s.protects(key) || !strings.HasPrefix(value, sealedPrefix) {
		return value, nil
	}
	return s.unseal(value)
}

// Delete removes key from the wrapped store
func (s *SealedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

func (s *SealedStore) protects(key string) bool {
	_, ok := s.sealed[key]
	return ok
}

func (s *SealedStore) seal(plaintext string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	aead, err := chacha20poly1305.NewX(s.deriveKey(salt))
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := aead.Seal(nil, nonce, []byte(plaintext), nil)

	enc := base64.RawStdEncoding
	return sealedPrefix + strings.Join([]string{
		enc.EncodeToString(salt),
		enc.EncodeToString(nonce),
		enc.EncodeToString(ciphertext),
	}, ":"), nil
}

func (s *SealedStore) unseal(value string) (string, error) {
	parts := strings.Split(strings.TrimPrefix(value, sealedPrefix), ":")
	if len(parts) != 3 {
		return "", ErrUnsealFailed
	}

	enc := base64.RawStdEncoding
	salt, err := enc.DecodeString(parts[0])
	if err != nil {
		return "", ErrUnsealFailed
	}
	nonce, err := enc.DecodeString(parts[1])
	if err != nil {
		return "", ErrUnsealFailed
	}
	ciphertext, err := enc.DecodeString(parts[2])
	if err != nil {
		return "", ErrUnsealFailed
	}

	aead, err := chacha20poly1305.NewX(s.deriveKey(salt))
	if err != nil {
		return "", err
	}
	if len(nonce) != aead.NonceSize() {
		return "", ErrUnsealFailed
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrUnsealFailed
	}
	return string(plaintext), nil
}

func (s *SealedStore) deriveKey(salt []byte) []byte {
	return argon2.IDKey(s.passphrase, salt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/layer-3/faucet/core"
	"github.com/layer-3/faucet/ports"
)

const (
	// PrivateKeySlot holds the raw private key of the current session
	PrivateKeySlot = "balbiPrivateKey"

	// ConsentSlot records that the storage notice was accepted
	ConsentSlot = "cookieConsent"

	lastClaimPrefix = "lastClaimTime_"
)

// LastClaimSlot is the storage key of the last claim of address
func LastClaimSlot(address string) string {
	return lastClaimPrefix + address
}

// SessionStore keeps the session key and per-address claim times.
// Values are plain strings; wrap the store in a SealedStore to protect the key.
type SessionStore struct {
	store ports.Store
}

// NewSessionStore creates a session store over store
func NewSessionStore(store ports.Store) *SessionStore {
	return &SessionStore{store: store}
}

// SaveKey persists key, overwriting any previous one
func (s *SessionStore) SaveKey(ctx context.Context, key string) error {
	if err := s.store.Set(ctx, PrivateKeySlot, key); err != nil {
		return fmt.Errorf("failed to save key: %w", err)
	}
	return nil
}

// LoadKey returns the saved key, if any
func (s *SessionStore) LoadKey(ctx context.Context) (string, bool, error) {
	return s.get(ctx, PrivateKeySlot)
}

// ClearKey removes the saved key. Claim times are kept.
func (s *SessionStore) ClearKey(ctx context.Context) error {
	if err := s.store.Delete(ctx, PrivateKeySlot); err != nil {
		return fmt.Errorf("failed to clear key: %w", err)
	}
	return nil
}

// RecordClaim stores at as the last claim of address, in epoch milliseconds
func (s *SessionStore) RecordClaim(ctx context.Context, address string, at time.Time) error {
	value := strconv.FormatInt(at.UnixMilli(), 10)
	if err := s.store.Set(ctx, LastClaimSlot(address), value); err != nil {
		return fmt.Errorf("failed to record claim: %w", err)
	}
	return nil
}

// LastClaim returns the last recorded claim of address.
// A value that is not a decimal timestamp counts as no record.
func (s *SessionStore) LastClaim(ctx context.Context, address string) (time.Time, bool, error) {
	value, found, err := s.get(ctx, LastClaimSlot(address))
	if err != nil || !found {
		return time.Time{}, false, err
	}

	ms, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, false, nil
	}
	return time.UnixMilli(ms), true, nil
}

// AcceptConsent records that the storage notice was accepted
func (s *SessionStore) AcceptConsent(ctx context.Context) error {
	if err := s.store.Set(ctx, ConsentSlot, "true"); err != nil {
		return fmt.Errorf("failed to record consent: %w", err)
	}
	return nil
}

// HasConsent reports whether the storage notice was accepted
func (s *SessionStore) HasConsent(ctx context.Context) (bool, error) {
	value, found, err := s.get(ctx, ConsentSlot)
	return found && value != "", err
}

func (s *SessionStore) get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

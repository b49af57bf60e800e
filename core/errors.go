package core

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidKeyFormat     = errors.New("invalid private key format")
	ErrNetworkFailure       = errors.New("network failure")
	ErrServer               = errors.New("server error")
	ErrLibraryLoadFailure   = errors.New("library load failure")
	ErrNotFound             = errors.New("not found")
	ErrNoSession            = errors.New("no active session")
	ErrStoreOperationFailed = errors.New("store operation failed")
)

// ServerError is a non-2xx response from the faucet backend
type ServerError struct {
	Status   int
	Message  string
	TimeLeft time.Duration // Remaining cooldown reported by the server, zero if absent
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
}

// Is makes errors.Is(err, ErrServer) match any *ServerError
func (e *ServerError) Is(target error) bool {
	return target == ErrServer
}

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrInvalidToken = errors.New("invalid token")
)

// ErrCooldownActive is matched by *CooldownError
var ErrCooldownActive = errors.New("claim cooldown active")

// CooldownError rejects a claim made before the cooldown ran out
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("claim cooldown active, %s left", FormatRemaining(e.Remaining))
}

func (e *CooldownError) Is(target error) bool {
	return target == ErrCooldownActive
}

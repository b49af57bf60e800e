// Package loader brings up a remote dependency from a primary source with a
// single fallback before the client starts.
package loader

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/layer-3/faucet/core"
	"github.com/layer-3/faucet/ports"
)

// LoadFailedMessage is shown when neither source could be loaded
const LoadFailedMessage = "Erro ao carregar a biblioteca necessária. Tente novamente mais tarde ou verifique sua conexão."

// DialFunc opens the resource at source
type DialFunc[T any] func(ctx context.Context, source string) (T, error)

// Loader loads a resource once per process
type Loader[T any] struct {
	dial   DialFunc[T]
	view   ports.View
	logger watermill.LoggerAdapter

	loadMu sync.Mutex // serializes Load, held across dials

	mu       sync.Mutex // guards ready and resource only
	ready    bool
	resource T
}

// New creates a loader that reports a fatal failure through view
func New[T any](dial DialFunc[T], view ports.View, logger watermill.LoggerAdapter) *Loader[T] {
	return &Loader[T]{
		dial:   dial,
		view:   view,
		logger: logger,
	}
}

// Load dials primary, then fallback when primary fails. On success it marks the
// loader ready and calls onReady with the resource. When both fail onReady is
// not called and the error wraps core.ErrLibraryLoadFailure.
// Once ready, further calls return nil without dialing again.
func (l *Loader[T]) Load(ctx context.Context, primary, fallback string, onReady func(T) error) error {
	l.loadMu.Lock()
	defer l.loadMu.Unlock()

	if l.Ready() {
		return nil
	}

	resource, err := l.dial(ctx, primary)
	if err != nil {
		l.logger.Error("Failed to load primary source", err, watermill.LogFields{
			"source":   primary,
			"fallback": fallback,
		})
		if fallback == "" {
			return l.fail(err)
		}

		resource, err = l.dial(ctx, fallback)
		if err != nil {
			l.logger.Error("Failed to load fallback source", err, watermill.LogFields{"source": fallback})
			return l.fail(err)
		}
	}

	l.mu.Lock()
	l.ready = true
	l.resource = resource
	l.mu.Unlock()

	if err := onReady(resource); err != nil {
		return fmt.Errorf("failed to initialize after load: %w", err)
	}
	return nil
}

// Ready reports whether a source was loaded
func (l *Loader[T]) Ready() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ready
}

// Resource returns the loaded resource and whether loading succeeded
func (l *Loader[T]) Resource() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.resource, l.ready
}

func (l *Loader[T]) fail(err error) error {
	l.view.Alert(LoadFailedMessage)
	return fmt.Errorf("%w: %v", core.ErrLibraryLoadFailure, err)
}

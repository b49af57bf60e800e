package ports

import (
	"context"
	"time"
)

// EventPublisher publishes client events to other instances
type EventPublisher interface {
	PublishClaimed(ctx context.Context, address, txHash string, claimedAt time.Time) error
	PublishLogout(ctx context.Context, address string) error
}

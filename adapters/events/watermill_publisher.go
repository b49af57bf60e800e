package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/layer-3/faucet/ports"
)

const (
	// ClaimedTopic carries successful claims
	ClaimedTopic = "faucet.claimed"

	// LogoutTopic carries wallet logouts
	LogoutTopic = "faucet.logout"
)

// ClaimedEvent represents a successful claim
type ClaimedEvent struct {
	Address   string `json:"address"`
	TxHash    string `json:"tx_hash"`
	ClaimedAt int64  `json:"claimed_at"` // epoch milliseconds
}

// LogoutEvent represents a logout
type LogoutEvent struct {
	Address string `json:"address"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{
		publisher: publisher,
	}
}

// PublishClaimed publishes a claim event
func (p *WatermillPublisher) PublishClaimed(ctx context.Context, address, txHash string, claimedAt time.Time) error {
	return p.publish(ctx, ClaimedTopic, ClaimedEvent{
		Address:   address,
		TxHash:    txHash,
		ClaimedAt: claimedAt.UnixMilli(),
	})
}

// PublishLogout publishes a logout event
func (p *WatermillPublisher) PublishLogout(ctx context.Context, address string) error {
	return p.publish(ctx, LogoutTopic, LogoutEvent{Address: address})
}

func (p *WatermillPublisher) publish(ctx context.Context, topic string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/layer-3/faucet/core"
	"github.com/layer-3/faucet/ports"
)

// DashboardAuth issues and validates bearer tokens for the dashboard API
type DashboardAuth struct {
	tokenizer ports.Tokenizer
	now       func() time.Time
	ttl       time.Duration
}

// NewDashboardAuth creates a dashboard authenticator issuing tokens valid for ttl
func NewDashboardAuth(tokenizer ports.Tokenizer, ttl time.Duration) *DashboardAuth {
	return &DashboardAuth{
		tokenizer: tokenizer,
		now:       time.Now,
		ttl:       ttl,
	}
}

// IssueToken creates a new grant for subject and returns its token
func (s *DashboardAuth) IssueToken(subject string) (string, time.Time, error) {
	now := s.now()
	grant := &core.DashboardGrant{
		ID:        uuid.New().String(),
		Subject:   subject,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}

	token, err := s.tokenizer.GrantToToken(grant)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create token: %w", err)
	}

	return token, grant.ExpiresAt, nil
}

// ValidateToken parses token and checks it has not expired
func (s *DashboardAuth) ValidateToken(ctx context.Context, token string) (*core.DashboardGrant, error) {
	grant, err := s.tokenizer.TokenToGrant(token)
	if err != nil {
		return nil, err
	}

	if s.now().After(grant.ExpiresAt) {
		return nil, core.ErrTokenExpired
	}

	return grant, nil
}

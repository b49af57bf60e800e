package tokenizer

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/layer-3/faucet/core"
	"github.com/layer-3/faucet/ports"
)

// AudienceDashboard scopes tokens to the local dashboard API
const AudienceDashboard = "faucet:dashboard"

// JWTTokenizer implements the Tokenizer interface using ES256 JWTs
type JWTTokenizer struct {
	signKey *ecdsa.PrivateKey
}

// NewJWTTokenizer creates a new JWT tokenizer
func NewJWTTokenizer(signKey *ecdsa.PrivateKey) ports.Tokenizer {
	return &JWTTokenizer{signKey: signKey}
}

// GrantToToken converts a DashboardGrant to a signed JWT
func (j *JWTTokenizer) GrantToToken(grant *core.DashboardGrant) (string, error) {
	claims := DashboardClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   grant.Subject,
			ID:        grant.ID,
			ExpiresAt: jwt.NewNumericDate(grant.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(grant.IssuedAt),
			Audience:  jwt.ClaimStrings{AudienceDashboard},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)

	signedToken, err := token.SignedString(j.signKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, nil
}

// TokenToGrant verifies a JWT and converts it back to a DashboardGrant
func (j *JWTTokenizer) TokenToGrant(tokenStr string) (*core.DashboardGrant, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &DashboardClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return &j.signKey.PublicKey, nil
	}, jwt.WithAudience(AudienceDashboard))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, core.ErrTokenExpired
		}
		return nil, fmt.Errorf("failed to parse token: %v: %w", err, core.ErrInvalidToken)
	}

	if !token.Valid {
		return nil, core.ErrInvalidToken
	}

	claims, ok := token.Claims.(*DashboardClaims)
	if !ok {
		return nil, core.ErrInvalidToken
	}

	grant := &core.DashboardGrant{
		ID:      claims.ID,
		Subject: claims.Subject,
	}
	if claims.IssuedAt != nil {
		grant.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		grant.ExpiresAt = claims.ExpiresAt.Time
	}

	return grant, nil
}

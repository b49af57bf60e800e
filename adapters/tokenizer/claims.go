package tokenizer

import "github.com/golang-jwt/jwt/v5"

// DashboardClaims are the standard claims of a dashboard grant
type DashboardClaims struct {
	jwt.RegisteredClaims
}

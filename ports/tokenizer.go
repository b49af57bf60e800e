package ports

import "github.com/layer-3/faucet/core"

// Tokenizer converts between dashboard grants and bearer tokens
type Tokenizer interface {
	GrantToToken(grant *core.DashboardGrant) (string, error)
	TokenToGrant(token string) (*core.DashboardGrant, error)
}

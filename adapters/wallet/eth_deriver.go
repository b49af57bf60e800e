package wallet

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/layer-3/faucet/core"
	"github.com/layer-3/faucet/ports"
)

const privateKeyLength = 32

// EthDeriver derives Ethereum addresses from secp256k1 private keys
type EthDeriver struct{}

// NewEthDeriver creates a new deriver
func NewEthDeriver() ports.KeyDeriver {
	return EthDeriver{}
}

// Normalize prepends 0x when the key does not carry it
func Normalize(key string) string {
	if strings.HasPrefix(key, "0x") {
		return key
	}
	return "0x" + key
}

// Derive validates key as a 32-byte hex string and returns its EIP-55 address
func (EthDeriver) Derive(key string) (string, error) {
	normalized := Normalize(key)
	if len(normalized) != 2+2*privateKeyLength {
		return "", fmt.Errorf("key must be %d bytes: %w", privateKeyLength, core.ErrInvalidKeyFormat)
	}

	raw, err := hexutil.Decode(normalized)
	if err != nil {
		return "", fmt.Errorf("key is not hex: %w", core.ErrInvalidKeyFormat)
	}

	privateKey, err := crypto.ToECDSA(raw)
	if err != nil {
		// Zero or out-of-range scalars are not usable keys
		return "", fmt.Errorf("key is not a valid secp256k1 scalar: %w", core.ErrInvalidKeyFormat)
	}

	return crypto.PubkeyToAddress(privateKey.PublicKey).Hex(), nil
}

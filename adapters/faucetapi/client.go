package faucetapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/layer-3/faucet/core"
	"github.com/layer-3/faucet/ports"
)

const maxResponseBytes = 1 << 20

// Client talks to the faucet backend over JSON/HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the faucet backend at baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

var _ ports.FaucetAPI = (*Client)(nil)

type addressRequest struct {
	Address string `json:"address"`
}

type errorResponse struct {
	Error    string `json:"error"`
	TimeLeft *int64 `json:"timeLeft,omitempty"` // milliseconds
}

// Balance fetches the BALBI and USDC balances of address
func (c *Client) Balance(ctx context.Context, address string) (core.Balances, error) {
	var balances core.Balances
	if err := c.post(ctx, "/balance", address, &balances); err != nil {
		return core.Balances{}, err
	}
	return balances, nil
}

// Claim asks the faucet to send tokens to address
func (c *Client) Claim(ctx context.Context, address string) (core.ClaimReceipt, error) {
	var receipt core.ClaimReceipt
	if err := c.post(ctx, "/claim", address, &receipt); err != nil {
		return core.ClaimReceipt{}, err
	}
	return receipt, nil
}

func (c *Client) post(ctx context.Context, path, address string, out interface{}) error {
	body, err := json.Marshal(addressRequest{Address: address})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %v: %w", path, err, core.ErrNetworkFailure)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("POST %s: read body: %v: %w", path, err, core.ErrNetworkFailure)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeServerError(resp.StatusCode, payload)
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("POST %s: decode body: %v: %w", path, err, core.ErrNetworkFailure)
	}
	return nil
}

func decodeServerError(status int, payload []byte) error {
	serverErr := &core.ServerError{Status: status}

	var body errorResponse
	if err := json.Unmarshal(payload, &body); err != nil || body.Error == "" {
		serverErr.Message = http.StatusText(status)
	} else {
		serverErr.Message = body.Error
	}
	if body.TimeLeft != nil && *body.TimeLeft > 0 {
		serverErr.TimeLeft = time.Duration(*body.TimeLeft) * time.Millisecond
	}
	return serverErr
}

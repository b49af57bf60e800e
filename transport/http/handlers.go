package http

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/faucet/adapters/view"
	"github.com/layer-3/faucet/core"
	"github.com/layer-3/faucet/service"
)

// Faucet is the part of the faucet client driven by the dashboard API
type Faucet interface {
	Connect(ctx context.Context, key string) (*core.Session, error)
	Logout(ctx context.Context) error
	Claim(ctx context.Context) (*core.ClaimReceipt, error)
	Address() string
	ClaimState(ctx context.Context) core.ClaimState
	AcceptConsent(ctx context.Context) error
	HasConsent(ctx context.Context) (bool, error)
	Receipt(ctx context.Context, txHash string) (*core.TxReceipt, error)
}

// Snapshotter exposes the rendered dashboard state
type Snapshotter interface {
	Snapshot() view.Snapshot
}

// DashboardHandlers contains HTTP handlers for the dashboard API
type DashboardHandlers struct {
	faucet    Faucet
	dashboard Snapshotter
	auth      *service.DashboardAuth
}

// NewDashboardHandlers creates new dashboard handlers
func NewDashboardHandlers(faucet Faucet, dashboard Snapshotter, auth *service.DashboardAuth) *DashboardHandlers {
	return &DashboardHandlers{
		faucet:    faucet,
		dashboard: dashboard,
		auth:      auth,
	}
}

// Token issues a dashboard token to local callers
func (h *DashboardHandlers) Token(c *gin.Context) {
	ip := net.ParseIP(c.RemoteIP())
	if ip == nil || !ip.IsLoopback() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Tokens are only issued to local clients"})
		return
	}

	token, expiresAt, err := h.auth.IssueToken("dashboard")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_at":   expiresAt.Unix(),
	})
}

// Dashboard returns the current dashboard state
func (h *DashboardHandlers) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	consent, err := h.faucet.HasConsent(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read consent"})
		return
	}

	state := h.faucet.ClaimState(ctx)
	c.JSON(http.StatusOK, gin.H{
		"view":            h.dashboard.Snapshot(),
		"address":         h.faucet.Address(),
		"claim_ready":     state.Ready(),
		"claim_remaining": int64(state.Remaining.Seconds()),
		"consent":         consent,
	})
}

// Connect opens a wallet session
func (h *DashboardHandlers) Connect(c *gin.Context) {
	var req struct {
		PrivateKey string `json:"private_key" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	session, err := h.faucet.Connect(c.Request.Context(), req.PrivateKey)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errorMsg := "Failed to connect"

		switch {
		case errors.Is(err, core.ErrInvalidKeyFormat):
			statusCode = http.StatusBadRequest
			errorMsg = "Invalid private key"
		case errors.Is(err, core.ErrStoreOperationFailed):
			errorMsg = "Failed to save session"
		}

		c.JSON(statusCode, gin.H{"error": errorMsg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"address": session.Address})
}

// Logout closes the wallet session
func (h *DashboardHandlers) Logout(c *gin.Context) {
	if err := h.faucet.Logout(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to logout"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Claim requests tokens for the connected address
func (h *DashboardHandlers) Claim(c *gin.Context) {
	receipt, err := h.faucet.Claim(c.Request.Context())
	if err != nil {
		var serverErr *core.ServerError
		var cooldownErr *core.CooldownError
		switch {
		case errors.As(err, &cooldownErr):
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":     "Claim cooldown active",
				"time_left": cooldownErr.Remaining.Milliseconds(),
			})
		case errors.As(err, &serverErr):
			body := gin.H{"error": serverErr.Message}
			if serverErr.TimeLeft > 0 {
				body["time_left"] = serverErr.TimeLeft.Milliseconds()
			}
			c.JSON(serverStatus(serverErr.Status), body)
		case errors.Is(err, core.ErrNoSession):
			c.JSON(http.StatusConflict, gin.H{"error": "Connect a wallet first"})
		case errors.Is(err, service.ErrClaimInProgress):
			c.JSON(http.StatusConflict, gin.H{"error": "A claim is already in progress"})
		case errors.Is(err, core.ErrNetworkFailure):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Faucet unreachable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Claim failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"tx_hash": receipt.TxHash})
}

// Consent records that the storage notice was accepted
func (h *DashboardHandlers) Consent(c *gin.Context) {
	if err := h.faucet.AcceptConsent(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save consent"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"consent": true})
}

// Receipt looks up a claim transaction on chain
func (h *DashboardHandlers) Receipt(c *gin.Context) {
	receipt, err := h.faucet.Receipt(c.Request.Context(), c.Param("hash"))
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		case errors.Is(err, core.ErrLibraryLoadFailure):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Chain connection unavailable"})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch receipt"})
		}
		return
	}

	c.JSON(http.StatusOK, receipt)
}

// serverStatus keeps backend client errors and reports backend failures as a bad gateway
func serverStatus(status int) int {
	if status >= 400 && status < 500 {
		return status
	}
	return http.StatusBadGateway
}

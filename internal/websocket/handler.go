package websocket

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/puffbuddy/backend/internal/auth"
	"github.com/puffbuddy/backend/internal/logger"
	"github.com/puffbuddy/backend/internal/middleware"
	"github.com/puffbuddy/backend/internal/util"
)

// Handler handles WebSocket HTTP upgrade requests
type Handler struct {
	hub            *Hub
	validator      auth.TokenValidator
	originPatterns []string
}

// NewHandler creates a new WebSocket handler. originPatterns follow the
// CORS origin list; a "*" entry disables the origin check.
func NewHandler(hub *Hub, validator auth.TokenValidator, originPatterns []string) *Handler {
	return &Handler{
		hub:            hub,
		validator:      validator,
		originPatterns: originPatterns,
	}
}

// HandleWebSocket upgrades an authenticated request.
// The JWT comes from ?token=... or an Authorization: Bearer header.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	token := middleware.BearerToken(c)
	if token == "" {
		util.RespondUnauthorized(c, "No authentication token provided")
		return
	}
	user, err := h.validator.ValidateToken(token)
	if err != nil {
		logger.WarnWithFields("WebSocket auth failed", err, logger.WithIP(c.ClientIP()))
		util.RespondUnauthorized(c, "Invalid or expired token")
		return
	}

	conn, err := websocket.Accept(newUpgradeWriter(c.Writer), c.Request, h.acceptOptions())
	if err != nil {
		// Accept already wrote the error response
		logger.WarnWithFields("WebSocket upgrade failed", err, logger.WithUserID(user.ID))
		return
	}

	client := NewClient(h.hub, conn, user.ID)
	client.RemoteAddr = c.ClientIP()
	client.UserAgent = c.GetHeader("User-Agent")

	h.hub.Register(client)

	_ = client.Send(NewMessage(MessageTypeSystem, SystemPayload{
		Event:   "connected",
		Message: "Welcome to PuffBuddy!",
		Data: map[string]interface{}{
			"user_id":     user.ID,
			"server_time": time.Now().UTC().UnixMilli(),
		},
	}))

	go client.WritePump()
	client.ReadPump() // blocks until the client disconnects
}

func (h *Handler) acceptOptions() *websocket.AcceptOptions {
	opts := &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionContextTakeover,
	}
	if len(h.originPatterns) == 0 || slices.Contains(h.originPatterns, "*") {
		opts.InsecureSkipVerify = true
	} else {
		opts.OriginPatterns = h.originPatterns
	}
	return opts
}

// HandleMetrics returns WebSocket metrics for monitoring
func (h *Handler) HandleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"websocket":    h.hub.GetMetrics(),
		"online_users": len(h.hub.GetOnlineUsers()),
		"timestamp":    time.Now().UTC(),
	})
}

// Shutdown gracefully shuts down the hub behind this handler
func (h *Handler) Shutdown(ctx context.Context) error {
	return h.hub.Shutdown(ctx)
}

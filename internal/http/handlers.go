package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"wayfinder/internal/modules/chat"
	"wayfinder/internal/modules/usage"
)

// QuotaService gates submissions on the user's AI request allowance.
type QuotaService interface {
	UseToken(ctx context.Context, uid string) error
}

// ChatHandler exposes the conversational core over REST.
type ChatHandler struct {
	registry *chat.Registry
	quota    QuotaService
}

// NewChatHandler wires the handler. quota may be nil to disable metering.
func NewChatHandler(registry *chat.Registry, quota QuotaService) *ChatHandler {
	return &ChatHandler{registry: registry, quota: quota}
}

type postMessageReq struct {
	UID     string `json:"uid"`
	Message string `json:"message"`
}

// PostMessage handles POST /api/chat/messages. The submission is admitted
// into the debounce window and processed asynchronously; clients poll
// GET /api/chat/state for the outcome.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	var req postMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	req.UID = strings.TrimSpace(req.UID)
	if !isValidID(req.UID) {
		writeError(c, http.StatusBadRequest, "invalid uid")
		return
	}

	if h.quota != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if err := h.quota.UseToken(ctx, req.UID); err != nil {
			if errors.Is(err, usage.ErrInsufficientTokens) {
				writeError(c, http.StatusTooManyRequests, err.Error())
				return
			}
			writeError(c, http.StatusInternalServerError, "internal error")
			return
		}
	}

	conv := h.registry.Get(req.UID)
	if err := conv.Orchestrator.Submit(req.Message); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(c, http.StatusAccepted, map[string]any{"accepted": true})
}

// GetState handles GET /api/chat/state?uid=...; it returns the render
// snapshot for the chat and map views.
func (h *ChatHandler) GetState(c *gin.Context) {
	uid := strings.TrimSpace(c.Query("uid"))
	if !isValidID(uid) {
		writeError(c, http.StatusBadRequest, "invalid uid")
		return
	}
	// A read must not grow the registry: an unknown uid gets the initial
	// snapshot without a conversation being created for it.
	conv, ok := h.registry.Lookup(uid)
	if !ok {
		writeJSON(c, http.StatusOK, chat.NewSession().Snapshot())
		return
	}
	writeJSON(c, http.StatusOK, conv.Session.Snapshot())
}

type zoomReq struct {
	UID  string `json:"uid"`
	Zoom *int   `json:"zoom"`
}

// PostZoom handles POST /api/map/zoom: a manual zoom change reported by the
// map view, held until the next computed viewport update.
func (h *ChatHandler) PostZoom(c *gin.Context) {
	var req zoomReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	req.UID = strings.TrimSpace(req.UID)
	if !isValidID(req.UID) {
		writeError(c, http.StatusBadRequest, "invalid uid")
		return
	}
	if req.Zoom == nil || *req.Zoom < 0 || *req.Zoom > 22 {
		writeError(c, http.StatusBadRequest, "zoom must be between 0 and 22")
		return
	}
	h.registry.Get(req.UID).Session.OverrideZoom(*req.Zoom)
	writeJSON(c, http.StatusOK, map[string]any{"ok": true})
}

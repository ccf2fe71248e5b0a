package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wayfinder/internal/http/middleware"
	"wayfinder/internal/modules/chat"
)

// ServerDeps carries the collaborators the HTTP layer needs.
type ServerDeps struct {
	Registry *chat.Registry
	Quota    QuotaService
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(deps ServerDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery())

	h := NewChatHandler(deps.Registry, deps.Quota)
	r.POST("/api/chat/messages", h.PostMessage)
	r.GET("/api/chat/state", h.GetState)
	r.POST("/api/map/zoom", h.PostZoom)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}

// Package http is the thin presentation adapter over the chat core. The chat
// and map views talk to it with JSON; all state lives in the chat layer.
package http

import "github.com/gin-gonic/gin"

type errorResponse struct {
	Error string `json:"error"`
}

// isValidID ensures uids are alphanumeric and at most 64 chars.
func isValidID(v string) bool {
	if v == "" || len(v) > 64 {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '-' || c == '_' {
			continue
		}
		return false
	}
	return true
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

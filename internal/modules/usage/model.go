// Package usage meters per-user AI request quotas.
package usage

import "errors"

// ErrInsufficientTokens is returned when a user has no request tokens
// remaining for the current month.
var ErrInsufficientTokens = errors.New("insufficient tokens")

// DefaultTokens is the number of AI requests granted per month.
const DefaultTokens = 200

// Package chat is the conversational core. It owns the message list, marker
// set, route, viewport and pending-request bookkeeping, and orchestrates the
// AI → extraction → routing pipeline for each admitted user submission.
package chat

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"wayfinder/internal/geo"
)

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// MessageStatus tracks delivery of a user message. It is set only on user
// messages and moves sending → {sent | error} exactly once; it never reverts.
type MessageStatus string

const (
	StatusNone    MessageStatus = ""
	StatusSending MessageStatus = "sending"
	StatusSent    MessageStatus = "sent"
	StatusError   MessageStatus = "error"
)

// Message is a single chat entry.
type Message struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	Sender    Sender        `json:"sender"`
	Timestamp time.Time     `json:"timestamp"`
	Status    MessageStatus `json:"status,omitempty"`
}

// Marker is a pin on the map. Marker sets are always replaced whole.
type Marker struct {
	ID       string         `json:"id"`
	Position geo.Coordinate `json:"position"`
	Label    string         `json:"label,omitempty"`
}

// Viewport is the map's current center and zoom. It is owned by this layer;
// the map view only reads it and may report manual zoom changes back.
type Viewport struct {
	Center geo.Coordinate `json:"center"`
	Zoom   int            `json:"zoom"`
}

// Snapshot is an immutable copy of the shared state handed to the
// presentation layer for rendering.
type Snapshot struct {
	Messages  []Message        `json:"messages"`
	Markers   []Marker         `json:"markers"`
	Route     []geo.Coordinate `json:"route,omitempty"`
	Viewport  Viewport         `json:"viewport"`
	IsLoading bool             `json:"is_loading"`
}

func newID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

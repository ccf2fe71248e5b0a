package chat

import (
	"context"
	"sync"

	"wayfinder/internal/geo"
)

// defaultViewport frames the map before any location has been resolved.
var defaultViewport = Viewport{
	Center: geo.Coordinate{Lat: 51.505, Lng: -0.09},
	Zoom:   13,
}

// Session owns all shared conversational state: messages, markers, route,
// viewport and the pending-request set. Every pipeline-driven mutation takes
// the chain's context and refuses to write once that context is canceled, so
// a superseded chain can never mutate state after its cancellation point.
type Session struct {
	mu       sync.Mutex
	messages []Message
	markers  []Marker
	route    []geo.Coordinate
	viewport Viewport
	pending  map[string]struct{}
}

// NewSession returns an empty session with the default viewport.
func NewSession() *Session {
	return &Session{
		viewport: defaultViewport,
		pending:  make(map[string]struct{}),
	}
}

// guard is the per-mutation liveness check: a canceled chain gets its
// context error back and nothing is written.
func guard(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

// AppendMessage adds a message to the end of the conversation.
func (s *Session) AppendMessage(ctx context.Context, m Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := guard(ctx); err != nil {
		return err
	}
	s.messages = append(s.messages, m)
	return nil
}

// SetMessageStatus moves a user message out of StatusSending. The transition
// happens at most once: messages already sent or errored are left untouched.
func (s *Session) SetMessageStatus(ctx context.Context, id string, status MessageStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := guard(ctx); err != nil {
		return err
	}
	for i := range s.messages {
		if s.messages[i].ID == id && s.messages[i].Status == StatusSending {
			s.messages[i].Status = status
			break
		}
	}
	return nil
}

// ReplaceMarkers swaps the whole marker set atomically.
func (s *Session) ReplaceMarkers(ctx context.Context, markers []Marker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := guard(ctx); err != nil {
		return err
	}
	s.markers = markers
	return nil
}

// SetRoute replaces the active route; nil clears it.
func (s *Session) SetRoute(ctx context.Context, route []geo.Coordinate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := guard(ctx); err != nil {
		return err
	}
	s.route = route
	return nil
}

// SetViewport replaces the computed viewport, discarding any manual zoom
// override in effect.
func (s *Session) SetViewport(ctx context.Context, vp Viewport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := guard(ctx); err != nil {
		return err
	}
	s.viewport = vp
	return nil
}

// OverrideZoom records a manual zoom change from the map view. It holds only
// until the next computed viewport update.
func (s *Session) OverrideZoom(zoom int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport.Zoom = zoom
}

// AddPending registers an in-flight request id.
func (s *Session) AddPending(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[id] = struct{}{}
}

// RemovePending drops a request id. It runs on every pipeline exit path,
// including cancellation, so the set never retains a stale id.
func (s *Session) RemovePending(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)
}

// PendingCount reports how many requests are in flight.
func (s *Session) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Snapshot returns a deep copy of the state for the presentation layer.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Messages:  make([]Message, len(s.messages)),
		Markers:   make([]Marker, len(s.markers)),
		Viewport:  s.viewport,
		IsLoading: len(s.pending) > 0,
	}
	copy(snap.Messages, s.messages)
	copy(snap.Markers, s.markers)
	if len(s.route) > 0 {
		snap.Route = make([]geo.Coordinate, len(s.route))
		copy(snap.Route, s.route)
	}
	return snap
}

package chat

import (
	"sync"

	"wayfinder/internal/ai"
	"wayfinder/internal/routing"
)

// Conversation bundles one user's state container with its orchestrator.
// Single-flight semantics hold per conversation, not across users.
type Conversation struct {
	Session      *Session
	Orchestrator *Orchestrator
}

// Registry hands out one Conversation per user id, creating it on first use.
type Registry struct {
	responder ai.Responder
	router    routing.Router
	cfg       Config

	mu            sync.Mutex
	onReject      func(text string, err error)
	conversations map[string]*Conversation
}

// NewRegistry returns a Registry that builds conversations around the given
// collaborators.
func NewRegistry(responder ai.Responder, router routing.Router, cfg Config) *Registry {
	return &Registry{
		responder:     responder,
		router:        router,
		cfg:           cfg,
		conversations: make(map[string]*Conversation),
	}
}

// OnReject installs the rejection hook on every conversation, existing and
// future. Rejections happen after the submission was accepted, so the hook is
// the only place a refused dispatch is still observable.
func (r *Registry) OnReject(fn func(text string, err error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onReject = fn
	for _, conv := range r.conversations {
		conv.Orchestrator.OnReject(fn)
	}
}

// Get returns the conversation for uid, creating it if absent.
func (r *Registry) Get(uid string) *Conversation {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conv, ok := r.conversations[uid]; ok {
		return conv
	}
	session := NewSession()
	conv := &Conversation{
		Session:      session,
		Orchestrator: NewOrchestrator(session, r.responder, r.router, r.cfg),
	}
	if r.onReject != nil {
		conv.Orchestrator.OnReject(r.onReject)
	}
	r.conversations[uid] = conv
	return conv
}

// Lookup returns the conversation for uid if one exists. Unlike Get it never
// allocates, so read-only callers cannot grow the registry.
func (r *Registry) Lookup(uid string) (*Conversation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.conversations[uid]
	return conv, ok
}

// Close shuts down every conversation's orchestrator.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, conv := range r.conversations {
		conv.Orchestrator.Close()
	}
}

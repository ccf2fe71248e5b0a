package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"wayfinder/internal/ai"
	"wayfinder/internal/routing"
)

var (
	// ErrEmptyMessage rejects whitespace-only submissions before debouncing.
	ErrEmptyMessage = errors.New("empty message")
	// ErrCooldown rejects a dispatch that would start too soon after the
	// previous one. No state is mutated; the text is handed back through the
	// rejection hook so the user can retry.
	ErrCooldown = errors.New("cooldown active")
)

// Config holds the orchestration windows.
type Config struct {
	// DebounceWindow collapses a burst of submissions into the last one.
	DebounceWindow time.Duration
	// CooldownWindow is the minimum interval between dispatch starts.
	CooldownWindow time.Duration
	// CallTimeout bounds each outbound AI/routing call. The upstream design
	// left these calls unbounded; the timeout is an addition here.
	CallTimeout time.Duration
}

const (
	defaultDebounceWindow = 500 * time.Millisecond
	defaultCooldownWindow = 1000 * time.Millisecond
	defaultCallTimeout    = 30 * time.Second
)

func (c Config) withDefaults() Config {
	if c.DebounceWindow <= 0 {
		c.DebounceWindow = defaultDebounceWindow
	}
	if c.CooldownWindow <= 0 {
		c.CooldownWindow = defaultCooldownWindow
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = defaultCallTimeout
	}
	return c
}

// Orchestrator admits user submissions into the pipeline. It owns the
// debounce buffer, the cooldown clock, the single-flight cancellation handle
// and the pending-request bookkeeping for one conversation.
type Orchestrator struct {
	cfg       Config
	session   *Session
	responder ai.Responder
	router    routing.Router

	now func() time.Time

	mu            sync.Mutex
	debounce      *time.Timer
	pendingText   string
	pendingGen    uint64
	lastDispatch  time.Time
	hasDispatched bool
	cancelActive  context.CancelFunc
	onReject      func(text string, err error)
}

// NewOrchestrator wires an orchestrator around the given session and
// collaborators. Zero config fields fall back to the standard windows.
func NewOrchestrator(session *Session, responder ai.Responder, router routing.Router, cfg Config) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg.withDefaults(),
		session:   session,
		responder: responder,
		router:    router,
		now:       time.Now,
	}
}

// Session exposes the state container owned by this orchestrator.
func (o *Orchestrator) Session() *Session {
	return o.session
}

// OnReject registers a hook invoked when a debounced submission is refused
// at dispatch time. The submitted text is passed back for a retry notice.
func (o *Orchestrator) OnReject(fn func(text string, err error)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onReject = fn
}

// Submit admits text into the trailing debounce window. Submissions arriving
// within the window replace the buffered text; only the last one dispatches.
// Whitespace-only text is rejected immediately and never dispatched.
func (o *Orchestrator) Submit(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.pendingText = text
	o.pendingGen++
	gen := o.pendingGen
	if o.debounce != nil {
		o.debounce.Stop()
	}
	o.debounce = time.AfterFunc(o.cfg.DebounceWindow, func() { o.fire(gen) })
	return nil
}

// fire drains the debounce buffer. Stop cannot halt a timer that has already
// fired and is waiting on the lock, so each timer carries the generation of
// the text it was armed for; a stale generation means a newer submission owns
// the buffer and this timer must not drain it.
func (o *Orchestrator) fire(gen uint64) {
	o.mu.Lock()
	if gen != o.pendingGen {
		o.mu.Unlock()
		return
	}
	text := o.pendingText
	o.pendingText = ""
	reject := o.onReject
	o.mu.Unlock()

	if text == "" {
		return
	}
	if err := o.dispatch(text); err != nil && reject != nil {
		reject(text, err)
	}
}

// dispatch is the cooldown and single-flight gate. On admission it cancels
// any in-flight chain, registers a pending request id and starts the
// pipeline for text.
func (o *Orchestrator) dispatch(text string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.hasDispatched && o.now().Sub(o.lastDispatch) < o.cfg.CooldownWindow {
		return ErrCooldown
	}
	o.lastDispatch = o.now()
	o.hasDispatched = true

	if o.cancelActive != nil {
		o.cancelActive()
	}
	ctx, cancel := context.WithCancel(context.Background())
	o.cancelActive = cancel

	reqID := newID()
	o.session.AddPending(reqID)
	go o.run(ctx, reqID, text)
	return nil
}

// Close stops the debounce timer and cancels any in-flight chain.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pendingText = ""
	if o.debounce != nil {
		o.debounce.Stop()
	}
	if o.cancelActive != nil {
		o.cancelActive()
	}
}

package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"wayfinder/internal/geo"
	"wayfinder/internal/routing"
)

// fakeClock lets cooldown tests control time without sleeping.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestSubmit_EmptyTextNeverDispatches(t *testing.T) {
	responder := answerWith("should never be called")
	o, session := newTestOrchestrator(responder, &scriptedRouter{})

	for _, text := range []string{"", "   ", "\n\t "} {
		if err := o.Submit(text); !errors.Is(err, ErrEmptyMessage) {
			t.Errorf("Submit(%q) = %v, want ErrEmptyMessage", text, err)
		}
	}

	time.Sleep(20 * time.Millisecond)
	if len(responder.Calls()) != 0 {
		t.Error("whitespace submissions must never reach the responder")
	}
	if len(session.Snapshot().Messages) != 0 {
		t.Error("whitespace submissions must not produce messages")
	}
}

func TestSubmit_DebounceCollapsesToLastText(t *testing.T) {
	responder := answerWith("no coordinates here")
	session := NewSession()
	o := NewOrchestrator(session, responder, &scriptedRouter{}, Config{
		DebounceWindow: 40 * time.Millisecond,
		CooldownWindow: time.Millisecond,
		CallTimeout:    time.Second,
	})

	if err := o.Submit("first draft"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := o.Submit("second draft"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := o.Submit("final text"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	time.Sleep(80 * time.Millisecond)
	waitIdle(t, session)

	calls := responder.Calls()
	if len(calls) != 1 || calls[0] != "final text" {
		t.Fatalf("responder calls = %v, want exactly [final text]", calls)
	}
	snap := session.Snapshot()
	for _, m := range snap.Messages {
		if m.Sender == SenderUser && m.Text != "final text" {
			t.Errorf("collapsed submission %q produced a message", m.Text)
		}
	}
}

func TestDispatch_CooldownRejectsWithoutMutation(t *testing.T) {
	responder := answerWith("no coordinates here")
	o, session := newTestOrchestrator(responder, &scriptedRouter{})
	clock := &fakeClock{t: time.Unix(1000, 0)}
	o.now = clock.Now
	o.cfg.CooldownWindow = time.Second

	if err := o.dispatch("first"); err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	waitIdle(t, session)
	before := session.Snapshot()

	clock.Advance(200 * time.Millisecond)
	if err := o.dispatch("too soon"); !errors.Is(err, ErrCooldown) {
		t.Fatalf("dispatch inside cooldown = %v, want ErrCooldown", err)
	}

	after := session.Snapshot()
	if len(after.Messages) != len(before.Messages) {
		t.Error("rejected dispatch mutated the message list")
	}
	if len(responder.Calls()) != 1 {
		t.Error("rejected dispatch reached the responder")
	}

	clock.Advance(900 * time.Millisecond)
	if err := o.dispatch("after cooldown"); err != nil {
		t.Fatalf("dispatch after cooldown: %v", err)
	}
	waitIdle(t, session)
	if got := len(responder.Calls()); got != 2 {
		t.Errorf("responder calls = %d, want 2", got)
	}
}

func TestSubmit_CooldownRejectionReachesHook(t *testing.T) {
	responder := answerWith("no coordinates here")
	session := NewSession()
	o := NewOrchestrator(session, responder, &scriptedRouter{}, Config{
		DebounceWindow: time.Millisecond,
		CooldownWindow: time.Minute,
		CallTimeout:    time.Second,
	})

	rejected := make(chan string, 1)
	o.OnReject(func(text string, err error) {
		if errors.Is(err, ErrCooldown) {
			rejected <- text
		}
	})

	if err := o.Submit("first"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	waitIdle(t, session)

	if err := o.Submit("second"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	select {
	case text := <-rejected:
		if text != "second" {
			t.Errorf("rejection hook got %q, want the rejected text back", text)
		}
	case <-time.After(time.Second):
		t.Fatal("cooldown rejection never reached the hook")
	}
}

func TestSubmit_LateTimerDoesNotStealNewerText(t *testing.T) {
	responder := answerWith("no coordinates here")
	session := NewSession()
	o := NewOrchestrator(session, responder, &scriptedRouter{}, Config{
		DebounceWindow: time.Hour, // real timers must stay out of this test
		CooldownWindow: time.Millisecond,
		CallTimeout:    time.Second,
	})
	defer o.Close()

	if err := o.Submit("first draft"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := o.Submit("final text"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// Simulate the first submission's timer arriving late: it already fired
	// before Stop and only now gets the lock. Its stale generation must keep
	// it away from the newer buffered text.
	o.fire(1)
	if calls := responder.Calls(); len(calls) != 0 {
		t.Fatalf("stale timer dispatched %v", calls)
	}
	o.mu.Lock()
	buffered := o.pendingText
	o.mu.Unlock()
	if buffered != "final text" {
		t.Fatalf("buffered text = %q, want the newer submission kept", buffered)
	}

	o.fire(2)
	waitIdle(t, session)
	if calls := responder.Calls(); len(calls) != 1 || calls[0] != "final text" {
		t.Fatalf("responder calls = %v, want exactly [final text]", calls)
	}
}

func TestDispatch_SecondRequestCancelsFirst(t *testing.T) {
	firstStarted := make(chan struct{})
	responder := &scriptedResponder{fn: func(ctx context.Context, text string) (string, error) {
		if text == "slow query" {
			close(firstStarted)
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "Found it [10, 20].", nil
	}}
	o, session := newTestOrchestrator(responder, &scriptedRouter{})
	clock := &fakeClock{t: time.Unix(1000, 0)}
	o.now = clock.Now

	if err := o.dispatch("slow query"); err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	<-firstStarted

	clock.Advance(2 * time.Second)
	if err := o.dispatch("show me somewhere"); err != nil {
		t.Fatalf("second dispatch: %v", err)
	}
	waitIdle(t, session)

	snap := session.Snapshot()
	// The canceled chain appended its user message before cancellation but
	// must not have produced a reply or touched the map.
	for _, m := range snap.Messages {
		if m.Sender == SenderAssistant && m.Text == aiApology {
			t.Error("canceled chain produced an apology message")
		}
	}
	if len(snap.Markers) != 1 || snap.Markers[0].Position != (geo.Coordinate{Lat: 10, Lng: 20}) {
		t.Errorf("markers = %+v, want only the second request's result", snap.Markers)
	}
	if snap.IsLoading {
		t.Error("pending set must be empty after both chains exit")
	}
}

func TestDispatch_PendingDrainedOnAllPaths(t *testing.T) {
	cases := []struct {
		name      string
		responder *scriptedResponder
		router    *scriptedRouter
	}{
		{
			name:      "success",
			responder: answerWith("plain answer"),
			router:    &scriptedRouter{},
		},
		{
			name: "ai failure",
			responder: &scriptedResponder{fn: func(context.Context, string) (string, error) {
				return "", errors.New("down")
			}},
			router: &scriptedRouter{},
		},
		{
			name:      "routing failure",
			responder: answerWith("Waypoints: [1, 1] to [2, 2]"),
			router: &scriptedRouter{fn: func(context.Context, geo.Coordinate, geo.Coordinate) (*routing.Result, error) {
				return nil, errors.New("down")
			}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o, session := newTestOrchestrator(tc.responder, tc.router)
			if err := o.dispatch("anything"); err != nil {
				t.Fatalf("dispatch: %v", err)
			}
			waitIdle(t, session)
			if session.PendingCount() != 0 {
				t.Error("pending id retained after terminal transition")
			}
		})
	}
}

func TestRegistry_OneConversationPerUser(t *testing.T) {
	r := NewRegistry(answerWith("hi"), &scriptedRouter{}, Config{})
	a := r.Get("user-a")
	if a == nil || a.Session == nil || a.Orchestrator == nil {
		t.Fatal("registry returned an incomplete conversation")
	}
	if r.Get("user-a") != a {
		t.Error("same uid must map to the same conversation")
	}
	if r.Get("user-b") == a {
		t.Error("different uids must not share a conversation")
	}
}

func TestRegistry_LookupNeverCreates(t *testing.T) {
	r := NewRegistry(answerWith("hi"), &scriptedRouter{}, Config{})

	if _, ok := r.Lookup("ghost"); ok {
		t.Fatal("Lookup reported a conversation that was never created")
	}
	if n := len(r.conversations); n != 0 {
		t.Fatalf("registry holds %d conversations after a lookup, want 0", n)
	}

	created := r.Get("user-a")
	found, ok := r.Lookup("user-a")
	if !ok || found != created {
		t.Error("Lookup must return the conversation Get created")
	}
}

func TestRegistry_RejectHookReachesConversations(t *testing.T) {
	responder := answerWith("no coordinates here")
	r := NewRegistry(responder, &scriptedRouter{}, Config{
		DebounceWindow: time.Millisecond,
		CooldownWindow: time.Minute,
		CallTimeout:    time.Second,
	})
	defer r.Close()

	// The conversation exists before the hook is installed; registration must
	// reach it anyway.
	conv := r.Get("user-a")

	rejected := make(chan string, 1)
	r.OnReject(func(text string, err error) {
		if errors.Is(err, ErrCooldown) {
			rejected <- text
		}
	})

	if err := conv.Orchestrator.Submit("first"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		conv.Orchestrator.mu.Lock()
		dispatched := conv.Orchestrator.hasDispatched
		conv.Orchestrator.mu.Unlock()
		if dispatched {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("first submission never dispatched")
		}
		time.Sleep(2 * time.Millisecond)
	}

	if err := conv.Orchestrator.Submit("second"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	select {
	case text := <-rejected:
		if text != "second" {
			t.Errorf("rejection hook got %q, want the rejected text back", text)
		}
	case <-time.After(time.Second):
		t.Fatal("registry-installed hook never saw the cooldown rejection")
	}
}

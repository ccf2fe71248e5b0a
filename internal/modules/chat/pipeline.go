package chat

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"wayfinder/internal/extract"
	"wayfinder/internal/geo"
)

// User-visible fallback texts.
const (
	aiApology          = "Sorry, I couldn't reach the assistant just now. Please try again."
	routeApologySuffix = "\n\nI couldn't fetch turn-by-turn directions, so I've drawn a straight line between the two points instead."
	genericApology     = "Sorry, something went wrong while handling that request."
)

// run executes one pipeline chain. The pending request id is released on
// every exit path — success, failure, panic or cancellation — exactly once.
// Each state mutation re-checks ctx, so a chain superseded mid-flight stops
// writing and its late-arriving results are discarded.
func (o *Orchestrator) run(ctx context.Context, reqID, text string) {
	defer o.session.RemovePending(reqID)

	userMsg := Message{
		ID:        newID(),
		Text:      text,
		Sender:    SenderUser,
		Timestamp: time.Now(),
		Status:    StatusSending,
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("chat: pipeline panic: %v", r)
			_ = o.session.AppendMessage(ctx, assistantMessage(genericApology))
			_ = o.session.SetMessageStatus(ctx, userMsg.ID, StatusError)
		}
	}()

	phase := PhaseDispatched
	advance := func(next Phase) {
		if !CanTransition(phase, next) {
			log.Printf("chat: illegal phase transition %s -> %s", phase, next)
		}
		phase = next
	}

	if err := o.session.AppendMessage(ctx, userMsg); err != nil {
		return // superseded before the first write
	}
	advance(PhaseAwaitingAI)

	aiCtx, cancelAI := context.WithTimeout(ctx, o.cfg.CallTimeout)
	answer, err := o.responder.Query(aiCtx, text)
	cancelAI()
	if err != nil {
		if ctx.Err() != nil {
			return // canceled chains stay silent
		}
		advance(PhaseResolvedError)
		log.Printf("chat: ai query failed: %v", err)
		_ = o.session.AppendMessage(ctx, assistantMessage(aiApology))
		_ = o.session.SetMessageStatus(ctx, userMsg.ID, StatusError)
		return
	}

	coords := extract.Pairs(answer)
	switch {
	case len(coords) == 0:
		advance(PhaseParsedNone)
		if err := o.session.AppendMessage(ctx, assistantMessage(answer)); err != nil {
			return
		}
		_ = o.session.SetMessageStatus(ctx, userMsg.ID, StatusSent)
		advance(PhaseResolvedSent)

	case len(coords) == 1:
		advance(PhaseParsedOne)
		loc := coords[0]
		marker := Marker{ID: newID(), Position: loc, Label: placeLabel(text)}
		if err := o.session.ReplaceMarkers(ctx, []Marker{marker}); err != nil {
			return
		}
		_ = o.session.SetRoute(ctx, nil)
		_ = o.session.SetViewport(ctx, Viewport{Center: loc, Zoom: geo.ZoomForPlace(text)})
		_ = o.session.AppendMessage(ctx, assistantMessage(answer))
		_ = o.session.SetMessageStatus(ctx, userMsg.ID, StatusSent)
		advance(PhaseResolvedSent)

	default:
		advance(PhaseParsedMany)
		start, end := coords[0], coords[1]
		markers := []Marker{
			{ID: newID(), Position: start, Label: "Start"},
			{ID: newID(), Position: end, Label: "End"},
		}
		if err := o.session.ReplaceMarkers(ctx, markers); err != nil {
			return
		}
		// Frame everything the answer mentioned while the route loads.
		_ = o.session.SetViewport(ctx, Viewport{
			Center: geo.CenterOf(coords...),
			Zoom:   geo.ZoomForDistance(geo.HaversineKm(start, end)),
		})

		advance(PhaseAwaitingRoute)
		routeCtx, cancelRoute := context.WithTimeout(ctx, o.cfg.CallTimeout)
		res, err := o.router.GetRoute(routeCtx, start, end)
		cancelRoute()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			advance(PhaseRouteFailed)
			log.Printf("chat: routing failed, degrading to straight line: %v", err)
			if err := o.session.SetRoute(ctx, []geo.Coordinate{start, end}); err != nil {
				return
			}
			_ = o.session.SetViewport(ctx, routeViewport(start, end))
			_ = o.session.AppendMessage(ctx, assistantMessage(answer+routeApologySuffix))
			// The AI answer itself succeeded; routing degradation is not a
			// send failure.
			_ = o.session.SetMessageStatus(ctx, userMsg.ID, StatusSent)
			advance(PhaseResolvedSent)
			return
		}

		advance(PhaseRouteOk)
		if err := o.session.SetRoute(ctx, res.Path); err != nil {
			return
		}
		_ = o.session.SetViewport(ctx, routeViewport(start, end))
		summary := fmt.Sprintf("%s\n\nDistance: %.1f km, about %.0f min by car.", answer, res.DistanceKm, res.DurationMin)
		_ = o.session.AppendMessage(ctx, assistantMessage(summary))
		_ = o.session.SetMessageStatus(ctx, userMsg.ID, StatusSent)
		advance(PhaseResolvedSent)
	}
}

// routeViewport frames a route from its two endpoints only, matching the
// two-endpoint basis of the route-mode zoom.
func routeViewport(start, end geo.Coordinate) Viewport {
	return Viewport{
		Center: geo.CenterOf(start, end),
		Zoom:   geo.ZoomForDistance(geo.HaversineKm(start, end)),
	}
}

func assistantMessage(text string) Message {
	return Message{
		ID:        newID(),
		Text:      text,
		Sender:    SenderAssistant,
		Timestamp: time.Now(),
	}
}

// leadingQueryPhrases are stripped from the user's query when deriving a
// marker label.
var leadingQueryPhrases = []string{"where is", "where's", "show me", "find", "locate"}

// placeLabel derives a marker label from the user's query text by stripping
// a leading query verb and trailing punctuation.
func placeLabel(query string) string {
	label := strings.TrimSpace(query)
	lower := strings.ToLower(label)
	for _, phrase := range leadingQueryPhrases {
		if strings.HasPrefix(lower, phrase+" ") {
			label = strings.TrimSpace(label[len(phrase):])
			break
		}
	}
	return strings.TrimRight(label, "?!. ")
}

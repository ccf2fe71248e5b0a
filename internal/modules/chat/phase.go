package chat

// Phase names a stage of the message pipeline.
type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseDispatched    Phase = "dispatched"
	PhaseAwaitingAI    Phase = "awaiting_ai"
	PhaseParsedNone    Phase = "parsed_none"
	PhaseParsedOne     Phase = "parsed_one"
	PhaseParsedMany    Phase = "parsed_many"
	PhaseAwaitingRoute Phase = "awaiting_route"
	PhaseRouteOk       Phase = "route_ok"
	PhaseRouteFailed   Phase = "route_failed"
	PhaseResolvedSent  Phase = "resolved_sent"
	PhaseResolvedError Phase = "resolved_error"
)

// AllowedTransitions represents the pipeline flow (diagram) as code. Every
// phase may also fail over to PhaseResolvedError through the catch-all path.
var AllowedTransitions = map[Phase][]Phase{
	PhaseIdle:          {PhaseDispatched},
	PhaseDispatched:    {PhaseAwaitingAI, PhaseResolvedError},
	PhaseAwaitingAI:    {PhaseParsedNone, PhaseParsedOne, PhaseParsedMany, PhaseResolvedError},
	PhaseParsedNone:    {PhaseResolvedSent, PhaseResolvedError},
	PhaseParsedOne:     {PhaseResolvedSent, PhaseResolvedError},
	PhaseParsedMany:    {PhaseAwaitingRoute, PhaseResolvedError},
	PhaseAwaitingRoute: {PhaseRouteOk, PhaseRouteFailed, PhaseResolvedError},
	PhaseRouteOk:       {PhaseResolvedSent, PhaseResolvedError},
	PhaseRouteFailed:   {PhaseResolvedSent, PhaseResolvedError},
}

// CanTransition reports whether the pipeline may move from one phase to the next.
func CanTransition(from, to Phase) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, p := range next {
		if p == to {
			return true
		}
	}
	return false
}

// Terminal reports whether a phase ends the pipeline.
func (p Phase) Terminal() bool {
	return p == PhaseResolvedSent || p == PhaseResolvedError
}

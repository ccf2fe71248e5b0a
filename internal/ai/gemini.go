package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

const geminiModel = "gemini-2.0-flash"

// systemPrompt pins the two answer templates the rest of the pipeline relies
// on: a single-location answer embeds one bracketed pair, a navigation answer
// embeds two under a "Waypoints" label. The extraction layer only trusts
// well-formed bracketed pairs, so deviations degrade gracefully.
const systemPrompt = `Role: You are a friendly map assistant. You help users locate places and plan routes between them.

RESPONSE TEMPLATES (MUST FOLLOW):

1. When the user asks about a SINGLE place, answer conversationally and embed
   its coordinates exactly once as a bracketed pair:
   Example: "The Eiffel Tower is in Paris, France [48.8584, 2.2945]. It was completed in 1889."

2. When the user asks for DIRECTIONS between two places, describe the trip and
   list both endpoints under a Waypoints label:
   Example: "Here is the route from London to Paris.
   Waypoints: [51.5074, -0.1278] to [48.8566, 2.3522]"

RULES:
- Coordinates are decimal degrees, latitude first: [lat, lng].
- Latitude must be within -90..90 and longitude within -180..180.
- Never invent bracketed numeric pairs for anything other than coordinates.
- If you cannot identify the place, say so plainly and include no bracketed pair.
- Keep answers to a few sentences.`

// GeminiResponder implements Responder using Google's Gemini models.
type GeminiResponder struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	limiter *rate.Limiter
}

// NewGeminiResponder initializes a new Gemini client. apiKey should be
// provided from environment variables. requestsPerSec bounds the outbound
// call rate; zero disables the limit.
func NewGeminiResponder(ctx context.Context, apiKey string, requestsPerSec float64) (*GeminiResponder, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	// Gemini 2.0 Flash for low latency and cost efficiency.
	model := client.GenerativeModel(geminiModel)
	model.SetTemperature(0.4)

	limit := rate.Inf
	if requestsPerSec > 0 {
		limit = rate.Limit(requestsPerSec)
	}

	return &GeminiResponder{
		client:  client,
		model:   model,
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}

// Close cleans up the Gemini client resources.
func (r *GeminiResponder) Close() {
	r.client.Close()
}

// Query sends the user text to Gemini and returns the reply text.
func (r *GeminiResponder) Query(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini: empty message")
	}
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("gemini: rate limit wait: %w", err)
	}

	fullPrompt := fmt.Sprintf("%s\n\nUser Message: %s", systemPrompt, text)

	resp, err := r.model.GenerateContent(ctx, genai.Text(fullPrompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini: API returned empty candidates")
	}

	var parts []string
	for _, part := range resp.Candidates[0].Content.Parts {
		txt, ok := part.(genai.Text)
		if !ok || strings.TrimSpace(string(txt)) == "" {
			continue
		}
		parts = append(parts, string(txt))
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("gemini: API returned empty text parts")
	}

	return strings.Join(parts, "\n"), nil
}

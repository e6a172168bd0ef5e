package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var ErrNoDestination = errors.New("no destination in utterance")

// GeminiExtractor implements IntentExtractor using Google's Gemini models.
type GeminiExtractor struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiExtractor initializes a new Gemini client.
// apiKey should be provided from environment variables.
func NewGeminiExtractor(ctx context.Context, apiKey string) (*GeminiExtractor, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	// Flash keeps voice search latency low.
	model := client.GenerativeModel("gemini-2.0-flash")
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = intentSchema
	model.SetTemperature(0.2)

	return &GeminiExtractor{
		client: client,
		model:  model,
	}, nil
}

var intentSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"destination": {
			Type:        genai.TypeString,
			Description: "Final destination name",
		},
		"vehiclePreference": {
			Type:        genai.TypeString,
			Description: "One of: CAR, BIKE, AUTO, ANY",
			Enum:        []string{PreferenceCar, PreferenceBike, PreferenceAuto, PreferenceAny},
		},
		"isImmediate": {
			Type:        genai.TypeBoolean,
			Description: "Whether the user wants to leave now",
		},
	},
	Required: []string{"destination"},
}

// Close cleans up the Gemini client resources.
func (g *GeminiExtractor) Close() {
	g.client.Close()
}

func (g *GeminiExtractor) ExtractRideIntent(ctx context.Context, utterance string) (*Intent, error) {
	prompt := fmt.Sprintf("Extract ride information from this user request: %q.", utterance)

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response candidates from Gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		}
	}
	return parseIntent(responseText.String())
}

func parseIntent(raw string) (*Intent, error) {
	cleanJSON := cleanJSONString(raw)

	var intent Intent
	if err := json.Unmarshal([]byte(cleanJSON), &intent); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w. Raw: %s", err, cleanJSON)
	}
	intent.Destination = strings.TrimSpace(intent.Destination)
	if intent.Destination == "" {
		return nil, ErrNoDestination
	}
	if intent.VehiclePreference == "" {
		intent.VehiclePreference = PreferenceAny
	}
	return &intent, nil
}

// cleanJSONString removes markdown code blocks if present (e.g. ```json ... ```)
func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}

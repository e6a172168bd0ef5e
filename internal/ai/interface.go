package ai

import (
	"context"
)

// IntentExtractor turns a spoken ride request into structured booking hints.
// This interface allows swapping the model provider.
type IntentExtractor interface {
	ExtractRideIntent(ctx context.Context, utterance string) (*Intent, error)
}

// README: Voice search demo; extracts a ride intent with Gemini and shows the passenger flow it produces.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"oortgo/internal/ai"
	"oortgo/internal/modules/passenger"
)

func main() {
	apiKey := os.Getenv("OORT_GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal("OORT_GEMINI_API_KEY environment variable not set")
	}

	utterance := "Mujhe Connaught Place jaana hai, auto chahiye"
	if len(os.Args) > 1 {
		utterance = strings.Join(os.Args[1:], " ")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	extractor, err := ai.NewGeminiExtractor(ctx, apiKey)
	if err != nil {
		log.Fatalf("Failed to initialize Gemini: %v", err)
	}
	defer extractor.Close()

	flow := passenger.NewFlow(passenger.Deps{Intents: extractor}, passenger.DefaultOptions())

	fmt.Printf("User: %s\n", utterance)
	intent, err := flow.VoiceSearch(ctx, utterance)
	if err != nil {
		log.Fatalf("Voice search failed: %v", err)
	}
	fmt.Printf("Destination: %s\n", intent.Destination)
	fmt.Printf("Vehicle preference: %s\n", intent.VehiclePreference)
	fmt.Printf("Immediate: %v\n", intent.IsImmediate)

	snap, _ := json.MarshalIndent(flow.Snapshot(), "", "  ")
	fmt.Printf("Passenger state:\n%s\n", snap)
}

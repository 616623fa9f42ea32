// Package planner is a thin proxy to an external chat-completions model API
// that turns travel preferences into itinerary content. The prompt is kept
// minimal; the gateway's job is transport, response cleanup and parsing.
package planner

import (
	"context"
)

// Preferences describe what kind of itinerary to generate
type Preferences struct {
	Destination string
	Duration    int
	Budget      string
	Interests   []string
	GroupSize   string
	StartDate   string
}

// Gateway defines the interface for itinerary generation
type Gateway interface {
	// GeneratePlan generates itinerary content for the given preferences.
	// The returned bytes are valid JSON: either the model's structured
	// plan, or a {"overview", "rawContent", ...} fallback when the model
	// output could not be parsed.
	GeneratePlan(ctx context.Context, prefs *Preferences) ([]byte, error)

	// Name returns the gateway name
	Name() string
}

package planner

import (
	"context"
	"encoding/json"
	"fmt"
)

// MockGateway implements Gateway for testing and for running without an
// API key configured.
type MockGateway struct {
	// Err, when set, is returned by every call
	Err error
}

// NewMockGateway creates a new mock gateway
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// Name returns the gateway name
func (g *MockGateway) Name() string {
	return "mock"
}

// GeneratePlan returns a canned single-day plan
func (g *MockGateway) GeneratePlan(ctx context.Context, prefs *Preferences) ([]byte, error) {
	if g.Err != nil {
		return nil, g.Err
	}

	plan, err := json.Marshal(map[string]interface{}{
		"overview":           fmt.Sprintf("%d days in %s", prefs.Duration, prefs.Destination),
		"totalEstimatedCost": "unknown",
		"days": []map[string]interface{}{
			{
				"day":   1,
				"title": "Arrival and orientation",
				"activities": []map[string]string{
					{"time": "10:00", "activity": "City walk", "location": prefs.Destination},
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

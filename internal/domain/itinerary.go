package domain

import (
	"encoding/json"
	"time"
)

// Budget levels accepted for itinerary generation
const (
	BudgetLow      = "budget"
	BudgetModerate = "moderate"
	BudgetLuxury   = "luxury"
)

// Group sizes accepted for itinerary generation
const (
	GroupSolo   = "solo"
	GroupCouple = "couple"
	GroupFamily = "family"
	GroupGroup  = "group"
)

// Itinerary represents a saved, generated travel plan owned by a user.
// Plan holds the model output as JSON; when the model response cannot be
// parsed it contains a rawContent fallback instead of structured days.
type Itinerary struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Destination string          `json:"destination"`
	Duration    int             `json:"duration"`
	Budget      string          `json:"budget"`
	Interests   []string        `json:"interests"`
	GroupSize   string          `json:"group_size"`
	StartDate   time.Time       `json:"start_date"`
	Plan        json.RawMessage `json:"plan"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ValidBudget reports whether b is one of the accepted budget levels
func ValidBudget(b string) bool {
	return b == BudgetLow || b == BudgetModerate || b == BudgetLuxury
}

// ValidGroupSize reports whether g is one of the accepted group sizes
func ValidGroupSize(g string) bool {
	return g == GroupSolo || g == GroupCouple || g == GroupFamily || g == GroupGroup
}

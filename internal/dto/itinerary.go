package dto

import (
	"encoding/json"
	"time"

	"github.com/omkarr10/Vagabond/internal/domain"
)

// GenerateItineraryRequest represents an itinerary generation request
type GenerateItineraryRequest struct {
	Destination string   `json:"destination" binding:"required"`
	Duration    int      `json:"duration" binding:"required,min=1,max=30"`
	Budget      string   `json:"budget" binding:"required"`
	Interests   []string `json:"interests"`
	GroupSize   string   `json:"group_size" binding:"required"`
	StartDate   string   `json:"start_date" binding:"required"`
}

// Validate checks enum fields and parses the start date
func (r *GenerateItineraryRequest) Validate() (time.Time, bool, string) {
	if !domain.ValidBudget(r.Budget) {
		return time.Time{}, false, "Budget must be one of: budget, moderate, luxury"
	}
	if !domain.ValidGroupSize(r.GroupSize) {
		return time.Time{}, false, "Group size must be one of: solo, couple, family, group"
	}
	start, err := time.Parse(time.RFC3339, r.StartDate)
	if err != nil {
		// Date-only form is accepted too
		start, err = time.Parse("2006-01-02", r.StartDate)
		if err != nil {
			return time.Time{}, false, "Start date must be RFC3339 or YYYY-MM-DD"
		}
	}
	return start, true, ""
}

// ItineraryResponse represents a saved itinerary in responses
type ItineraryResponse struct {
	ID          string          `json:"id"`
	Destination string          `json:"destination"`
	Duration    int             `json:"duration"`
	Budget      string          `json:"budget"`
	Interests   []string        `json:"interests"`
	GroupSize   string          `json:"group_size"`
	StartDate   string          `json:"start_date"`
	Plan        json.RawMessage `json:"plan"`
	CreatedAt   string          `json:"created_at"`
}

// ToItineraryResponse converts a domain itinerary to its response form
func ToItineraryResponse(it *domain.Itinerary) ItineraryResponse {
	return ItineraryResponse{
		ID:          it.ID,
		Destination: it.Destination,
		Duration:    it.Duration,
		Budget:      it.Budget,
		Interests:   it.Interests,
		GroupSize:   it.GroupSize,
		StartDate:   it.StartDate.Format(time.RFC3339),
		Plan:        it.Plan,
		CreatedAt:   it.CreatedAt.Format(time.RFC3339),
	}
}

// ToItineraryResponses converts a list of domain itineraries
func ToItineraryResponses(its []*domain.Itinerary) []ItineraryResponse {
	out := make([]ItineraryResponse, 0, len(its))
	for _, it := range its {
		out = append(out, ToItineraryResponse(it))
	}
	return out
}

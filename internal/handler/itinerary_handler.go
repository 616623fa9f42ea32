package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/omkarr10/Vagabond/internal/domain"
	"github.com/omkarr10/Vagabond/internal/dto"
	"github.com/omkarr10/Vagabond/internal/logger"
	"github.com/omkarr10/Vagabond/internal/middleware"
	"github.com/omkarr10/Vagabond/internal/response"
	"github.com/omkarr10/Vagabond/internal/service"
)

// ItineraryHandler handles itinerary HTTP requests
type ItineraryHandler struct {
	itineraryService service.ItineraryService
	log              *logger.Logger
}

// NewItineraryHandler creates a new ItineraryHandler
func NewItineraryHandler(itineraryService service.ItineraryService, log *logger.Logger) *ItineraryHandler {
	return &ItineraryHandler{itineraryService: itineraryService, log: log}
}

// Generate creates a new itinerary through the planner
// POST /api/itineraries/generate
func (h *ItineraryHandler) Generate(c *gin.Context) {
	var req dto.GenerateItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Destination, duration, budget, group size and start date are required")
		return
	}

	startDate, valid, msg := req.Validate()
	if !valid {
		response.BadRequest(c, msg)
		return
	}

	userID := middleware.GetUserID(c)

	it, err := h.itineraryService.Generate(c.Request.Context(), userID, &req, startDate)
	if err != nil {
		if errors.Is(err, domain.ErrPlannerUnavailable) {
			h.log.Warn("planner unavailable", zap.Error(err))
			response.Error(c, http.StatusBadGateway, "PLANNER_UNAVAILABLE", "Itinerary generation is temporarily unavailable")
			return
		}
		h.log.Error("generate itinerary failed", zap.Error(err))
		response.InternalError(c)
		return
	}

	response.Success(c, dto.ToItineraryResponse(it))
}

// List returns the user's itineraries, newest first
// GET /api/itineraries
func (h *ItineraryHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)

	its, err := h.itineraryService.List(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("list itineraries failed", zap.Error(err))
		response.InternalError(c)
		return
	}

	response.Success(c, dto.ToItineraryResponses(its))
}

// Get returns a single itinerary owned by the user
// GET /api/itineraries/:id
func (h *ItineraryHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id := c.Param("id")

	it, err := h.itineraryService.Get(c.Request.Context(), id, userID)
	if err != nil {
		if errors.Is(err, domain.ErrItineraryNotFound) {
			response.NotFound(c, "Itinerary not found")
			return
		}
		h.log.Error("get itinerary failed", zap.Error(err))
		response.InternalError(c)
		return
	}

	response.Success(c, dto.ToItineraryResponse(it))
}

// Delete removes an itinerary owned by the user
// DELETE /api/itineraries/:id
func (h *ItineraryHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id := c.Param("id")

	if err := h.itineraryService.Delete(c.Request.Context(), id, userID); err != nil {
		if errors.Is(err, domain.ErrItineraryNotFound) {
			response.NotFound(c, "Itinerary not found")
			return
		}
		h.log.Error("delete itinerary failed", zap.Error(err))
		response.InternalError(c)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

// Package handler provides HTTP handlers for playoff endpoints.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	divisionModel "github.com/jarruego/tiktok-league/internal/division/model"
	matchModel "github.com/jarruego/tiktok-league/internal/match/model"
	playoffModel "github.com/jarruego/tiktok-league/internal/playoff/model"
	"github.com/jarruego/tiktok-league/internal/playoff/service"
)

// Handler handles HTTP requests for playoff endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new playoff handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Organize handles POST /playoffs/organize request.
// @Summary Build the promotion playoff bracket of a division
// @Tags Playoffs
// @Accept json
// @Produce json
// @Param request body playoffModel.OrganizeRequest true "Request"
// @Success 201 {object} service.OrganizeResult "Bracket created"
// @Success 200 {object} service.OrganizeResult "Division not ready, reasons listed"
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 409 {object} ErrorResponse "Bracket already organized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /playoffs/organize [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) Organize(c *gin.Context) {
	var req playoffModel.OrganizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.Organize(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, playoffModel.ErrAlreadyOrganized):
			errorResponse(c, "ALREADY_GENERATED", "playoffs already organized", http.StatusConflict)
		case errors.Is(err, playoffModel.ErrNoPlayoffSlots):
			errorResponse(c, "INVALID_REQUEST", "division has no playoff slots", http.StatusBadRequest)
		case errors.Is(err, divisionModel.ErrInvalidDivisionConfig):
			errorResponse(c, "INVALID_REQUEST", err.Error(), http.StatusBadRequest)
		case errors.Is(err, divisionModel.ErrDivisionNotFound):
			notFoundResponse(c, "division not found")
		default:
			h.logger.Errorw("error organizing playoffs", "division_id", req.DivisionID, "error", err)
			errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		}
		return
	}

	if !result.Ready {
		c.JSON(http.StatusOK, result)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// RecordResult handles POST /playoffs/result request.
// @Summary Record the result of a playoff match
// @Tags Playoffs
// @Accept json
// @Produce json
// @Param request body playoffModel.RecordResultRequest true "Request"
// @Success 200 {object} service.RecordOutcome "Recorded match, decided tie and next round when advanced"
// @Failure 400 {object} ErrorResponse "Bad request (PLAYOFF_DRAW_NOT_ALLOWED, INVALID_REQUEST)"
// @Failure 404 {object} ErrorResponse "Match not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /playoffs/result [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) RecordResult(c *gin.Context) {
	var req playoffModel.RecordResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	outcome, err := h.service.RecordResult(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, matchModel.ErrMatchNotFound):
			notFoundResponse(c, "match not found")
		case errors.Is(err, playoffModel.ErrNotPlayoffMatch):
			errorResponse(c, "INVALID_REQUEST", "match is not a playoff match", http.StatusBadRequest)
		case errors.Is(err, playoffModel.ErrPlayoffDrawNotAllowed):
			errorResponse(c, "PLAYOFF_DRAW_NOT_ALLOWED", err.Error(), http.StatusBadRequest)
		case errors.Is(err, playoffModel.ErrUnexpectedPenalties):
			errorResponse(c, "INVALID_REQUEST", err.Error(), http.StatusBadRequest)
		case errors.Is(err, matchModel.ErrInvalidGoals):
			errorResponse(c, "INVALID_REQUEST", "goals must be non-negative", http.StatusBadRequest)
		case errors.Is(err, matchModel.ErrMatchAlreadyFinished):
			errorResponse(c, "INVALID_REQUEST", "match already finished", http.StatusConflict)
		default:
			h.logger.Errorw("error recording playoff result", "match_id", req.MatchID, "error", err)
			errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// GetStage handles GET /playoffs/stage request.
// @Summary Get the playoff stage of a division
// @Tags Playoffs
// @Produce json
// @Param division_id query int true "Division ID"
// @Param season_id query int true "Season ID"
// @Success 200 {object} map[string]string "Stage wrapped in stage object"
// @Failure 400 {object} ErrorResponse "Bad request (missing parameters)"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /playoffs/stage [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) GetStage(c *gin.Context) {
	divisionID, seasonID, ok := stageParams(c)
	if !ok {
		return
	}

	stage, err := h.service.Stage(c.Request.Context(), divisionID, seasonID)
	if err != nil {
		if errors.Is(err, divisionModel.ErrDivisionNotFound) {
			notFoundResponse(c, "division not found")
			return
		}
		h.logger.Errorw("error deriving playoff stage", "division_id", divisionID, "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, map[string]string{
		"stage": stage,
	})
}

func stageParams(c *gin.Context) (divisionID, seasonID int64, ok bool) {
	divisionID = queryID(c, "division_id")
	seasonID = queryID(c, "season_id")
	if divisionID <= 0 || seasonID <= 0 {
		errorResponse(c, "INVALID_REQUEST", "division_id and season_id parameters are required", http.StatusBadRequest)
		return 0, 0, false
	}
	return divisionID, seasonID, true
}

func queryID(c *gin.Context, name string) int64 {
	value, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil {
		return 0
	}
	return value
}

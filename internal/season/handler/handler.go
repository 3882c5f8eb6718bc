// Package handler provides HTTP handlers for season endpoints.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	seasonModel "github.com/jarruego/tiktok-league/internal/season/model"
	"github.com/jarruego/tiktok-league/internal/season/service"
)

// Handler handles HTTP requests for season endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new season handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// ClosureReport handles GET /seasons/closure-report request.
// @Summary Get the end-of-season closure report
// @Tags Seasons
// @Produce json
// @Param season_id query int true "Season ID"
// @Success 200 {object} seasonModel.ClosureReport "Closure report"
// @Failure 400 {object} ErrorResponse "Bad request (missing season_id)"
// @Failure 404 {object} ErrorResponse "Season not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /seasons/closure-report [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) ClosureReport(c *gin.Context) {
	seasonID, err := strconv.ParseInt(c.Query("season_id"), 10, 64)
	if err != nil || seasonID <= 0 {
		errorResponse(c, "INVALID_REQUEST", "season_id parameter is required", http.StatusBadRequest)
		return
	}

	report, err := h.service.ClosureReport(c.Request.Context(), seasonID)
	if err != nil {
		if errors.Is(err, seasonModel.ErrSeasonNotFound) {
			notFoundResponse(c, "season not found")
			return
		}
		h.logger.Errorw("error building closure report", "season_id", seasonID, "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, report)
}

// Transition handles POST /seasons/transition request.
// @Summary Close the season and open the next one
// @Tags Seasons
// @Accept json
// @Produce json
// @Param request body seasonModel.TransitionRequest true "Request"
// @Success 201 {object} seasonModel.TransitionResponse "New season"
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 404 {object} ErrorResponse "Season not found"
// @Failure 409 {object} ErrorResponse "Transition blocked or season already completed"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /seasons/transition [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) Transition(c *gin.Context) {
	var req seasonModel.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.ExecuteTransition(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, seasonModel.ErrSeasonNotFound):
			notFoundResponse(c, "season not found")
		case errors.Is(err, seasonModel.ErrSeasonCompleted):
			errorResponse(c, "TRANSITION_BLOCKED", "season already completed", http.StatusConflict)
		case errors.Is(err, seasonModel.ErrTransitionBlocked):
			errorResponse(c, "TRANSITION_BLOCKED", err.Error(), http.StatusConflict)
		case errors.Is(err, seasonModel.ErrPromotionOverflow):
			h.logger.Errorw("transition rejected by slot overflow", "season_id", req.SeasonID, "error", err)
			errorResponse(c, "TRANSITION_BLOCKED", err.Error(), http.StatusConflict)
		default:
			h.logger.Errorw("error executing season transition", "season_id", req.SeasonID, "error", err)
			errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetActiveSeason handles GET /seasons/active request.
// @Summary Get the active season
// @Tags Seasons
// @Produce json
// @Success 200 {object} seasonModel.Season "Active season"
// @Failure 404 {object} ErrorResponse "No active season"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /seasons/active [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) GetActiveSeason(c *gin.Context) {
	season, err := h.service.GetActiveSeason(c.Request.Context())
	if err != nil {
		if errors.Is(err, seasonModel.ErrNoActiveSeason) {
			notFoundResponse(c, "no active season")
			return
		}
		h.logger.Errorw("error getting active season", "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, season)
}

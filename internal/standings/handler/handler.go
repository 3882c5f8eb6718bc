// Package handler provides HTTP handlers for standings endpoints.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jarruego/tiktok-league/internal/standings/service"
)

// Handler handles HTTP requests for standings endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new standings handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// GetStandings handles GET /standings request.
// @Summary Get the standings of a league
// @Tags Standings
// @Produce json
// @Param season_id query int true "Season ID"
// @Param league_id query int true "League ID"
// @Success 200 {object} map[string][]standingsModel.Standing "Standings wrapped in standings object"
// @Failure 400 {object} ErrorResponse "Bad request (missing or invalid parameters)"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /standings [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) GetStandings(c *gin.Context) {
	seasonID, err := strconv.ParseInt(c.Query("season_id"), 10, 64)
	if err != nil || seasonID <= 0 {
		errorResponse(c, "INVALID_REQUEST", "season_id parameter is required", http.StatusBadRequest)
		return
	}
	leagueID, err := strconv.ParseInt(c.Query("league_id"), 10, 64)
	if err != nil || leagueID <= 0 {
		errorResponse(c, "INVALID_REQUEST", "league_id parameter is required", http.StatusBadRequest)
		return
	}

	standings, err := h.service.GetStandings(c.Request.Context(), seasonID, leagueID)
	if err != nil {
		h.logger.Errorw("error getting standings", "season_id", seasonID, "league_id", leagueID, "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"standings": standings,
	})
}

// Package handler provides HTTP handlers for team endpoints.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	teamModel "github.com/jarruego/tiktok-league/internal/team/model"
	"github.com/jarruego/tiktok-league/internal/team/service"
)

// Handler handles HTTP requests for team endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new team handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// RegisterTeam handles POST /teams/register request.
// @Summary Register a team
// @Tags Teams
// @Accept json
// @Produce json
// @Param request body teamModel.RegisterTeamRequest true "Request"
// @Success 201 {object} teamModel.TeamResponse "Created team"
// @Failure 400 {object} ErrorResponse "Bad request (TEAM_EXISTS, INVALID_REQUEST)"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /teams/register [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) RegisterTeam(c *gin.Context) {
	var req teamModel.RegisterTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	team, err := h.service.RegisterTeam(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, teamModel.ErrTeamExists) {
			errorResponse(c, "TEAM_EXISTS", "team name already exists", http.StatusBadRequest)
			return
		}
		if errors.Is(err, teamModel.ErrInvalidTeamName) {
			errorResponse(c, "INVALID_REQUEST", "name is required", http.StatusBadRequest)
			return
		}
		if errors.Is(err, teamModel.ErrInvalidFollowers) {
			errorResponse(c, "INVALID_REQUEST", "followers must be non-negative", http.StatusBadRequest)
			return
		}
		h.logger.Errorw("error registering team", "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusCreated, teamModel.TeamResponse{
		ID:        team.ID,
		Name:      team.Name,
		Followers: team.Followers,
	})
}

// ListTeams handles GET /teams request.
// @Summary List all teams
// @Tags Teams
// @Produce json
// @Success 200 {object} map[string][]teamModel.TeamResponse "Teams wrapped in teams object"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /teams [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) ListTeams(c *gin.Context) {
	teams, err := h.service.ListTeams(c.Request.Context())
	if err != nil {
		h.logger.Errorw("error listing teams", "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	resp := make([]teamModel.TeamResponse, len(teams))
	for i, t := range teams {
		resp[i] = teamModel.TeamResponse{ID: t.ID, Name: t.Name, Followers: t.Followers}
	}
	c.JSON(http.StatusOK, map[string]interface{}{
		"teams": resp,
	})
}

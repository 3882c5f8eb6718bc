// Package handler provides HTTP handlers for schedule and match endpoints.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	divisionModel "github.com/jarruego/tiktok-league/internal/division/model"
	matchModel "github.com/jarruego/tiktok-league/internal/match/model"
	"github.com/jarruego/tiktok-league/internal/match/service"
	standingsModel "github.com/jarruego/tiktok-league/internal/standings/model"
)

// Handler handles HTTP requests for schedule and match endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new match handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// GenerateSchedule handles POST /schedule/generate request.
// @Summary Generate the double round-robin fixtures of a league
// @Tags Schedule
// @Accept json
// @Produce json
// @Param request body matchModel.GenerateScheduleRequest true "Request"
// @Success 201 {object} map[string][]matchModel.Match "Matches wrapped in matches object"
// @Failure 400 {object} ErrorResponse "Bad request (INVALID_ROSTER_SIZE, INVALID_REQUEST)"
// @Failure 409 {object} ErrorResponse "Schedule already generated"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /schedule/generate [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) GenerateSchedule(c *gin.Context) {
	var req matchModel.GenerateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	matches, err := h.service.GenerateSchedule(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, matchModel.ErrAlreadyGenerated):
			errorResponse(c, "ALREADY_GENERATED", err.Error(), http.StatusConflict)
		case errors.Is(err, matchModel.ErrInvalidRosterSize):
			errorResponse(c, "INVALID_ROSTER_SIZE", err.Error(), http.StatusBadRequest)
		case errors.Is(err, matchModel.ErrInvalidMatchdaySpacing):
			errorResponse(c, "INVALID_REQUEST", err.Error(), http.StatusBadRequest)
		case errors.Is(err, divisionModel.ErrLeagueNotFound):
			notFoundResponse(c, "league not found")
		case errors.Is(err, matchModel.ErrScheduleIntegrity):
			h.logger.Errorw("schedule integrity check failed", "league_id", req.LeagueID, "error", err)
			errorResponse(c, "SCHEDULE_INTEGRITY", err.Error(), http.StatusInternalServerError)
		default:
			h.logger.Errorw("error generating schedule", "league_id", req.LeagueID, "error", err)
			errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, map[string]interface{}{
		"matches": matches,
	})
}

// RecordResult handles POST /matches/result request.
// @Summary Record the result of a regular season match
// @Tags Matches
// @Accept json
// @Produce json
// @Param request body matchModel.RecordResultRequest true "Request"
// @Success 200 {object} map[string]matchModel.Match "Updated match wrapped in match object"
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 404 {object} ErrorResponse "Match not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /matches/result [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) RecordResult(c *gin.Context) {
	var req matchModel.RecordResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	match, err := h.service.RecordResult(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, matchModel.ErrMatchNotFound):
			notFoundResponse(c, "match not found")
		case errors.Is(err, matchModel.ErrPlayoffResultRoute):
			errorResponse(c, "INVALID_REQUEST", "playoff results go through /playoffs/result", http.StatusBadRequest)
		case errors.Is(err, matchModel.ErrInvalidGoals):
			errorResponse(c, "INVALID_REQUEST", "goals must be non-negative", http.StatusBadRequest)
		case errors.Is(err, matchModel.ErrMatchAlreadyFinished):
			errorResponse(c, "INVALID_REQUEST", "match already finished", http.StatusConflict)
		case errors.Is(err, matchModel.ErrMatchCancelled):
			errorResponse(c, "INVALID_REQUEST", "match is cancelled", http.StatusConflict)
		case errors.Is(err, standingsModel.ErrCorruptMatchData):
			h.logger.Errorw("standings recompute hit corrupt match data", "match_id", req.MatchID, "error", err)
			errorResponse(c, "CORRUPT_MATCH_DATA", err.Error(), http.StatusInternalServerError)
		default:
			h.logger.Errorw("error recording result", "match_id", req.MatchID, "error", err)
			errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"match": match,
	})
}

// SimulateMatchday handles POST /matches/simulate request.
// @Summary Simulate the scheduled matches of a matchday
// @Tags Matches
// @Accept json
// @Produce json
// @Param request body matchModel.SimulateRequest true "Request"
// @Success 200 {object} map[string][]matchModel.Match "Simulated matches wrapped in matches object"
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /matches/simulate [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) SimulateMatchday(c *gin.Context) {
	var req matchModel.SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	matches, err := h.service.SimulateMatchday(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, standingsModel.ErrCorruptMatchData) {
			h.logger.Errorw("standings recompute hit corrupt match data", "league_id", req.LeagueID, "error", err)
			errorResponse(c, "CORRUPT_MATCH_DATA", err.Error(), http.StatusInternalServerError)
			return
		}
		h.logger.Errorw("error simulating matchday", "league_id", req.LeagueID, "matchday", req.Matchday, "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"matches": matches,
	})
}

// GetMatches handles GET /matches request.
// @Summary List matches with optional filters
// @Tags Matches
// @Produce json
// @Param season_id query int false "Season ID"
// @Param league_id query int false "League ID"
// @Param division_id query int false "Division ID"
// @Param team_id query int false "Team ID"
// @Param matchday query int false "Matchday"
// @Param status query string false "Status"
// @Param is_playoff query bool false "Playoff flag"
// @Param playoff_round query string false "Playoff round"
// @Success 200 {object} map[string][]matchModel.Match "Matches wrapped in matches object"
// @Failure 400 {object} ErrorResponse "Bad request (invalid filter value)"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /matches [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) GetMatches(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		errorResponse(c, "INVALID_REQUEST", err.Error(), http.StatusBadRequest)
		return
	}

	matches, err := h.service.GetMatches(c.Request.Context(), filter)
	if err != nil {
		h.logger.Errorw("error listing matches", "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"matches": matches,
	})
}

func parseFilter(c *gin.Context) (matchModel.Filter, error) {
	var filter matchModel.Filter
	var err error

	if filter.SeasonID, err = queryInt64(c, "season_id"); err != nil {
		return filter, err
	}
	if filter.LeagueID, err = queryInt64(c, "league_id"); err != nil {
		return filter, err
	}
	if filter.DivisionID, err = queryInt64(c, "division_id"); err != nil {
		return filter, err
	}
	if filter.TeamID, err = queryInt64(c, "team_id"); err != nil {
		return filter, err
	}
	if raw := c.Query("matchday"); raw != "" {
		matchday, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return filter, errInvalidQuery("matchday")
		}
		filter.Matchday = matchday
	}
	filter.Status = c.Query("status")
	filter.PlayoffRound = c.Query("playoff_round")
	if raw := c.Query("is_playoff"); raw != "" {
		isPlayoff, convErr := strconv.ParseBool(raw)
		if convErr != nil {
			return filter, errInvalidQuery("is_playoff")
		}
		filter.IsPlayoff = &isPlayoff
	}
	return filter, nil
}

func queryInt64(c *gin.Context, name string) (int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errInvalidQuery(name)
	}
	return value, nil
}

type invalidQueryError string

func (e invalidQueryError) Error() string {
	return "invalid query parameter " + string(e)
}

func errInvalidQuery(name string) error {
	return invalidQueryError(name)
}

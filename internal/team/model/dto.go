// Package model provides domain models and DTOs for team module.
package model

// RegisterTeamRequest represents the request to register a team.
type RegisterTeamRequest struct {
	Name      string `json:"name" binding:"required"`
	Followers int64  `json:"followers"`
}

// TeamResponse represents a team in API responses.
type TeamResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Followers int64  `json:"followers"`
}

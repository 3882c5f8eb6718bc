package model

import (
	"time"

	"gorm.io/gorm"
)

// Match statuses.
const (
	StatusScheduled = "scheduled"
	StatusLive      = "live"
	StatusFinished  = "finished"
	StatusPostponed = "postponed"
	StatusCancelled = "cancelled"
)

// Playoff round names.
const (
	RoundQuarterfinal = "Quarterfinal"
	RoundSemifinal    = "Semifinal"
	RoundFinal        = "Final"
)

// PlayoffMatchdayBase offsets playoff matchday numbers so they never collide
// with regular matchday identifiers when both are queried together.
const PlayoffMatchdayBase = 1000

// Match represents one fixture. Goals stay nil until the match finishes.
// Penalty columns record a shootout for playoff ties that end level on
// aggregate.
type Match struct {
	ID            int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	SeasonID      int64     `gorm:"column:season_id;not null;index:idx_matches_season_league" json:"season_id"`
	LeagueID      int64     `gorm:"column:league_id;not null;index:idx_matches_season_league" json:"league_id"`
	HomeTeamID    int64     `gorm:"column:home_team_id;not null" json:"home_team_id"`
	AwayTeamID    int64     `gorm:"column:away_team_id;not null" json:"away_team_id"`
	Matchday      int       `gorm:"column:matchday;not null" json:"matchday"`
	ScheduledDate time.Time `gorm:"column:scheduled_date;not null" json:"scheduled_date"`
	Status        string    `gorm:"column:status;type:varchar(16);not null;default:scheduled" json:"status"`
	HomeGoals     *int      `gorm:"column:home_goals" json:"home_goals"`
	AwayGoals     *int      `gorm:"column:away_goals" json:"away_goals"`
	HomePenalties *int      `gorm:"column:home_penalties" json:"home_penalties,omitempty"`
	AwayPenalties *int      `gorm:"column:away_penalties" json:"away_penalties,omitempty"`
	IsPlayoff     bool      `gorm:"column:is_playoff;not null;default:false" json:"is_playoff"`
	PlayoffRound  *string   `gorm:"column:playoff_round;type:varchar(32)" json:"playoff_round,omitempty"`
	CreatedAt     time.Time `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP" json:"-"`
	UpdatedAt     time.Time `gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName specifies the table name for GORM.
func (Match) TableName() string {
	return "matches"
}

// BeforeUpdate updates the UpdatedAt timestamp before saving.
func (m *Match) BeforeUpdate(tx *gorm.DB) error {
	m.UpdatedAt = time.Now()
	return nil
}

// IsFinished reports whether the match has a recorded result.
func (m *Match) IsFinished() bool {
	return m.Status == StatusFinished
}

// ValidStatus reports whether s is a known match status.
func ValidStatus(s string) bool {
	switch s {
	case StatusScheduled, StatusLive, StatusFinished, StatusPostponed, StatusCancelled:
		return true
	}
	return false
}

package model

import (
	"time"

	"gorm.io/gorm"
)

// Season represents one competition year. At most one season may be active
// at a time; the flag is swapped inside the transition transaction and
// backed by a partial unique index.
type Season struct {
	ID          int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Year        int       `gorm:"column:year;not null;uniqueIndex" json:"year"`
	StartDate   time.Time `gorm:"column:start_date;not null" json:"start_date"`
	IsActive    bool      `gorm:"column:is_active;not null;default:false" json:"is_active"`
	IsCompleted bool      `gorm:"column:is_completed;not null;default:false" json:"is_completed"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP" json:"-"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName specifies the table name for GORM.
func (Season) TableName() string {
	return "seasons"
}

// BeforeUpdate updates the UpdatedAt timestamp before saving.
func (s *Season) BeforeUpdate(tx *gorm.DB) error {
	s.UpdatedAt = time.Now()
	return nil
}

// Assignment reasons record why a team landed in a league for a season.
const (
	ReasonInitialRanking = "initial-ranking"
	ReasonPromotion      = "promotion"
	ReasonRelegation     = "relegation"
	ReasonPlayoffWin     = "playoff-win"
	ReasonFallback       = "fallback"
)

// TeamLeagueAssignment places one team in one league for one season.
// Immutable after creation within that season; RankingMetric is the
// follower-count snapshot at assignment time.
type TeamLeagueAssignment struct {
	ID            int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	TeamID        int64     `gorm:"column:team_id;not null;uniqueIndex:idx_assignments_team_season" json:"team_id"`
	LeagueID      int64     `gorm:"column:league_id;not null" json:"league_id"`
	SeasonID      int64     `gorm:"column:season_id;not null;uniqueIndex:idx_assignments_team_season" json:"season_id"`
	Reason        string    `gorm:"column:reason;type:varchar(32);not null" json:"reason"`
	RankingMetric int64     `gorm:"column:ranking_metric;not null;default:0" json:"ranking_metric"`
	CreatedAt     time.Time `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName specifies the table name for GORM.
func (TeamLeagueAssignment) TableName() string {
	return "team_league_assignments"
}

package model

import "time"

// Standing is a team's derived ranking row for a (season, league). Rows are
// a pure projection of finished matches: the engine replaces them wholesale,
// they are never hand-edited.
type Standing struct {
	ID             int64     `gorm:"primaryKey;autoIncrement;column:id" json:"-"`
	SeasonID       int64     `gorm:"column:season_id;not null;uniqueIndex:idx_standings_season_league_team" json:"season_id"`
	LeagueID       int64     `gorm:"column:league_id;not null;uniqueIndex:idx_standings_season_league_team" json:"league_id"`
	TeamID         int64     `gorm:"column:team_id;not null;uniqueIndex:idx_standings_season_league_team" json:"team_id"`
	Position       int       `gorm:"column:position;not null" json:"position"`
	Played         int       `gorm:"column:played;not null;default:0" json:"played"`
	Won            int       `gorm:"column:won;not null;default:0" json:"won"`
	Drawn          int       `gorm:"column:drawn;not null;default:0" json:"drawn"`
	Lost           int       `gorm:"column:lost;not null;default:0" json:"lost"`
	GoalsFor       int       `gorm:"column:goals_for;not null;default:0" json:"goals_for"`
	GoalsAgainst   int       `gorm:"column:goals_against;not null;default:0" json:"goals_against"`
	GoalDifference int       `gorm:"column:goal_difference;not null;default:0" json:"goal_difference"`
	Points         int       `gorm:"column:points;not null;default:0" json:"points"`
	UpdatedAt      time.Time `gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName specifies the table name for GORM.
func (Standing) TableName() string {
	return "standings"
}

package model

import (
	"time"

	"gorm.io/gorm"
)

// Division represents one tier of the competition pyramid (level 1 = top flight).
// Slot counts drive promotion, relegation and playoff eligibility at season end.
type Division struct {
	ID                  int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Level               int       `gorm:"column:level;not null;uniqueIndex" json:"level"`
	Name                string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	TotalLeagues        int       `gorm:"column:total_leagues;not null;default:1" json:"total_leagues"`
	TeamsPerLeague      int       `gorm:"column:teams_per_league;not null" json:"teams_per_league"`
	PromoteSlots        int       `gorm:"column:promote_slots;not null;default:0" json:"promote_slots"`
	PromotePlayoffSlots int       `gorm:"column:promote_playoff_slots;not null;default:0" json:"promote_playoff_slots"`
	RelegateSlots       int       `gorm:"column:relegate_slots;not null;default:0" json:"relegate_slots"`
	EuropeanSlots       int       `gorm:"column:european_slots;not null;default:0" json:"european_slots"`
	TwoLeggedSemifinals bool      `gorm:"column:two_legged_semifinals;not null;default:true" json:"two_legged_semifinals"`
	TwoLeggedFinal      bool      `gorm:"column:two_legged_final;not null;default:false" json:"two_legged_final"`
	CreatedAt           time.Time `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP" json:"-"`
	UpdatedAt           time.Time `gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName specifies the table name for GORM.
func (Division) TableName() string {
	return "divisions"
}

// BeforeUpdate updates the UpdatedAt timestamp before saving.
func (d *Division) BeforeUpdate(tx *gorm.DB) error {
	d.UpdatedAt = time.Now()
	return nil
}

// Validate checks the slot invariants against the league size.
func (d *Division) Validate() error {
	if d.TeamsPerLeague < 2 {
		return ErrInvalidDivisionConfig
	}
	if d.PromoteSlots+d.PromotePlayoffSlots > d.TeamsPerLeague {
		return ErrInvalidDivisionConfig
	}
	if d.RelegateSlots > d.TeamsPerLeague {
		return ErrInvalidDivisionConfig
	}
	if d.TotalLeagues < 1 {
		return ErrInvalidDivisionConfig
	}
	return nil
}

// League is one group of teams inside a division. Divisions may run several
// parallel groups at the same level, distinguished by GroupCode.
type League struct {
	ID         int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	DivisionID int64     `gorm:"column:division_id;not null;uniqueIndex:idx_leagues_division_group" json:"division_id"`
	GroupCode  string    `gorm:"column:group_code;type:varchar(16);not null;uniqueIndex:idx_leagues_division_group" json:"group_code"`
	MaxTeams   int       `gorm:"column:max_teams;not null" json:"max_teams"`
	CreatedAt  time.Time `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP" json:"-"`
	UpdatedAt  time.Time `gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName specifies the table name for GORM.
func (League) TableName() string {
	return "leagues"
}

// BeforeUpdate updates the UpdatedAt timestamp before saving.
func (l *League) BeforeUpdate(tx *gorm.DB) error {
	l.UpdatedAt = time.Now()
	return nil
}

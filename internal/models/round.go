package models

import "time"

// GolfRound represents a single round of golf played by a user.
type GolfRound struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	Date       time.Time `gorm:"autoCreateTime" json:"date"`
	CourseName string    `gorm:"not null" json:"course_name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Shots []Shot `gorm:"foreignKey:GolfRoundID" json:"shots,omitempty"`
}

func (GolfRound) TableName() string {
	return "golf_rounds"
}

// Shot is an immutable record of a single shot taken during a round.
type Shot struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	GolfRoundID uint      `gorm:"not null;index" json:"golf_round_id"`
	ClubID      uint      `gorm:"not null;index" json:"club_id"`
	Club        *Club     `gorm:"foreignKey:ClubID" json:"club,omitempty"`
	Distance    int       `gorm:"not null" json:"distance"` // yards
	ShotShape   ShotShape `gorm:"type:varchar(10);not null" json:"shot_shape"`
	Lie         Lie       `gorm:"type:varchar(10);not null" json:"lie"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Shot) TableName() string {
	return "shots"
}

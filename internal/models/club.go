package models

import "time"

// Club represents a single golf club in a user's bag.
type Club struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_user_club_name,priority:1" json:"user_id"`
	Name      string    `gorm:"not null;uniqueIndex:idx_user_club_name,priority:2" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Shots []Shot `gorm:"foreignKey:ClubID" json:"shots,omitempty"`
}

func (Club) TableName() string {
	return "clubs"
}

// DefaultClubNames is the starter bag assigned to a new user.
func DefaultClubNames() []string {
	return []string{
		"Driver", "3 Wood", "5 Wood",
		"4 Iron", "5 Iron", "6 Iron", "7 Iron", "8 Iron", "9 Iron",
		"Pitching Wedge", "52 Degree", "56 Degree", "60 Degree",
	}
}

// ClubStats summarizes a club's recorded performance for the dashboard.
type ClubStats struct {
	ClubID           uint    `json:"club_id"`
	Name             string  `json:"name"`
	ShotCount        int     `json:"shot_count"`
	AvgDistance      float64 `json:"avg_distance"`
	DistanceStdDev   float64 `json:"distance_std_dev"`
	FairwayAvg       *int    `json:"fairway_avg"` // Fairway + Tee Box shots
	RoughAvg         *int    `json:"rough_avg"`   // Rough shots only
	FairwayShotCount int     `json:"fairway_shot_count"`
	RoughShotCount   int     `json:"rough_shot_count"`
}

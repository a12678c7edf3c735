package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/aicaddy/caddy-api/internal/caddy"
	"github.com/aicaddy/caddy-api/internal/models"
)

// ShotHistoryService loads a golfer's recorded shots and derives per-club
// statistics. Recommendation requests read through this service so the
// engine never touches the database directly.
type ShotHistoryService struct {
	db       *gorm.DB
	cache    *CacheService
	logger   *logrus.Logger
	statsTTL time.Duration
}

func NewShotHistoryService(db *gorm.DB, cache *CacheService, logger *logrus.Logger, statsTTL time.Duration) *ShotHistoryService {
	return &ShotHistoryService{
		db:       db,
		cache:    cache,
		logger:   logger,
		statsTTL: statsTTL,
	}
}

// GetUserShots returns every shot the user has recorded, flattened into the
// engine's input shape. Shots without a resolvable club are skipped.
func (s *ShotHistoryService) GetUserShots(ctx context.Context, userID uint) ([]caddy.Shot, error) {
	var shots []models.Shot
	err := s.db.WithContext(ctx).
		Joins("JOIN clubs ON clubs.id = shots.club_id").
		Where("clubs.user_id = ?", userID).
		Preload("Club").
		Find(&shots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load shot history: %w", err)
	}

	history := make([]caddy.Shot, 0, len(shots))
	for _, shot := range shots {
		if shot.Club == nil {
			continue
		}
		history = append(history, caddy.Shot{
			Club:     shot.Club.Name,
			Distance: shot.Distance,
			Lie:      shot.Lie,
			Shape:    shot.ShotShape,
		})
	}

	return history, nil
}

// GetUserClubNames returns the names of every club in the user's bag.
func (s *ShotHistoryService) GetUserClubNames(ctx context.Context, userID uint) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).
		Model(&models.Club{}).
		Where("user_id = ?", userID).
		Order("id").
		Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load clubs: %w", err)
	}
	return names, nil
}

// GetClubStats computes per-club distance statistics across the user's shot
// history. Results are cached in redis for the configured TTL and
// invalidated whenever shots change.
func (s *ShotHistoryService) GetClubStats(ctx context.Context, userID uint) (map[string]models.ClubStats, error) {
	cacheKey := ClubStatsCacheKey(userID)

	var cached map[string]models.ClubStats
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return cached, nil
	} else if err != ErrCacheMiss {
		s.logger.WithError(err).Warn("Club stats cache read failed")
	}

	shots, err := s.GetUserShots(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := computeClubStats(shots)

	var clubs []models.Club
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&clubs).Error; err != nil {
		return nil, fmt.Errorf("failed to load clubs: %w", err)
	}
	for _, club := range clubs {
		cs, ok := stats[club.Name]
		if !ok {
			cs = models.ClubStats{Name: club.Name}
		}
		cs.ClubID = club.ID
		stats[club.Name] = cs
	}

	if err := s.cache.Set(ctx, cacheKey, stats, s.statsTTL); err != nil {
		s.logger.WithError(err).Warn("Club stats cache write failed")
	}

	return stats, nil
}

// InvalidateStats drops the cached club statistics for a user. Called after
// any write to rounds, shots, or clubs.
func (s *ShotHistoryService) InvalidateStats(ctx context.Context, userID uint) {
	if err := s.cache.Delete(ctx, ClubStatsCacheKey(userID)); err != nil {
		s.logger.WithError(err).Warn("Failed to invalidate club stats cache")
	}
}

func computeClubStats(shots []caddy.Shot) map[string]models.ClubStats {
	type acc struct {
		distances  []float64
		fairwaySum int
		fairwayN   int
		roughSum   int
		roughN     int
	}

	byClub := make(map[string]*acc)
	for _, shot := range shots {
		a, ok := byClub[shot.Club]
		if !ok {
			a = &acc{}
			byClub[shot.Club] = a
		}
		a.distances = append(a.distances, float64(shot.Distance))
		switch shot.Lie {
		case models.LieFairway, models.LieTeeBox:
			a.fairwaySum += shot.Distance
			a.fairwayN++
		case models.LieRough:
			a.roughSum += shot.Distance
			a.roughN++
		}
	}

	stats := make(map[string]models.ClubStats, len(byClub))
	for club, a := range byClub {
		var sum float64
		for _, d := range a.distances {
			sum += d
		}
		mean := sum / float64(len(a.distances))

		var variance float64
		for _, d := range a.distances {
			variance += (d - mean) * (d - mean)
		}
		variance /= float64(len(a.distances))

		cs := models.ClubStats{
			AvgDistance:    mean,
			DistanceStdDev: math.Sqrt(variance),
			ShotCount:      len(a.distances),
		}
		cs.Name = club
		if a.fairwayN > 0 {
			avg := a.fairwaySum / a.fairwayN
			cs.FairwayAvg = &avg
			cs.FairwayShotCount = a.fairwayN
		}
		if a.roughN > 0 {
			avg := a.roughSum / a.roughN
			cs.RoughAvg = &avg
			cs.RoughShotCount = a.roughN
		}
		stats[club] = cs
	}

	return stats
}

package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/aicaddy/caddy-api/internal/caddy"
)

// RecommendationService feeds a golfer's shot history through the caddy
// engine. It owns data access so the engine stays pure.
type RecommendationService struct {
	engine *caddy.Engine
	shots  *ShotHistoryService
	logger *logrus.Logger
}

func NewRecommendationService(engine *caddy.Engine, shots *ShotHistoryService, logger *logrus.Logger) *RecommendationService {
	return &RecommendationService{
		engine: engine,
		shots:  shots,
		logger: logger,
	}
}

// Recommend returns ranked club suggestions for the given shot conditions.
func (s *RecommendationService) Recommend(ctx context.Context, userID uint, query caddy.Query) (*caddy.Result, error) {
	history, err := s.shots.GetUserShots(ctx, userID)
	if err != nil {
		return nil, err
	}
	bag, err := s.shots.GetUserClubNames(ctx, userID)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Recommend(query, history, bag)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":         userID,
		"target_distance": query.TargetDistance,
		"lie":             query.Lie,
		"k":               result.K,
		"used_fallback":   result.UsedFallback,
	}).Info("Generated club recommendations")

	return result, nil
}

// Visualize projects the user's shot history and the query point into two
// dimensions for plotting.
func (s *RecommendationService) Visualize(ctx context.Context, userID uint, query caddy.Query) (*caddy.Projection, error) {
	history, err := s.shots.GetUserShots(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.engine.Project(query, history)
}

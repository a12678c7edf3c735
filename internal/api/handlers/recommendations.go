package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/aicaddy/caddy-api/internal/caddy"
	"github.com/aicaddy/caddy-api/internal/services"
	"github.com/aicaddy/caddy-api/pkg/logger"
	"github.com/aicaddy/caddy-api/pkg/utils"
)

// RecommendationHandler handles club recommendation endpoints
type RecommendationHandler struct {
	recommendations *services.RecommendationService
	logger          *logrus.Logger
}

func NewRecommendationHandler(recommendations *services.RecommendationService, log *logrus.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		recommendations: recommendations,
		logger:          log,
	}
}

// RecommendationRequest is the request body for recommendation endpoints.
type RecommendationRequest struct {
	TargetDistance int    `json:"target_distance" binding:"required"`
	Lie            string `json:"lie"`
	Bend           string `json:"bend"`
	ShotShape      string `json:"shot_shape"`
}

func (r RecommendationRequest) query() caddy.Query {
	return caddy.Query{
		TargetDistance: r.TargetDistance,
		Lie:            r.Lie,
		Bend:           r.Bend,
		Shape:          r.ShotShape,
	}
}

// validate checks only the target distance. Lie, bend, and shape are
// passed through as-is: the engine encodes unseen categories against the
// user's own history rather than rejecting them.
func (r RecommendationRequest) validate() (string, bool) {
	if r.TargetDistance <= 0 {
		return "target_distance must be positive", false
	}
	return "", true
}

// Recommend handles POST /api/v1/recommendations
func (h *RecommendationHandler) Recommend(c *gin.Context) {
	userID := currentUserID(c)

	var req RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	if msg, ok := req.validate(); !ok {
		utils.SendValidationError(c, msg, "")
		return
	}

	result, err := h.recommendations.Recommend(c.Request.Context(), userID, req.query())
	if err != nil {
		h.handleEngineError(c, userID, req, err)
		return
	}

	utils.SendSuccess(c, result)
}

// Visualize handles POST /api/v1/recommendations/visualize
func (h *RecommendationHandler) Visualize(c *gin.Context) {
	userID := currentUserID(c)

	var req RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	if msg, ok := req.validate(); !ok {
		utils.SendValidationError(c, msg, "")
		return
	}

	projection, err := h.recommendations.Visualize(c.Request.Context(), userID, req.query())
	if err != nil {
		h.handleEngineError(c, userID, req, err)
		return
	}

	utils.SendSuccess(c, projection)
}

func (h *RecommendationHandler) handleEngineError(c *gin.Context, userID uint, req RecommendationRequest, err error) {
	log := logger.WithRecommendationContext(userID, req.TargetDistance, req.Lie)

	switch {
	case errors.Is(err, caddy.ErrInsufficientData):
		utils.SendInsufficientData(c, "Not enough recorded shots to generate recommendations")
	case errors.Is(err, caddy.ErrInvalidTarget):
		utils.SendValidationError(c, "target_distance must be positive", "")
	default:
		log.WithError(err).Error("Recommendation failed")
		utils.SendInternalError(c, "Could not generate recommendations")
	}
}

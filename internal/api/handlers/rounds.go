package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/aicaddy/caddy-api/internal/models"
	"github.com/aicaddy/caddy-api/internal/services"
	"github.com/aicaddy/caddy-api/pkg/database"
	"github.com/aicaddy/caddy-api/pkg/utils"
)

// RoundHandler handles golf round and shot recording endpoints
type RoundHandler struct {
	db     *database.DB
	shots  *services.ShotHistoryService
	logger *logrus.Logger
}

func NewRoundHandler(db *database.DB, shots *services.ShotHistoryService, logger *logrus.Logger) *RoundHandler {
	return &RoundHandler{
		db:     db,
		shots:  shots,
		logger: logger,
	}
}

type shotRequest struct {
	ClubID    uint   `json:"club_id" binding:"required"`
	Distance  int    `json:"distance" binding:"required"`
	ShotShape string `json:"shot_shape" binding:"required"`
	Lie       string `json:"lie" binding:"required"`
}

type roundRequest struct {
	Date       *time.Time    `json:"date"`
	CourseName string        `json:"course_name" binding:"required"`
	Shots      []shotRequest `json:"shots"`
}

// ListRounds handles GET /api/v1/rounds
func (h *RoundHandler) ListRounds(c *gin.Context) {
	userID := currentUserID(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var rounds []models.GolfRound
	err := h.db.Where("user_id = ?", userID).
		Order("date DESC").
		Limit(limit).
		Preload("Shots").
		Preload("Shots.Club").
		Find(&rounds).Error
	if err != nil {
		utils.SendInternalError(c, "Failed to fetch rounds")
		return
	}

	utils.SendSuccess(c, gin.H{
		"rounds": rounds,
		"count":  len(rounds),
	})
}

// GetRound handles GET /api/v1/rounds/:id
func (h *RoundHandler) GetRound(c *gin.Context) {
	userID := currentUserID(c)
	roundID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.SendValidationError(c, "Invalid round id", "")
		return
	}

	var round models.GolfRound
	err = h.db.Where("id = ? AND user_id = ?", roundID, userID).
		Preload("Shots").
		Preload("Shots.Club").
		First(&round).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.SendNotFound(c, "Round not found")
			return
		}
		utils.SendInternalError(c, "Failed to fetch round")
		return
	}

	utils.SendSuccess(c, round)
}

// CreateRound handles POST /api/v1/rounds
func (h *RoundHandler) CreateRound(c *gin.Context) {
	userID := currentUserID(c)

	var req roundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	shots, msg, ok := h.buildShots(userID, req.Shots)
	if !ok {
		utils.SendValidationError(c, msg, "")
		return
	}

	round := models.GolfRound{
		UserID:     userID,
		CourseName: req.CourseName,
		Shots:      shots,
	}
	if req.Date != nil {
		round.Date = *req.Date
	}

	if err := h.db.Create(&round).Error; err != nil {
		utils.SendInternalError(c, "Failed to create round")
		return
	}

	h.shots.InvalidateStats(c.Request.Context(), userID)
	utils.SendCreated(c, round)
}

// AddShot handles POST /api/v1/rounds/:id/shots
func (h *RoundHandler) AddShot(c *gin.Context) {
	userID := currentUserID(c)
	roundID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.SendValidationError(c, "Invalid round id", "")
		return
	}

	var req shotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	var round models.GolfRound
	if err := h.db.Where("id = ? AND user_id = ?", roundID, userID).First(&round).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.SendNotFound(c, "Round not found")
			return
		}
		utils.SendInternalError(c, "Failed to fetch round")
		return
	}

	shots, msg, ok := h.buildShots(userID, []shotRequest{req})
	if !ok {
		utils.SendValidationError(c, msg, "")
		return
	}

	shot := shots[0]
	shot.GolfRoundID = round.ID
	if err := h.db.Create(&shot).Error; err != nil {
		utils.SendInternalError(c, "Failed to record shot")
		return
	}

	h.shots.InvalidateStats(c.Request.Context(), userID)
	utils.SendCreated(c, shot)
}

// DeleteRound handles DELETE /api/v1/rounds/:id
func (h *RoundHandler) DeleteRound(c *gin.Context) {
	userID := currentUserID(c)
	roundID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.SendValidationError(c, "Invalid round id", "")
		return
	}

	var round models.GolfRound
	if err := h.db.Where("id = ? AND user_id = ?", roundID, userID).First(&round).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.SendNotFound(c, "Round not found")
			return
		}
		utils.SendInternalError(c, "Failed to fetch round")
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("golf_round_id = ?", round.ID).Delete(&models.Shot{}).Error; err != nil {
			return err
		}
		return tx.Delete(&round).Error
	})
	if err != nil {
		utils.SendInternalError(c, "Failed to delete round")
		return
	}

	h.shots.InvalidateStats(c.Request.Context(), userID)
	utils.SendSuccess(c, gin.H{"deleted": round.ID})
}

// buildShots validates shot payloads and checks club ownership.
func (h *RoundHandler) buildShots(userID uint, reqs []shotRequest) ([]models.Shot, string, bool) {
	if len(reqs) == 0 {
		return nil, "", true
	}

	clubIDs := make([]uint, 0, len(reqs))
	for _, r := range reqs {
		clubIDs = append(clubIDs, r.ClubID)
	}

	var owned []uint
	if err := h.db.Model(&models.Club{}).
		Where("user_id = ? AND id IN ?", userID, clubIDs).
		Pluck("id", &owned).Error; err != nil {
		return nil, "Failed to verify clubs", false
	}
	ownedSet := make(map[uint]bool, len(owned))
	for _, id := range owned {
		ownedSet[id] = true
	}

	shots := make([]models.Shot, 0, len(reqs))
	for _, r := range reqs {
		if r.Distance <= 0 {
			return nil, "distance must be positive", false
		}
		if !models.ValidShotShape(r.ShotShape) {
			return nil, "unknown shot_shape", false
		}
		if !models.ValidLie(r.Lie) {
			return nil, "unknown lie", false
		}
		if !ownedSet[r.ClubID] {
			return nil, "club is not in your bag", false
		}
		shots = append(shots, models.Shot{
			ClubID:    r.ClubID,
			Distance:  r.Distance,
			ShotShape: models.ShotShape(r.ShotShape),
			Lie:       models.Lie(r.Lie),
		})
	}
	return shots, "", true
}

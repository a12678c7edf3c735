package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/aicaddy/caddy-api/internal/models"
	"github.com/aicaddy/caddy-api/internal/services"
	"github.com/aicaddy/caddy-api/pkg/database"
	"github.com/aicaddy/caddy-api/pkg/utils"
)

// ClubHandler handles bag management endpoints
type ClubHandler struct {
	db     *database.DB
	shots  *services.ShotHistoryService
	logger *logrus.Logger
}

func NewClubHandler(db *database.DB, shots *services.ShotHistoryService, logger *logrus.Logger) *ClubHandler {
	return &ClubHandler{
		db:     db,
		shots:  shots,
		logger: logger,
	}
}

type clubRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListClubs handles GET /api/v1/clubs
func (h *ClubHandler) ListClubs(c *gin.Context) {
	userID := currentUserID(c)

	var clubs []models.Club
	if err := h.db.Where("user_id = ?", userID).Order("id").Find(&clubs).Error; err != nil {
		utils.SendInternalError(c, "Failed to fetch clubs")
		return
	}

	utils.SendSuccess(c, gin.H{
		"clubs": clubs,
		"count": len(clubs),
	})
}

// CreateClub handles POST /api/v1/clubs
func (h *ClubHandler) CreateClub(c *gin.Context) {
	userID := currentUserID(c)

	var req clubRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	club := models.Club{UserID: userID, Name: req.Name}
	if err := h.db.Create(&club).Error; err != nil {
		if isUniqueViolation(err) {
			utils.SendConflict(c, "A club with that name is already in your bag")
			return
		}
		utils.SendInternalError(c, "Failed to create club")
		return
	}

	h.shots.InvalidateStats(c.Request.Context(), userID)
	utils.SendCreated(c, club)
}

// UpdateClub handles PUT /api/v1/clubs/:id
func (h *ClubHandler) UpdateClub(c *gin.Context) {
	userID := currentUserID(c)
	clubID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.SendValidationError(c, "Invalid club id", "")
		return
	}

	var req clubRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	var club models.Club
	if err := h.db.Where("id = ? AND user_id = ?", clubID, userID).First(&club).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.SendNotFound(c, "Club not found")
			return
		}
		utils.SendInternalError(c, "Failed to fetch club")
		return
	}

	club.Name = req.Name
	if err := h.db.Save(&club).Error; err != nil {
		if isUniqueViolation(err) {
			utils.SendConflict(c, "A club with that name is already in your bag")
			return
		}
		utils.SendInternalError(c, "Failed to update club")
		return
	}

	h.shots.InvalidateStats(c.Request.Context(), userID)
	utils.SendSuccess(c, club)
}

// DeleteClub handles DELETE /api/v1/clubs/:id. Recorded shots for the club
// are removed with it.
func (h *ClubHandler) DeleteClub(c *gin.Context) {
	userID := currentUserID(c)
	clubID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.SendValidationError(c, "Invalid club id", "")
		return
	}

	var club models.Club
	if err := h.db.Where("id = ? AND user_id = ?", clubID, userID).First(&club).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.SendNotFound(c, "Club not found")
			return
		}
		utils.SendInternalError(c, "Failed to fetch club")
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("club_id = ?", club.ID).Delete(&models.Shot{}).Error; err != nil {
			return err
		}
		return tx.Delete(&club).Error
	})
	if err != nil {
		utils.SendInternalError(c, "Failed to delete club")
		return
	}

	h.shots.InvalidateStats(c.Request.Context(), userID)
	utils.SendSuccess(c, gin.H{"deleted": club.ID})
}

// GetClubStats handles GET /api/v1/clubs/stats
func (h *ClubHandler) GetClubStats(c *gin.Context) {
	userID := currentUserID(c)

	stats, err := h.shots.GetClubStats(c.Request.Context(), userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute club stats")
		utils.SendInternalError(c, "Failed to compute club stats")
		return
	}

	utils.SendSuccess(c, gin.H{"stats": stats})
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// lib/pq surfaces unique violations as code 23505 in the message.
	return err != nil && (containsAny(err.Error(), "23505", "UNIQUE constraint failed", "duplicate key"))
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

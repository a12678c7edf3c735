package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/aicaddy/caddy-api/internal/api/middleware"
	"github.com/aicaddy/caddy-api/internal/models"
	"github.com/aicaddy/caddy-api/pkg/config"
	"github.com/aicaddy/caddy-api/pkg/database"
	"github.com/aicaddy/caddy-api/pkg/utils"
)

const tokenLifetime = 24 * time.Hour

type AuthHandler struct {
	db  *database.DB
	cfg *config.Config
}

func NewAuthHandler(db *database.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		db:  db,
		cfg: cfg,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Register handles POST /api/v1/auth/register. New users start with the
// standard bag so recommendations work as soon as shots are recorded.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.SendInternalError(c, "Failed to create account")
		return
	}

	user := models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		Name:         req.Name,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		clubs := make([]models.Club, 0)
		for _, name := range models.DefaultClubNames() {
			clubs = append(clubs, models.Club{UserID: user.ID, Name: name})
		}
		return tx.Create(&clubs).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			utils.SendConflict(c, "An account with that email already exists")
			return
		}
		utils.SendInternalError(c, "Failed to create account")
		return
	}

	h.respondWithToken(c, &user, true)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	var user models.User
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.SendUnauthorized(c, "Invalid email or password")
			return
		}
		utils.SendInternalError(c, "Failed to log in")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		utils.SendUnauthorized(c, "Invalid email or password")
		return
	}

	h.respondWithToken(c, &user, false)
}

func (h *AuthHandler) respondWithToken(c *gin.Context, user *models.User, created bool) {
	expiresAt := time.Now().Add(tokenLifetime)
	claims := middleware.Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.cfg.JWTSecret))
	if err != nil {
		utils.SendInternalError(c, "Failed to issue token")
		return
	}

	resp := AuthResponse{
		Token:     signed,
		ExpiresAt: expiresAt,
		User:      user,
	}
	if created {
		utils.SendCreated(c, resp)
		return
	}
	utils.SendSuccess(c, resp)
}

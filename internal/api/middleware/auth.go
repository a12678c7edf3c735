package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/aicaddy/caddy-api/pkg/utils"
)

// Claims carries the authenticated golfer's identity inside the JWT.
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

var errBadAuthHeader = errors.New("malformed authorization header")

// parseBearerClaims extracts and verifies the bearer token from the request.
func parseBearerClaims(c *gin.Context, jwtSecret string) (*Claims, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, errBadAuthHeader
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return nil, errBadAuthHeader
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

func setIdentity(c *gin.Context, claims *Claims) {
	c.Set("user_id", claims.UserID)
	c.Set("email", claims.Email)
}

// AuthRequired rejects any request without a valid bearer token.
func AuthRequired(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := parseBearerClaims(c, jwtSecret)
		if err != nil {
			if errors.Is(err, errBadAuthHeader) {
				utils.SendUnauthorized(c, "Bearer token required")
			} else {
				utils.SendUnauthorized(c, "Invalid or expired token")
			}
			c.Abort()
			return
		}
		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuth accepts a valid bearer token when present. Requests without
// one are attributed to fallbackUserID, which lets local development hit the
// API as the seeded demo golfer without minting tokens.
func OptionalAuth(jwtSecret string, fallbackUserID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := parseBearerClaims(c, jwtSecret); err == nil {
			setIdentity(c, claims)
			c.Set("authenticated", true)
		} else {
			c.Set("user_id", fallbackUserID)
		}
		c.Next()
	}
}

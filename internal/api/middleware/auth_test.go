package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, userID uint, email, secret string) string {
	t.Helper()

	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

// identityRouter wires the middleware under test in front of a handler that
// echoes the resolved user id.
func identityRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(mw)
	router.GET("/whoami", func(c *gin.Context) {
		userID, _ := c.Get("user_id")
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	return router
}

func doWhoami(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	router := identityRouter(AuthRequired(testSecret))

	t.Run("missing header rejected", func(t *testing.T) {
		w := doWhoami(router, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Basic abc123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		w := doWhoami(router, signToken(t, 7, "golfer@example.com", "other-secret"))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token sets identity", func(t *testing.T) {
		w := doWhoami(router, signToken(t, 7, "golfer@example.com", testSecret))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":7`)
	})
}

func TestOptionalAuthFallsBackToDemoUser(t *testing.T) {
	router := identityRouter(OptionalAuth(testSecret, 1))

	t.Run("no token runs as fallback user", func(t *testing.T) {
		w := doWhoami(router, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":1`)
	})

	t.Run("invalid token runs as fallback user", func(t *testing.T) {
		w := doWhoami(router, signToken(t, 7, "golfer@example.com", "other-secret"))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":1`)
	})

	t.Run("valid token keeps its identity", func(t *testing.T) {
		w := doWhoami(router, signToken(t, 7, "golfer@example.com", testSecret))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":7`)
	})
}

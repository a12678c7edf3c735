package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/aicaddy/caddy-api/internal/models"
	"github.com/aicaddy/caddy-api/internal/services"
	"github.com/aicaddy/caddy-api/pkg/config"
	"github.com/aicaddy/caddy-api/pkg/database"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	// The import table needs postgres column types, so the routes under
	// test stick to the core schema.
	require.NoError(t, gormDB.AutoMigrate(
		&models.User{},
		&models.Club{},
		&models.GolfRound{},
		&models.Shot{},
	))

	cfg := &config.Config{
		Env:                     "test",
		JWTSecret:               "test-secret",
		RecommendationRateLimit: 1000,
		ClubStatsCacheTTL:       60,
		MaxImportBytes:          1 << 20,
	}

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	router := gin.New()
	group := router.Group("/api/v1")
	SetupRoutes(group, &database.DB{DB: gormDB}, services.NewCacheService(nil), cfg, log)
	return router
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func registerTestUser(t *testing.T, router *gin.Engine) string {
	t.Helper()

	w, env := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":    "golfer@example.com",
		"password": "secret-password",
		"name":     "Test Golfer",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestAuthFlow(t *testing.T) {
	router := testRouter(t)
	registerTestUser(t, router)

	t.Run("duplicate email rejected", func(t *testing.T) {
		w, _ := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
			"email":    "golfer@example.com",
			"password": "another-password",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("login with correct password", func(t *testing.T) {
		w, _ := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
			"email":    "golfer@example.com",
			"password": "secret-password",
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("login with wrong password", func(t *testing.T) {
		w, _ := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
			"email":    "golfer@example.com",
			"password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := testRouter(t)

	w, _ := doJSON(t, router, http.MethodGet, "/api/v1/clubs", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(t, router, http.MethodPost, "/api/v1/recommendations", "", gin.H{"target_distance": 150})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegistrationSeedsDefaultBag(t *testing.T) {
	router := testRouter(t)
	token := registerTestUser(t, router)

	w, env := doJSON(t, router, http.MethodGet, "/api/v1/clubs", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Clubs []models.Club `json:"clubs"`
		Count int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, len(models.DefaultClubNames()), resp.Count)
}

func TestRecommendationLifecycle(t *testing.T) {
	router := testRouter(t)
	token := registerTestUser(t, router)

	t.Run("no shot history yet", func(t *testing.T) {
		w, env := doJSON(t, router, http.MethodPost, "/api/v1/recommendations", token, gin.H{
			"target_distance": 150,
			"lie":             "Fairway",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "INSUFFICIENT_DATA", env.Error.Code)
	})

	// Find the 7 Iron's id and log a round with it.
	_, env := doJSON(t, router, http.MethodGet, "/api/v1/clubs", token, nil)
	var clubsResp struct {
		Clubs []models.Club `json:"clubs"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &clubsResp))

	clubID := map[string]uint{}
	for _, c := range clubsResp.Clubs {
		clubID[c.Name] = c.ID
	}
	require.NotZero(t, clubID["7 Iron"])

	shots := []gin.H{}
	for _, d := range []int{148, 150, 152, 151} {
		shots = append(shots, gin.H{
			"club_id":    clubID["7 Iron"],
			"distance":   d,
			"shot_shape": "Straight",
			"lie":        "Fairway",
		})
	}
	for _, d := range []int{128, 131} {
		shots = append(shots, gin.H{
			"club_id":    clubID["9 Iron"],
			"distance":   d,
			"shot_shape": "Straight",
			"lie":        "Fairway",
		})
	}

	w, _ := doJSON(t, router, http.MethodPost, "/api/v1/rounds", token, gin.H{
		"course_name": "Test Course",
		"shots":       shots,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("recommendation after logging shots", func(t *testing.T) {
		w, env := doJSON(t, router, http.MethodPost, "/api/v1/recommendations", token, gin.H{
			"target_distance": 150,
			"lie":             "Fairway",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var result struct {
			Recommendations []struct {
				ClubName string `json:"club_name"`
			} `json:"recommendations"`
			TotalShots int `json:"total_shots_analyzed"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &result))
		require.NotEmpty(t, result.Recommendations)
		assert.Equal(t, "7 Iron", result.Recommendations[0].ClubName)
		assert.Equal(t, 6, result.TotalShots)
	})

	t.Run("visualization", func(t *testing.T) {
		w, env := doJSON(t, router, http.MethodPost, "/api/v1/recommendations/visualize", token, gin.H{
			"target_distance": 150,
			"lie":             "Fairway",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var proj struct {
			Shots             []json.RawMessage `json:"shots"`
			PredictedClub     string            `json:"predicted_club"`
			ExplainedVariance []float64         `json:"explained_variance"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &proj))
		assert.Len(t, proj.Shots, 6)
		assert.Equal(t, "7 Iron", proj.PredictedClub)
		assert.Len(t, proj.ExplainedVariance, 2)
	})

	t.Run("unseen lie still recommends", func(t *testing.T) {
		w, env := doJSON(t, router, http.MethodPost, "/api/v1/recommendations", token, gin.H{
			"target_distance": 150,
			"lie":             "Bunker",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var result struct {
			Recommendations []struct {
				ClubName string `json:"club_name"`
			} `json:"recommendations"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &result))
		assert.NotEmpty(t, result.Recommendations)
	})

	t.Run("shot with unowned club rejected", func(t *testing.T) {
		w, _ := doJSON(t, router, http.MethodPost, "/api/v1/rounds", token, gin.H{
			"course_name": "Test Course",
			"shots": []gin.H{{
				"club_id":    uint(99999),
				"distance":   150,
				"shot_shape": "Straight",
				"lie":        "Fairway",
			}},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestClubCRUD(t *testing.T) {
	router := testRouter(t)
	token := registerTestUser(t, router)

	w, env := doJSON(t, router, http.MethodPost, "/api/v1/clubs", token, gin.H{"name": "2 Iron"})
	require.Equal(t, http.StatusCreated, w.Code)

	var club models.Club
	require.NoError(t, json.Unmarshal(env.Data, &club))
	require.NotZero(t, club.ID)

	t.Run("duplicate name conflicts", func(t *testing.T) {
		w, _ := doJSON(t, router, http.MethodPost, "/api/v1/clubs", token, gin.H{"name": "2 Iron"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("rename", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/clubs/%d", club.ID)
		w, _ := doJSON(t, router, http.MethodPut, path, token, gin.H{"name": "1 Iron"})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/clubs/%d", club.ID)
		w, _ := doJSON(t, router, http.MethodDelete, path, token, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w, _ = doJSON(t, router, http.MethodDelete, path, token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

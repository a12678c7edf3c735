package services

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aicaddy/caddy-api/internal/models"
)

// testDB opens an isolated in-memory database with the golf schema. The
// import tables use postgres-only column types, so only the core models
// are migrated here.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every query on the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Club{},
		&models.GolfRound{},
		&models.Shot{},
	))
	return db
}

func testShotService(t *testing.T) (*ShotHistoryService, *gorm.DB) {
	t.Helper()
	db := testDB(t)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	cache := NewCacheService(nil)
	return NewShotHistoryService(db, cache, log, time.Minute), db
}

func seedHistory(t *testing.T, db *gorm.DB, userID uint) map[string]uint {
	t.Helper()

	clubs := []models.Club{
		{UserID: userID, Name: "7 Iron"},
		{UserID: userID, Name: "9 Iron"},
		{UserID: userID, Name: "Driver"},
	}
	require.NoError(t, db.Create(&clubs).Error)

	ids := map[string]uint{}
	for _, c := range clubs {
		ids[c.Name] = c.ID
	}

	round := models.GolfRound{
		UserID:     userID,
		Date:       time.Now(),
		CourseName: "Test Course",
		Shots: []models.Shot{
			{ClubID: ids["7 Iron"], Distance: 150, ShotShape: models.ShapeStraight, Lie: models.LieFairway},
			{ClubID: ids["7 Iron"], Distance: 146, ShotShape: models.ShapeFade, Lie: models.LieRough},
			{ClubID: ids["9 Iron"], Distance: 130, ShotShape: models.ShapeStraight, Lie: models.LieFairway},
			{ClubID: ids["Driver"], Distance: 230, ShotShape: models.ShapeDraw, Lie: models.LieTeeBox},
		},
	}
	require.NoError(t, db.Create(&round).Error)
	return ids
}

func TestGetUserShots(t *testing.T) {
	svc, db := testShotService(t)
	seedHistory(t, db, 1)

	shots, err := svc.GetUserShots(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, shots, 4)

	byClub := map[string]int{}
	for _, s := range shots {
		byClub[s.Club]++
	}
	assert.Equal(t, 2, byClub["7 Iron"])
	assert.Equal(t, 1, byClub["9 Iron"])
	assert.Equal(t, 1, byClub["Driver"])
}

func TestGetUserShotsScopedToUser(t *testing.T) {
	svc, db := testShotService(t)
	seedHistory(t, db, 1)
	seedHistory(t, db, 2)

	shots, err := svc.GetUserShots(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, shots, 4)
}

func TestGetUserClubNames(t *testing.T) {
	svc, db := testShotService(t)
	seedHistory(t, db, 1)

	names, err := svc.GetUserClubNames(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"7 Iron", "9 Iron", "Driver"}, names)
}

func TestGetClubStats(t *testing.T) {
	svc, db := testShotService(t)
	seedHistory(t, db, 1)

	stats, err := svc.GetClubStats(context.Background(), 1)
	require.NoError(t, err)

	seven := stats["7 Iron"]
	assert.Equal(t, 2, seven.ShotCount)
	assert.InDelta(t, 148.0, seven.AvgDistance, 1e-9)
	assert.InDelta(t, 2.0, seven.DistanceStdDev, 1e-9)
	require.NotNil(t, seven.FairwayAvg)
	assert.Equal(t, 150, *seven.FairwayAvg)
	require.NotNil(t, seven.RoughAvg)
	assert.Equal(t, 146, *seven.RoughAvg)

	driver := stats["Driver"]
	require.NotNil(t, driver.FairwayAvg) // tee box pools with fairway
	assert.Equal(t, 230, *driver.FairwayAvg)
	assert.Nil(t, driver.RoughAvg)
	assert.NotZero(t, driver.ClubID)
}

func TestGetClubStatsIncludesUnusedClubs(t *testing.T) {
	svc, db := testShotService(t)
	ids := seedHistory(t, db, 1)
	require.NoError(t, db.Create(&models.Club{UserID: 1, Name: "60 Degree"}).Error)

	stats, err := svc.GetClubStats(context.Background(), 1)
	require.NoError(t, err)

	wedge, ok := stats["60 Degree"]
	require.True(t, ok)
	assert.Zero(t, wedge.ShotCount)
	assert.NotEqual(t, ids["7 Iron"], wedge.ClubID)
}

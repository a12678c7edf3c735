package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aicaddy/caddy-api/internal/models"
	"github.com/aicaddy/caddy-api/pkg/config"
	"github.com/aicaddy/caddy-api/pkg/database"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate [up|down|seed]")
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	command := os.Args[1]

	switch command {
	case "up":
		if err := runMigrations(db); err != nil {
			logrus.Fatalf("Failed to run migrations: %v", err)
		}
		logrus.Info("Migrations completed successfully")

	case "down":
		if err := dropTables(db); err != nil {
			logrus.Fatalf("Failed to drop tables: %v", err)
		}
		logrus.Info("Tables dropped successfully")

	case "seed":
		if err := seedData(db); err != nil {
			logrus.Fatalf("Failed to seed data: %v", err)
		}
		logrus.Info("Data seeded successfully")

	default:
		log.Fatalf("Unknown command: %s", command)
	}
}

func runMigrations(db *database.DB) error {
	// gen_random_uuid() for import IDs
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"pgcrypto\"").Error; err != nil {
		return fmt.Errorf("failed to create pgcrypto extension: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Club{},
		&models.GolfRound{},
		&models.Shot{},
		&models.LaunchMonitorImport{},
	); err != nil {
		return fmt.Errorf("failed to migrate models: %w", err)
	}

	return nil
}

func dropTables(db *database.DB) error {
	return db.Migrator().DropTable(
		&models.Shot{},
		&models.GolfRound{},
		&models.Club{},
		&models.LaunchMonitorImport{},
		&models.User{},
	)
}

// seedData creates a demo bag and a couple of practice rounds so the
// recommendation endpoints have something to chew on locally.
func seedData(db *database.DB) error {
	demoUser := models.User{
		Email:        "demo@example.com",
		PasswordHash: "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy", // "password"
		Name:         "Demo Golfer",
	}
	if err := db.Create(&demoUser).Error; err != nil {
		return fmt.Errorf("failed to seed user: %w", err)
	}
	demoUserID := demoUser.ID

	clubs := make([]models.Club, 0)
	for _, name := range models.DefaultClubNames() {
		clubs = append(clubs, models.Club{UserID: demoUserID, Name: name})
	}
	if err := db.Create(&clubs).Error; err != nil {
		return fmt.Errorf("failed to seed clubs: %w", err)
	}

	clubByName := make(map[string]uint, len(clubs))
	for _, c := range clubs {
		clubByName[c.Name] = c.ID
	}

	// Typical carry distances per club. Each seeded shot varies around
	// these so the engine sees realistic spread.
	carries := map[string]int{
		"Driver":         230,
		"3 Wood":         210,
		"5 Wood":         195,
		"4 Iron":         180,
		"5 Iron":         170,
		"6 Iron":         160,
		"7 Iron":         150,
		"8 Iron":         140,
		"9 Iron":         130,
		"Pitching Wedge": 115,
		"52 Degree":      100,
		"56 Degree":      85,
		"60 Degree":      70,
	}
	shapes := models.ShotShapes()
	lies := models.Lies()

	rng := rand.New(rand.NewSource(42))

	for r := 0; r < 3; r++ {
		round := models.GolfRound{
			UserID:     demoUserID,
			Date:       time.Now().AddDate(0, 0, -7*r),
			CourseName: fmt.Sprintf("Demo Links %d", r+1),
		}
		for name, carry := range carries {
			for i := 0; i < 3; i++ {
				lie := lies[rng.Intn(len(lies))]
				if name == "Driver" {
					lie = models.LieTeeBox
				}
				round.Shots = append(round.Shots, models.Shot{
					ClubID:    clubByName[name],
					Distance:  carry + rng.Intn(21) - 10,
					ShotShape: shapes[rng.Intn(len(shapes))],
					Lie:       lie,
				})
			}
		}
		if err := db.Create(&round).Error; err != nil {
			return fmt.Errorf("failed to seed round: %w", err)
		}
	}

	return nil
}

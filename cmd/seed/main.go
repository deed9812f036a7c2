// Command main runs the database seeder for SkillSwap.
package main

import (
	"flag"
	"log"

	"skillswap/internal/config"
	"skillswap/internal/database"
	"skillswap/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()

	numUsers := flag.Int("users", defaults.NumUsers, "Number of users to create")
	edgesPerUser := flag.Int("edges", defaults.EdgesPerUser, "Connection edges per user")
	sessionsPerUser := flag.Int("sessions", defaults.SessionsPerUser, "Sessions per user")
	legacyPercent := flag.Int("legacy-edges", defaults.LegacyEdgePercent, "Percent of edges written with the legacy schema (0-100)")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d edges/user, %d sessions/user, %d%% legacy edges, clean=%v",
		*numUsers, *edgesPerUser, *sessionsPerUser, *legacyPercent, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	opts := seed.Options{
		NumUsers:          *numUsers,
		EdgesPerUser:      *edgesPerUser,
		SessionsPerUser:   *sessionsPerUser,
		LegacyEdgePercent: *legacyPercent,
		ShouldClean:       *shouldClean,
	}
	if err := seed.Run(db, opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Done. All seeded accounts share the demo password.")
}

// Command seed resets the configured database and fills it with demo
// profiles and ratings for local development.
package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/duetapp/duet-bot/internal/config"
	"github.com/duetapp/duet-bot/internal/db"
)

func main() {
	_ = godotenv.Load()

	cfg := config.New()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}

	if err := db.SeedTestData(database); err != nil {
		log.Fatalf("failed to seed: %v", err)
	}

	log.Println("Seeding complete.")
}

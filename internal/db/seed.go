package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedTestData resets the database and populates it with demo profiles
// and couple ratings.
//
// Behavior:
//  1. Clears existing data in `users`, `ratings` and `conversation_states`.
//  2. Creates 12 completed profiles (6 men, 6 women).
//  3. Generates ~80 ratings with ~70% positive votes so that the matches
//     leaderboard has something to rank.
//
// Compatible with both MySQL and SQLite.
func SeedTestData(gdb *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, table := range []string{"ratings", "conversation_states", "users"} {
		if err := gdb.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	switch gdb.Dialector.Name() {
	case "mysql":
		gdb.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
	case "sqlite":
		gdb.Exec("DELETE FROM sqlite_sequence WHERE name = 'users'")
	}

	log.Println("Cleared existing data")

	summaries := []string{
		"Love hiking and spontaneous road trips.",
		"Coffee enthusiast, amateur photographer.",
		"Always up for live music and street food.",
		"Bookworm with a weakness for bad puns.",
		"Runner, baker, occasional karaoke star.",
		"Dog person. The dog is non-negotiable.",
	}

	var ids []string
	for i := 1; i <= 12; i++ {
		gender := GenderMan
		preference := PreferenceWoman
		if i > 6 {
			gender = GenderWoman
			preference = PreferenceMan
		}

		messengerID := fmt.Sprintf("demo-%04d", i)
		user := User{
			MessengerID:    messengerID,
			Gender:         gender,
			Preference:     preference,
			PhotoURL:       fmt.Sprintf("https://picsum.photos/seed/duet%d/400/400", i),
			Summary:        summaries[(i-1)%len(summaries)],
			SetupCompleted: true,
		}
		if err := gdb.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
		ids = append(ids, messengerID)

		state := ConversationState{
			MessengerID: messengerID,
			CurrentStep: StepCompleted,
			TempData:    "{}",
		}
		if err := gdb.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "messenger_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"current_step", "temp_data", "updated_at"}),
		}).Create(&state).Error; err != nil {
			return fmt.Errorf("failed to seed state: %w", err)
		}
	}
	log.Printf("Seeded %d completed profiles.", len(ids))

	// Each demo user votes on a handful of random couples.
	for _, rater := range ids {
		for j := 0; j < 7; j++ {
			a := ids[r.Intn(len(ids))]
			b := ids[r.Intn(len(ids))]
			if a == b || a == rater || b == rater {
				continue
			}
			if a > b {
				a, b = b, a
			}

			rating := Rating{
				RaterID:   rater,
				Person1ID: a,
				Person2ID: b,
				Cute:      r.Intn(100) < 70,
			}
			if err := gdb.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "rater_id"}, {Name: "person1_id"}, {Name: "person2_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"cute", "updated_at"}),
			}).Create(&rating).Error; err != nil {
				return fmt.Errorf("failed to seed rating: %w", err)
			}
		}
	}

	return nil
}

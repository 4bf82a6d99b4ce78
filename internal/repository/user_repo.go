package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/duetapp/duet-bot/internal/db"
	svcErr "github.com/duetapp/duet-bot/internal/errors"
)

// UserRepository provides data access methods for dating profiles.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// CompletedProfile carries the four fields collected by the setup flow.
type CompletedProfile struct {
	MessengerID string
	Gender      string
	Preference  string
	PhotoURL    string
	Summary     string
}

// GetByMessengerID returns the profile for a subscriber id, or nil when
// no row exists. Absence is not an error.
func (r *UserRepository) GetByMessengerID(ctx context.Context, messengerID string) (*db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).
		Where("messenger_id = ?", messengerID).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, svcErr.Storage(err)
	}
	return &user, nil
}

// CreateCompleted inserts a new completed profile in one statement, so a
// row with setup_completed=true always carries all four fields.
//
// Behavior:
//   - Fails with a unique-violation error if the subscriber already has a
//     profile row (there is no edit flow).
func (r *UserRepository) CreateCompleted(ctx context.Context, profile CompletedProfile) error {
	user := db.User{
		MessengerID:    profile.MessengerID,
		Gender:         profile.Gender,
		Preference:     profile.Preference,
		PhotoURL:       profile.PhotoURL,
		Summary:        profile.Summary,
		SetupCompleted: true,
	}
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		return svcErr.Storage(err)
	}
	return nil
}

// PickRandomPair uniformly samples two distinct completed profiles.
//
// Behavior:
//   - Returns (nil, nil) when fewer than two completed profiles exist.
//   - Distinctness is structural (two different rows); repeated calls make
//     no fairness guarantee.
func (r *UserRepository) PickRandomPair(ctx context.Context) (*db.User, *db.User, error) {
	// sqlite spells it RANDOM(), mysql RAND()
	randFn := "RANDOM()"
	if r.db.Dialector.Name() == "mysql" {
		randFn = "RAND()"
	}

	var users []db.User
	err := r.db.WithContext(ctx).
		Where("setup_completed = ?", true).
		Order(randFn).
		Limit(2).
		Find(&users).Error
	if err != nil {
		return nil, nil, svcErr.Storage(err)
	}
	if len(users) < 2 {
		return nil, nil, nil
	}
	return &users[0], &users[1], nil
}

package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/duetapp/duet-bot/internal/db"
	svcErr "github.com/duetapp/duet-bot/internal/errors"
)

// MatchEntry is one row of the matches leaderboard: another user plus the
// number of positive votes linking them to the queried subscriber.
type MatchEntry struct {
	User  db.User
	Score int64
}

// RatingRepository provides data access methods for couple ratings and
// the match queries built on top of them.
type RatingRepository struct {
	db *gorm.DB
}

// NewRatingRepository creates a new repository bound to the given DB connection.
func NewRatingRepository(database *gorm.DB) *RatingRepository {
	return &RatingRepository{db: database}
}

// canonicalize orders a couple's ids so the same pair always maps to the
// same row regardless of presentation order.
func canonicalize(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

// Upsert inserts or replaces a rater's vote on a couple and reports the
// vote it replaced.
//
// Behavior:
//   - The pair is canonicalized, then the composite PK
//     (rater_id, person1_id, person2_id) guarantees at most one row per
//     rater and couple; re-votes overwrite the prior value.
//   - prev is nil when the rater had no row for this couple, otherwise
//     the overwritten Cute value. The read and the write are not atomic;
//     concurrent re-votes by the same rater may observe each other.
//
// Example:
//
//	prev, err := repo.Upsert(ctx, "C", "A", "B", true) // C voted couple (A,B) cute
func (r *RatingRepository) Upsert(ctx context.Context, raterID, person1ID, person2ID string, cute bool) (*bool, error) {
	p1, p2 := canonicalize(person1ID, person2ID)

	var prev *bool
	var existing db.Rating
	err := r.db.WithContext(ctx).
		Where("rater_id = ? AND person1_id = ? AND person2_id = ?", raterID, p1, p2).
		First(&existing).Error
	switch {
	case err == nil:
		prev = &existing.Cute
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, svcErr.Storage(err)
	}

	rating := db.Rating{
		RaterID:   raterID,
		Person1ID: p1,
		Person2ID: p2,
		Cute:      cute,
	}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "rater_id"}, {Name: "person1_id"}, {Name: "person2_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"cute", "updated_at"}),
		}).
		Create(&rating).Error
	if err != nil {
		return nil, svcErr.Storage(err)
	}
	return prev, nil
}

// TopMatchesFor returns the matches leaderboard for a subscriber.
//
// Behavior:
//   - Considers every positive vote row (any rater) whose couple contains
//     the subscriber, groups by the other member of the couple, orders by
//     vote count descending and caps at 10 entries.
//   - A user linked to the subscriber by zero positive votes yields no entry.
func (r *RatingRepository) TopMatchesFor(ctx context.Context, messengerID string) ([]MatchEntry, error) {
	type row struct {
		ID             uint64
		MessengerID    string
		Gender         string
		Preference     string
		PhotoURL       string
		Summary        string
		SetupCompleted bool
		MatchScore     int64
	}

	var rows []row
	err := r.db.WithContext(ctx).
		Table("users u").
		Select("u.*, COUNT(*) as match_score").
		Joins(`JOIN ratings r ON (
			(r.person1_id = u.messenger_id AND r.person2_id = ?) OR
			(r.person2_id = u.messenger_id AND r.person1_id = ?)
		)`, messengerID, messengerID).
		Where("u.messenger_id != ? AND r.cute = ?", messengerID, true).
		Group("u.messenger_id").
		Order("match_score DESC").
		Limit(10).
		Find(&rows).Error
	if err != nil {
		return nil, svcErr.Storage(err)
	}

	matches := make([]MatchEntry, 0, len(rows))
	for _, rw := range rows {
		matches = append(matches, MatchEntry{
			User: db.User{
				ID:             rw.ID,
				MessengerID:    rw.MessengerID,
				Gender:         rw.Gender,
				Preference:     rw.Preference,
				PhotoURL:       rw.PhotoURL,
				Summary:        rw.Summary,
				SetupCompleted: rw.SetupCompleted,
			},
			Score: rw.MatchScore,
		})
	}
	return matches, nil
}

// CountPositiveVotes returns how many positive vote rows contain the
// subscriber. Backs the cached empty-state check in the matches
// presentation (cache is primary, this is the fallback).
func (r *RatingRepository) CountPositiveVotes(ctx context.Context, messengerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("ratings").
		Where("cute = ? AND (person1_id = ? OR person2_id = ?)", true, messengerID, messengerID).
		Count(&count).Error
	if err != nil {
		return 0, svcErr.Storage(err)
	}
	return count, nil
}

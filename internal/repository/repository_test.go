package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/duetapp/duet-bot/internal/db"
	svcErr "github.com/duetapp/duet-bot/internal/errors"
	"github.com/duetapp/duet-bot/internal/repository"
)

func svcErrKind(t *testing.T, err error) string {
	t.Helper()
	return string(svcErr.KindOf(err))
}

// setup in-memory DB
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	database, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.AutoMigrate(&db.User{}, &db.ConversationState{}, &db.Rating{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

func mustVote(t *testing.T, repo *repository.RatingRepository, rater, p1, p2 string, cute bool) {
	t.Helper()
	_, err := repo.Upsert(context.Background(), rater, p1, p2, cute)
	require.NoError(t, err)
}

func completedProfile(id, gender string) repository.CompletedProfile {
	preference := db.PreferenceWoman
	if gender == db.GenderWoman {
		preference = db.PreferenceMan
	}
	return repository.CompletedProfile{
		MessengerID: id,
		Gender:      gender,
		Preference:  preference,
		PhotoURL:    "https://cdn.example.com/" + id + ".jpg",
		Summary:     "Summary for " + id,
	}
}

func TestCreateCompletedAndGet(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewUserRepository(dbase)

	// absent user is nil, not an error
	user, err := repo.GetByMessengerID(ctx, "nobody")
	assert.NoError(t, err)
	assert.Nil(t, user)

	require.NoError(t, repo.CreateCompleted(ctx, completedProfile("alice", db.GenderWoman)))

	user, err = repo.GetByMessengerID(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, user.SetupCompleted)
	assert.Equal(t, db.GenderWoman, user.Gender)
	assert.Equal(t, db.PreferenceMan, user.Preference)
	assert.NotEmpty(t, user.PhotoURL)
	assert.NotEmpty(t, user.Summary)
}

func TestCreateCompletedDuplicate(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewUserRepository(dbase)

	require.NoError(t, repo.CreateCompleted(ctx, completedProfile("alice", db.GenderWoman)))

	err := repo.CreateCompleted(ctx, completedProfile("alice", db.GenderWoman))
	require.Error(t, err)
	assert.Equal(t, svcErrKind(t, err), "unique_violation")
}

func TestPickRandomPair(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewUserRepository(dbase)

	// zero completed profiles
	p1, p2, err := repo.PickRandomPair(ctx)
	assert.NoError(t, err)
	assert.Nil(t, p1)
	assert.Nil(t, p2)

	// one completed profile is still not a pair
	require.NoError(t, repo.CreateCompleted(ctx, completedProfile("alice", db.GenderWoman)))
	p1, p2, err = repo.PickRandomPair(ctx)
	assert.NoError(t, err)
	assert.Nil(t, p1)
	assert.Nil(t, p2)

	require.NoError(t, repo.CreateCompleted(ctx, completedProfile("bob", db.GenderMan)))
	p1, p2, err = repo.PickRandomPair(ctx)
	require.NoError(t, err)
	require.NotNil(t, p1)
	require.NotNil(t, p2)
	assert.NotEqual(t, p1.MessengerID, p2.MessengerID)
}

func TestPickRandomPairIgnoresIncomplete(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewUserRepository(dbase)

	require.NoError(t, repo.CreateCompleted(ctx, completedProfile("alice", db.GenderWoman)))
	// a half-set-up row must never be presented
	require.NoError(t, dbase.Create(&db.User{MessengerID: "draft", Gender: db.GenderMan}).Error)

	p1, p2, err := repo.PickRandomPair(ctx)
	assert.NoError(t, err)
	assert.Nil(t, p1)
	assert.Nil(t, p2)
}

func TestConversationStateDefault(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewStateRepository(dbase)

	state, err := repo.Get(ctx, "newcomer")
	require.NoError(t, err)
	assert.Equal(t, "newcomer", state.MessengerID)
	assert.Equal(t, db.StepStart, state.CurrentStep)
	assert.Equal(t, repository.PartialProfile{}, state.Partial)
}

func TestConversationStateRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewStateRepository(dbase)

	partial := repository.PartialProfile{Gender: db.GenderMan, Preference: db.PreferenceWoman}
	require.NoError(t, repo.Set(ctx, "u1", db.StepAwaitingPhoto, partial))

	state, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, db.StepAwaitingPhoto, state.CurrentStep)
	assert.Equal(t, partial, state.Partial)

	// whole-row replace on transition
	partial.PhotoURL = "https://cdn.example.com/u1.jpg"
	require.NoError(t, repo.Set(ctx, "u1", db.StepAwaitingSummary, partial))

	state, err = repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, db.StepAwaitingSummary, state.CurrentStep)
	assert.Equal(t, partial.PhotoURL, state.Partial.PhotoURL)
	assert.Equal(t, db.GenderMan, state.Partial.Gender)

	var count int64
	dbase.Model(&db.ConversationState{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRatingUpsert(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewRatingRepository(dbase)

	prev, err := repo.Upsert(ctx, "rater", "A", "B", true)
	require.NoError(t, err)
	assert.Nil(t, prev)

	// an identical re-vote keeps the single row and reports the old value
	prev, err = repo.Upsert(ctx, "rater", "A", "B", true)
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.True(t, *prev)

	var ratings []db.Rating
	require.NoError(t, dbase.Find(&ratings).Error)
	require.Len(t, ratings, 1)
	assert.True(t, ratings[0].Cute)

	// re-vote overwrites the prior value
	prev, err = repo.Upsert(ctx, "rater", "A", "B", false)
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.True(t, *prev)
	require.NoError(t, dbase.Find(&ratings).Error)
	require.Len(t, ratings, 1)
	assert.False(t, ratings[0].Cute)
}

func TestRatingUpsertCanonicalizesPairOrder(t *testing.T) {
	dbase := setupTestDB(t)
	repo := repository.NewRatingRepository(dbase)

	// the same couple presented in both orders collapses into one row
	mustVote(t, repo, "rater", "B", "A", true)
	mustVote(t, repo, "rater", "A", "B", false)

	var ratings []db.Rating
	require.NoError(t, dbase.Find(&ratings).Error)
	require.Len(t, ratings, 1)
	assert.Equal(t, "A", ratings[0].Person1ID)
	assert.Equal(t, "B", ratings[0].Person2ID)
	assert.False(t, ratings[0].Cute)
}

func TestTopMatchesFor(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	users := repository.NewUserRepository(dbase)
	ratings := repository.NewRatingRepository(dbase)

	for _, id := range []string{"A", "B", "C", "D"} {
		require.NoError(t, users.CreateCompleted(ctx, completedProfile(id, db.GenderMan)))
	}

	// (A,B) voted cute twice by different raters, (A,C) once, (A,D) negative
	mustVote(t, ratings, "r1", "A", "B", true)
	mustVote(t, ratings, "r2", "B", "A", true)
	mustVote(t, ratings, "r1", "A", "C", true)
	mustVote(t, ratings, "r1", "A", "D", false)

	matches, err := ratings.TopMatchesFor(ctx, "A")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "B", matches[0].User.MessengerID)
	assert.Equal(t, int64(2), matches[0].Score)
	assert.Equal(t, "C", matches[1].User.MessengerID)
	assert.Equal(t, int64(1), matches[1].Score)

	// D appears in no positive pair with A
	for _, m := range matches {
		assert.NotEqual(t, "D", m.User.MessengerID)
	}

	// raters themselves are unaffected
	matches, err = ratings.TopMatchesFor(ctx, "r1")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestTopMatchesForCapsAtTen(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	users := repository.NewUserRepository(dbase)
	ratings := repository.NewRatingRepository(dbase)

	require.NoError(t, users.CreateCompleted(ctx, completedProfile("hub", db.GenderMan)))
	for i := 0; i < 12; i++ {
		other := fmt.Sprintf("other-%02d", i)
		require.NoError(t, users.CreateCompleted(ctx, completedProfile(other, db.GenderWoman)))
		mustVote(t, ratings, "voter", "hub", other, true)
	}

	matches, err := ratings.TopMatchesFor(ctx, "hub")
	require.NoError(t, err)
	assert.Len(t, matches, 10)
}

func TestCountPositiveVotes(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	ratings := repository.NewRatingRepository(dbase)

	mustVote(t, ratings, "r1", "A", "B", true)
	mustVote(t, ratings, "r2", "A", "C", true)
	mustVote(t, ratings, "r3", "A", "D", false)

	count, err := ratings.CountPositiveVotes(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = ratings.CountPositiveVotes(ctx, "D")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

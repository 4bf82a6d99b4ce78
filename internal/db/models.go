package db

import (
	"time"
)

// Gender values accepted by the profile-setup flow.
const (
	GenderMan   = "Man"
	GenderWoman = "Woman"
)

// Preference values accepted by the profile-setup flow.
const (
	PreferenceMan   = "Looking for a Man"
	PreferenceWoman = "Looking for a Woman"
)

// Steps of the profile-setup conversation.
const (
	StepStart              = "START"
	StepAwaitingGender     = "AWAITING_GENDER"
	StepAwaitingPreference = "AWAITING_PREFERENCE"
	StepAwaitingPhoto      = "AWAITING_PHOTO"
	StepAwaitingSummary    = "AWAITING_SUMMARY"
	StepCompleted          = "COMPLETED"
)

// User is a dating profile keyed by the platform's opaque subscriber id.
// A row with SetupCompleted=true always carries all four profile fields;
// the only creation path inserts them together.
type User struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement"`
	MessengerID    string    `gorm:"uniqueIndex;size:64;not null"`
	Gender         string    `gorm:"size:16;not null"`
	Preference     string    `gorm:"size:32;not null"`
	PhotoURL       string    `gorm:"size:512"`
	Summary        string    `gorm:"size:1024"`
	SetupCompleted bool      `gorm:"default:false;index"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

// ConversationState tracks where a subscriber is in the setup flow.
// One row per subscriber; every transition replaces the whole row.
// TempData is the JSON-serialized PartialProfile scratch.
type ConversationState struct {
	MessengerID string    `gorm:"primaryKey;size:64"`
	CurrentStep string    `gorm:"size:32;not null;default:START"`
	TempData    string    `gorm:"size:2048;not null;default:'{}'"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// Rating is one rater's cute/not-cute vote on a presented couple.
//
// Composite PK: (RaterID, Person1ID, Person2ID)
//   - Guarantees a single row per rater and pair (overwrite on re-vote).
//
// Person1ID/Person2ID are canonicalized to lexicographic order before
// writing, so the same couple presented in either order collapses into
// one relation per rater.
type Rating struct {
	RaterID   string    `gorm:"primaryKey;size:64"`
	Person1ID string    `gorm:"primaryKey;size:64;index:idx_person1_cute,priority:1"`
	Person2ID string    `gorm:"primaryKey;size:64;index:idx_person2_cute,priority:1"`
	Cute      bool      `gorm:"not null;index:idx_person1_cute,priority:2;index:idx_person2_cute,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

package repository

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/duetapp/duet-bot/internal/db"
	svcErr "github.com/duetapp/duet-bot/internal/errors"
)

// PartialProfile is the typed scratch accumulated across setup steps.
// It is serialized into conversation_states.temp_data.
type PartialProfile struct {
	Gender     string `json:"gender,omitempty"`
	Preference string `json:"preference,omitempty"`
	PhotoURL   string `json:"photo_url,omitempty"`
	Summary    string `json:"summary,omitempty"`
}

// ConversationState is the repository-level view of a subscriber's
// position in the setup flow, with the scratch already decoded.
type ConversationState struct {
	MessengerID string
	CurrentStep string
	Partial     PartialProfile
}

// StateRepository provides data access methods for conversation state.
type StateRepository struct {
	db *gorm.DB
}

// NewStateRepository creates a new repository bound to the given DB connection.
func NewStateRepository(database *gorm.DB) *StateRepository {
	return &StateRepository{db: database}
}

// Get returns the persisted state for a subscriber, or a synthesized
// default {id, START, empty scratch} when no row exists. "Not found" is
// never an error; only I/O failures are.
func (r *StateRepository) Get(ctx context.Context, messengerID string) (ConversationState, error) {
	var row db.ConversationState
	err := r.db.WithContext(ctx).
		Where("messenger_id = ?", messengerID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ConversationState{
			MessengerID: messengerID,
			CurrentStep: db.StepStart,
		}, nil
	}
	if err != nil {
		return ConversationState{}, svcErr.Storage(err)
	}

	state := ConversationState{
		MessengerID: row.MessengerID,
		CurrentStep: row.CurrentStep,
	}
	if row.TempData != "" {
		// malformed scratch degrades to an empty one rather than failing
		// the whole turn
		_ = json.Unmarshal([]byte(row.TempData), &state.Partial)
	}
	return state, nil
}

// Set replaces the whole state row for a subscriber (insert-or-overwrite
// keyed by messenger id). Idempotent.
func (r *StateRepository) Set(ctx context.Context, messengerID, step string, partial PartialProfile) error {
	raw, err := json.Marshal(partial)
	if err != nil {
		return svcErr.Storage(err)
	}

	row := db.ConversationState{
		MessengerID: messengerID,
		CurrentStep: step,
		TempData:    string(raw),
	}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "messenger_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"current_step", "temp_data", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return svcErr.Storage(err)
	}
	return nil
}

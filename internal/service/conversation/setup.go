package conversation

import (
	"context"

	"github.com/duetapp/duet-bot/internal/db"
	"github.com/duetapp/duet-bot/internal/messenger"
	"github.com/duetapp/duet-bot/internal/repository"
	"github.com/duetapp/duet-bot/internal/utils/payload"
)

// handleProfileSetup advances the linear setup state machine by one turn.
// Gender and preference arrive as postbacks, so a plain message in those
// steps just re-prompts.
func (s *Service) handleProfileSetup(ctx context.Context, senderID string, msg Message, state repository.ConversationState) error {
	switch state.CurrentStep {
	case db.StepStart:
		return s.startProfileSetup(ctx, senderID)
	case db.StepAwaitingGender:
		return s.askGender(ctx, senderID)
	case db.StepAwaitingPreference:
		return s.askPreference(ctx, senderID)
	case db.StepAwaitingPhoto:
		return s.handlePhotoUpload(ctx, senderID, msg, state.Partial)
	case db.StepAwaitingSummary:
		return s.handleSummaryInput(ctx, senderID, msg, state.Partial)
	default:
		// unknown stored step restarts setup
		return s.startProfileSetup(ctx, senderID)
	}
}

func (s *Service) startProfileSetup(ctx context.Context, senderID string) error {
	if err := s.sender.Send(ctx, senderID, messenger.Text(msgWelcome)); err != nil {
		return err
	}

	s.scheduleFollowUp(genderPromptDelay, senderID, func(ctx context.Context) error {
		return s.askGender(ctx, senderID)
	})
	return nil
}

// askGender persists AWAITING_GENDER and prompts the gender choice. The
// write precedes the send so a failed send leaves the machine re-promptable.
func (s *Service) askGender(ctx context.Context, senderID string) error {
	if err := s.states.Set(ctx, senderID, db.StepAwaitingGender, repository.PartialProfile{}); err != nil {
		return err
	}

	return s.sender.Send(ctx, senderID, messenger.QuickReplies(msgAskGender,
		messenger.Choice{
			Title:   db.GenderMan,
			Payload: payload.Encode(payload.Postback{Action: payload.ActionSelectGender, Gender: db.GenderMan}),
		},
		messenger.Choice{
			Title:   db.GenderWoman,
			Payload: payload.Encode(payload.Postback{Action: payload.ActionSelectGender, Gender: db.GenderWoman}),
		},
	))
}

func (s *Service) handleGenderSelection(ctx context.Context, senderID, gender string) error {
	partial := repository.PartialProfile{Gender: gender}
	if err := s.states.Set(ctx, senderID, db.StepAwaitingPreference, partial); err != nil {
		return err
	}
	return s.askPreference(ctx, senderID)
}

func (s *Service) askPreference(ctx context.Context, senderID string) error {
	return s.sender.Send(ctx, senderID, messenger.QuickReplies(msgAskPreference,
		messenger.Choice{
			Title:   db.PreferenceMan,
			Payload: payload.Encode(payload.Postback{Action: payload.ActionSelectPreference, Preference: db.PreferenceMan}),
		},
		messenger.Choice{
			Title:   db.PreferenceWoman,
			Payload: payload.Encode(payload.Postback{Action: payload.ActionSelectPreference, Preference: db.PreferenceWoman}),
		},
	))
}

// handlePreferenceSelection stores the preference next to the already
// collected gender and advances to the photo step.
func (s *Service) handlePreferenceSelection(ctx context.Context, senderID, preference string) error {
	state, err := s.states.Get(ctx, senderID)
	if err != nil {
		return err
	}

	partial := state.Partial
	partial.Preference = preference

	if err := s.states.Set(ctx, senderID, db.StepAwaitingPhoto, partial); err != nil {
		return err
	}
	return s.sender.Send(ctx, senderID, messenger.Text(msgAskPhoto))
}

// handlePhotoUpload requires an image attachment; anything else re-prompts
// without a transition.
func (s *Service) handlePhotoUpload(ctx context.Context, senderID string, msg Message, partial repository.PartialProfile) error {
	var photoURL string
	for _, att := range msg.Attachments {
		if att.Type == "image" {
			photoURL = att.URL
			break
		}
	}
	if photoURL == "" {
		return s.sender.Send(ctx, senderID, messenger.Text(msgRetryPhoto))
	}

	partial.PhotoURL = photoURL
	if err := s.states.Set(ctx, senderID, db.StepAwaitingSummary, partial); err != nil {
		return err
	}
	return s.sender.Send(ctx, senderID, messenger.Text(msgAskSummary))
}

// handleSummaryInput finishes setup: the completed profile row is created
// in one insert, then the state goes terminal and the first couple is
// queued up.
func (s *Service) handleSummaryInput(ctx context.Context, senderID string, msg Message, partial repository.PartialProfile) error {
	if msg.Text == "" {
		return s.sender.Send(ctx, senderID, messenger.Text(msgRetrySummary))
	}

	partial.Summary = msg.Text
	if err := s.users.CreateCompleted(ctx, repository.CompletedProfile{
		MessengerID: senderID,
		Gender:      partial.Gender,
		Preference:  partial.Preference,
		PhotoURL:    partial.PhotoURL,
		Summary:     partial.Summary,
	}); err != nil {
		return err
	}

	if err := s.states.Set(ctx, senderID, db.StepCompleted, repository.PartialProfile{}); err != nil {
		return err
	}

	s.appCtx.Logger.Info("profile setup completed", "sender", senderID)

	if err := s.sender.Send(ctx, senderID, messenger.Text(msgProfileComplete)); err != nil {
		return err
	}

	s.scheduleFollowUp(firstCoupleDelay, senderID, func(ctx context.Context) error {
		return s.showRandomCouple(ctx, senderID)
	})
	return nil
}

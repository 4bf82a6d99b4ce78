// Package conversation implements the per-subscriber state machine behind
// the bot: profile setup, main-command dispatch, couple rating and the
// matches leaderboard.
package conversation

import (
	"context"
	"time"

	"github.com/duetapp/duet-bot/internal/app"
	svcErr "github.com/duetapp/duet-bot/internal/errors"
	"github.com/duetapp/duet-bot/internal/messenger"
	"github.com/duetapp/duet-bot/internal/repository"
	"github.com/duetapp/duet-bot/internal/scheduler"
	"github.com/duetapp/duet-bot/internal/utils/payload"
)

// Delays pacing follow-up sends. UX choices, not correctness requirements.
const (
	genderPromptDelay  = 1 * time.Second
	ratingPromptDelay  = 1500 * time.Millisecond
	firstCoupleDelay   = 2 * time.Second
	nextCoupleDelay    = 1 * time.Second
	matchesNudgeDelay  = 2 * time.Second
	followUpSendBudget = 10 * time.Second
)

// Attachment is an inbound media attachment.
type Attachment struct {
	Type string
	URL  string
}

// Message is an inbound text/media message from a subscriber.
type Message struct {
	Text        string
	Attachments []Attachment
}

// Service is the conversation engine. It re-reads persisted state on
// every turn and holds no long-lived per-user data.
type Service struct {
	appCtx  *app.AppContext
	users   *repository.UserRepository
	states  *repository.StateRepository
	ratings *repository.RatingRepository
	sender  messenger.Sender
	sched   scheduler.Scheduler
}

// NewService wires the engine from shared dependencies.
func NewService(appCtx *app.AppContext, sender messenger.Sender, sched scheduler.Scheduler) *Service {
	return &Service{
		appCtx:  appCtx,
		users:   repository.NewUserRepository(appCtx.DB),
		states:  repository.NewStateRepository(appCtx.DB),
		ratings: repository.NewRatingRepository(appCtx.DB),
		sender:  sender,
		sched:   sched,
	}
}

// HandleMessage processes one inbound message event. Every failure is
// classified for the logs and collapsed into a single generic apology;
// nothing propagates back to the gateway.
func (s *Service) HandleMessage(ctx context.Context, senderID string, msg Message) {
	s.appCtx.Logger.Debug("handling message", "sender", senderID, "has_text", msg.Text != "", "attachments", len(msg.Attachments))

	if err := s.routeMessage(ctx, senderID, msg); err != nil {
		s.apologize(ctx, senderID, err)
	}
}

// HandlePostback processes one echoed quick-reply/button payload.
func (s *Service) HandlePostback(ctx context.Context, senderID string, raw string) {
	s.appCtx.Logger.Debug("handling postback", "sender", senderID)

	pb, err := payload.Decode(raw)
	if err != nil {
		s.apologize(ctx, senderID, svcErr.PayloadMalformed(err))
		return
	}

	switch pb.Action {
	case payload.ActionRateCouple:
		err = s.handleCoupleRating(ctx, senderID, pb)
	case payload.ActionViewMoreCouples:
		err = s.showRandomCouple(ctx, senderID)
	case payload.ActionShowMatches:
		err = s.showMatches(ctx, senderID)
	case payload.ActionSelectGender:
		err = s.handleGenderSelection(ctx, senderID, pb.Gender)
	case payload.ActionSelectPreference:
		err = s.handlePreferenceSelection(ctx, senderID, pb.Preference)
	default:
		s.appCtx.Logger.Warn("unknown postback action", "sender", senderID, "action", pb.Action)
		return
	}

	if err != nil {
		s.apologize(ctx, senderID, err)
	}
}

// routeMessage decides between the setup sub-machine and the post-setup
// command dispatcher. Once a completed profile exists the stored step no
// longer matters; COMPLETED is functionally terminal.
func (s *Service) routeMessage(ctx context.Context, senderID string, msg Message) error {
	user, err := s.users.GetByMessengerID(ctx, senderID)
	if err != nil {
		return err
	}

	if user == nil || !user.SetupCompleted {
		state, err := s.states.Get(ctx, senderID)
		if err != nil {
			return err
		}
		return s.handleProfileSetup(ctx, senderID, msg, state)
	}

	return s.handleMainCommand(ctx, senderID, msg)
}

// apologize sends the generic failure message. A send failure here is
// logged and swallowed to avoid an error-handling loop.
func (s *Service) apologize(ctx context.Context, senderID string, cause error) {
	s.appCtx.Logger.Error("event handling failed",
		"sender", senderID,
		"kind", svcErr.KindOf(cause),
		"err", cause,
	)

	if err := s.sender.Send(ctx, senderID, messenger.Text(msgApology)); err != nil {
		s.appCtx.Logger.Error("apology send failed", "sender", senderID, "err", err)
	}
}

// scheduleFollowUp runs fn after delay on the shared scheduler. The
// follow-up gets its own context: the triggering webhook request is long
// gone by the time it fires.
func (s *Service) scheduleFollowUp(delay time.Duration, senderID string, fn func(ctx context.Context) error) {
	_, err := s.sched.ScheduleAfter(delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), followUpSendBudget)
		defer cancel()

		if err := fn(ctx); err != nil {
			s.appCtx.Logger.Error("follow-up send failed",
				"sender", senderID,
				"kind", svcErr.KindOf(err),
				"err", err,
			)
		}
	})
	if err != nil {
		s.appCtx.Logger.Error("failed to schedule follow-up", "sender", senderID, "err", err)
	}
}

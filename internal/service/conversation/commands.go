package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/duetapp/duet-bot/internal/db"
	svcErr "github.com/duetapp/duet-bot/internal/errors"
	"github.com/duetapp/duet-bot/internal/messenger"
	"github.com/duetapp/duet-bot/internal/utils/payload"
)

// handleMainCommand dispatches post-setup text commands. Matching is on
// lower-cased substrings, first match wins.
func (s *Service) handleMainCommand(ctx context.Context, senderID string, msg Message) error {
	text := strings.ToLower(msg.Text)

	switch {
	case strings.Contains(text, "view couples") || strings.Contains(text, "couples"):
		return s.showRandomCouple(ctx, senderID)
	case strings.Contains(text, "my matches") || strings.Contains(text, "matches"):
		return s.showMatches(ctx, senderID)
	case strings.Contains(text, "help"):
		return s.sender.Send(ctx, senderID, messenger.Text(msgHelp))
	default:
		return s.sender.Send(ctx, senderID, messenger.Text(msgCommandList))
	}
}

func genderEmoji(gender string) string {
	if gender == db.GenderMan {
		return "👨"
	}
	return "👩"
}

// showRandomCouple presents a random couple: first the two-card carousel,
// then (paced) the yes/no rating prompt whose payloads carry both ids.
// The two sends are independent; a failed prompt does not undo the carousel.
func (s *Service) showRandomCouple(ctx context.Context, senderID string) error {
	person1, person2, err := s.users.PickRandomPair(ctx)
	if err != nil {
		return err
	}
	if person1 == nil || person2 == nil {
		return s.sender.Send(ctx, senderID, messenger.Text(msgNotEnoughProfiles))
	}

	carousel := messenger.GenericTemplate(
		messenger.Card{
			Title:    genderEmoji(person1.Gender) + " Profile",
			Subtitle: person1.Summary,
			ImageURL: person1.PhotoURL,
		},
		messenger.Card{
			Title:    genderEmoji(person2.Gender) + " Profile",
			Subtitle: person2.Summary,
			ImageURL: person2.PhotoURL,
		},
	)
	if err := s.sender.Send(ctx, senderID, carousel); err != nil {
		return err
	}

	p1, p2 := person1.MessengerID, person2.MessengerID
	s.scheduleFollowUp(ratingPromptDelay, senderID, func(ctx context.Context) error {
		return s.sender.Send(ctx, senderID, messenger.QuickReplies(msgRateCouple,
			messenger.Choice{
				Title:   "❤️ Yes!",
				Payload: payload.Encode(payload.Postback{Action: payload.ActionRateCouple, Person1ID: p1, Person2ID: p2, Rating: true}),
			},
			messenger.Choice{
				Title:   "❌ No",
				Payload: payload.Encode(payload.Postback{Action: payload.ActionRateCouple, Person1ID: p1, Person2ID: p2, Rating: false}),
			},
		))
	})
	return nil
}

// handleCoupleRating records the vote, keeps the subjects' cached vote
// counters honest, acknowledges, and nudges toward the next couple.
func (s *Service) handleCoupleRating(ctx context.Context, senderID string, pb payload.Postback) error {
	if pb.Person1ID == "" || pb.Person2ID == "" {
		return svcErr.PayloadMalformed(fmt.Errorf("rate_couple payload missing person ids"))
	}

	prev, err := s.ratings.Upsert(ctx, senderID, pb.Person1ID, pb.Person2ID, pb.Rating)
	if err != nil {
		return err
	}

	// The counters track positive rows, one per rater and couple. Only a
	// vote that became positive bumps them; an identical re-vote changes
	// nothing, and a dropped positive invalidates so the next read
	// recomputes from the DB.
	becamePositive := pb.Rating && (prev == nil || !*prev)
	droppedPositive := !pb.Rating && prev != nil && *prev
	if becamePositive || droppedPositive {
		for _, subject := range []string{pb.Person1ID, pb.Person2ID} {
			var cacheErr error
			if becamePositive {
				cacheErr = s.appCtx.RedisCache.AdjustVoteCount(ctx, subject, 1)
			} else {
				cacheErr = s.appCtx.RedisCache.InvalidateVoteCount(ctx, subject)
			}
			if cacheErr != nil {
				s.appCtx.Logger.Warn("vote counter cache update failed", "subject", subject, "err", cacheErr)
			}
		}
	}

	ack := msgThanksNegative
	if pb.Rating {
		ack = msgThanksPositive
	}
	if err := s.sender.Send(ctx, senderID, messenger.Text(ack)); err != nil {
		return err
	}

	s.scheduleFollowUp(nextCoupleDelay, senderID, func(ctx context.Context) error {
		return s.sender.Send(ctx, senderID, messenger.QuickReplies(msgSeeAnother,
			messenger.Choice{
				Title:   "Yes! 👀",
				Payload: payload.Encode(payload.Postback{Action: payload.ActionViewMoreCouples}),
			},
			messenger.Choice{
				Title:   "Show My Matches",
				Payload: payload.Encode(payload.Postback{Action: payload.ActionShowMatches}),
			},
		))
	})
	return nil
}

// positiveVoteCount is the cache-first read backing the matches
// empty-state check, mirroring the counter's write path in
// handleCoupleRating. Cache miss falls back to the DB and refills.
func (s *Service) positiveVoteCount(ctx context.Context, senderID string) (int64, error) {
	if count, ok, err := s.appCtx.RedisCache.GetVoteCount(ctx, senderID); err == nil && ok {
		return count, nil
	} else if err != nil {
		s.appCtx.Logger.Warn("vote counter cache read failed", "sender", senderID, "err", err)
	}

	count, err := s.ratings.CountPositiveVotes(ctx, senderID)
	if err != nil {
		return 0, err
	}

	if err := s.appCtx.RedisCache.SetVoteCount(ctx, senderID, count); err != nil {
		s.appCtx.Logger.Warn("vote counter cache fill failed", "sender", senderID, "err", err)
	}
	return count, nil
}

// showMatches presents the ranked leaderboard: summary line, one carousel
// capped at the platform limit, then a paced nudge back to rating.
func (s *Service) showMatches(ctx context.Context, senderID string) error {
	count, err := s.positiveVoteCount(ctx, senderID)
	if err != nil {
		return err
	}
	if count == 0 {
		return s.sender.Send(ctx, senderID, messenger.Text(msgNoMatches))
	}

	matches, err := s.ratings.TopMatchesFor(ctx, senderID)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return s.sender.Send(ctx, senderID, messenger.Text(msgNoMatches))
	}

	header := fmt.Sprintf("🔥 Your top matches (%d):", len(matches))
	if err := s.sender.Send(ctx, senderID, messenger.Text(header)); err != nil {
		return err
	}

	if len(matches) > messenger.MaxCarouselCards {
		matches = matches[:messenger.MaxCarouselCards]
	}
	cards := make([]messenger.Card, 0, len(matches))
	for _, m := range matches {
		cards = append(cards, messenger.Card{
			Title:    fmt.Sprintf("%s %d votes", genderEmoji(m.User.Gender), m.Score),
			Subtitle: m.User.Summary,
			ImageURL: m.User.PhotoURL,
		})
	}
	if err := s.sender.Send(ctx, senderID, messenger.GenericTemplate(cards...)); err != nil {
		return err
	}

	s.scheduleFollowUp(matchesNudgeDelay, senderID, func(ctx context.Context) error {
		return s.sender.Send(ctx, senderID, messenger.QuickReplies(msgMoreMatches,
			messenger.Choice{
				Title:   "Yes! 💕",
				Payload: payload.Encode(payload.Postback{Action: payload.ActionViewMoreCouples}),
			},
		))
	})
	return nil
}

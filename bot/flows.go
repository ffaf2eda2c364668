package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jeanzhou31/slackattack/core/chat"
	"github.com/jeanzhou31/slackattack/core/dialog"
	"github.com/jeanzhou31/slackattack/core/game"
	"github.com/jeanzhou31/slackattack/core/logger"
	"github.com/jeanzhou31/slackattack/core/lookup"
)

const (
	greatHelp     = "Great! I'd love to help."
	perhapsLater  = "I understand, perhaps later."
	lookupLogComp = "lookup"
)

// FoodFlow asks for a cuisine and a place, then reports the best match.
func FoodFlow(search lookup.FoodSearcher) *dialog.Flow {
	return dialog.MustFlow(IntentFood, nil,
		dialog.Confirm("confirm", "Would you like food recommendations near you?", dialog.ConfirmText{
			Accepted: []string{greatHelp},
			Declined: perhapsLater,
		}),
		dialog.Capture("food", "What kind of food do you want?", SlotFood, func(*dialog.Session) string {
			return "Ok, sounds good."
		}),
		dialog.Capture("place", "And where are you?", SlotPlace, func(s *dialog.Session) string {
			return fmt.Sprintf("Ok! I can try to find %s near %s. One moment.", s.Value(SlotFood), s.Value(SlotPlace))
		}),
		dialog.Lookup("search", func(ctx context.Context, s *dialog.Session, _ string, out chat.Outbox) dialog.Transition {
			food, place := s.Value(SlotFood), s.Value(SlotPlace)
			res, err := search.Search(ctx, food, place)
			switch {
			case err != nil:
				logLookupFailure(ctx, "food.search", err)
				s.SetOutcome(failureOutcome(err))
				out.Send(ctx, fmt.Sprintf("Sorry! I couldn't find %s near %s.", food, place))
			case len(res.Businesses) == 0:
				s.SetOutcome(dialog.OutcomeNotFound)
				out.Send(ctx, fmt.Sprintf("Sorry! I couldn't find any %s near %s.", food, place))
			default:
				top := res.Businesses[0]
				s.Note("business", top.Name)
				logger.Info(ctx, lookupLogComp, "food.search",
					slog.String("status", "ok"),
					slog.Int("results", len(res.Businesses)),
				)
				out.Send(ctx, lookup.FoundIntro)
				out.SendAttachment(ctx, lookup.BusinessAttachment(top))
			}
			return dialog.End
		}),
	)
}

// DirectionsFlow asks for two places and replies with a route summary and
// its turn-by-turn steps.
func DirectionsFlow(finder lookup.DirectionsFinder) *dialog.Flow {
	return dialog.MustFlow(IntentDirections, nil,
		dialog.Confirm("confirm", "Would you like map directions?", dialog.ConfirmText{
			Accepted: []string{greatHelp},
			Declined: perhapsLater,
		}),
		dialog.Capture("origin", "Where is your origin?", SlotOrigin, func(*dialog.Session) string {
			return "Ok."
		}),
		dialog.Capture("destination", "Where is your destination?", SlotDestination, func(s *dialog.Session) string {
			return fmt.Sprintf("Ok! I will find directions from %s to %s. One moment.", s.Value(SlotOrigin), s.Value(SlotDestination))
		}),
		dialog.Lookup("route", func(ctx context.Context, s *dialog.Session, _ string, out chat.Outbox) dialog.Transition {
			origin, destination := s.Value(SlotOrigin), s.Value(SlotDestination)
			resp, err := finder.Directions(ctx, origin, destination)
			if err != nil {
				logLookupFailure(ctx, "directions", err)
				s.SetOutcome(failureOutcome(err))
			}
			leg, ok := resp.FirstLeg()
			if err != nil || !ok {
				if err == nil {
					s.SetOutcome(dialog.OutcomeNotFound)
					s.Note("status", resp.Status)
				}
				out.Send(ctx, fmt.Sprintf("Sorry! I couldn't find directions from %s to %s.", origin, destination))
				return dialog.End
			}
			logger.Info(ctx, lookupLogComp, "directions",
				slog.String("status", "ok"),
				slog.Int("steps", len(leg.Steps)),
			)
			out.Send(ctx, lookup.FoundIntro)
			out.SendAttachment(ctx, lookup.SummaryAttachment(leg))
			out.SendAttachment(ctx, lookup.DirectionsAttachment(leg))
			return dialog.End
		}),
	)
}

const (
	invalidGuess = "That's not a valid guess! Guess an integer number from 1 - 100."
	tooLow       = "Nope, too low! Go higher."
	tooHigh      = "Nope, too high! Go lower."
)

// GameFlow plays the number guessing game. newGame draws the target when
// the session opens; nil uses a uniform random target.
func GameFlow(newGame func() *game.State) *dialog.Flow {
	if newGame == nil {
		newGame = func() *game.State { return game.New(nil) }
	}
	play := func(ctx context.Context, s *dialog.Session, text string, out chat.Outbox) dialog.Transition {
		st, ok := s.State.(*game.State)
		if !ok {
			s.SetOutcome(dialog.OutcomeFailed)
			return dialog.End
		}
		verdict := st.Guess(text)
		logger.Debug(ctx, "dialog", "game.guess",
			slog.String("verdict", verdict.String()),
			slog.Int("guesses", st.Guesses()),
		)
		switch verdict {
		case game.Higher:
			out.Send(ctx, tooLow)
		case game.Lower:
			out.Send(ctx, tooHigh)
		case game.Won:
			out.Send(ctx, fmt.Sprintf("Yes, you got it! The number is %d!", st.Target()))
			out.Send(ctx, "You're good at this! Thank you for playing with me.")
			return endGame(s, st, dialog.OutcomeWon)
		case game.Quit:
			out.Send(ctx, "Okay, bye! Thank you for playing with me.")
			out.Send(ctx, fmt.Sprintf("If you're curious, the number was %d.", st.Target()))
			return endGame(s, st, dialog.OutcomeQuit)
		default:
			out.Send(ctx, invalidGuess)
		}
		return dialog.Repeat
	}

	return dialog.MustFlow(IntentGame,
		func(s *dialog.Session) { s.State = newGame() },
		dialog.Confirm("confirm", "Would you like to play a game?", dialog.ConfirmText{
			Accepted: []string{
				"Great! Let's start!",
				"If you ever want to stop, just say '" + game.QuitKeyword + "'.",
				"Guess the number I'm thinking of, from 1 - 100!",
			},
			Declined: "Okay, play with me later!",
		}),
		dialog.Step{
			ID:     "guess",
			Prompt: "Make a guess!",
			Branches: []dialog.Branch{
				dialog.When("quit", dialog.Equals(game.QuitKeyword), play),
				dialog.Otherwise("number", play),
			},
		},
	)
}

func endGame(s *dialog.Session, st *game.State, outcome dialog.Outcome) dialog.Transition {
	s.SetOutcome(outcome)
	s.Note("target", strconv.Itoa(st.Target()))
	s.Note("guesses", strconv.Itoa(st.Guesses()))
	return dialog.End
}

func failureOutcome(err error) dialog.Outcome {
	if errors.Is(err, lookup.ErrNotFound) {
		return dialog.OutcomeNotFound
	}
	return dialog.OutcomeFailed
}

func logLookupFailure(ctx context.Context, event string, err error) {
	attrs := []slog.Attr{
		slog.String("status", "fail"),
		slog.String("err", err.Error()),
	}
	var ce *lookup.CollaboratorError
	if errors.As(err, &ce) {
		attrs = append(attrs, slog.String("service", ce.Service), slog.String("op", ce.Op))
	}
	logger.Warn(ctx, lookupLogComp, event, attrs...)
}

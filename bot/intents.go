// Package bot assembles the intents, flows and wording of the agent.
package bot

import (
	"context"
	"errors"
	"strings"

	"github.com/jeanzhou31/slackattack/core/agent"
	"github.com/jeanzhou31/slackattack/core/chat"
	"github.com/jeanzhou31/slackattack/core/dialog"
	"github.com/jeanzhou31/slackattack/core/game"
	"github.com/jeanzhou31/slackattack/core/intent"
	"github.com/jeanzhou31/slackattack/core/lookup"
)

// Intent ids, in priority order.
const (
	IntentGreeting   = "greeting"
	IntentHelp       = "help"
	IntentFood       = "food"
	IntentDirections = "directions"
	IntentGame       = "game"
)

// Slot names captured by the lookup flows.
const (
	SlotFood        = "food"
	SlotPlace       = "place"
	SlotOrigin      = "origin"
	SlotDestination = "destination"
)

// DefaultName is how the bot introduces itself.
const DefaultName = "jean_bot"

// ErrMissingCollaborator is returned when a lookup collaborator is nil.
var ErrMissingCollaborator = errors.New("bot: missing lookup collaborator")

// Deps are the collaborators the intents need.
type Deps struct {
	Food       lookup.FoodSearcher
	Directions lookup.DirectionsFinder
	// NewGame draws a fresh game; nil draws a random target.
	NewGame func() *game.State
	Name    string
}

// HelpLines is the reply to the help intent.
func HelpLines(name string) []string {
	if strings.TrimSpace(name) == "" {
		name = DefaultName
	}
	return []string{
		"Hi! I'm " + name + "!",
		"I can give you food recommendations and map directions.",
		"I can also play a number game, if you want!",
	}
}

// Greeting addresses the sender by display name when there is one.
func Greeting(senderName string) string {
	if name := strings.TrimSpace(senderName); name != "" {
		return "Hello, " + name + "!"
	}
	return "Hello there!"
}

// NewRouter declares the intents. Sessions are started on engine.
func NewRouter(engine *dialog.Engine, deps Deps) (*intent.Router, error) {
	if deps.Food == nil || deps.Directions == nil {
		return nil, ErrMissingCollaborator
	}
	food := FoodFlow(deps.Food)
	directions := DirectionsFlow(deps.Directions)
	play := GameFlow(deps.NewGame)
	help := HelpLines(deps.Name)

	return intent.New(
		intent.Intent{
			ID:       IntentGreeting,
			Keywords: []string{"hello", "hi", "howdy"},
			Handler: func(ctx context.Context, ev chat.Event, out chat.Outbox) error {
				out.Send(ctx, Greeting(ev.SenderName))
				return nil
			},
		},
		intent.Intent{
			ID:       IntentHelp,
			Keywords: []string{"help"},
			Handler: func(ctx context.Context, _ chat.Event, out chat.Outbox) error {
				for _, line := range help {
					out.Send(ctx, line)
				}
				return nil
			},
		},
		intent.Intent{
			ID:       IntentFood,
			Keywords: []string{"food", "hungry", "eat", "restaurant"},
			Handler:  starter(engine, IntentFood, food),
		},
		intent.Intent{
			ID:       IntentDirections,
			Keywords: []string{"map", "direction", "directions", "google", "from"},
			Handler:  starter(engine, IntentDirections, directions),
		},
		intent.Intent{
			ID:       IntentGame,
			Keywords: []string{"number", "game", "guess", "play"},
			Handler:  starter(engine, IntentGame, play),
		},
	)
}

// NewAgent wires an engine, the intents and an agent together.
func NewAgent(deps Deps, opts ...dialog.Option) (*agent.Agent, error) {
	engine := dialog.NewEngine(nil, opts...)
	router, err := NewRouter(engine, deps)
	if err != nil {
		return nil, err
	}
	return agent.New(engine, router), nil
}

func starter(engine *dialog.Engine, id string, flow *dialog.Flow) intent.Handler {
	return func(ctx context.Context, ev chat.Event, out chat.Outbox) error {
		_, err := engine.Start(ctx, chat.KeyOf(ev), id, flow, out)
		return err
	}
}

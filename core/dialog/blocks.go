package dialog

import (
	"context"
	"regexp"
	"strings"

	"github.com/jeanzhou31/slackattack/core/chat"
)

// DefaultUnclear is said before a confirmation prompt is asked again.
const DefaultUnclear = "What? I'm not sure what you're saying. I'll ask again."

var (
	yesPattern = regexp.MustCompile(`(?i)^\s*(yes|yea|yup|yep|ya|sure|ok|okay|y|yeah|yah)\b`)
	noPattern  = regexp.MustCompile(`(?i)^\s*(no|nah|nope|n)\b`)

	// YesNoChoices are offered as quick replies on confirmation steps.
	YesNoChoices = []string{"Yes", "No"}
)

// Yes recognizes affirmative answers.
func Yes(text string) bool { return yesPattern.MatchString(text) }

// No recognizes negative answers.
func No(text string) bool { return noPattern.MatchString(text) }

// Always accepts every answer.
func Always(string) bool { return true }

// Blank recognizes empty or whitespace-only answers.
func Blank(text string) bool { return strings.TrimSpace(text) == "" }

// Equals builds a case-insensitive exact-match predicate.
func Equals(word string) Predicate {
	return func(text string) bool {
		return strings.EqualFold(strings.TrimSpace(text), word)
	}
}

// Say builds an action that sends lines and returns tr.
func Say(tr Transition, lines ...string) Action {
	return func(ctx context.Context, _ *Session, _ string, out chat.Outbox) Transition {
		for _, line := range lines {
			out.Send(ctx, line)
		}
		return tr
	}
}

// ConfirmText holds the wording of a yes/no step.
type ConfirmText struct {
	Accepted []string
	Declined string
	Unclear  string
}

// Confirm asks a yes/no question. Yes advances, no ends the session with
// an acknowledgement, anything else is clarified and asked again.
func Confirm(id, prompt string, text ConfirmText) Step {
	unclear := text.Unclear
	if unclear == "" {
		unclear = DefaultUnclear
	}
	return Step{
		ID:      id,
		Prompt:  prompt,
		Choices: YesNoChoices,
		Branches: []Branch{
			When("yes", Yes, Say(Next, text.Accepted...)),
			When("no", No, func(ctx context.Context, s *Session, _ string, out chat.Outbox) Transition {
				if text.Declined != "" {
					out.Send(ctx, text.Declined)
				}
				s.SetOutcome(OutcomeDeclined)
				return End
			}),
			Otherwise("unclear", Say(Repeat, unclear)),
		},
	}
}

// Capture asks a free-text question and stores the trimmed answer in
// slot. ack, when set, renders a line sent after capture.
func Capture(id, prompt, slot string, ack func(s *Session) string) Step {
	return Step{
		ID:     id,
		Prompt: prompt,
		Branches: []Branch{
			When("blank", Blank, Say(Repeat, DefaultUnclear)),
			Otherwise("capture", func(ctx context.Context, s *Session, text string, out chat.Outbox) Transition {
				s.Capture(slot, strings.TrimSpace(text))
				if ack != nil {
					if line := ack(s); line != "" {
						out.Send(ctx, line)
					}
				}
				return Next
			}),
		},
	}
}

// Lookup is a terminal auto step: it runs once the previous step
// advances, without asking anything.
func Lookup(id string, run Action) Step {
	return Step{ID: id, Run: run}
}

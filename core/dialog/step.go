package dialog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jeanzhou31/slackattack/core/chat"
)

// ErrInvalidFlow is returned when a step list cannot be executed.
var ErrInvalidFlow = errors.New("dialog: invalid flow")

// Transition tells the engine what to do after an action ran.
type Transition int

const (
	// Next advances to the following step.
	Next Transition = iota
	// Repeat re-issues the current prompt without advancing.
	Repeat
	// End terminates the session.
	End
)

func (t Transition) String() string {
	switch t {
	case Next:
		return "next"
	case Repeat:
		return "repeat"
	case End:
		return "end"
	}
	return "unknown"
}

// Predicate recognizes an answer.
type Predicate func(text string) bool

// Action reacts to an answer (or runs an auto step, with empty text).
type Action func(ctx context.Context, s *Session, text string, out chat.Outbox) Transition

// Branch pairs a predicate with the action taken when it matches.
type Branch struct {
	Name  string
	Match Predicate
	Do    Action

	fallback bool
}

// When builds a conditional branch.
func When(name string, match Predicate, do Action) Branch {
	return Branch{Name: name, Match: match, Do: do}
}

// Otherwise builds the always-true branch that must close every prompt.
func Otherwise(name string, do Action) Branch {
	return Branch{Name: name, Do: do, fallback: true}
}

// Fallback reports whether the branch matches every answer.
func (b Branch) Fallback() bool { return b.fallback }

func (b Branch) matches(text string) bool {
	if b.fallback {
		return true
	}
	return b.Match != nil && b.Match(text)
}

// Step is one ask/validate/transition unit. A step with a Prompt suspends
// the session until the next answer arrives; a step without one runs Run
// right away.
type Step struct {
	ID       string
	Prompt   string
	Choices  []string
	Branches []Branch
	Run      Action
}

// Prompting reports whether the step waits for an answer.
func (s Step) Prompting() bool { return s.Prompt != "" }

// pick returns the first branch whose predicate accepts text.
func (s Step) pick(text string) Branch {
	for _, b := range s.Branches {
		if b.matches(text) {
			return b
		}
	}
	// unreachable for validated flows
	return s.Branches[len(s.Branches)-1]
}

func (s Step) validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("%w: step without id", ErrInvalidFlow)
	}
	if !s.Prompting() {
		if s.Run == nil {
			return fmt.Errorf("%w: step %q has neither prompt nor run action", ErrInvalidFlow, s.ID)
		}
		if len(s.Branches) > 0 {
			return fmt.Errorf("%w: step %q has branches but no prompt", ErrInvalidFlow, s.ID)
		}
		return nil
	}
	if s.Run != nil {
		return fmt.Errorf("%w: step %q has both prompt and run action", ErrInvalidFlow, s.ID)
	}
	if len(s.Branches) == 0 {
		return fmt.Errorf("%w: step %q has no branches", ErrInvalidFlow, s.ID)
	}
	last := len(s.Branches) - 1
	for i, b := range s.Branches {
		if b.Do == nil {
			return fmt.Errorf("%w: step %q branch %q has no action", ErrInvalidFlow, s.ID, b.Name)
		}
		if b.fallback && i != last {
			return fmt.Errorf("%w: step %q fallback branch %q is not last", ErrInvalidFlow, s.ID, b.Name)
		}
		if !b.fallback && b.Match == nil {
			return fmt.Errorf("%w: step %q branch %q has no predicate", ErrInvalidFlow, s.ID, b.Name)
		}
	}
	if !s.Branches[last].fallback {
		return fmt.Errorf("%w: step %q does not end with a fallback branch", ErrInvalidFlow, s.ID)
	}
	return nil
}

// Flow is an ordered step list plus an optional initializer that attaches
// flow-private state to new sessions.
type Flow struct {
	Name  string
	Steps []Step
	Init  func(s *Session)
}

// NewFlow validates and returns a flow.
func NewFlow(name string, init func(*Session), steps ...Step) (*Flow, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: flow without name", ErrInvalidFlow)
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: flow %q has no steps", ErrInvalidFlow, name)
	}
	seen := make(map[string]struct{}, len(steps))
	for _, st := range steps {
		if err := st.validate(); err != nil {
			return nil, fmt.Errorf("flow %q: %w", name, err)
		}
		if _, dup := seen[st.ID]; dup {
			return nil, fmt.Errorf("%w: flow %q repeats step id %q", ErrInvalidFlow, name, st.ID)
		}
		seen[st.ID] = struct{}{}
	}
	return &Flow{Name: name, Steps: steps, Init: init}, nil
}

// MustFlow is NewFlow that panics on invalid definitions; for flows built at startup.
func MustFlow(name string, init func(*Session), steps ...Step) *Flow {
	f, err := NewFlow(name, init, steps...)
	if err != nil {
		panic(err)
	}
	return f
}

// StepIndex returns the position of the step with the given id, or -1.
func (f *Flow) StepIndex(id string) int {
	for i, st := range f.Steps {
		if st.ID == id {
			return i
		}
	}
	return -1
}

// Package game implements the number guessing game played inside a dialog.
package game

import (
	"math/rand"
	"strconv"
	"strings"
)

const (
	// Min is the smallest number the target can be.
	Min = 1
	// Max is the largest number the target can be.
	Max = 100
	// QuitKeyword ends the game and reveals the target.
	QuitKeyword = "quit"
)

// Status tracks where a game is.
type Status string

const (
	StatusActive Status = "active"
	StatusWon    Status = "won"
	StatusQuit   Status = "quit"
)

// Verdict classifies a single guess.
type Verdict int

const (
	// Invalid means the text was not an integer in [Min, Max].
	Invalid Verdict = iota
	// Higher means the guess was below the target.
	Higher
	// Lower means the guess was above the target.
	Lower
	// Won means the guess matched the target.
	Won
	// Quit means the player asked to stop.
	Quit
)

func (v Verdict) String() string {
	switch v {
	case Higher:
		return "higher"
	case Lower:
		return "lower"
	case Won:
		return "won"
	case Quit:
		return "quit"
	default:
		return "invalid"
	}
}

// Source draws the target. *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// State is one game. The target is fixed for the lifetime of the value.
type State struct {
	target  int
	guesses int
	status  Status
}

// New draws a target uniformly from [Min, Max]. A nil src uses the
// package-level generator.
func New(src Source) *State {
	var n int
	if src == nil {
		n = rand.Intn(Max - Min + 1)
	} else {
		n = src.IntN(Max - Min + 1)
	}
	return &State{target: Min + n, status: StatusActive}
}

// NewWithTarget starts a game with a known target; it panics outside [Min, Max].
func NewWithTarget(target int) *State {
	if target < Min || target > Max {
		panic("game: target out of range: " + strconv.Itoa(target))
	}
	return &State{target: target, status: StatusActive}
}

// Target returns the number being guessed.
func (s *State) Target() int { return s.target }

// Guesses returns how many valid numeric guesses were made.
func (s *State) Guesses() int { return s.guesses }

// Status returns the current game status.
func (s *State) Status() Status { return s.status }

// Over reports whether the game has finished.
func (s *State) Over() bool { return s.status != StatusActive }

// Guess classifies text against the target. Invalid guesses leave the
// state untouched. Guessing on a finished game reports its final verdict.
func (s *State) Guess(text string) Verdict {
	switch s.status {
	case StatusWon:
		return Won
	case StatusQuit:
		return Quit
	}

	trimmed := strings.TrimSpace(text)
	if strings.EqualFold(trimmed, QuitKeyword) {
		s.status = StatusQuit
		return Quit
	}

	n, ok := Parse(trimmed)
	if !ok {
		return Invalid
	}
	s.guesses++
	switch {
	case n < s.target:
		return Higher
	case n > s.target:
		return Lower
	default:
		s.status = StatusWon
		return Won
	}
}

// Parse converts text to a guess, rejecting anything that is not a plain
// base-10 integer within [Min, Max].
func Parse(text string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, false
	}
	if n < Min || n > Max {
		return 0, false
	}
	return n, true
}

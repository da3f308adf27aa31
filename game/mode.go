package game

import (
	"errors"
	"strings"
)

// Mode says which sides are played by the engine.
type Mode int

const (
	HumanVsAI Mode = iota + 1
	HumanVsHuman
	AIVsAI
)

var ErrBadMode = errors.New("mode must be one of hvai, hvh, aivai")

func (m Mode) String() string {
	switch m {
	case HumanVsAI:
		return "hvai"
	case HumanVsHuman:
		return "hvh"
	case AIVsAI:
		return "aivai"
	}
	return "unknown"
}

// Description is the long human-readable name used in menus.
func (m Mode) Description() string {
	switch m {
	case HumanVsAI:
		return "Human vs AI"
	case HumanVsHuman:
		return "Human vs Human"
	case AIVsAI:
		return "AI vs AI"
	}
	return "Unknown mode"
}

func ModeFromString(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hvai", "1", "human_vs_ai":
		return HumanVsAI, nil
	case "hvh", "2", "human_vs_human":
		return HumanVsHuman, nil
	case "aivai", "3", "ai_vs_ai":
		return AIVsAI, nil
	}
	return 0, ErrBadMode
}

// An Outcome is the state of play of a game.
type Outcome int

const (
	Playing Outcome = iota
	FirstWins
	SecondWins
	Draw
)

func (o Outcome) String() string {
	switch o {
	case FirstWins:
		return "X wins"
	case SecondWins:
		return "O wins"
	case Draw:
		return "draw"
	}
	return "playing"
}

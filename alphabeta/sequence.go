package alphabeta

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/domino14/tictacterm/board"
)

// A Step is one move of an optimal playout, with the mark that made it.
type Step struct {
	board.Move
	Mark board.Mark
}

func (s Step) String() string {
	return s.Mark.String() + " " + s.Move.String()
}

// OptimalSequence plays the game out from a copy of b, with both sides
// choosing their best move at the solver's depth bound, starting with
// starting. It stops when a side wins, the board fills, or no move is found.
// b is not modified.
func (s *Solver) OptimalSequence(b *board.Board, starting board.Mark) []Step {
	if starting == board.Empty {
		return nil
	}
	work := b.Copy()
	var seq []Step
	side := starting
	for work.CheckWinner() == board.Empty && !work.IsFull() {
		m := s.BestMove(work, side)
		if m == nil {
			break
		}
		work.MakeMove(m.Row, m.Col, side)
		seq = append(seq, Step{Move: *m, Mark: side})
		side = side.Opponent()
	}
	return seq
}

// OptimalSequence is a convenience wrapper around a fresh solver.
func OptimalSequence(b *board.Board, starting board.Mark, depthBound int) []Step {
	return NewSolver(depthBound).OptimalSequence(b, starting)
}

// PVLine is an optimal playout together with the value of its first position.
type PVLine struct {
	Steps  []Step
	Score  int
	Result board.Mark
}

// PrincipalVariation searches the position for starting, then plays out
// the optimal sequence from it.
func (s *Solver) PrincipalVariation(b *board.Board, starting board.Mark) PVLine {
	score, _ := s.Search(b, starting)
	steps := s.OptimalSequence(b, starting)
	work := b.Copy()
	for _, st := range steps {
		work.MakeMove(st.Row, st.Col, st.Mark)
	}
	return PVLine{Steps: steps, Score: score, Result: work.CheckWinner()}
}

func (pv PVLine) outcome() string {
	switch pv.Result {
	case board.First:
		return "X wins"
	case board.Second:
		return "O wins"
	}
	return "draw"
}

// Convert the principal variation line to a string.
func (pv PVLine) String() string {
	var s strings.Builder
	s.WriteString(fmt.Sprintf("PV; val %d; %s\n", pv.Score, pv.outcome()))
	for i, st := range pv.Steps {
		s.WriteString(fmt.Sprintf("%d: %s\n", i+1, st))
	}
	return s.String()
}

// NLBString is String without line breaks.
func (pv PVLine) NLBString() string {
	moves := lo.Map(pv.Steps, func(st Step, idx int) string {
		return fmt.Sprintf("%d: %s", idx+1, st)
	})
	return fmt.Sprintf("PV; val %d; %s; %s", pv.Score, pv.outcome(), strings.Join(moves, "; "))
}

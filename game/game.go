// Package game runs a single game of Tic-Tac-Toe: it tracks whose turn it
// is, accepts human moves, asks the search engine for the engine's moves,
// and reports the outcome. It does no terminal I/O itself.
package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/domino14/tictacterm/alphabeta"
	"github.com/domino14/tictacterm/board"
	"github.com/domino14/tictacterm/config"
)

var (
	ErrGameOver      = errors.New("the game is over")
	ErrInvalidMove   = errors.New("invalid move")
	ErrNotHumanTurn  = errors.New("it is not a human player's turn")
	ErrNotEngineTurn = errors.New("it is not the engine's turn")
)

// Game ties a board to a solver and a play mode. First (X) always moves
// first; in Human vs AI the human plays First.
type Game struct {
	uid    string
	board  *board.Board
	solver *alphabeta.Solver
	mode   Mode
}

// NewGame creates a game with the board geometry and solver settings in cfg.
func NewGame(cfg *config.Config, mode Mode) (*Game, error) {
	b, err := board.NewBoard(cfg.GetInt(config.ConfigBoardSize), cfg.GetInt(config.ConfigWinCount))
	if err != nil {
		return nil, err
	}
	return NewGameWithBoard(b, alphabeta.NewSolverFromConfig(cfg), mode), nil
}

// NewGameWithBoard creates a game around an existing board and solver.
func NewGameWithBoard(b *board.Board, solver *alphabeta.Solver, mode Mode) *Game {
	return &Game{uid: uuid.NewString(), board: b, solver: solver, mode: mode}
}

func (g *Game) Uid() string {
	return g.uid
}

func (g *Game) Board() *board.Board {
	return g.board
}

func (g *Game) Solver() *alphabeta.Solver {
	return g.solver
}

func (g *Game) Mode() Mode {
	return g.mode
}

// SetMode changes the mode mid-game; the position is kept.
func (g *Game) SetMode(m Mode) {
	g.mode = m
}

// Turn is the number of moves made so far.
func (g *Game) Turn() int {
	return g.board.NumMoves()
}

// PlayerOnTurn derives the side to move from the number of moves played.
func (g *Game) PlayerOnTurn() board.Mark {
	if g.board.NumMoves()%2 == 0 {
		return board.First
	}
	return board.Second
}

// IsAITurn reports whether the engine should move next.
func (g *Game) IsAITurn() bool {
	switch g.mode {
	case AIVsAI:
		return true
	case HumanVsAI:
		return g.PlayerOnTurn() == board.Second
	}
	return false
}

func (g *Game) Outcome() Outcome {
	switch g.board.CheckWinner() {
	case board.First:
		return FirstWins
	case board.Second:
		return SecondWins
	}
	if g.board.IsFull() {
		return Draw
	}
	return Playing
}

func (g *Game) Playing() bool {
	return g.Outcome() == Playing
}

// PlayMove plays a human move for the side on turn.
func (g *Game) PlayMove(row, col int) error {
	if !g.Playing() {
		return ErrGameOver
	}
	if g.IsAITurn() {
		return ErrNotHumanTurn
	}
	return g.play(row, col)
}

func (g *Game) play(row, col int) error {
	side := g.PlayerOnTurn()
	if !g.board.MakeMove(row, col, side) {
		return fmt.Errorf("%w: (%d, %d)", ErrInvalidMove, row, col)
	}
	log.Debug().Str("uid", g.uid).Str("side", side.String()).
		Int("row", row).Int("col", col).Msg("move-played")
	return nil
}

// AIMove lets the engine choose and play a move for the side on turn.
func (g *Game) AIMove() (*board.Move, error) {
	m, _, err := g.AIMoveScored()
	return m, err
}

// AIMoveScored is AIMove, also returning the search value of the position
// before the move.
func (g *Game) AIMoveScored() (*board.Move, int, error) {
	if !g.Playing() {
		return nil, 0, ErrGameOver
	}
	if !g.IsAITurn() {
		return nil, 0, ErrNotEngineTurn
	}
	value, m := g.solver.Search(g.board, g.PlayerOnTurn())
	if m == nil {
		return nil, 0, ErrGameOver
	}
	if err := g.play(m.Row, m.Col); err != nil {
		return nil, 0, err
	}
	return m, value, nil
}

// Hint returns the engine's choice for the side on turn without playing it.
func (g *Game) Hint() (*board.Move, error) {
	if !g.Playing() {
		return nil, ErrGameOver
	}
	return g.solver.BestMove(g.board, g.PlayerOnTurn()), nil
}

// OptimalSequence plays out the rest of the game on a copy, both sides
// searching at the solver's depth, with starting to move first.
func (g *Game) OptimalSequence(starting board.Mark) alphabeta.PVLine {
	return g.solver.PrincipalVariation(g.board, starting)
}

// Reset starts a new game on the same board geometry.
func (g *Game) Reset() {
	g.board.Reset()
	g.uid = uuid.NewString()
}

// ToDisplayText shows the board and a status line.
func (g *Game) ToDisplayText() string {
	var sb strings.Builder
	sb.WriteString(g.board.ToDisplayText())
	switch o := g.Outcome(); o {
	case FirstWins:
		sb.WriteString("X wins!\n")
	case SecondWins:
		sb.WriteString("O wins!\n")
	case Draw:
		sb.WriteString("It's a draw!\n")
	default:
		who := "Player"
		if g.IsAITurn() {
			who = "AI"
		}
		sb.WriteString(fmt.Sprintf("%s (%s) to move. Mode: %s, depth %d\n",
			who, g.PlayerOnTurn(), g.mode.Description(), g.solver.DepthBound()))
	}
	return sb.String()
}

// Package automatic plays engine-vs-engine games, optionally from random
// openings, and collects statistics about them.
package automatic

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/tictacterm/board"
	"github.com/domino14/tictacterm/config"
	"github.com/domino14/tictacterm/game"
)

// CSVHeader is the first line of a self-play turn log.
const CSVHeader = "gameID,turn,side,move,value,nodes\n"

// GameRunner is the master struct here for the automatic game logic.
type GameRunner struct {
	game          *game.Game
	config        *config.Config
	randomOpening int

	logchan  chan string
	gamechan chan string
}

// GameResult is what is kept of a finished game.
type GameResult struct {
	Uid     string
	Moves   []board.Move
	Outcome game.Outcome
}

// NewGameRunner creates a runner whose games use the board geometry and
// solver settings in cfg. randomOpening moves are played at random before
// the engine takes over both sides. Either channel may be nil.
func NewGameRunner(logchan, gamechan chan string, cfg *config.Config, randomOpening int) (*GameRunner, error) {
	g, err := game.NewGame(cfg, game.HumanVsHuman)
	if err != nil {
		return nil, err
	}
	return &GameRunner{
		game:          g,
		config:        cfg,
		randomOpening: max(0, randomOpening),
		logchan:       logchan,
		gamechan:      gamechan,
	}, nil
}

func (r *GameRunner) Game() *game.Game {
	return r.game
}

// playRandomOpening plays up to n uniformly random moves, stopping early if
// the game ends.
func (r *GameRunner) playRandomOpening(n int) error {
	r.game.SetMode(game.HumanVsHuman)
	for i := 0; i < n && r.game.Playing(); i++ {
		moves := r.game.Board().AvailableMoves()
		m := moves[frand.Intn(len(moves))]
		if err := r.game.PlayMove(m.Row, m.Col); err != nil {
			return err
		}
		r.logTurn(m, "random", 0)
	}
	return nil
}

// PlayBestTurn lets the engine play for the side on turn.
func (r *GameRunner) PlayBestTurn() error {
	nodes := r.game.Solver().Nodes()
	m, value, err := r.game.AIMoveScored()
	if err != nil {
		return err
	}
	r.logTurn(*m, fmt.Sprint(value), r.game.Solver().Nodes()-nodes)
	return nil
}

func (r *GameRunner) logTurn(m board.Move, value string, nodes uint64) {
	if r.logchan == nil {
		return
	}
	last, _ := r.game.Board().LastMove()
	r.logchan <- fmt.Sprintf("%v,%v,%v,%v,%v,%v\n",
		r.game.Uid(),
		r.game.Turn(),
		last.Mark,
		strings.ReplaceAll(m.String(), ", ", ":"),
		value,
		nodes)
}

// StartGame resets the board and plays the random opening, leaving the
// engine on turn for both sides.
func (r *GameRunner) StartGame() error {
	r.game.Reset()
	if err := r.playRandomOpening(r.randomOpening); err != nil {
		return err
	}
	r.game.SetMode(game.AIVsAI)
	return nil
}

// PlayGame plays a whole game from a fresh board.
func (r *GameRunner) PlayGame() (GameResult, error) {
	if err := r.StartGame(); err != nil {
		return GameResult{}, err
	}
	for r.game.Playing() {
		if err := r.PlayBestTurn(); err != nil {
			return GameResult{}, err
		}
	}
	log.Debug().Str("uid", r.game.Uid()).Str("outcome", r.game.Outcome().String()).
		Int("turns", r.game.Turn()).Msg("game-over")
	if r.gamechan != nil {
		r.gamechan <- r.game.Board().ToDisplayText()
	}
	hist := r.game.Board().History()
	moves := make([]board.Move, len(hist))
	for i, h := range hist {
		moves[i] = h.Move
	}
	return GameResult{Uid: r.game.Uid(), Moves: moves, Outcome: r.game.Outcome()}, nil
}

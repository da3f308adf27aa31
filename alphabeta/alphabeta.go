// Package alphabeta implements the game-playing search: depth-limited
// minimax with alpha-beta pruning over a board.Board.
package alphabeta

import (
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/tictacterm/board"
	"github.com/domino14/tictacterm/config"
)

// thanks Wikipedia:
/**function alphabeta(node, depth, α, β, maximizingPlayer) is
    if depth = 0 or node is a terminal node then
        return the heuristic value of node
    if maximizingPlayer then
        value := −∞
        for each child of node do
            value := max(value, alphabeta(child, depth − 1, α, β, FALSE))
            α := max(α, value)
            if α ≥ β then
                break (* β cut-off *)
        return value
    else
        value := +∞
        for each child of node do
            value := min(value, alphabeta(child, depth − 1, α, β, TRUE))
            β := min(β, value)
            if α ≥ β then
                break (* α cut-off *)
        return value
**/

const (
	// WinScore is the value of a position Second has won. First's wins are
	// worth -WinScore. Wins found during search are adjusted by the remaining
	// depth so that faster wins and slower losses are preferred.
	WinScore = 100
	// Infinity is far outside any reachable score, with room to spare for
	// the depth adjustment.
	Infinity = 1 << 30

	MinDepth     = 1
	MaxDepth     = 9
	DefaultDepth = 5
)

// ClampDepth forces a depth bound into [MinDepth, MaxDepth].
func ClampDepth(depth int) int {
	return max(MinDepth, min(depth, MaxDepth))
}

// Solver searches for optimal moves. Apart from its settings and counters
// it holds no state between calls; the board it is given is only mutated
// speculatively and is always restored before a call returns.
type Solver struct {
	depthBound int
	threads    int
	nodes      atomic.Uint64

	cfg *config.Config

	logStream io.Writer
}

// NewSolver returns a single-threaded solver without a memo table.
func NewSolver(depthBound int) *Solver {
	s := &Solver{threads: 1}
	s.SetDepthBound(depthBound)
	return s
}

// NewSolverFromConfig reads depth and threads from cfg. The memo table
// fraction is read at every search; the table is shared with every other
// solver using the same board size.
func NewSolverFromConfig(cfg *config.Config) *Solver {
	s := NewSolver(cfg.GetInt(config.ConfigDepth))
	s.SetThreads(cfg.GetInt(config.ConfigThreads))
	s.cfg = cfg
	return s
}

// SetDepthBound clamps and sets the depth bound, returning the value used.
func (s *Solver) SetDepthBound(depth int) int {
	s.depthBound = ClampDepth(depth)
	return s.depthBound
}

func (s *Solver) DepthBound() int {
	return s.depthBound
}

// SetThreads sets how many goroutines search the top-level moves.
func (s *Solver) SetThreads(threads int) {
	s.threads = max(1, threads)
}

func (s *Solver) Threads() int {
	return s.threads
}

// SetLogStream makes the solver write an indented dump of every node it
// visits. Only single-threaded searches are logged.
func (s *Solver) SetLogStream(w io.Writer) {
	s.logStream = w
}

// Nodes returns the number of nodes visited since the solver was created.
func (s *Solver) Nodes() uint64 {
	return s.nodes.Load()
}

// Evaluate is the static evaluation: WinScore if Second has a line,
// -WinScore if First does, 0 otherwise.
func Evaluate(b *board.Board) int {
	switch b.CheckWinner() {
	case board.Second:
		return WinScore
	case board.First:
		return -WinScore
	}
	return 0
}

// Minimax returns the value of the position and the best move for the side
// to move. maximizing means Second is to move. The returned move is nil
// only for positions that are already decided.
func (s *Solver) Minimax(b *board.Board, depth int, maximizing bool, α, β int) (int, *board.Move) {
	return s.minimax(b, depth, 0, maximizing, α, β, s.logStream)
}

func (s *Solver) minimax(b *board.Board, depth, ply int, maximizing bool, α, β int, w io.Writer) (int, *board.Move) {
	s.nodes.Add(1)
	switch b.CheckWinner() {
	case board.Second:
		return WinScore + depth, nil
	case board.First:
		return -WinScore - depth, nil
	}
	if b.IsFull() {
		return 0, nil
	}
	if depth <= 0 {
		return Evaluate(b), nil
	}

	var indent string
	if w != nil {
		indent = strings.Repeat(" ", 2*ply)
	}
	mark := board.First
	best := Infinity
	if maximizing {
		mark = board.Second
		best = -Infinity
	}
	var bestMove *board.Move
	moves := b.AvailableMoves()
	for i := range moves {
		b.Place(moves[i], mark)
		value, _ := s.minimax(b, depth-1, ply+1, !maximizing, α, β, w)
		b.Unplace(moves[i])
		if w != nil {
			fmt.Fprintf(w, "%s- %v %v: %d\n", indent, mark, moves[i], value)
		}

		if maximizing {
			if value > best {
				best = value
				bestMove = &moves[i]
			}
			α = max(α, value)
		} else {
			if value < best {
				best = value
				bestMove = &moves[i]
			}
			β = min(β, value)
		}
		if β <= α {
			if w != nil {
				fmt.Fprintf(w, "%s  cutoff α: %d β: %d\n", indent, α, β)
			}
			break
		}
	}
	return best, bestMove
}

func (s *Solver) useMemo() bool {
	return s.cfg != nil && s.cfg.GetFloat64(config.ConfigMemoTableFraction) > 0
}

func maximizingFor(side board.Mark) bool {
	return side == board.Second
}

// Search runs a full-window search for side at the solver's depth bound
// and returns the value and best move. side must not be Empty.
func (s *Solver) Search(b *board.Board, side board.Mark) (int, *board.Move) {
	maximizing := maximizingFor(side)
	depth := s.depthBound

	var memo *MemoTable
	if s.useMemo() {
		var err error
		memo, err = SharedMemoTable(s.cfg, b.Dim())
		if err != nil {
			log.Err(err).Msg("memo-table-unavailable")
		}
	}
	if memo != nil {
		if v, m, ok := memo.lookup(b, maximizing, depth); ok {
			log.Debug().Int("depth", depth).Int("value", v).Msg("memo-hit")
			return v, m
		}
	}

	tstart := time.Now()
	nodesBefore := s.nodes.Load()
	var value int
	var move *board.Move
	if s.threads > 1 {
		value, move = s.searchRootParallel(b, depth, maximizing)
	} else {
		value, move = s.Minimax(b, depth, maximizing, -Infinity, Infinity)
	}
	log.Debug().
		Str("side", side.String()).
		Int("depth", depth).
		Int("value", value).
		Int("threads", s.threads).
		Uint64("nodes", s.nodes.Load()-nodesBefore).
		Dur("elapsed", time.Since(tstart)).
		Msg("search-done")

	if memo != nil {
		memo.store(b, maximizing, depth, value, move)
	}
	return value, move
}

// searchRootParallel gives every top-level move to its own goroutine, each
// with a board copy and a full window. Picking the first move (in row-major
// order) with the best value gives the same answer as the sequential search,
// since a pruned sibling there can never strictly beat the incumbent.
func (s *Solver) searchRootParallel(b *board.Board, depth int, maximizing bool) (int, *board.Move) {
	if b.CheckWinner() != board.Empty || b.IsFull() {
		return s.minimax(b, depth, 0, maximizing, -Infinity, Infinity, nil)
	}
	s.nodes.Add(1)
	mark := board.First
	if maximizing {
		mark = board.Second
	}
	moves := b.AvailableMoves()
	values := make([]int, len(moves))

	g := errgroup.Group{}
	g.SetLimit(s.threads)
	for i := range moves {
		g.Go(func() error {
			bc := b.Copy()
			bc.Place(moves[i], mark)
			values[i], _ = s.minimax(bc, depth-1, 1, !maximizing, -Infinity, Infinity, nil)
			return nil
		})
	}
	// workers never fail
	_ = g.Wait()

	bestIdx := 0
	for i := 1; i < len(values); i++ {
		if (maximizing && values[i] > values[bestIdx]) ||
			(!maximizing && values[i] < values[bestIdx]) {
			bestIdx = i
		}
	}
	return values[bestIdx], &moves[bestIdx]
}

// BestMove returns the best move for side, or nil if the game is already
// decided or side is Empty.
func (s *Solver) BestMove(b *board.Board, side board.Mark) *board.Move {
	if side == board.Empty {
		return nil
	}
	_, m := s.Search(b, side)
	return m
}

// BestMove is a convenience wrapper around a fresh single-threaded solver.
func BestMove(b *board.Board, side board.Mark, depthBound int) *board.Move {
	return NewSolver(depthBound).BestMove(b, side)
}

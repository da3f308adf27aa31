// Package board holds the state of a square Tic-Tac-Toe grid: its cells,
// the history of applied moves, and the queries derived from them.
package board

import (
	"errors"
)

const (
	DefaultSize     = 3
	DefaultWinCount = 3
)

var (
	ErrBadSize     = errors.New("board size must be at least 1")
	ErrBadWinCount = errors.New("win count must be between 1 and the board size")
	ErrBadMark     = errors.New("not a valid mark")
	ErrBadCoords   = errors.New("could not parse coordinates")
)

// A Board is a square grid of marks. Its size and win count are fixed for
// its lifetime; only the cells and the history change.
type Board struct {
	cells    []Mark
	dim      int
	winCount int
	history  []HistoryEntry
}

// NewBoard creates an empty board.
func NewBoard(size, winCount int) (*Board, error) {
	if size < 1 {
		return nil, ErrBadSize
	}
	if winCount < 1 || winCount > size {
		return nil, ErrBadWinCount
	}
	return &Board{
		cells:    make([]Mark, size*size),
		dim:      size,
		winCount: winCount,
		history:  make([]HistoryEntry, 0, size*size),
	}, nil
}

// MustNewBoard is like NewBoard but panics on a bad geometry. Useful for tests
// and package-level defaults.
func MustNewBoard(size, winCount int) *Board {
	b, err := NewBoard(size, winCount)
	if err != nil {
		panic(err)
	}
	return b
}

// Dim is the dimension of the board.
func (b *Board) Dim() int {
	return b.dim
}

// WinCount is the configured line length needed to win. Note that
// CheckWinner only ever looks at full-length lines.
func (b *Board) WinCount() int {
	return b.winCount
}

func (b *Board) Get(row, col int) Mark {
	return b.cells[row*b.dim+col]
}

func (b *Board) inBounds(row, col int) bool {
	return row >= 0 && row < b.dim && col >= 0 && col < b.dim
}

// IsValidMove returns true iff the coordinates are on the board and the
// cell there is empty.
func (b *Board) IsValidMove(row, col int) bool {
	return b.inBounds(row, col) && b.cells[row*b.dim+col] == Empty
}

// MakeMove places mark at (row, col) and records it in the history. If the
// move is not valid the board is left untouched and false is returned.
func (b *Board) MakeMove(row, col int, mark Mark) bool {
	if mark == Empty || !b.IsValidMove(row, col) {
		return false
	}
	b.cells[row*b.dim+col] = mark
	b.history = append(b.history, HistoryEntry{Move: Move{Row: row, Col: col}, Mark: mark})
	return true
}

// Place sets a cell without recording history. It is meant for speculative
// search and must always be followed by Unplace of the same move.
func (b *Board) Place(m Move, mark Mark) {
	b.cells[m.Row*b.dim+m.Col] = mark
}

// Unplace clears a cell set by Place.
func (b *Board) Unplace(m Move) {
	b.cells[m.Row*b.dim+m.Col] = Empty
}

// CheckWinner returns the mark that fills a complete row, column or one of
// the two main diagonals, or Empty if there is no such line.
func (b *Board) CheckWinner() Mark {
	n := b.dim
	for r := 0; r < n; r++ {
		if w := b.line(r*n, 1); w != Empty {
			return w
		}
	}
	for c := 0; c < n; c++ {
		if w := b.line(c, n); w != Empty {
			return w
		}
	}
	if w := b.line(0, n+1); w != Empty {
		return w
	}
	return b.line(n-1, n-1)
}

// line checks the n cells starting at start and advancing by step.
func (b *Board) line(start, step int) Mark {
	first := b.cells[start]
	if first == Empty {
		return Empty
	}
	for i, idx := 1, start+step; i < b.dim; i, idx = i+1, idx+step {
		if b.cells[idx] != first {
			return Empty
		}
	}
	return first
}

// IsFull returns true iff no empty cell remains.
func (b *Board) IsFull() bool {
	for _, c := range b.cells {
		if c == Empty {
			return false
		}
	}
	return true
}

// AvailableMoves returns all empty cells in row-major order. The search
// relies on this order for tie-breaking.
func (b *Board) AvailableMoves() []Move {
	moves := make([]Move, 0, len(b.cells)-len(b.history))
	for idx, c := range b.cells {
		if c == Empty {
			moves = append(moves, Move{Row: idx / b.dim, Col: idx % b.dim})
		}
	}
	return moves
}

// Reset clears every cell and the history.
func (b *Board) Reset() {
	for i := range b.cells {
		b.cells[i] = Empty
	}
	b.history = b.history[:0]
}

// History returns a copy of the applied moves in chronological order.
func (b *Board) History() []HistoryEntry {
	h := make([]HistoryEntry, len(b.history))
	copy(h, b.history)
	return h
}

// NumMoves is the number of moves applied with MakeMove.
func (b *Board) NumMoves() int {
	return len(b.history)
}

// LastMove returns the most recent history entry, if any.
func (b *Board) LastMove() (HistoryEntry, bool) {
	if len(b.history) == 0 {
		return HistoryEntry{}, false
	}
	return b.history[len(b.history)-1], true
}

// Copy returns a deep copy of the board.
func (b *Board) Copy() *Board {
	c := &Board{
		cells:    make([]Mark, len(b.cells)),
		dim:      b.dim,
		winCount: b.winCount,
		history:  make([]HistoryEntry, len(b.history), cap(b.history)),
	}
	copy(c.cells, b.cells)
	copy(c.history, b.history)
	return c
}

// Cells returns the marks in row-major order. The returned slice must not be
// modified.
func (b *Board) Cells() []Mark {
	return b.cells
}

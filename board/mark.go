package board

import "fmt"

// A Mark is the occupant of a single cell.
type Mark uint8

const (
	Empty Mark = iota
	// First moves first and is the minimizing side; its wins score negative.
	First
	// Second is the maximizing side; its wins score positive.
	Second
)

func (m Mark) String() string {
	switch m {
	case First:
		return "X"
	case Second:
		return "O"
	}
	return "."
}

// Opponent returns the other side. The opponent of Empty is Empty.
func (m Mark) Opponent() Mark {
	switch m {
	case First:
		return Second
	case Second:
		return First
	}
	return Empty
}

// MarkFromString parses X/O (case-insensitive) or first/second.
func MarkFromString(s string) (Mark, error) {
	switch s {
	case "X", "x", "first", "1":
		return First, nil
	case "O", "o", "second", "2":
		return Second, nil
	}
	return Empty, fmt.Errorf("%w: %q", ErrBadMark, s)
}

// A Move is a cell coordinate.
type Move struct {
	Row int
	Col int
}

func (m Move) String() string {
	return fmt.Sprintf("(%d, %d)", m.Row, m.Col)
}

// HistoryEntry is a move that was actually applied to the board, along
// with the mark placed.
type HistoryEntry struct {
	Move
	Mark Mark
}

func (h HistoryEntry) String() string {
	return h.Mark.String() + " " + h.Move.String()
}

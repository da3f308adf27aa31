package board

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var coordsRegex = regexp.MustCompile(`^\s*\(?\s*(-?\d+)\s*[,\s]\s*(-?\d+)\s*\)?\s*$`)

// ToDisplayText renders the board the way the terminal game shows it:
// row indexes down the left, column indexes along the bottom.
func (b *Board) ToDisplayText() string {
	var str strings.Builder
	n := b.Dim()
	str.WriteString("\n")
	for i := 0; i < n; i++ {
		str.WriteString(fmt.Sprintf("%2d | ", i))
		for j := 0; j < n; j++ {
			str.WriteString(b.Get(i, j).String())
			str.WriteString(" ")
		}
		str.WriteString("\n")
	}
	str.WriteString("     " + strings.Repeat("-", n*2-1) + "\n")
	str.WriteString("     ")
	for j := 0; j < n; j++ {
		str.WriteString(strconv.Itoa(j) + " ")
	}
	str.WriteString("\n")
	return str.String()
}

// ParseMove parses a coordinate pair such as "1 2", "1,2" or "(1, 2)".
// It does not check the move against any board.
func ParseMove(s string) (Move, error) {
	m := coordsRegex.FindStringSubmatch(s)
	if m == nil {
		return Move{}, fmt.Errorf("%w: %q", ErrBadCoords, s)
	}
	row, err := strconv.Atoi(m[1])
	if err != nil {
		return Move{}, err
	}
	col, err := strconv.Atoi(m[2])
	if err != nil {
		return Move{}, err
	}
	return Move{Row: row, Col: col}, nil
}

// SetFromPlaintext fills an empty board from rows of X, O and '.' characters,
// e.g. []string{"XO.", "...", "..X"}. Moves are recorded in row-major order,
// so the history is not chronological. Mostly useful for tests.
func (b *Board) SetFromPlaintext(rows []string) error {
	if len(rows) != b.dim {
		return fmt.Errorf("expected %d rows, got %d", b.dim, len(rows))
	}
	b.Reset()
	for i, row := range rows {
		row = strings.ReplaceAll(row, " ", "")
		if len(row) != b.dim {
			return fmt.Errorf("row %d: expected %d cells, got %d", i, b.dim, len(row))
		}
		for j, c := range row {
			switch c {
			case '.', '_':
				continue
			case 'X', 'x':
				b.MakeMove(i, j, First)
			case 'O', 'o':
				b.MakeMove(i, j, Second)
			default:
				return fmt.Errorf("row %d: %w: %q", i, ErrBadMark, c)
			}
		}
	}
	return nil
}

// Equals compares cells and geometry only; history order is ignored.
func (b *Board) Equals(b2 *Board) bool {
	if b.dim != b2.dim || b.winCount != b2.winCount {
		return false
	}
	for i := range b.cells {
		if b.cells[i] != b2.cells[i] {
			return false
		}
	}
	return true
}

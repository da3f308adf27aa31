package zobrist

import (
	"lukechampine.com/frand"

	"github.com/domino14/tictacterm/board"
)

const bignum = 1<<63 - 2

// generate a zobrist hash for a tic-tac-toe position.
// https://en.wikipedia.org/wiki/Zobrist_hashing
type Zobrist struct {
	secondToMove uint64

	// posTable is indexed by cell, then by mark (First, Second).
	posTable [][2]uint64
}

// Initialize draws fresh random keys for a board of the given dimension.
func (z *Zobrist) Initialize(boardDim int) {
	z.posTable = make([][2]uint64, boardDim*boardDim)
	for i := range z.posTable {
		for j := 0; j < 2; j++ {
			z.posTable[i][j] = frand.Uint64n(bignum) + 1
		}
	}
	z.secondToMove = frand.Uint64n(bignum) + 1
}

func markIdx(m board.Mark) int {
	if m == board.Second {
		return 1
	}
	return 0
}

// Hash computes the key of a whole position from scratch.
func (z *Zobrist) Hash(b *board.Board, secondToMove bool) uint64 {
	key := uint64(0)
	for i, mark := range b.Cells() {
		if mark == board.Empty {
			continue
		}
		key ^= z.posTable[i][markIdx(mark)]
	}
	if secondToMove {
		key ^= z.secondToMove
	}
	return key
}

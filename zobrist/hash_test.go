package zobrist

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/tictacterm/board"
)

func TestPlaceAndUnplace(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize(3)

	b := board.MustNewBoard(3, 3)
	b.MakeMove(1, 1, board.First)
	h := z.Hash(b, true)

	m := board.Move{Row: 0, Col: 2}
	b.Place(m, board.Second)
	h1 := z.Hash(b, true)
	b.Unplace(m)
	is.Equal(h, z.Hash(b, true))
	is.True(h1 != h) // extremely unlikely to collide, but this is not technically always true.
}

func TestMarksHashDifferently(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize(3)

	bx := board.MustNewBoard(3, 3)
	bx.MakeMove(2, 1, board.First)
	bo := board.MustNewBoard(3, 3)
	bo.MakeMove(2, 1, board.Second)
	empty := board.MustNewBoard(3, 3)

	is.True(z.Hash(bx, false) != z.Hash(bo, false))
	is.Equal(z.Hash(empty, false), uint64(0))
}

func TestTranspositionsCollide(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize(3)

	b1 := board.MustNewBoard(3, 3)
	b1.MakeMove(0, 0, board.First)
	b1.MakeMove(1, 1, board.Second)
	b1.MakeMove(2, 2, board.First)

	b2 := board.MustNewBoard(3, 3)
	b2.MakeMove(2, 2, board.First)
	b2.MakeMove(1, 1, board.Second)
	b2.MakeMove(0, 0, board.First)

	is.Equal(z.Hash(b1, true), z.Hash(b2, true))
	is.True(z.Hash(b1, true) != z.Hash(b1, false))
}

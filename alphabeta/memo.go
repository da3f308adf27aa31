package alphabeta

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/domino14/tictacterm/board"
	"github.com/domino14/tictacterm/cache"
	"github.com/domino14/tictacterm/config"
	"github.com/domino14/tictacterm/zobrist"
)

const memoEntrySize = 16

const (
	minMemoPowerOf2 = 6
	maxMemoPowerOf2 = 16
)

// 16 bytes (memoEntrySize)
type memoEntry struct {
	hash  uint64
	value int32
	depth uint8
	// flags: bit 0 valid, bit 1 has a move
	flags uint8
	row   uint8
	col   uint8
}

func (e memoEntry) valid() bool {
	return e.flags&1 != 0
}

// MemoTable stores the exact result of complete root searches, keyed by
// position, side to optimise and depth bound. It never stores bounds, so a
// hit returns exactly what a fresh search would.
type MemoTable struct {
	sync.RWMutex
	table    []memoEntry
	sizeMask uint64
	zobrist  *zobrist.Zobrist

	lookups atomic.Uint64
	hits    atomic.Uint64
	stored  atomic.Uint64
}

// reachableBits is log2 of an upper bound on the keys a board can produce:
// 3^(dim*dim) cell assignments, two sides, MaxDepth depth bounds.
func reachableBits(boardDim int) int {
	bits := float64(boardDim*boardDim)*math.Log2(3) + 1 + math.Log2(MaxDepth)
	return int(math.Ceil(bits))
}

// NewMemoTable sizes a table to roughly fractionOfMemory of physical memory,
// clamped to a power of two between 2^6 and 2^16 entries and never larger
// than the number of keys the board size can produce.
func NewMemoTable(fractionOfMemory float64, boardDim int) *MemoTable {
	totalMem := memory.TotalMemory()
	desired := fractionOfMemory * float64(totalMem) / float64(memoEntrySize)
	powerOf2 := minMemoPowerOf2
	if desired > 1 {
		powerOf2 = int(math.Log2(desired))
	}
	powerOf2 = min(max(powerOf2, minMemoPowerOf2), maxMemoPowerOf2, reachableBits(boardDim))
	numElems := 1 << powerOf2

	z := &zobrist.Zobrist{}
	z.Initialize(boardDim)

	log.Debug().Int("num-elems", numElems).
		Float64("desired-num-elems", desired).
		Uint64("total-system-memory-bytes", totalMem).
		Int("board-dim", boardDim).
		Msg("memo-table-size")

	return &MemoTable{
		table:    make([]memoEntry, numElems),
		sizeMask: uint64(numElems - 1),
		zobrist:  z,
	}
}

func (t *MemoTable) key(b *board.Board, maximizing bool, depth int) uint64 {
	// fold the depth in so the same position at a different depth lands elsewhere.
	return t.zobrist.Hash(b, maximizing) ^ (uint64(depth) * 0x9e3779b97f4a7c15)
}

func (t *MemoTable) lookup(b *board.Board, maximizing bool, depth int) (int, *board.Move, bool) {
	h := t.key(b, maximizing, depth)
	t.lookups.Add(1)
	t.RLock()
	e := t.table[h&t.sizeMask]
	t.RUnlock()
	if !e.valid() || e.hash != h || int(e.depth) != depth {
		return 0, nil, false
	}
	t.hits.Add(1)
	if e.flags&2 == 0 {
		return int(e.value), nil, true
	}
	return int(e.value), &board.Move{Row: int(e.row), Col: int(e.col)}, true
}

func (t *MemoTable) store(b *board.Board, maximizing bool, depth int, value int, m *board.Move) {
	h := t.key(b, maximizing, depth)
	e := memoEntry{hash: h, value: int32(value), depth: uint8(depth), flags: 1}
	if m != nil {
		e.flags |= 2
		e.row = uint8(m.Row)
		e.col = uint8(m.Col)
	}
	t.Lock()
	t.table[h&t.sizeMask] = e
	t.Unlock()
	t.stored.Add(1)
}

// Stats returns lookups, hits and stores since creation.
func (t *MemoTable) Stats() (lookups, hits, stored uint64) {
	return t.lookups.Load(), t.hits.Load(), t.stored.Load()
}

func memoCacheKey(boardDim int) string {
	return fmt.Sprintf("memo-table-%d", boardDim)
}

// SharedMemoTable returns the process-wide memo table for a board size,
// creating it on first use.
func SharedMemoTable(cfg *config.Config, boardDim int) (*MemoTable, error) {
	return cache.LoadTyped[*MemoTable](cfg, memoCacheKey(boardDim),
		func(cfg *config.Config, key string) (any, error) {
			frac := cfg.GetFloat64(config.ConfigMemoTableFraction)
			return NewMemoTable(frac, boardDim), nil
		})
}

// EvictSharedMemoTables drops the shared tables for every board size up to
// maxDim, so the next search builds them again with the current settings.
func EvictSharedMemoTables(maxDim int) {
	for dim := 1; dim <= maxDim; dim++ {
		cache.Evict(memoCacheKey(dim))
	}
}

// Size is the number of entries in the table.
func (t *MemoTable) Size() int {
	return len(t.table)
}

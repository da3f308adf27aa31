package shell

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domino14/tictacterm/alphabeta"
	"github.com/domino14/tictacterm/board"
	"github.com/domino14/tictacterm/config"
	"github.com/domino14/tictacterm/game"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func newTestController(t *testing.T, mode game.Mode) *ShellController {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigDepth, 9)
	sc := newController(&cfg)
	require.NoError(t, sc.initGame(mode))
	return sc
}

func TestExtractFields(t *testing.T) {
	is := is.New(t)
	type testdata struct {
		line   string
		expCmd *shellcmd
		expErr error
	}
	cases := []testdata{
		{"", nil, errNoData},
		{"autoplay -file /path/to/log.txt",
			&shellcmd{"autoplay", nil, CmdOptions{"file": {"/path/to/log.txt"}}},
			nil},
		{"play 1 2",
			&shellcmd{"play", []string{"1", "2"}, CmdOptions{}},
			nil},
		{"new -mode aivai -size 4 ",
			&shellcmd{"new", nil, CmdOptions{"mode": {"aivai"}, "size": {"4"}}},
			nil,
		},
		{"m \"(1, 2)\"",
			&shellcmd{"m", []string{"(1, 2)"}, CmdOptions{}},
			nil},
		{"autoplay -games 10 -file",
			nil, errWrongOptionSyntax},
		{"depth -3",
			&shellcmd{"depth", []string{"-3"}, CmdOptions{}},
			nil},
		{"play -1 0",
			&shellcmd{"play", []string{"-1", "0"}, CmdOptions{}},
			nil},
	}
	for _, t := range cases {
		cmd, err := extractFields(t.line)
		is.Equal(cmd, t.expCmd)
		is.Equal(err, t.expErr)
	}
}

func TestPlayAndHint(t *testing.T) {
	sc := newTestController(t, game.HumanVsHuman)

	resp, err := sc.handle("play 0 0")
	require.NoError(t, err)
	assert.Contains(t, resp.message, " 0 | X . . ")

	resp, err = sc.handle("hint")
	require.NoError(t, err)
	assert.Equal(t, "Best move for O: (1, 1) (value 0, ", resp.message[:len("Best move for O: (1, 1) (value 0, ")])
	assert.Equal(t, board.Empty, sc.game.Board().Get(1, 1))

	_, err = sc.handle("play 0 0")
	assert.ErrorIs(t, err, game.ErrInvalidMove)
	_, err = sc.handle("play zero zero")
	assert.ErrorIs(t, err, board.ErrBadCoords)
}

func TestNewGameOptions(t *testing.T) {
	sc := newTestController(t, game.HumanVsAI)
	_, err := sc.handle("new -mode hvh -size 4")
	require.NoError(t, err)
	assert.Equal(t, game.HumanVsHuman, sc.game.Mode())
	assert.Equal(t, 4, sc.game.Board().Dim())
	assert.Equal(t, 4, sc.game.Board().WinCount())
	assert.Equal(t, 4, sc.config.GetInt(config.ConfigBoardSize))

	_, err = sc.handle("new -size 3 -win 5")
	assert.ErrorIs(t, err, board.ErrBadWinCount)
	assert.Equal(t, 4, sc.game.Board().Dim())

	_, err = sc.handle("new -mode chess")
	assert.ErrorIs(t, err, game.ErrBadMode)
}

func TestDepthClamped(t *testing.T) {
	sc := newTestController(t, game.HumanVsAI)
	resp, err := sc.handle("depth 15")
	require.NoError(t, err)
	assert.Equal(t, "Search depth clamped to 9 (allowed 1 to 9)", resp.message)
	resp, err = sc.handle("depth 0")
	require.NoError(t, err)
	assert.Equal(t, 1, sc.game.Solver().DepthBound())
	assert.Equal(t, 1, sc.config.GetInt(config.ConfigDepth))
	resp, err = sc.handle("depth")
	require.NoError(t, err)
	assert.Equal(t, "Search depth: 1", resp.message)

	_, err = sc.handle("depth 7")
	require.NoError(t, err)
	resp, err = sc.handle("depth -3")
	require.NoError(t, err)
	assert.Equal(t, "Search depth clamped to 1 (allowed 1 to 9)", resp.message)
	assert.Equal(t, 1, sc.game.Solver().DepthBound())

	_, err = sc.handle("set depth 7")
	require.NoError(t, err)
	resp, err = sc.handle("set depth -3")
	require.NoError(t, err)
	assert.Equal(t, "depth set to 1", resp.message)
	assert.Equal(t, 1, sc.game.Solver().DepthBound())
	assert.Equal(t, 1, sc.config.GetInt(config.ConfigDepth))
}

func TestPlayNegativeCoords(t *testing.T) {
	sc := newTestController(t, game.HumanVsHuman)
	_, err := sc.handle("play -1 0")
	assert.ErrorIs(t, err, game.ErrInvalidMove)
	assert.Equal(t, board.First, sc.game.PlayerOnTurn())
}

func TestSetMemoFractionRebuildsTable(t *testing.T) {
	sc := newTestController(t, game.HumanVsAI)
	before, err := alphabeta.SharedMemoTable(sc.config, 3)
	require.NoError(t, err)

	_, err = sc.handle("set memo-table-fraction 0")
	require.NoError(t, err)
	after, err := alphabeta.SharedMemoTable(sc.config, 3)
	require.NoError(t, err)
	assert.NotSame(t, before, after)
	assert.Equal(t, 64, after.Size())
}

func TestPlayoutAIVsAI(t *testing.T) {
	sc := newTestController(t, game.AIVsAI)
	_, err := sc.handle("play 1 1")
	assert.ErrorIs(t, err, game.ErrNotHumanTurn)

	resp, err := sc.handle("playout")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(resp.message, "It's a draw!"))
	assert.Equal(t, game.Draw, sc.game.Outcome())

	_, err = sc.handle("ai")
	assert.ErrorIs(t, err, game.ErrGameOver)

	_, err = sc.handle("reset")
	require.NoError(t, err)
	assert.Equal(t, 0, sc.game.Turn())
}

func TestSequence(t *testing.T) {
	sc := newTestController(t, game.HumanVsHuman)
	resp, err := sc.handle("sequence")
	require.NoError(t, err)
	lines := strings.Split(resp.message, "\n")
	assert.Equal(t, "PV; val 0; draw", lines[0])
	assert.Len(t, lines, 10)
	assert.Equal(t, "1: X (0, 0)", lines[1])
	assert.Equal(t, 0, sc.game.Turn())

	_, err = sc.handle("sequence Z")
	assert.ErrorIs(t, err, board.ErrBadMark)
}

func TestSetAndSaveConfig(t *testing.T) {
	sc := newTestController(t, game.HumanVsAI)
	resp, err := sc.handle("set threads 4")
	require.NoError(t, err)
	assert.Equal(t, "threads set to 4", resp.message)
	assert.Equal(t, 4, sc.game.Solver().Threads())

	resp, err = sc.handle("set board-size 5")
	require.NoError(t, err)
	assert.Contains(t, resp.message, "next new game")
	assert.Equal(t, 3, sc.game.Board().Dim())

	_, err = sc.handle("set listen-addr :9000")
	assert.Error(t, err)

	resp, err = sc.handle("set")
	require.NoError(t, err)
	assert.Contains(t, resp.message, "board-size: 5")

	path := filepath.Join(t.TempDir(), "tictac.yaml")
	_, err = sc.handle("saveconfig -file " + path)
	require.NoError(t, err)
	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "board-size: 5")
}

func TestAutoplay(t *testing.T) {
	sc := newTestController(t, game.AIVsAI)
	resp, err := sc.handle("autoplay -games 4 -threads 2")
	require.NoError(t, err)
	assert.Contains(t, resp.message, "games: 4")
	assert.Contains(t, resp.message, "draws: 4")
	assert.Contains(t, resp.message, "game lengths:")
}

func TestHelpAndUnknown(t *testing.T) {
	sc := newTestController(t, game.HumanVsAI)
	resp, err := sc.handle("help")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.message, "Usage:"))
	resp, err = sc.handle("help depth")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.message, "depth [n]"))
	resp, err = sc.handle("help nope")
	require.NoError(t, err)
	assert.Equal(t, "There is no help text for the topic nope", resp.message)

	_, err = sc.handle("castle")
	assert.EqualError(t, err, `command "castle" not found`)
}

func TestCompleter(t *testing.T) {
	c := NewShellCompleter(newTestController(t, game.HumanVsAI))
	line := []rune("seq")
	matches, n := c.Do(line, len(line))
	assert.Equal(t, 3, n)
	assert.Equal(t, [][]rune{[]rune("uence")}, matches)

	line = []rune("new -mode a")
	matches, n = c.Do(line, len(line))
	assert.Equal(t, 1, n)
	assert.Equal(t, [][]rune{[]rune("ivai")}, matches)

	line = []rune("autoplay -g")
	matches, _ = c.Do(line, len(line))
	assert.Equal(t, [][]rune{[]rune("ames")}, matches)
}

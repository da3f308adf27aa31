package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/domino14/tictacterm/alphabeta"
	"github.com/domino14/tictacterm/automatic"
	"github.com/domino14/tictacterm/board"
	"github.com/domino14/tictacterm/config"
	"github.com/domino14/tictacterm/game"
)

type Response struct {
	message string
}

type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	v := c[key]
	if len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c CmdOptions) Int(key string) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return 0, errors.New(key + " not found in options")
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.Atoi(v[0])
}

func msg(message string) *Response {
	return &Response{message: message}
}

// settable lists the config keys the set command accepts.
var settable = []string{
	config.ConfigDepth, config.ConfigThreads, config.ConfigBoardSize,
	config.ConfigWinCount, config.ConfigMemoTableFraction, config.ConfigDebug,
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(usage()), nil
	}
	return msg(usageTopic(cmd.args[0])), nil
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	mode := game.HumanVsAI
	if sc.game != nil {
		mode = sc.game.Mode()
	}
	if m := cmd.options.String("mode"); m != "" {
		var err error
		if mode, err = game.ModeFromString(m); err != nil {
			return nil, err
		}
	}
	size, err := cmd.options.IntDefault("size", sc.config.GetInt(config.ConfigBoardSize))
	if err != nil {
		return nil, err
	}
	winDefault := sc.config.GetInt(config.ConfigWinCount)
	if _, ok := cmd.options["size"]; ok {
		winDefault = size
	}
	win, err := cmd.options.IntDefault("win", winDefault)
	if err != nil {
		return nil, err
	}
	// validate before touching the config
	if _, err := board.NewBoard(size, win); err != nil {
		return nil, err
	}
	sc.config.Set(config.ConfigBoardSize, size)
	sc.config.Set(config.ConfigWinCount, win)
	if err := sc.initGame(mode); err != nil {
		return nil, err
	}
	return msg(sc.game.ToDisplayText()), nil
}

func (sc *ShellController) mode(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	if len(cmd.args) == 0 {
		return msg("Current mode: " + sc.game.Mode().Description()), nil
	}
	m, err := game.ModeFromString(cmd.args[0])
	if err != nil {
		return nil, err
	}
	sc.game.SetMode(m)
	return msg("Mode set to " + m.Description()), nil
}

func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	if len(cmd.args) == 0 {
		return nil, errors.New("play <row> <col>")
	}
	m, err := board.ParseMove(strings.Join(cmd.args, " "))
	if err != nil {
		return nil, err
	}
	if err := sc.game.PlayMove(m.Row, m.Col); err != nil {
		return nil, err
	}
	return msg(sc.game.ToDisplayText()), nil
}

// aiplay has the engine move for the side on turn, even a human's side.
func (sc *ShellController) aiplay(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	if !sc.game.Playing() {
		return nil, game.ErrGameOver
	}
	side := sc.game.PlayerOnTurn()
	var m *board.Move
	var err error
	if sc.game.IsAITurn() {
		m, err = sc.game.AIMove()
	} else {
		if m, err = sc.game.Hint(); err == nil {
			err = sc.game.PlayMove(m.Row, m.Col)
		}
	}
	if err != nil {
		return nil, err
	}
	return msg(fmt.Sprintf("%s plays %s\n%s", side, m, sc.game.ToDisplayText())), nil
}

// playout lets the engine finish the game for both sides.
func (sc *ShellController) playout(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	if !sc.game.Playing() {
		return nil, game.ErrGameOver
	}
	var sb strings.Builder
	for sc.game.Playing() {
		resp, err := sc.aiplay(cmd)
		if err != nil {
			return nil, err
		}
		sb.WriteString(resp.message)
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}

func (sc *ShellController) hint(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	if !sc.game.Playing() {
		return nil, game.ErrGameOver
	}
	side := sc.game.PlayerOnTurn()
	solver := sc.game.Solver()
	before := solver.Nodes()
	value, m := solver.Search(sc.game.Board(), side)
	if m == nil {
		return nil, game.ErrGameOver
	}
	return msg(sc.printer.Sprintf("Best move for %s: %s (value %d, %d nodes, depth %d)",
		side, m, value, solver.Nodes()-before, solver.DepthBound())), nil
}

func (sc *ShellController) sequence(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	side := sc.game.PlayerOnTurn()
	if len(cmd.args) > 0 {
		var err error
		if side, err = board.MarkFromString(cmd.args[0]); err != nil {
			return nil, err
		}
	}
	pv := sc.game.OptimalSequence(side)
	return msg(strings.TrimRight(pv.String(), "\n")), nil
}

func (sc *ShellController) depth(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	if len(cmd.args) == 0 {
		return msg(fmt.Sprintf("Search depth: %d", sc.game.Solver().DepthBound())), nil
	}
	d, err := strconv.Atoi(cmd.args[0])
	if err != nil {
		return nil, err
	}
	used := sc.game.Solver().SetDepthBound(d)
	sc.config.Set(config.ConfigDepth, used)
	if used != d {
		return msg(fmt.Sprintf("Search depth clamped to %d (allowed %d to %d)",
			used, alphabeta.MinDepth, alphabeta.MaxDepth)), nil
	}
	return msg(fmt.Sprintf("Search depth set to %d", used)), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	return msg(sc.game.ToDisplayText()), nil
}

func (sc *ShellController) reset(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	sc.game.Reset()
	return msg(sc.game.ToDisplayText()), nil
}

func (sc *ShellController) showSettings() string {
	var sb strings.Builder
	sb.WriteString("Settings:\n")
	for _, key := range settable {
		sb.WriteString(fmt.Sprintf("  %s: %v\n", key, sc.config.Get(key)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(sc.showSettings()), nil
	}
	key := cmd.args[0]
	if !slices.Contains(settable, key) {
		return nil, fmt.Errorf("cannot set %v; settable keys are %v", key, strings.Join(settable, ", "))
	}
	if len(cmd.args) == 1 {
		return msg(fmt.Sprintf("%s: %v", key, sc.config.Get(key))), nil
	}
	val := cmd.args[1]
	switch key {
	case config.ConfigDebug:
		b, err := strconv.ParseBool(val)
		if err != nil {
			return nil, err
		}
		sc.config.Set(key, b)
	case config.ConfigMemoTableFraction:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, err
		}
		sc.config.Set(key, f)
		maxDim := sc.config.GetInt(config.ConfigBoardSize)
		if sc.game != nil {
			maxDim = max(maxDim, sc.game.Board().Dim())
		}
		alphabeta.EvictSharedMemoTables(maxDim)
	default:
		i, err := strconv.Atoi(val)
		if err != nil {
			return nil, err
		}
		switch key {
		case config.ConfigDepth:
			i = alphabeta.ClampDepth(i)
			if sc.game != nil {
				sc.game.Solver().SetDepthBound(i)
			}
		case config.ConfigThreads:
			if sc.game != nil {
				sc.game.Solver().SetThreads(i)
			}
		}
		sc.config.Set(key, i)
	}
	msgs := []string{fmt.Sprintf("%s set to %v", key, sc.config.Get(key))}
	if key == config.ConfigBoardSize || key == config.ConfigWinCount {
		msgs = append(msgs, "Board geometry takes effect with the next new game.")
	}
	return msg(strings.Join(msgs, "\n")), nil
}

func (sc *ShellController) saveConfig(cmd *shellcmd) (*Response, error) {
	if f := cmd.options.String("file"); f != "" {
		sc.config.Set(config.ConfigFile, f)
	}
	if err := sc.config.Write(); err != nil {
		return nil, err
	}
	return msg("Config saved to " + sc.config.GetString(config.ConfigFile)), nil
}

func (sc *ShellController) setSearchLog(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	if len(cmd.args) != 1 {
		return nil, errors.New("searchlog <file>|off")
	}
	sc.Cleanup()
	if cmd.args[0] == "off" {
		sc.game.Solver().SetLogStream(nil)
		return msg("Search log off"), nil
	}
	f, err := os.Create(cmd.args[0])
	if err != nil {
		return nil, err
	}
	sc.searchLog = f
	sc.game.Solver().SetLogStream(f)
	return msg("Logging single-threaded searches to " + cmd.args[0]), nil
}

func (sc *ShellController) autoplay(cmd *shellcmd) (*Response, error) {
	numGames, err := cmd.options.IntDefault("games", 100)
	if err != nil {
		return nil, err
	}
	threads, err := cmd.options.IntDefault("threads", sc.config.GetInt(config.ConfigThreads))
	if err != nil {
		return nil, err
	}
	opening, err := cmd.options.IntDefault("opening", 0)
	if err != nil {
		return nil, err
	}
	summary, err := automatic.StartCompVCompGames(context.Background(), sc.config, automatic.Options{
		NumGames:       numGames,
		Threads:        threads,
		RandomOpening:  opening,
		OutputFilename: cmd.options.String("file"),
	})
	if err != nil {
		return nil, err
	}
	out, err := summary.YAML()
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	sb.WriteString(out)
	sb.WriteString("game lengths:\n")
	if err := summary.WriteLengthHistogram(&sb); err != nil {
		return nil, err
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}

package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/domino14/tictacterm/config"
	"github.com/domino14/tictacterm/game"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errNoGame            = errors.New("no game in progress; type new")
)

type ShellController struct {
	l      *readline.Instance
	config *config.Config

	game      *game.Game
	printer   *message.Printer
	searchLog io.WriteCloser
}

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func writeln(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func (sc *ShellController) showMessage(msg string) {
	writeln(msg, sc.l.Stderr())
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// NewShellController creates the controller and its first game. The game
// mode starts as Human vs AI.
func NewShellController(cfg *config.Config) (*ShellController, error) {
	sc := newController(cfg)
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[32mtictac>\033[0m ",
		HistoryFile:     cfg.GetString(config.ConfigHistoryFile),
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",
		AutoComplete:    NewShellCompleter(sc),

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return nil, err
	}
	sc.l = l
	if err := sc.initGame(game.HumanVsAI); err != nil {
		return nil, err
	}
	return sc, nil
}

func newController(cfg *config.Config) *ShellController {
	return &ShellController{config: cfg, printer: message.NewPrinter(language.English)}
}

func (sc *ShellController) initGame(mode game.Mode) error {
	g, err := game.NewGame(sc.config, mode)
	if err != nil {
		return err
	}
	if sc.searchLog != nil {
		g.Solver().SetLogStream(sc.searchLog)
	}
	sc.game = g
	return nil
}

// isOption reports whether a field names an option. Negative numbers are
// arguments.
func isOption(field string) bool {
	if !strings.HasPrefix(field, "-") {
		return false
	}
	_, err := strconv.Atoi(field)
	return err != nil
}

func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := CmdOptions{}
	for i := 1; i < len(fields); i++ {
		if isOption(fields[i]) {
			if i == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			key := fields[i][1:]
			options[key] = append(options[key], fields[i+1])
			i++
			continue
		}
		args = append(args, fields[i])
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

func (sc *ShellController) handle(line string) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "help":
		return sc.help(cmd)
	case "new":
		return sc.newGame(cmd)
	case "mode":
		return sc.mode(cmd)
	case "play", "m":
		return sc.play(cmd)
	case "aiplay", "ai":
		return sc.aiplay(cmd)
	case "playout":
		return sc.playout(cmd)
	case "hint":
		return sc.hint(cmd)
	case "sequence", "pv":
		return sc.sequence(cmd)
	case "depth":
		return sc.depth(cmd)
	case "show", "s":
		return sc.show(cmd)
	case "reset":
		return sc.reset(cmd)
	case "set":
		return sc.set(cmd)
	case "saveconfig":
		return sc.saveConfig(cmd)
	case "searchlog":
		return sc.setSearchLog(cmd)
	case "autoplay":
		return sc.autoplay(cmd)
	default:
		msg := fmt.Sprintf("command %v not found", strconv.Quote(cmd.cmd))
		log.Info().Msg(msg)
		return nil, errors.New(msg)
	}
}

// engineReplies plays the engine's moves while it is on turn in Human vs AI.
func (sc *ShellController) engineReplies() {
	for sc.game != nil && sc.game.Mode() == game.HumanVsAI && sc.game.Playing() && sc.game.IsAITurn() {
		m, err := sc.game.AIMove()
		if err != nil {
			sc.showError(err)
			return
		}
		sc.showMessage(fmt.Sprintf("AI (%s) plays %s", sc.game.Board().Get(m.Row, m.Col), m))
		sc.showMessage(sc.game.ToDisplayText())
	}
}

// Execute runs a single command line, for non-interactive use.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	resp, err := sc.handle(line)
	if err != nil {
		sc.showError(err)
	} else if resp != nil {
		sc.showMessage(resp.message)
	}
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	sc.showMessage(sc.game.ToDisplayText())
	for {
		sc.engineReplies()

		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if line == "exit" || line == "quit" {
			sig <- syscall.SIGINT
			break
		}
		resp, err := sc.handle(line)
		if err != nil {
			sc.showError(err)
		} else if resp != nil {
			sc.showMessage(resp.message)
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}

// Cleanup closes any open search log.
func (sc *ShellController) Cleanup() {
	if sc.searchLog != nil {
		sc.searchLog.Close()
		sc.searchLog = nil
	}
}

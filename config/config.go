package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug             = "debug"
	ConfigBoardSize         = "board-size"
	ConfigWinCount          = "win-count"
	ConfigDepth             = "depth"
	ConfigThreads           = "threads"
	ConfigMemoTableFraction = "memo-table-fraction"
	ConfigHistoryFile       = "history-file"
	ConfigCPUProfile        = "cpu-profile"
	ConfigMemProfile        = "mem-profile"
	ConfigListenAddr        = "listen-addr"
	ConfigFile              = "config-file"
)

// EnvPrefix is prepended to every key when reading from the environment,
// with dashes turned into underscores: TICTAC_BOARD_SIZE and so on.
const EnvPrefix = "TICTAC"

type Config struct {
	viper.Viper
	rest []string
}

// DefaultConfig returns a config with only defaults set. It does not look
// at flags, the environment or any file.
func DefaultConfig() Config {
	c := Config{Viper: *viper.New()}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	c.SetDefault(ConfigDebug, false)
	c.SetDefault(ConfigBoardSize, 3)
	c.SetDefault(ConfigWinCount, 3)
	c.SetDefault(ConfigDepth, 5)
	c.SetDefault(ConfigThreads, 1)
	c.SetDefault(ConfigMemoTableFraction, 0.01)
	c.SetDefault(ConfigHistoryFile, filepath.Join(os.TempDir(), "tictacterm-readline.tmp"))
	c.SetDefault(ConfigCPUProfile, "")
	c.SetDefault(ConfigMemProfile, "")
	c.SetDefault(ConfigListenAddr, ":8088")
	c.SetDefault(ConfigFile, "")
}

// Load reads settings from, in increasing order of precedence: defaults,
// an optional YAML config file, a .env file, the environment and args.
func (c *Config) Load(args []string) error {
	c.Viper = *viper.New()
	c.setDefaults()

	// A missing .env file is fine.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Debug().Err(err).Msg("could-not-load-dotenv")
	}

	fs := pflag.NewFlagSet("tictacterm", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.Int(ConfigBoardSize, 3, "the size of the board")
	fs.Int(ConfigWinCount, 3, "how many in a row are needed to win")
	fs.Int(ConfigDepth, 5, "search depth bound (difficulty), 1 to 9")
	fs.Int(ConfigThreads, 1, "number of threads for the root search")
	fs.Float64(ConfigMemoTableFraction, 0.01, "fraction of system memory to use for the search memo table; 0 turns it off")
	fs.String(ConfigHistoryFile, c.GetString(ConfigHistoryFile), "readline history file")
	fs.String(ConfigCPUProfile, "", "file to write a CPU profile to")
	fs.String(ConfigMemProfile, "", "file to write a memory profile to")
	fs.String(ConfigListenAddr, ":8088", "address for the analysis server")
	fs.String(ConfigFile, "", "optional YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c.rest = fs.Args()
	if err := c.BindPFlags(fs); err != nil {
		return err
	}

	c.SetEnvPrefix(EnvPrefix)
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	if cf := c.GetString(ConfigFile); cf != "" {
		c.SetConfigFile(cf)
		if err := c.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
	}
	return nil
}

// Args returns the positional arguments left over after flag parsing.
func (c *Config) Args() []string {
	return c.rest
}

// SanitizedSettings returns all settings as a sorted, printable string.
func (c *Config) SanitizedSettings() string {
	settings := c.AllSettings()
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("%s=%v ", k, settings[k]))
	}
	return strings.TrimSpace(sb.String())
}

// Write saves the current settings to the config file, if one was given.
func (c *Config) Write() error {
	cf := c.GetString(ConfigFile)
	if cf == "" {
		return errors.New("no config-file set; cannot save config")
	}
	return c.WriteConfigAs(cf)
}

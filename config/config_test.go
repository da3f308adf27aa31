package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
)

func TestDefaults(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	is.Equal(cfg.GetInt(ConfigBoardSize), 3)
	is.Equal(cfg.GetInt(ConfigWinCount), 3)
	is.Equal(cfg.GetInt(ConfigDepth), 5)
	is.Equal(cfg.GetBool(ConfigDebug), false)
}

func TestLoadFlags(t *testing.T) {
	is := is.New(t)
	cfg := &Config{}
	is.NoErr(cfg.Load([]string{"--depth", "9", "--board-size=4", "--debug"}))
	is.Equal(cfg.GetInt(ConfigDepth), 9)
	is.Equal(cfg.GetInt(ConfigBoardSize), 4)
	is.True(cfg.GetBool(ConfigDebug))
	is.Equal(cfg.GetInt(ConfigWinCount), 3)
}

func TestLoadPositionalArgs(t *testing.T) {
	is := is.New(t)
	cfg := &Config{}
	is.NoErr(cfg.Load([]string{"--depth", "9", "sequence", "O"}))
	is.Equal(cfg.Args(), []string{"sequence", "O"})
}

func TestLoadEnv(t *testing.T) {
	is := is.New(t)
	t.Setenv("TICTAC_WIN_COUNT", "2")
	cfg := &Config{}
	is.NoErr(cfg.Load(nil))
	is.Equal(cfg.GetInt(ConfigWinCount), 2)
}

func TestLoadAndWriteFile(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "tictac.yaml")
	is.NoErr(os.WriteFile(path, []byte("depth: 7\nthreads: 2\n"), 0o644))

	cfg := &Config{}
	is.NoErr(cfg.Load([]string{"--config-file", path}))
	is.Equal(cfg.GetInt(ConfigDepth), 7)
	is.Equal(cfg.GetInt(ConfigThreads), 2)

	cfg.Set(ConfigDepth, 3)
	is.NoErr(cfg.Write())

	cfg2 := &Config{}
	is.NoErr(cfg2.Load([]string{"--config-file", path}))
	is.Equal(cfg2.GetInt(ConfigDepth), 3)
}

func TestWriteWithoutFile(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	is.True(cfg.Write() != nil)
}

func TestBadFlag(t *testing.T) {
	is := is.New(t)
	cfg := &Config{}
	is.True(cfg.Load([]string{"--no-such-flag"}) != nil)
}

package automatic

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/cespare/xxhash"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/domino14/tictacterm/board"
	"github.com/domino14/tictacterm/game"
	"github.com/domino14/tictacterm/stats"
)

// ConfidenceLevel is used for the interval around First's score.
const ConfidenceLevel = 95.0

// Summary aggregates the results of a batch of self-play games.
type Summary struct {
	Games         int     `yaml:"games"`
	FirstWins     int     `yaml:"first_wins"`
	SecondWins    int     `yaml:"second_wins"`
	Draws         int     `yaml:"draws"`
	FirstScore    float64 `yaml:"first_score"`
	FirstScoreCI  float64 `yaml:"first_score_ci95"`
	MeanLength    float64 `yaml:"mean_length"`
	StdevLength   float64 `yaml:"stdev_length"`
	DistinctGames int     `yaml:"distinct_games"`
	Elapsed       string  `yaml:"elapsed"`

	tally   stats.Tally
	lengths stats.Statistic
	seen    map[uint64]struct{}
	raw     []float64
}

func NewSummary() *Summary {
	return &Summary{seen: map[uint64]struct{}{}}
}

// gameKey hashes the move sequence, so transposed games count as distinct.
func gameKey(res GameResult) uint64 {
	return xxhash.Sum64String(strings.Join(lo.Map(res.Moves, func(m board.Move, _ int) string {
		return m.String()
	}), ";"))
}

// Add records one finished game. Not safe for concurrent use.
func (s *Summary) Add(res GameResult) {
	switch res.Outcome {
	case game.FirstWins:
		s.tally.AddFirstWin()
	case game.SecondWins:
		s.tally.AddSecondWin()
	default:
		s.tally.AddDraw()
	}
	s.lengths.Push(float64(len(res.Moves)))
	s.raw = append(s.raw, float64(len(res.Moves)))
	s.seen[gameKey(res)] = struct{}{}
}

// Finish fills in the exported fields.
func (s *Summary) Finish(elapsed time.Duration) {
	s.FirstWins, s.SecondWins, s.Draws = s.tally.Counts()
	s.Games = s.tally.Games()
	s.FirstScore, s.FirstScoreCI = s.tally.FirstScore(ConfidenceLevel)
	s.MeanLength = s.lengths.Mean()
	s.StdevLength = s.lengths.Stdev()
	s.DistinctGames = len(s.seen)
	s.Elapsed = elapsed.Round(time.Millisecond).String()
}

// YAML serializes the exported fields.
func (s *Summary) YAML() (string, error) {
	out, err := yaml.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// WriteLengthHistogram draws a text histogram of game lengths.
func (s *Summary) WriteLengthHistogram(w io.Writer) error {
	if len(s.raw) == 0 {
		_, err := fmt.Fprintln(w, "no games played")
		return err
	}
	hist := histogram.Hist(8, s.raw)
	return histogram.Fprint(w, hist, histogram.Linear(40))
}

// Package stats holds the running statistics collected over many
// self-play games.
package stats

import (
	"math"
	"sync"
)

const Epsilon = 1e-6

func FuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Statistic is a running mean and variance (Welford's algorithm).
type Statistic struct {
	n    int
	last float64
	mean float64
	m2   float64
	min  float64
	max  float64
}

func (s *Statistic) Push(val float64) {
	s.last = val
	s.n++
	if s.n == 1 {
		s.mean, s.m2 = val, 0
		s.min, s.max = val, val
		return
	}
	delta := val - s.mean
	s.mean += delta / float64(s.n)
	s.m2 += delta * (val - s.mean)
	s.min = min(s.min, val)
	s.max = max(s.max, val)
}

func (s *Statistic) Mean() float64 {
	if s.n > 0 {
		return s.mean
	}
	return 0.0
}

func (s *Statistic) Variance() float64 {
	if s.n <= 1 {
		return 0.0
	}
	return s.m2 / float64(s.n-1)
}

func (s *Statistic) Stdev() float64 {
	return math.Sqrt(s.Variance())
}

func (s *Statistic) Last() float64 {
	return s.last
}

func (s *Statistic) Min() float64 {
	return s.min
}

func (s *Statistic) Max() float64 {
	return s.max
}

// StandardError returns the standard error of the mean.
func (s *Statistic) StandardError() float64 {
	if s.n == 0 {
		return 0.0
	}
	return math.Sqrt(s.Variance() / float64(s.n))
}

func (s *Statistic) Iterations() int {
	return s.n
}

// Tally counts game results. It is safe for concurrent use.
type Tally struct {
	sync.Mutex
	firstWins  int
	secondWins int
	draws      int
}

func (t *Tally) AddFirstWin() {
	t.Lock()
	defer t.Unlock()
	t.firstWins++
}

func (t *Tally) AddSecondWin() {
	t.Lock()
	defer t.Unlock()
	t.secondWins++
}

func (t *Tally) AddDraw() {
	t.Lock()
	defer t.Unlock()
	t.draws++
}

// Counts returns first wins, second wins and draws.
func (t *Tally) Counts() (int, int, int) {
	t.Lock()
	defer t.Unlock()
	return t.firstWins, t.secondWins, t.draws
}

func (t *Tally) Games() int {
	f, s, d := t.Counts()
	return f + s + d
}

// FirstScore is First's average score per game, a win counting 1 and a
// draw 0.5, with the half-width of its confidence interval at the given
// confidence level (0 to 100).
func (t *Tally) FirstScore(confidence float64) (float64, float64) {
	f, s, d := t.Counts()
	st := &Statistic{}
	for range f {
		st.Push(1)
	}
	for range d {
		st.Push(0.5)
	}
	for range s {
		st.Push(0)
	}
	return st.Mean(), ZVal(confidence) * st.StandardError()
}

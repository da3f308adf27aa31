package stats

import (
	"math"
	"sync"
	"testing"

	"github.com/matryer/is"
)

func TestRunningStat(t *testing.T) {
	is := is.New(t)
	type tc struct {
		lengths  []int
		mean     float64
		stdev    float64
		min, max float64
	}
	cases := []tc{
		{[]int{5, 9, 9, 7, 6, 9, 8, 7}, 7.5, 1.5118578920369, 5, 9},
		{[]int{9}, 9, 0, 9, 9},
		{[]int{}, 0, 0, 0, 0},
		{[]int{6, 6}, 6, 0, 6, 6},
	}
	for _, c := range cases {
		s := &Statistic{}
		for _, l := range c.lengths {
			s.Push(float64(l))
		}
		is.True(FuzzyEqual(s.Mean(), c.mean))
		is.True(FuzzyEqual(s.Stdev(), c.stdev))
		is.Equal(s.Min(), c.min)
		is.Equal(s.Max(), c.max)
		is.Equal(s.Iterations(), len(c.lengths))
	}
}

func TestZVal(t *testing.T) {
	is := is.New(t)
	is.True(math.Abs(ZVal(95)-1.959964) < 1e-5)
	is.True(math.Abs(ZVal(99)-2.575829) < 1e-5)
}

func TestTally(t *testing.T) {
	is := is.New(t)
	tally := &Tally{}
	var wg sync.WaitGroup
	for i := range 40 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			switch i % 4 {
			case 0:
				tally.AddFirstWin()
			case 1:
				tally.AddSecondWin()
			default:
				tally.AddDraw()
			}
		}()
	}
	wg.Wait()
	f, s, d := tally.Counts()
	is.Equal(f, 10)
	is.Equal(s, 10)
	is.Equal(d, 20)
	is.Equal(tally.Games(), 40)

	mean, ci := tally.FirstScore(95)
	is.True(FuzzyEqual(mean, 0.5))
	is.True(ci > 0 && ci < 0.5)
}

func TestTallyAllDraws(t *testing.T) {
	is := is.New(t)
	tally := &Tally{}
	for range 5 {
		tally.AddDraw()
	}
	mean, ci := tally.FirstScore(95)
	is.True(FuzzyEqual(mean, 0.5))
	is.Equal(ci, 0.0)
}

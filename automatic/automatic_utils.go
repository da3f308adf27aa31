package automatic

// Data collection for automatic games.

import (
	"context"
	"errors"
	"expvar"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/tictacterm/config"
)

var (
	CVCCounter *expvar.Int
	IsPlaying  *expvar.Int
)

var ErrAlreadyPlaying = errors.New("games are already being played, please wait till complete")

func init() {
	CVCCounter = expvar.NewInt("cvcCounter")
	IsPlaying = expvar.NewInt("isPlaying")
}

// Options control a batch of self-play games.
type Options struct {
	NumGames      int
	Threads       int
	RandomOpening int
	// OutputFilename receives the per-turn CSV log, if set.
	OutputFilename string
}

type job struct{}

// StartCompVCompGames plays opts.NumGames engine-vs-engine games on
// opts.Threads goroutines and returns a summary once they are all done or
// ctx is cancelled. A cancelled run still returns the summary of the games
// that finished.
func StartCompVCompGames(ctx context.Context, cfg *config.Config, opts Options) (*Summary, error) {
	if IsPlaying.Value() > 0 {
		return nil, ErrAlreadyPlaying
	}
	threads := max(1, opts.Threads)

	var logfile io.WriteCloser
	if opts.OutputFilename != "" {
		f, err := os.Create(opts.OutputFilename)
		if err != nil {
			return nil, err
		}
		logfile = f
	}
	log.Debug().Msgf("Starting %v games, %v threads", opts.NumGames, threads)

	// Fail on a bad board geometry before spawning anything.
	if _, err := NewGameRunner(nil, nil, cfg, opts.RandomOpening); err != nil {
		if logfile != nil {
			logfile.Close()
		}
		return nil, err
	}

	CVCCounter.Set(0)
	tstart := time.Now()
	jobs := make(chan job, 100)
	logChan := make(chan string, 100)
	results := make(chan GameResult, 100)
	summary := NewSummary()

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < threads; i++ {
		g.Go(func() error {
			var lc chan string
			if logfile != nil {
				lc = logChan
			}
			r, err := NewGameRunner(lc, nil, cfg, opts.RandomOpening)
			if err != nil {
				return err
			}
			IsPlaying.Add(1)
			defer IsPlaying.Add(-1)
			for range jobs {
				if gctx.Err() != nil {
					return nil
				}
				res, err := r.PlayGame()
				if err != nil {
					return err
				}
				results <- res
				CVCCounter.Add(1)
			}
			return nil
		})
	}

	go func() {
	gameLoop:
		for i := 1; i <= opts.NumGames; i++ {
			select {
			case jobs <- job{}:
			case <-gctx.Done():
				log.Info().Msg("Got stop signal, exiting soon...")
				break gameLoop
			}
			if i%1000 == 0 {
				log.Info().Msgf("Queued %v jobs", i)
			}
		}
		close(jobs)
		log.Debug().Msg("Finished queueing all jobs.")
	}()

	loggerDone := make(chan struct{})
	go func() {
		defer close(loggerDone)
		if logfile == nil {
			return
		}
		defer logfile.Close()
		if _, err := io.WriteString(logfile, CSVHeader); err != nil {
			log.Err(err).Msg("writing-csv-header")
		}
		for msg := range logChan {
			if _, err := io.WriteString(logfile, msg); err != nil {
				log.Err(err).Msg("writing-csv-line")
			}
		}
	}()

	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for res := range results {
			summary.Add(res)
		}
	}()

	err := g.Wait()
	close(results)
	close(logChan)
	<-collectorDone
	<-loggerDone
	summary.Finish(time.Since(tstart))
	log.Info().Int("games", summary.Games).Dur("elapsed", time.Since(tstart)).Msg("All games finished.")
	return summary, err
}

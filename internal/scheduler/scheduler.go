package scheduler

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tanq16/forgemods/internal/status"
	"github.com/tanq16/forgemods/internal/utils"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	Workers     int
	GameVersion string
}

// Run executes every job in store on a pool of opts.Workers goroutines and
// returns once all of them reached a terminal status. Providers are tried in
// the order given. The returned error is non-nil only when ctx was cancelled.
func Run(ctx context.Context, store *status.Store, providers []utils.Provider, opts Options) error {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	jobs := store.JobList()

	// Create job channel
	jobCh := make(chan *status.Job, len(jobs))
	for _, job := range jobs {
		jobCh <- job
	}
	close(jobCh)

	r := &runner{
		store:       store,
		providers:   providers,
		gameVersion: opts.GameVersion,
	}

	// Start workers
	numWorkers := min(opts.Workers, len(jobs))
	log.Debug().Str("op", "scheduler").Msgf("Running %d jobs on %d workers for MC %s", len(jobs), numWorkers, opts.GameVersion)
	var g errgroup.Group
	for i := range numWorkers {
		workerID := i
		g.Go(func() error {
			processJobs(ctx, workerID, jobCh, r)
			return nil
		})
	}
	g.Wait()
	return ctx.Err()
}

// processJobs handles job processing for a worker
func processJobs(ctx context.Context, workerID int, jobCh <-chan *status.Job, r *runner) {
	for job := range jobCh {
		if ctx.Err() != nil {
			if r.store.Finish(job, status.Failed, "", "cancelled") {
				r.logf(zerolog.ErrorLevel, "", job, "!! Download failed: '%s' (cancelled)", job.Mod.Name)
			}
		} else {
			log.Debug().Str("op", "scheduler").Int("worker", workerID).Str("job", job.ID).Msgf("Picked up %s", job.Mod.Name)
			r.run(ctx, job)
		}
		r.store.MarkDone()
	}
}

package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Run resizes and re-encodes every file of job into job.OutputDir using a
// fixed pool of opts.Workers goroutines. Events are sent on events (which may
// be nil) and the caller must keep draining it until Run returns; Run never
// closes it.
//
// Per-item failures are reported as a Message and counted in the Summary; they
// never stop the batch. If the output directory cannot be prepared a single
// Message is sent and the error is returned without a Summary. Cancelling ctx
// stops new items from starting; items already running finish, the Summary is
// still sent and ctx.Err() is returned.
func Run(ctx context.Context, job Job, opts Options, events chan<- Event) (Summary, error) {
	opts = opts.withDefaults()
	log := opts.Logger

	total := len(job.Files)
	summary := Summary{Total: total}

	if total == 0 {
		emit(events, Event{Kind: EventSummary, Summary: summary})
		return summary, nil
	}

	if err := prepareOutputDir(job.OutputDir); err != nil {
		log.Error("output directory unusable", zap.String("dir", job.OutputDir), zap.Error(err))
		emit(events, Event{Kind: EventMessage, Message: Message{
			Text: fmt.Sprintf("cannot use output directory %s: %v", job.OutputDir, err),
		}})
		return summary, err
	}

	log.Info("batch started",
		zap.Int("files", total),
		zap.Int("width", job.Width),
		zap.Int("height", job.Height),
		zap.String("format", job.Format),
		zap.String("output", job.OutputDir),
		zap.Int("workers", opts.Workers),
	)

	start := time.Now()
	paths := make(chan string)
	results := make(chan Result)

	var wg sync.WaitGroup
	wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go func() {
			defer wg.Done()
			worker(paths, results, job, opts)
		}()
	}

	// The collector is the only writer of completed/successes, so progress
	// counts are strictly increasing and reach total at most once.
	completed := 0
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for res := range results {
			completed++
			if res.Err == nil {
				summary.Successes++
			} else {
				log.Warn("file failed", zap.String("path", res.Path), zap.Error(res.Err))
				emit(events, Event{Kind: EventMessage, Message: Message{
					Path: res.Path,
					Text: fmt.Sprintf("failed to process %s: %v", res.Path, res.Err),
				}})
			}
			emit(events, Event{Kind: EventProgress, Progress: Snapshot{
				Completed: completed,
				Total:     total,
				Elapsed:   time.Since(start),
			}})
		}
	}()

	go func() {
		defer close(paths)
		for _, path := range job.Files {
			if ctx.Err() != nil {
				return
			}
			select {
			case paths <- path:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(results)
	<-collectorDone

	summary.Skipped = total - completed
	log.Info("batch finished",
		zap.Int("succeeded", summary.Successes),
		zap.Int("failed", summary.Failures()),
		zap.Int("skipped", summary.Skipped),
		zap.Duration("elapsed", time.Since(start)),
	)
	emit(events, Event{Kind: EventSummary, Summary: summary})

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

func worker(paths <-chan string, results chan<- Result, job Job, opts Options) {
	for path := range paths {
		out, err := transformFile(path, job, opts)
		if err == nil {
			opts.Logger.Debug("file written", zap.String("path", path), zap.String("output", out))
		}
		results <- Result{Path: path, Output: out, Err: err}
	}
}

func emit(events chan<- Event, ev Event) {
	if events != nil {
		events <- ev
	}
}

package tasks

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/desertthunder/mangax/internal/navigator"
	"github.com/desertthunder/mangax/internal/shared"
)

// WarmOpts contains configuration for cache warming.
type WarmOpts struct {
	NumWorkers int     // Concurrent workers (default: 4, max: 10)
	RateLimit  float64 // Titles started per second (default: 2)
}

type warmJob struct {
	index int
	input string
}

type warmOutcome struct {
	index  int
	result TitleWarmResult
}

// Warm refreshes the cached chapter lists of the given titles concurrently.
//
// Titles are started at most RateLimit per second and processed by a bounded worker pool.
// A failing title does not stop the run; it is reported in its [TitleWarmResult].
// Canceling ctx stops scheduling new titles and returns the partial result with the context error.
func (e *CatalogEngine) Warm(ctx context.Context, prog chan<- ProgressUpdate, inputs []string, opts WarmOpts) (*WarmResult, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no titles to warm", shared.ErrMissingArgument)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}

	total := len(inputs)
	result := &WarmResult{Total: total, Titles: make([]TitleWarmResult, total)}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan warmJob)
	outcomes := make(chan warmOutcome, total)

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.warmWorker(ctx, &wg, prog, total, jobs, outcomes)
	}

	e.sendProgress(prog, warmStartUpdate(total))

	go func() {
		defer close(jobs)
		for i, input := range inputs {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			select {
			case jobs <- warmJob{index: i, input: input}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	seen := make([]bool, total)
	completed := 0
	for out := range outcomes {
		completed++
		seen[out.index] = true
		result.Titles[out.index] = out.result

		if out.result.Error == nil {
			result.Succeeded++
			e.sendProgress(prog, warmCompletedUpdate(completed, total, out.result))
		} else {
			result.Failed++
			e.sendProgress(prog, warmFailedUpdate(completed, total, out.result))
		}
	}

	if err := ctx.Err(); err != nil {
		for i, ok := range seen {
			if !ok {
				result.Titles[i] = TitleWarmResult{Input: inputs[i], Error: err}
				result.Failed++
			}
		}
		return result, err
	}

	e.logger.Info("cache warmed", "titles", total, "succeeded", result.Succeeded, "failed", result.Failed)
	return result, nil
}

// warmWorker processes titles from the jobs channel.
func (e *CatalogEngine) warmWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	prog chan<- ProgressUpdate,
	total int,
	jobs <-chan warmJob,
	outcomes chan<- warmOutcome,
) {
	defer wg.Done()

	for job := range jobs {
		e.sendProgress(prog, resolveTitleUpdate(job.index+1, total, job.input))
		outcomes <- warmOutcome{index: job.index, result: e.warmTitle(ctx, prog, job, total)}
	}
}

// warmTitle resolves one title, refreshes its chapters and summarizes the resulting sequence.
func (e *CatalogEngine) warmTitle(ctx context.Context, prog chan<- ProgressUpdate, job warmJob, total int) TitleWarmResult {
	res := TitleWarmResult{Input: job.input}

	title, err := e.source.Title(ctx, job.input)
	if err != nil {
		res.Error = fmt.Errorf("failed to look up title: %w", err)
		return res
	}
	res.Title = title

	e.sendProgress(prog, fetchChaptersUpdate(job.index+1, total, title))

	records, err := e.source.Refresh(ctx, title.ID)
	if err != nil {
		res.Error = fmt.Errorf("failed to fetch chapters: %w", err)
		return res
	}

	seq, err := navigator.Build(records)
	if err != nil {
		res.Error = err
		return res
	}

	res.Chapters = len(seq)
	res.Groups = navigator.NewGroupIndex(seq).Groups()
	if len(seq) > 0 {
		res.Latest = seq[len(seq)-1].Record.Label
	}
	return res
}

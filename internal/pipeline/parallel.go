package pipeline

import (
	"context"
	"runtime"
	"sync"

	"github.com/MeKo-Tech/surveyscan/internal/registrar"
	"github.com/MeKo-Tech/surveyscan/internal/review"
	"github.com/MeKo-Tech/surveyscan/internal/utils"
)

type pageJob struct {
	index int
	page  NamedImage
}

type pageOutcome struct {
	index  int
	result *PageResult
}

// ProcessPages processes pages in parallel with a worker pool bounded
// by the configured worker count, then builds the review queue over all
// results. Page order is preserved in the output; there is no ordering
// between pages during processing.
func (p *Pipeline) ProcessPages(ctx context.Context, pages []NamedImage) (*BatchResult, error) {
	workers := p.cfg.Parallel.MaxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(pages) {
		workers = len(pages)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan pageJob, len(pages))
	outcomes := make(chan pageOutcome, len(pages))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go p.worker(ctx, jobs, outcomes, &wg)
	}

	go func() {
		defer close(jobs)
		for i, pg := range pages {
			select {
			case jobs <- pageJob{index: i, page: pg}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	results := make([]*PageResult, len(pages))
	for out := range outcomes {
		results[out.index] = out.result
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i, r := range results {
		// A worker cancelled mid-stream leaves gaps; record them.
		if r == nil {
			results[i] = &PageResult{Page: pages[i].Name, Err: "not processed"}
		}
	}

	return p.aggregate(results), nil
}

// worker consumes page jobs until the channel closes or the context is
// cancelled.
func (p *Pipeline) worker(ctx context.Context, jobs <-chan pageJob, outcomes chan<- pageOutcome, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case job, ok := <-jobs:
			if !ok {
				return
			}
			res := p.ProcessPage(ctx, job.page.Name, job.page.Image)
			select {
			case outcomes <- pageOutcome{index: job.index, result: res}:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// aggregate summarizes registration quality and builds the review
// queue. This is the batch barrier: it observes results from all pages
// before ranking.
func (p *Pipeline) aggregate(results []*PageResult) *BatchResult {
	batch := &BatchResult{Pages: results}

	inputs := make([]review.PageInput, 0, len(results))
	for _, r := range results {
		switch {
		case r.Registration == nil:
			batch.Summary.Fail++
		case r.Registration.Quality == registrar.QualityOK:
			batch.Summary.OK++
		case r.Registration.Quality == registrar.QualityWarn:
			batch.Summary.Warn++
		default:
			batch.Summary.Fail++
		}
		inputs = append(inputs, review.PageInput{
			Page:         r.Page,
			Checkboxes:   r.Checkboxes,
			Registration: r.Registration,
			Threshold:    p.reviewThreshold,
		})
	}

	batch.Review = review.Build(inputs, review.Config{
		NearMargin:     p.reviewMargin,
		ResidualFailPx: p.cfg.Review.ResidualFailPx,
	})
	return batch
}

// ProcessDirectory discovers supported images in dir and processes them
// as a batch. Pages that fail to load are recorded as failed results,
// never dropped.
func (p *Pipeline) ProcessDirectory(ctx context.Context, dir string) (*BatchResult, error) {
	paths, err := utils.DiscoverImages(dir)
	if err != nil {
		return nil, err
	}

	pages := make([]NamedImage, 0, len(paths))
	var failed []*PageResult
	for _, path := range paths {
		img, err := utils.LoadImage(path)
		if err != nil {
			failed = append(failed, &PageResult{Page: path, Err: err.Error()})
			continue
		}
		pages = append(pages, NamedImage{Name: path, Image: img})
	}

	batch, err := p.ProcessPages(ctx, pages)
	if err != nil {
		return nil, err
	}
	if len(failed) > 0 {
		batch.Pages = append(batch.Pages, failed...)
		batch.Summary.Fail += len(failed)
	}
	return batch, nil
}

package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"busboard/internal/config"
	"busboard/internal/logging"
	"busboard/internal/logging/types"
	"busboard/internal/scraper"
	"busboard/pkg/models"
)

// ScrapeSession is the per-job resource a worker owns end to end: one
// browser session scraping one service card, torn down when the job ends.
type ScrapeSession interface {
	ScrapeService(ctx context.Context, target models.ScrapeTarget) ([]models.BusRecord, error)
	Close()
}

// SessionFactory builds the session for one job. The default factory
// launches a real browser; tests substitute fakes.
type SessionFactory func(ctx context.Context, cfg *config.Config) (ScrapeSession, error)

// JobResult carries one job's outcome to the collector.
type JobResult struct {
	Index    int
	Records  []models.BusRecord
	Err      error
	Duration time.Duration
}

// PoolStats tracks worker pool statistics
type PoolStats struct {
	JobsQueued     int64
	JobsProcessed  int64
	JobsSuccessful int64
	JobsFailed     int64
	TotalDuration  time.Duration
}

// Pool fans scrape jobs out over a bounded set of workers. Each job owns
// its own browser session; the only thing crossing job boundaries is the
// result channel drained by a single collector.
type Pool struct {
	cfg     *config.Config
	factory SessionFactory
	limiter *rate.Limiter
	logger  types.Logger

	mu    sync.RWMutex
	stats PoolStats
}

// NewPool creates a pool that launches real browser sessions.
func NewPool(cfg *config.Config) *Pool {
	return NewPoolWithFactory(cfg, func(ctx context.Context, cfg *config.Config) (ScrapeSession, error) {
		return scraper.NewSession(ctx, cfg)
	})
}

// NewPoolWithFactory creates a pool with a custom session factory.
func NewPoolWithFactory(cfg *config.Config, factory SessionFactory) *Pool {
	stagger := cfg.Workers.LaunchStagger
	if stagger <= 0 {
		stagger = time.Second
	}
	return &Pool{
		cfg:     cfg,
		factory: factory,
		limiter: rate.NewLimiter(rate.Every(stagger), 1),
		logger:  logging.GetGlobalLogger(),
	}
}

// Run scrapes service cards 1..serviceCount for the given date and
// aggregates all records and per-job failures into one summary. Failed
// jobs never affect their siblings.
func (p *Pool) Run(ctx context.Context, serviceCount int, date time.Time) (*models.ScrapeSummary, error) {
	if serviceCount < 1 {
		return nil, fmt.Errorf("service count must be >= 1, got %d", serviceCount)
	}

	workerCount := p.cfg.Workers.PoolSize
	if workerCount < 1 {
		workerCount = 1
	}
	if workerCount > serviceCount {
		workerCount = serviceCount
	}

	started := time.Now()
	p.mu.Lock()
	p.stats.JobsQueued += int64(serviceCount)
	p.mu.Unlock()

	p.logger.Info("Starting scrape run", map[string]interface{}{
		"services": serviceCount,
		"workers":  workerCount,
		"date":     date.Format("2006-01-02"),
	})

	jobs := make(chan int)
	results := make(chan JobResult)

	var wg sync.WaitGroup
	for w := 1; w <= workerCount; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for index := range jobs {
				results <- p.runJob(ctx, workerID, index, date)
			}
		}(w)
	}

	go func() {
		defer close(jobs)
		for index := 1; index <= serviceCount; index++ {
			select {
			case jobs <- index:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Single collector: no shared mutable accumulator across workers.
	summary := &models.ScrapeSummary{StartedAt: started}
	for result := range results {
		p.recordStats(result)
		if result.Err != nil {
			summary.Failures = append(summary.Failures, models.JobFailure{
				ServiceIndex: result.Index,
				Error:        result.Err.Error(),
				Duration:     result.Duration,
			})
			p.logger.Warn("Scrape job failed", map[string]interface{}{
				"service_index": result.Index,
				"error":         result.Err.Error(),
				"duration":      result.Duration.String(),
			})
			continue
		}
		summary.Records = append(summary.Records, result.Records...)
		p.logger.Info("Scrape job completed", map[string]interface{}{
			"service_index": result.Index,
			"records":       len(result.Records),
			"duration":      result.Duration.String(),
		})
	}
	summary.Elapsed = time.Since(started)

	return summary, nil
}

// runJob constructs a session, scrapes one service and always tears the
// session down.
func (p *Pool) runJob(ctx context.Context, workerID, index int, date time.Time) JobResult {
	started := time.Now()
	result := JobResult{Index: index}

	if err := p.limiter.Wait(ctx); err != nil {
		result.Err = fmt.Errorf("job cancelled before launch: %w", err)
		result.Duration = time.Since(started)
		return result
	}

	jobCtx := ctx
	if p.cfg.Workers.JobTimeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, p.cfg.Workers.JobTimeout)
		defer cancel()
	}

	p.logger.Debug("Worker picked up job", map[string]interface{}{
		"worker_id":     workerID,
		"service_index": index,
	})

	session, err := p.factory(jobCtx, p.cfg)
	if err != nil {
		result.Err = fmt.Errorf("failed to create browser session: %w", err)
		result.Duration = time.Since(started)
		return result
	}
	defer session.Close()

	records, err := session.ScrapeService(jobCtx, models.ScrapeTarget{
		ServiceIndex: index,
		Date:         date,
	})
	result.Records = records
	result.Err = err
	result.Duration = time.Since(started)
	return result
}

func (p *Pool) recordStats(result JobResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats.JobsProcessed++
	p.stats.TotalDuration += result.Duration
	if result.Err != nil {
		p.stats.JobsFailed++
	} else {
		p.stats.JobsSuccessful++
	}
}

// GetStats returns current pool statistics
func (p *Pool) GetStats() PoolStats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stats
}

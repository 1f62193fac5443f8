package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"busboard/internal/config"
	"busboard/pkg/models"
)

type fakeSession struct {
	records []models.BusRecord
	err     error
	onClose func()
}

func (f *fakeSession) ScrapeService(ctx context.Context, target models.ScrapeTarget) ([]models.BusRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *fakeSession) Close() {
	if f.onClose != nil {
		f.onClose()
	}
}

func testConfig(workers int) *config.Config {
	cfg, err := config.LoadConfig("")
	if err != nil {
		panic(err)
	}
	cfg.Workers.PoolSize = workers
	cfg.Workers.LaunchStagger = time.Millisecond
	cfg.Workers.JobTimeout = 5 * time.Second
	return cfg
}

func recordsFor(index int) []models.BusRecord {
	return []models.BusRecord{
		{Route: "route", BusName: "operator", URL: "https://example.test"},
		{Route: "route", BusName: "operator 2", URL: "https://example.test"},
	}
}

func TestRunIsolatesFailedJob(t *testing.T) {
	var mu sync.Mutex
	closed := 0

	// Job 3 fails at scrape time; the other four must be unaffected.
	factory := func(ctx context.Context, cfg *config.Config) (ScrapeSession, error) {
		return &indexAwareSession{failIndex: 3, closed: &closed, mu: &mu}, nil
	}

	pool := NewPoolWithFactory(testConfig(2), factory)
	summary, err := pool.Run(context.Background(), 5, time.Now())
	require.NoError(t, err)

	assert.Len(t, summary.Records, 8, "four successful jobs with two records each")
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, 3, summary.Failures[0].ServiceIndex)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 5, closed, "every session is closed, failed job included")

	stats := pool.GetStats()
	assert.Equal(t, int64(5), stats.JobsQueued)
	assert.Equal(t, int64(5), stats.JobsProcessed)
	assert.Equal(t, int64(4), stats.JobsSuccessful)
	assert.Equal(t, int64(1), stats.JobsFailed)
}

// indexAwareSession fails only for one service index.
type indexAwareSession struct {
	failIndex int
	closed    *int
	mu        *sync.Mutex
}

func (s *indexAwareSession) ScrapeService(ctx context.Context, target models.ScrapeTarget) ([]models.BusRecord, error) {
	if target.ServiceIndex == s.failIndex {
		return nil, errors.New("browser crashed")
	}
	return recordsFor(target.ServiceIndex), nil
}

func (s *indexAwareSession) Close() {
	s.mu.Lock()
	*s.closed++
	s.mu.Unlock()
}

func TestRunFactoryFailureIsPerJob(t *testing.T) {
	calls := 0
	var mu sync.Mutex
	factory := func(ctx context.Context, cfg *config.Config) (ScrapeSession, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			return nil, errors.New("no browser available")
		}
		return &fakeSession{records: recordsFor(n)}, nil
	}

	pool := NewPoolWithFactory(testConfig(1), factory)
	summary, err := pool.Run(context.Background(), 3, time.Now())
	require.NoError(t, err)

	assert.Len(t, summary.Failures, 1)
	assert.Len(t, summary.Records, 4)
}

func TestRunRejectsBadServiceCount(t *testing.T) {
	pool := NewPoolWithFactory(testConfig(1), func(ctx context.Context, cfg *config.Config) (ScrapeSession, error) {
		return &fakeSession{}, nil
	})
	_, err := pool.Run(context.Background(), 0, time.Now())
	assert.Error(t, err)
}

func TestRunResultsIndependentOfCompletionOrder(t *testing.T) {
	factory := func(ctx context.Context, cfg *config.Config) (ScrapeSession, error) {
		return &orderScrambledSession{}, nil
	}

	pool := NewPoolWithFactory(testConfig(4), factory)
	summary, err := pool.Run(context.Background(), 4, time.Now())
	require.NoError(t, err)
	assert.Len(t, summary.Records, 4)
	assert.Empty(t, summary.Failures)
}

type orderScrambledSession struct{}

func (s *orderScrambledSession) ScrapeService(ctx context.Context, target models.ScrapeTarget) ([]models.BusRecord, error) {
	// Later indexes finish first.
	time.Sleep(time.Duration(5-target.ServiceIndex) * time.Millisecond)
	return []models.BusRecord{{Route: "r", BusName: "b"}}, nil
}

func (s *orderScrambledSession) Close() {}

package seed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/ewi/pkg/logger"
)

// ErrVerification is returned when the server's index disagrees with the
// submitted history.
var ErrVerification = errors.New("index verification failed")

const percentageMultiplier = 100

// Run executes a complete seeding run and returns its statistics.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := cfg.log()

	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	log.Info(ctx, "starting ewi seeding run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("employees", cfg.Employees),
		logger.Int("weeks", cfg.Weeks),
		logger.String("job", cfg.Job),
		logger.Int("workers", cfg.Workers),
		logger.String("timeout", cfg.Timeout.String()))

	client := newHTTPClient(cfg.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, cfg, client); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate history
	plans, err := generatePlans(ctx, cfg, stats)
	if err != nil {
		return stats, fmt.Errorf("generation failed: %w", err)
	}

	// Step 3: Create employees and submit entries concurrently
	submitPlans(ctx, cfg, client, plans, stats)

	// Step 4: Verify the index of every employee
	verifyErr := verifyIndexes(ctx, cfg, client, plans, stats)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if verifyErr != nil {
		return stats, verifyErr
	}
	if stats.EntriesFailed > 0 {
		return stats, fmt.Errorf("%d of %d entries failed", stats.EntriesFailed, stats.EntriesSubmitted)
	}
	log.Info(ctx, "seeding completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, cfg *Config, client *HTTPClient) error {
	cfg.log().Info(ctx, "checking service health")
	resp, err := client.Get(ctx, cfg.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if err := expect(resp, http.StatusOK, nil); err != nil {
		return err
	}
	cfg.log().Info(ctx, "service is healthy")
	return nil
}

// submitPlans hands whole plans to workers. Entries of one employee stay on
// one worker because the server rejects dates older than the last entry.
func submitPlans(ctx context.Context, cfg *Config, client *HTTPClient, plans []Plan, stats *Stats) {
	log := cfg.log()
	log.Info(ctx, "submitting entries",
		logger.Int("entries", stats.EntriesGenerated),
		logger.Int("workers", cfg.Workers))

	var created, submitted, successful, failed int64

	planChan := make(chan Plan, cfg.Workers*2)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for plan := range planChan {
				if ctx.Err() != nil {
					return
				}
				if err := createEmployee(ctx, cfg, client, plan); err != nil {
					atomic.AddInt64(&failed, int64(len(plan.Submissions)))
					atomic.AddInt64(&submitted, int64(len(plan.Submissions)))
					if cfg.Verbose {
						log.Warn(ctx, "employee creation failed", logger.String("employee", plan.ID), logger.Error(err))
					}
					continue
				}
				atomic.AddInt64(&created, 1)

				for _, sub := range plan.Submissions {
					atomic.AddInt64(&submitted, 1)
					if err := submitEntry(ctx, cfg, client, plan.ID, sub); err != nil {
						atomic.AddInt64(&failed, 1)
						if cfg.Verbose {
							log.Warn(ctx, "entry submission failed",
								logger.String("employee", plan.ID),
								logger.String("category", sub.Category),
								logger.String("date", sub.Date),
								logger.Error(err))
						}
						continue
					}
					atomic.AddInt64(&successful, 1)
				}
			}
		}()
	}

	go func() {
		defer close(planChan)
		for _, plan := range plans {
			select {
			case <-ctx.Done():
				return
			case planChan <- plan:
			}
		}
	}()

	wg.Wait()

	stats.EmployeesCreated = int(atomic.LoadInt64(&created))
	stats.EntriesSubmitted = int(atomic.LoadInt64(&submitted))
	stats.EntriesSuccessful = int(atomic.LoadInt64(&successful))
	stats.EntriesFailed = int(atomic.LoadInt64(&failed))

	log.Info(ctx, "entry submission completed",
		logger.Int("successful", stats.EntriesSuccessful),
		logger.Int("failed", stats.EntriesFailed))
}

func createEmployee(ctx context.Context, cfg *Config, client *HTTPClient, plan Plan) error {
	resp, err := client.Post(ctx, cfg.BaseURL+"/employees", map[string]string{"id": plan.ID, "name": plan.Name})
	if err != nil {
		return err
	}
	return expect(resp, http.StatusCreated, nil)
}

func submitEntry(ctx context.Context, cfg *Config, client *HTTPClient, id string, sub Submission) error {
	target := entriesURL(cfg, id, sub.Category)
	var body any = sub
	if sub.Survey {
		target += "/survey"
		body = map[string][]string{"responses": sub.responses()}
	}
	resp, err := client.Post(ctx, target, body)
	if err != nil {
		return err
	}
	return expect(resp, http.StatusCreated, nil)
}

func entriesURL(cfg *Config, id, category string) string {
	return cfg.BaseURL + "/employees/" + url.PathEscape(id) + "/jobs/" + url.PathEscape(cfg.Job) + "/" + category
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var successRate, entriesPerSecond float64
	if stats.EntriesSubmitted > 0 {
		successRate = float64(stats.EntriesSuccessful) / float64(stats.EntriesSubmitted) * percentageMultiplier
	}
	if stats.Duration > 0 {
		entriesPerSecond = float64(stats.EntriesSubmitted) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int("employeesCreated", stats.EmployeesCreated),
		logger.Int("entriesGenerated", stats.EntriesGenerated),
		logger.Int("entriesSubmitted", stats.EntriesSubmitted),
		logger.Int("entriesSuccessful", stats.EntriesSuccessful),
		logger.Int("entriesFailed", stats.EntriesFailed),
		logger.Int("indexesVerified", stats.IndexesVerified),
		logger.Int("indexMismatches", stats.IndexMismatches),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("entriesPerSecond", entriesPerSecond))
}

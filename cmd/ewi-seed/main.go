// Command ewi-seed fills a running ewi server with synthetic weekly surveys
// and verifies the reported index.
//
//	ewi-seed -url http://localhost:9080 -employees 50 -weeks 12 -job 0260 -metrics 3
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/ewi/internal/domain/model"
	"github.com/okian/ewi/internal/seed"
	"github.com/okian/ewi/pkg/logger"
)

// Default configuration constants.
const (
	defaultEmployees = 50
	defaultWeeks     = 12
	defaultMetrics   = 3
	defaultWorkers   = 2 // multiplier for runtime.NumCPU()
	defaultTimeout   = 30 * time.Second
	defaultRunTime   = 10 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the service")
		employees = flag.Int("employees", defaultEmployees, "Number of employees to create")
		weeks     = flag.Int("weeks", defaultWeeks, "Weekly entries per employee and category")
		job       = flag.String("job", "0260", "Job code, must be known to the server")
		metrics   = flag.Int("metrics", defaultMetrics, "Technical metric count of the job")
		start     = flag.String("start", "", "Date of the first entry (default: weeks before today)")
		prefix    = flag.String("prefix", "seed-", "Employee ID prefix")
		seedVal   = flag.Uint64("seed", uint64(time.Now().UnixNano()), "Random seed")
		workers   = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		format    = flag.String("log-format", "text", "Log format: text or json")
		verbose   = flag.Bool("verbose", false, "Log every failed request")
	)
	flag.Parse()

	level := "info"
	if *verbose {
		level = "debug"
	}
	if err := logger.InitWithOptions(logger.Options{Format: logger.Format(*format), Level: level}); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(2)
	}

	first := model.Today().AddDays(-7 * *weeks)
	if *start != "" {
		d, err := model.ParseDate(*start)
		if err != nil {
			os.Stderr.WriteString(err.Error() + "\n")
			os.Exit(2)
		}
		first = d
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, defaultRunTime)

	_, err := seed.Run(ctx, &seed.Config{
		BaseURL:   *baseURL,
		Employees: *employees,
		Weeks:     *weeks,
		Job:       *job,
		Metrics:   *metrics,
		Start:     first,
		Prefix:    *prefix,
		Seed:      *seedVal,
		Workers:   *workers,
		Timeout:   *timeout,
		Verbose:   *verbose,
	})
	cancel()
	stop()
	if err != nil {
		os.Stderr.WriteString("Seeding failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

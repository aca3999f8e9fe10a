package seed

import (
	"context"
	"fmt"
	"math"
	"net/http"

	"github.com/okian/ewi/internal/domain/scoring"
	"github.com/okian/ewi/pkg/logger"
)

const tolerance = 1e-9

type indexResponse struct {
	Means []float64 `json:"means"`
	Index []float64 `json:"index"`
}

// verifyIndexes compares the means reported by the server with the means of
// the generated history, per employee and category.
func verifyIndexes(ctx context.Context, cfg *Config, client *HTTPClient, plans []Plan, stats *Stats) error {
	log := cfg.log()
	log.Info(ctx, "verifying indexes")

	for _, plan := range plans {
		rows := map[string][][]float64{}
		for _, sub := range plan.Submissions {
			rows[sub.Category] = append(rows[sub.Category], sub.Metrics)
		}
		for category, metrics := range rows {
			want, err := scoring.Means(metrics)
			if err != nil {
				return fmt.Errorf("employee %s %s: %w", plan.ID, category, err)
			}
			got, err := fetchIndex(ctx, cfg, client, plan.ID, category)
			if err != nil {
				stats.IndexMismatches++
				log.Warn(ctx, "index unavailable",
					logger.String("employee", plan.ID),
					logger.String("category", category),
					logger.Error(err))
				continue
			}
			stats.IndexesVerified++
			if !closeEnough(got.Means, want) {
				stats.IndexMismatches++
				log.Warn(ctx, "index mismatch",
					logger.String("employee", plan.ID),
					logger.String("category", category),
					logger.Any("want", want),
					logger.Any("got", got.Means))
			}
		}
	}

	if stats.IndexMismatches > 0 {
		return fmt.Errorf("%w: %d mismatches", ErrVerification, stats.IndexMismatches)
	}
	log.Info(ctx, "index verification completed", logger.Int("verified", stats.IndexesVerified))
	return nil
}

func fetchIndex(ctx context.Context, cfg *Config, client *HTTPClient, id, category string) (indexResponse, error) {
	var out indexResponse
	resp, err := client.Get(ctx, entriesURL(cfg, id, category)+"/index")
	if err != nil {
		return out, err
	}
	err = expect(resp, http.StatusOK, &out)
	return out, err
}

func closeEnough(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > tolerance {
			return false
		}
	}
	return true
}

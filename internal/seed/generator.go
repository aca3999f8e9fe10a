package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/google/uuid"

	"github.com/okian/ewi/internal/domain/survey"
	"github.com/okian/ewi/pkg/logger"
)

// Generation constants.
const (
	daysPerWeek    = 7
	maxTechnical   = 20
	halfStepChance = 4 // one in N technical answers gets a .5
	noteEvery      = 4
	scaleMin       = 1
	scaleMax       = 5
)

var weekNotes = []string{
	"covering for a colleague",
	"audit week\nextra reports",
	"short week",
}

// generatePlans builds the history of every employee. Each employee gets its
// own random stream so plans do not depend on worker scheduling.
func generatePlans(ctx context.Context, cfg *Config, stats *Stats) ([]Plan, error) {
	cfg.log().Info(ctx, "generating survey history",
		logger.Int("employees", cfg.Employees),
		logger.Int("weeks", cfg.Weeks))

	plans := make([]Plan, cfg.Employees)
	for i := range plans {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during generation: %w", err)
		}
		rng := rand.New(rand.NewPCG(cfg.Seed, uint64(i)))
		plans[i] = Plan{
			ID:          cfg.Prefix + uuid.NewString(),
			Name:        "Employee " + strconv.Itoa(i+1),
			Submissions: generateHistory(cfg, rng),
		}
		stats.EntriesGenerated += len(plans[i].Submissions)
	}

	cfg.log().Info(ctx, "generated survey history", logger.Int("entries", stats.EntriesGenerated))
	return plans, nil
}

// generateHistory returns weekly technical and personal entries in date order.
func generateHistory(cfg *Config, rng *rand.Rand) []Submission {
	subs := make([]Submission, 0, cfg.Weeks*2)
	personal := len(survey.PersonalQuestions())
	for w := 0; w < cfg.Weeks; w++ {
		date := cfg.Start.AddDays(w * daysPerWeek).String()
		note := ""
		if w%noteEvery == noteEvery-1 {
			note = weekNotes[rng.IntN(len(weekNotes))]
		}

		tech := make([]float64, cfg.Metrics)
		for m := range tech {
			tech[m] = float64(rng.IntN(maxTechnical + 1))
			if rng.IntN(halfStepChance) == 0 {
				tech[m] += 0.5
			}
		}
		subs = append(subs, Submission{Category: "technical", Date: date, Note: note, Metrics: tech})

		answers := make([]float64, personal)
		for m := range answers {
			answers[m] = float64(scaleMin + rng.IntN(scaleMax-scaleMin+1))
		}
		subs = append(subs, Submission{Category: "personal", Survey: true, Date: date, Note: note, Metrics: answers})
	}
	return subs
}

// responses renders a submission as a survey form: date, answers, note.
func (s Submission) responses() []string {
	out := make([]string, 0, len(s.Metrics)+2)
	out = append(out, s.Date)
	for _, m := range s.Metrics {
		out = append(out, strconv.FormatFloat(m, 'g', -1, 64))
	}
	return append(out, s.Note)
}

package survey

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/okian/ewi/internal/domain/model"
	"github.com/okian/ewi/internal/domain/record"
)

// Personal survey answer scale. Keep an odd number of values so the ideal mean is whole.
const (
	PersonalMin       = 1
	PersonalMax       = 5
	PersonalIdealMean = (PersonalMin + PersonalMax) / 2
)

var personalQuestions = []string{
	"How much confidence do you have in your direct leadership?",
	"How passionate are you about the department's current mission?",
	"How much do you think your work challenges you?",
	"In general, how peaceful is your life?",
	"My target deadlines are easy to hit.",
}

// PersonalQuestions returns the fixed personal survey questions.
func PersonalQuestions() []string { return slices.Clone(personalQuestions) }

// PersonalBaseline returns the ideal mean for every personal question.
func PersonalBaseline() []float64 {
	out := make([]float64, len(personalQuestions))
	for i := range out {
		out[i] = PersonalIdealMean
	}
	return out
}

// Results holds raw form answers: the entry date first, then one answer per
// numeric question, then the free-text notes.
type Results struct {
	responses   []string
	metricCount int
}

// NewResults checks that responses has exactly metricCount numeric answers
// between the date and the notes.
func NewResults(responses []string, metricCount int) (Results, error) {
	if metricCount <= 0 || len(responses) != metricCount+2 {
		return Results{}, fmt.Errorf("%w: got %d responses for %d metrics", ErrResponseCount, len(responses), metricCount)
	}
	return Results{responses: slices.Clone(responses), metricCount: metricCount}, nil
}

// MetricCount returns the number of numeric answers.
func (r Results) MetricCount() int { return r.metricCount }

// Responses returns a copy of the raw answers.
func (r Results) Responses() []string { return slices.Clone(r.responses) }

// Metrics parses the numeric answers.
func (r Results) Metrics() ([]float64, error) {
	raw := r.responses[1 : len(r.responses)-1]
	out := make([]float64, len(raw))
	for i, s := range raw {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidMetric, s)
		}
		out[i] = v
	}
	return out, nil
}

// Entry converts the answers to a record entry.
func (r Results) Entry() (record.Entry, error) {
	date, err := model.ParseDate(strings.TrimSpace(r.responses[0]))
	if err != nil {
		return record.Entry{}, err
	}
	metrics, err := r.Metrics()
	if err != nil {
		return record.Entry{}, err
	}
	return record.NewEntry(date, r.responses[len(r.responses)-1], metrics), nil
}

// ValidateTechnical checks e against the profile's question count.
func (p Profile) ValidateTechnical(e record.Entry) error {
	if e.Dim() != p.MetricCount() {
		return fmt.Errorf("%w: job %s expects %d metrics, got %d", ErrArityMismatch, p.Job, p.MetricCount(), e.Dim())
	}
	return nil
}

// ValidatePersonal checks e against the personal survey's size and scale.
func ValidatePersonal(e record.Entry) error {
	if e.Dim() != len(personalQuestions) {
		return fmt.Errorf("%w: personal survey expects %d metrics, got %d", ErrArityMismatch, len(personalQuestions), e.Dim())
	}
	for i, v := range e.Metrics() {
		if v < PersonalMin || v > PersonalMax {
			return fmt.Errorf("%w: answer %d is %g, want %d..%d", ErrOutOfScale, i+1, v, PersonalMin, PersonalMax)
		}
	}
	return nil
}

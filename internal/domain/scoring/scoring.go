// Package scoring computes the workload index for a window of survey metrics.
//
// The index compares the mean of each metric over the window (the local mean)
// with the job's expected average (the baseline): 1 means the employee sits at
// the baseline, 2 means twice the expected load, and so on.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Sentinel kinds for scoring errors.
var (
	ErrNoData            = errors.New("no metrics in window")
	ErrDimensionMismatch = errors.New("metric dimensions differ")
)

const defaultZeroBaselineOffset = 1.0

// Option applies a configuration option to the IndexScorer.
type Option func(*IndexScorer)

// WithZeroBaselineOffset sets the value added to |local| when a metric's
// baseline is zero. With the default of 1 a local mean of 0 still scores 1.
func WithZeroBaselineOffset(offset float64) Option {
	return func(s *IndexScorer) {
		if offset >= 0 && !math.IsNaN(offset) {
			s.zeroOffset = offset
		}
	}
}

// Input is a window of metric rows plus the baseline average for each column.
type Input struct {
	Rows     [][]float64
	Baseline []float64
}

// Result carries the per-metric local means and the resulting index.
type Result struct {
	Means []float64
	Index []float64
}

// Scorer computes a workload index.
type Scorer interface {
	Score(ctx context.Context, in Input) (Result, error)
}

// IndexScorer implements Scorer with column means and baseline ratios.
type IndexScorer struct {
	zeroOffset float64
}

// NewIndexScorer returns a scorer with the given options applied.
func NewIndexScorer(opts ...Option) *IndexScorer {
	s := &IndexScorer{zeroOffset: defaultZeroBaselineOffset}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes the column means of in.Rows and compares them to in.Baseline.
func (s *IndexScorer) Score(ctx context.Context, in Input) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	means, err := Means(in.Rows)
	if err != nil {
		return Result{}, err
	}
	idx, err := s.index(means, in.Baseline)
	if err != nil {
		return Result{}, err
	}
	return Result{Means: means, Index: idx}, nil
}

// Means returns the column-wise mean of rows. Every row must have the same length.
func Means(rows [][]float64) ([]float64, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrNoData
	}
	dim := len(rows[0])
	sums := make([]float64, dim)
	for i, row := range rows {
		if len(row) != dim {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrDimensionMismatch, i, len(row), dim)
		}
		for j, v := range row {
			sums[j] += v
		}
	}
	n := float64(len(rows))
	for j := range sums {
		sums[j] /= n
	}
	return sums, nil
}

// Index compares local means with baseline means using the default offset.
func Index(local, baseline []float64) ([]float64, error) {
	return NewIndexScorer().index(local, baseline)
}

func (s *IndexScorer) index(local, baseline []float64) ([]float64, error) {
	if len(local) == 0 {
		return nil, ErrNoData
	}
	if len(local) != len(baseline) {
		return nil, fmt.Errorf("%w: %d local means, %d baseline means", ErrDimensionMismatch, len(local), len(baseline))
	}
	out := make([]float64, len(local))
	for i := range local {
		if baseline[i] == 0 {
			// no ratio to a zero baseline; report the distance from zero instead
			out[i] = s.zeroOffset + math.Abs(local[i])
			continue
		}
		out[i] = local[i] / baseline[i]
	}
	return out, nil
}

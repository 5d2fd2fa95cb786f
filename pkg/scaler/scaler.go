package scaler

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gorgonia.org/tensor"
)

var ErrInvalid = errors.New("invalid scaler")

// Scaler standardises each feature as (v - Mean) / Scale. Scale is the
// population standard deviation of the fitted rows, with constant features
// stored as 1.
type Scaler struct {
	Mean  []float64
	Scale []float64

	// ExcludePadding records whether zero padded timesteps were left out
	// of the fit.
	ExcludePadding bool
}

// Fit computes per column statistics over rows. Every row must have the
// same width.
func Fit(rows [][]float64) (*Scaler, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows to fit", ErrInvalid)
	}

	width := len(rows[0])
	if width == 0 {
		return nil, fmt.Errorf("%w: rows have no features", ErrInvalid)
	}

	s := &Scaler{
		Mean:  make([]float64, width),
		Scale: make([]float64, width),
	}

	column := make([]float64, len(rows))
	for f := range width {
		for i, row := range rows {
			if len(row) != width {
				return nil, fmt.Errorf("%w: row %d has %d features, expected %d", ErrInvalid, i, len(row), width)
			}
			column[i] = row[f]
		}
		mean, std := stat.PopMeanStdDev(column, nil)
		s.Mean[f] = mean
		s.Scale[f] = safeScale(std)
	}

	return s, nil
}

func safeScale(std float64) float64 {
	if std == 0 || math.IsNaN(std) || math.IsInf(std, 0) {
		return 1
	}
	return std
}

func (s *Scaler) Features() int {
	return len(s.Mean)
}

func (s *Scaler) Validate() error {
	if len(s.Mean) == 0 {
		return fmt.Errorf("%w: no features", ErrInvalid)
	}
	if len(s.Mean) != len(s.Scale) {
		return fmt.Errorf("%w: %d means but %d scales", ErrInvalid, len(s.Mean), len(s.Scale))
	}
	for i := range s.Mean {
		if math.IsNaN(s.Mean[i]) || math.IsInf(s.Mean[i], 0) {
			return fmt.Errorf("%w: mean[%d] is not finite", ErrInvalid, i)
		}
		if !(s.Scale[i] > 0) || math.IsInf(s.Scale[i], 0) {
			return fmt.Errorf("%w: scale[%d] = %v", ErrInvalid, i, s.Scale[i])
		}
	}
	return nil
}

// Transform scales a single feature vector, as an inference runtime would
// for one live frame.
func (s *Scaler) Transform(v []float64) ([]float64, error) {
	if len(v) != s.Features() {
		return nil, fmt.Errorf("%w: vector has %d features, expected %d", ErrInvalid, len(v), s.Features())
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = (x - s.Mean[i]) / s.Scale[i]
	}
	return out, nil
}

// TransformFlat scales a row major buffer of consecutive feature vectors
// in place.
func (s *Scaler) TransformFlat(data []float64) error {
	width := s.Features()
	if width == 0 || len(data)%width != 0 {
		return fmt.Errorf("%w: %d values are not a multiple of %d features", ErrInvalid, len(data), width)
	}
	for i := range data {
		f := i % width
		data[i] = (data[i] - s.Mean[f]) / s.Scale[f]
	}
	return nil
}

// TransformTensor returns a scaled copy of x. The last axis of x must be
// the feature axis; any leading shape is kept.
func (s *Scaler) TransformTensor(x *tensor.Dense) (*tensor.Dense, error) {
	shape := x.Shape()
	if x.Dims() == 0 || shape[len(shape)-1] != s.Features() {
		return nil, fmt.Errorf("%w: tensor shape %v does not end in %d features", ErrInvalid, shape, s.Features())
	}

	data, err := float64s(x)
	if err != nil {
		return nil, err
	}
	scaled := make([]float64, len(data))
	copy(scaled, data)
	if err := s.TransformFlat(scaled); err != nil {
		return nil, err
	}

	return tensor.New(tensor.WithShape(shape.Clone()...), tensor.WithBacking(scaled)), nil
}

func float64s(t *tensor.Dense) ([]float64, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil tensor", ErrInvalid)
	}
	data, ok := t.Data().([]float64)
	if !ok {
		return nil, fmt.Errorf("%w: tensor of %v is not float64", ErrInvalid, t.Dtype())
	}
	return data, nil
}

package dataset

import (
	"github.com/grexie/conductor/pkg/features"
	"gorgonia.org/tensor"
)

// Dataset holds index aligned samples: Samples[i] came from Files[i] and
// is labelled Labels[i]. Every sample has Timesteps rows of
// features.FeatureCount values, of which the first Lengths[i] are real
// frames and the rest are zero padding.
type Dataset struct {
	Samples   [][][]float64
	Labels    []int
	Lengths   []int
	Files     []string
	Timesteps int

	Summary Summary
}

func (d *Dataset) Len() int {
	return len(d.Samples)
}

// Rows pools every timestep of every sample into one row per timestep,
// optionally leaving out padding rows.
func (d *Dataset) Rows(excludePadding bool) [][]float64 {
	rows := make([][]float64, 0, d.Len()*d.Timesteps)
	for i, sample := range d.Samples {
		if excludePadding {
			rows = append(rows, sample[:d.Lengths[i]]...)
		} else {
			rows = append(rows, sample...)
		}
	}
	return rows
}

// Tensors returns X with shape (N, Timesteps, FeatureCount) and y with
// shape (N,).
func (d *Dataset) Tensors() (x *tensor.Dense, y *tensor.Dense) {
	x = tensor.New(
		tensor.WithShape(d.Len(), d.Timesteps, features.FeatureCount),
		tensor.WithBacking(flattenSamples(d.Samples, d.Timesteps, features.FeatureCount)))
	y = tensor.New(
		tensor.WithShape(d.Len()),
		tensor.WithBacking(flattenLabels(d.Labels)))
	return x, y
}

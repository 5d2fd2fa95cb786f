package dataset

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/grexie/conductor/pkg/features"
	"github.com/grexie/conductor/pkg/scaler"
	"gorgonia.org/tensor"
)

// File names written to the output directory.
const (
	DataFile       = "lstm_data.npy"
	LabelsFile     = "lstm_labels.npy"
	ScalerFile     = "lstm_scaler.npy"
	ScalerJSONFile = "scaler.json"
)

// Artifacts is a scaled dataset ready to hand to training, together with
// the scaler that produced it.
type Artifacts struct {
	X      *tensor.Dense
	Y      *tensor.Dense
	Scaler *scaler.Scaler
}

// Scale fits a scaler over the pooled timesteps of d and applies it to
// every sample.
func Scale(d *Dataset, excludePadding bool) (*Artifacts, error) {
	if d.Len() == 0 {
		return nil, ErrEmptyDataset
	}

	rows := d.Rows(excludePadding)
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no unpadded rows to fit", ErrEmptyDataset)
	}

	s, err := scaler.Fit(rows)
	if err != nil {
		return nil, err
	}
	s.ExcludePadding = excludePadding

	x, y := d.Tensors()
	scaled, err := s.TransformTensor(x)
	if err != nil {
		return nil, err
	}

	return &Artifacts{X: scaled, Y: y, Scaler: s}, nil
}

type Paths struct {
	Data       string
	Labels     string
	Scaler     string
	ScalerJSON string
}

func NewPaths(dir string) Paths {
	return Paths{
		Data:       filepath.Join(dir, DataFile),
		Labels:     filepath.Join(dir, LabelsFile),
		Scaler:     filepath.Join(dir, ScalerFile),
		ScalerJSON: filepath.Join(dir, ScalerJSONFile),
	}
}

func (a *Artifacts) Save(dir string) (Paths, error) {
	paths := NewPaths(dir)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return paths, err
	}
	if err := saveNpy(paths.Data, a.X); err != nil {
		return paths, err
	}
	if err := saveNpy(paths.Labels, a.Y); err != nil {
		return paths, err
	}
	if err := a.Scaler.SaveNpy(paths.Scaler); err != nil {
		return paths, err
	}
	if err := a.Scaler.SaveJSON(paths.ScalerJSON, features.Names()); err != nil {
		return paths, err
	}
	return paths, nil
}

// Load reads artifacts previously written by Save.
func Load(dir string) (*Artifacts, error) {
	paths := NewPaths(dir)

	x, err := loadNpy(paths.Data)
	if err != nil {
		return nil, err
	}
	y, err := loadNpy(paths.Labels)
	if err != nil {
		return nil, err
	}
	s, err := scaler.LoadNpy(paths.Scaler)
	if err != nil {
		return nil, err
	}
	doc, err := scaler.LoadJSON(paths.ScalerJSON, features.Names())
	if err != nil {
		return nil, err
	}
	if !slices.Equal(s.Mean, doc.Mean) || !slices.Equal(s.Scale, doc.Scale) {
		return nil, fmt.Errorf("%w: %s and %s disagree", scaler.ErrInvalid, ScalerFile, ScalerJSONFile)
	}
	s.ExcludePadding = doc.ExcludePadding

	if x.Dims() != 3 || y.Dims() != 1 || x.Shape()[0] != y.Shape()[0] {
		return nil, fmt.Errorf("mismatched dataset shapes %v and %v", x.Shape(), y.Shape())
	}
	if x.Shape()[2] != s.Features() {
		return nil, fmt.Errorf("dataset has %d features but scaler has %d", x.Shape()[2], s.Features())
	}
	return &Artifacts{X: x, Y: y, Scaler: s}, nil
}

func saveNpy(path string, t *tensor.Dense) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := t.WriteNpy(w); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func loadNpy(path string) (*tensor.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t := new(tensor.Dense)
	if err := t.ReadNpy(bufio.NewReader(f)); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return t, nil
}

package scaler

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gorgonia.org/tensor"
)

// DocumentVersion is bumped whenever the meaning of Document changes.
const DocumentVersion = 1

// Document is the portable form of a fitted Scaler, read by runtimes that
// cannot load NumPy arrays. Features names each position in Mean and Scale.
type Document struct {
	Version        int       `json:"version"`
	Features       []string  `json:"features"`
	Mean           []float64 `json:"mean"`
	Scale          []float64 `json:"scale"`
	ExcludePadding bool      `json:"exclude_padding"`
}

func (s *Scaler) Document(features []string) (Document, error) {
	if err := s.Validate(); err != nil {
		return Document{}, err
	}
	if len(features) != s.Features() {
		return Document{}, fmt.Errorf("%w: %d feature names for %d features", ErrInvalid, len(features), s.Features())
	}
	return Document{
		Version:        DocumentVersion,
		Features:       append([]string{}, features...),
		Mean:           append([]float64{}, s.Mean...),
		Scale:          append([]float64{}, s.Scale...),
		ExcludePadding: s.ExcludePadding,
	}, nil
}

func (d Document) Validate(features []string) error {
	if d.Version != DocumentVersion {
		return fmt.Errorf("%w: unsupported document version %d", ErrInvalid, d.Version)
	}
	if len(d.Features) != len(features) {
		return fmt.Errorf("%w: document has %d features, expected %d", ErrInvalid, len(d.Features), len(features))
	}
	for i, name := range features {
		if d.Features[i] != name {
			return fmt.Errorf("%w: feature %d is %q, expected %q", ErrInvalid, i, d.Features[i], name)
		}
	}
	s := Scaler{Mean: d.Mean, Scale: d.Scale}
	if err := s.Validate(); err != nil {
		return err
	}
	if len(d.Mean) != len(features) {
		return fmt.Errorf("%w: document has %d values, expected %d", ErrInvalid, len(d.Mean), len(features))
	}
	return nil
}

func (s *Scaler) WriteJSON(w io.Writer, features []string) error {
	doc, err := s.Document(features)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// ReadJSON loads a portable document and checks it against the expected
// feature order before use.
func ReadJSON(r io.Reader, features []string) (*Scaler, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := doc.Validate(features); err != nil {
		return nil, err
	}
	return &Scaler{
		Mean:           doc.Mean,
		Scale:          doc.Scale,
		ExcludePadding: doc.ExcludePadding,
	}, nil
}

// Tensor packs the parameters as a (2, features) array: row 0 holds the
// means and row 1 the scales.
func (s *Scaler) Tensor() *tensor.Dense {
	backing := make([]float64, 0, 2*s.Features())
	backing = append(backing, s.Mean...)
	backing = append(backing, s.Scale...)
	return tensor.New(tensor.WithShape(2, s.Features()), tensor.WithBacking(backing))
}

// WriteNpy writes the native NumPy form of the parameters. The native form
// holds mean and scale only; the padding policy lives in the JSON document.
func (s *Scaler) WriteNpy(w io.Writer) error {
	if err := s.Validate(); err != nil {
		return err
	}
	return s.Tensor().WriteNpy(w)
}

// ReadNpy reads the native form. ExcludePadding is always false on the
// result.
func ReadNpy(r io.Reader) (*Scaler, error) {
	t := new(tensor.Dense)
	if err := t.ReadNpy(r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	shape := t.Shape()
	if len(shape) != 2 || shape[0] != 2 {
		return nil, fmt.Errorf("%w: native scaler has shape %v, expected (2, n)", ErrInvalid, shape)
	}
	data, err := float64s(t)
	if err != nil {
		return nil, err
	}

	n := shape[1]
	s := &Scaler{
		Mean:  append([]float64{}, data[:n]...),
		Scale: append([]float64{}, data[n:2*n]...),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scaler) SaveJSON(path string, features []string) error {
	return writeFile(path, func(w io.Writer) error {
		return s.WriteJSON(w, features)
	})
}

func (s *Scaler) SaveNpy(path string) error {
	return writeFile(path, s.WriteNpy)
}

func LoadJSON(path string, features []string) (*Scaler, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadJSON(f, features)
}

func LoadNpy(path string) (*Scaler, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadNpy(f)
}

func writeFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

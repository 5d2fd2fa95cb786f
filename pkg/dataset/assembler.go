package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cyclopcam/logs"
	"github.com/grexie/conductor/pkg/cache"
	"github.com/grexie/conductor/pkg/config"
	"github.com/grexie/conductor/pkg/features"
	"github.com/grexie/conductor/pkg/label"
	"github.com/grexie/conductor/pkg/skeleton"
	"github.com/jedib0t/go-pretty/v6/progress"
	"golang.org/x/sync/errgroup"
)

var ErrEmptyDataset = errors.New("no usable samples")

// Assembler turns a directory of skeleton recordings into a Dataset.
// Progress and Cache are optional.
type Assembler struct {
	Log      logs.Log
	Progress progress.Writer
	Cache    *cache.Cache

	Extension    string
	LabelMarker  string
	MaxTimesteps int
	Workers      int
}

func NewAssembler(log logs.Log, params config.Params) *Assembler {
	return &Assembler{
		Log:          log,
		Extension:    params.Extension,
		LabelMarker:  params.LabelMarker,
		MaxTimesteps: params.MaxTimesteps,
		Workers:      params.Workers,
	}
}

// candidate is everything derived from one file. It is committed to the
// dataset whole or not at all.
type candidate struct {
	file    string
	outcome Outcome
	err     error
	sample  [][]float64
	length  int
	label   int
}

// Files lists the recordings directly inside dir, in lexical order.
func (a *Assembler) Files(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading skeleton directory: %w", err)
	}

	files := []string{}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), a.Extension) {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}

func (a *Assembler) Build(ctx context.Context, dir string) (*Dataset, error) {
	if a.MaxTimesteps < 1 {
		return nil, fmt.Errorf("invalid max timesteps %d", a.MaxTimesteps)
	}

	files, err := a.Files(dir)
	if err != nil {
		return nil, err
	}

	var tracker *progress.Tracker
	if a.Progress != nil {
		tracker = &progress.Tracker{
			Message: "Parsing skeletons",
			Total:   int64(len(files)),
			Units:   progress.UnitsDefault,
		}
		a.Progress.AppendTracker(tracker)
		tracker.Start()
	}

	candidates := make([]candidate, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, a.Workers))
	for i, name := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			a.Log.Infof("processing (%d/%d): %s", i+1, len(files), name)
			candidates[i] = a.prepare(filepath.Join(dir, name), name)
			if tracker != nil {
				tracker.Increment(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if tracker != nil {
			tracker.MarkAsErrored()
		}
		return nil, err
	}
	if tracker != nil {
		tracker.MarkAsDone()
	}

	ds := &Dataset{
		Timesteps: a.MaxTimesteps,
		Summary:   newSummary(len(files)),
	}
	for _, c := range candidates {
		ds.Summary.record(c.outcome, c.label)
		if c.outcome != OutcomeOK {
			a.Log.Warnf("skipping %s: %s: %v", c.file, c.outcome, c.err)
			continue
		}
		ds.Samples = append(ds.Samples, c.sample)
		ds.Labels = append(ds.Labels, c.label)
		ds.Lengths = append(ds.Lengths, c.length)
		ds.Files = append(ds.Files, c.file)
	}

	if ds.Len() == 0 {
		return nil, fmt.Errorf("%w in %s: %d files considered", ErrEmptyDataset, dir, len(files))
	}
	return ds, nil
}

func (a *Assembler) prepare(path string, name string) candidate {
	c := candidate{file: name}

	id, labelErr := label.FromFilename(name, a.LabelMarker)

	vectors, err := a.load(path)
	switch {
	case err != nil:
		c.outcome, c.err = OutcomeParseFailed, err
	case len(vectors) == 0:
		c.outcome, c.err = OutcomeEmpty, errors.New("no frames")
	case labelErr != nil:
		c.outcome, c.err = OutcomeNoLabel, labelErr
	default:
		c.outcome = OutcomeOK
		c.sample = features.Normalize(vectors, a.MaxTimesteps)
		c.length = min(len(vectors), a.MaxTimesteps)
		c.label = id
	}
	return c
}

func (a *Assembler) load(path string) ([]features.Vector, error) {
	if a.Cache != nil {
		if vectors, ok, err := a.Cache.Get(path); err != nil {
			a.Log.Warnf("feature cache lookup for %s failed: %v", path, err)
		} else if ok {
			return vectors, nil
		}
	}

	seq, err := skeleton.ParseFile(path)
	if err != nil {
		return nil, err
	}
	vectors := features.ExtractSequence(seq)

	if a.Cache != nil && len(vectors) > 0 {
		if err := a.Cache.Put(path, vectors); err != nil {
			a.Log.Warnf("failed to cache features for %s: %v", path, err)
		}
	}
	return vectors, nil
}

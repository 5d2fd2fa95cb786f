package config

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
)

type Params struct {
	SkeletonDir string
	OutputDir   string
	Extension   string
	LabelMarker string
	CacheDir    string

	MaxTimesteps   int
	Workers        int
	ExcludePadding bool
}

func (p *Params) Write(w io.Writer, title string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.AppendRows([]table.Row{
		{"CONDUCTOR_SKELETON_DIR", p.SkeletonDir},
		{"CONDUCTOR_OUTPUT_DIR", p.OutputDir},
		{"CONDUCTOR_EXTENSION", p.Extension},
		{"CONDUCTOR_LABEL_MARKER", p.LabelMarker},
		{"CONDUCTOR_CACHE_DIR", p.CacheDir},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"CONDUCTOR_MAX_TIMESTEPS", fmt.Sprintf("%d", p.MaxTimesteps)},
		{"CONDUCTOR_WORKERS", fmt.Sprintf("%d", p.Workers)},
		{"CONDUCTOR_EXCLUDE_PADDING", fmt.Sprintf("%t", p.ExcludePadding)},
	})
	t.Render()
}

// NewParamsFromEnv reads every setting from the environment, falling back
// to defaults for unset variables.
func NewParamsFromEnv() (Params, error) {
	p := Params{
		SkeletonDir: SkeletonDir(),
		OutputDir:   OutputDir(),
		Extension:   Extension(),
		LabelMarker: LabelMarker(),
		CacheDir:    CacheDir(),
	}

	var err error
	if p.MaxTimesteps, err = MaxTimesteps(); err != nil {
		return p, err
	}
	if p.Workers, err = Workers(); err != nil {
		return p, err
	}
	if p.ExcludePadding, err = ExcludePadding(); err != nil {
		return p, err
	}
	return p, nil
}

func envInt(name string, def func() int, dec func(v int) int) func() (int, error) {
	return func() (int, error) {
		value := def()
		if v, ok := os.LookupEnv(name); ok {
			if v, err := strconv.ParseInt(v, 10, 32); err != nil {
				return 0, fmt.Errorf("failed to parse env.%s: %w", name, err)
			} else {
				value = int(v)
			}
		}
		return dec(value), nil
	}
}

func envBool(name string, def func() bool) func() (bool, error) {
	return func() (bool, error) {
		value := def()
		if v, ok := os.LookupEnv(name); ok {
			if v, err := strconv.ParseBool(v); err != nil {
				return false, fmt.Errorf("failed to parse env.%s: %w", name, err)
			} else {
				value = v
			}
		}
		return value, nil
	}
}

func envString(name string, def func() string) func() string {
	return func() string {
		value := def()
		if v, ok := os.LookupEnv(name); ok {
			value = v
		}
		return value
	}
}

var (
	SkeletonDir = envString("CONDUCTOR_SKELETON_DIR", func() string { return "data/skeletons" })
	OutputDir   = envString("CONDUCTOR_OUTPUT_DIR", func() string { return "data" })
	Extension   = envString("CONDUCTOR_EXTENSION", func() string { return ".skeleton" })
	LabelMarker = envString("CONDUCTOR_LABEL_MARKER", func() string { return "A" })
	CacheDir    = envString("CONDUCTOR_CACHE_DIR", func() string { return "" })
)

var (
	MaxTimesteps   = envInt("CONDUCTOR_MAX_TIMESTEPS", func() int { return 150 }, BoundMaxTimesteps)
	Workers        = envInt("CONDUCTOR_WORKERS", func() int { return 1 }, BoundWorkers)
	ExcludePadding = envBool("CONDUCTOR_EXCLUDE_PADDING", func() bool { return false })
)

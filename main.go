package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/akamensky/argparse"
	"github.com/cyclopcam/logs"
	"github.com/grexie/conductor/pkg/cache"
	"github.com/grexie/conductor/pkg/config"
	"github.com/grexie/conductor/pkg/dataset"
	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
)

func loadEnv(filenames ...string) {
	for _, filename := range filenames {
		if s, err := os.Stat(filename); err == nil && !s.IsDir() {
			godotenv.Load(filename)
		}
	}
}

func fatalf(log logs.Log, format string, a ...any) {
	log.Errorf(format, a...)
	log.Close()
	os.Exit(1)
}

func main() {
	if _, ok := os.LookupEnv("ENV"); !ok {
		env := "development"
		os.Setenv("ENV", env)
	}
	loadEnv(".env."+os.Getenv("ENV")+".local", ".env."+os.Getenv("ENV"), ".env.local", ".env")

	log, err := logs.NewLog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log: %v\n", err)
		os.Exit(1)
	}

	params, err := config.NewParamsFromEnv()
	if err != nil {
		fatalf(log, "%v", err)
	}

	if params, err = parseArgs(os.Args, params); err != nil {
		fatalf(log, "%v", err)
	}

	if err := run(context.Background(), log, params, os.Stdout); err != nil {
		fatalf(log, "%v", err)
	}

	log.Close()
}

// parseArgs overrides params with command line options. Every option
// defaults to its environment value.
func parseArgs(args []string, params config.Params) (config.Params, error) {
	parser := argparse.NewParser("conductor", "Build an LSTM dataset and feature scaler from NTU RGB+D skeleton recordings")
	skeletonDir := parser.String("i", "input", &argparse.Options{Help: "Directory of skeleton recordings", Default: params.SkeletonDir})
	outputDir := parser.String("o", "output", &argparse.Options{Help: "Directory to write the dataset, labels and scaler to", Default: params.OutputDir})
	maxTimesteps := parser.Int("t", "timesteps", &argparse.Options{Help: "Timesteps per sample; longer recordings are truncated, shorter ones zero padded", Default: params.MaxTimesteps})
	workers := parser.Int("w", "workers", &argparse.Options{Help: "Files parsed in parallel", Default: params.Workers})
	cacheDir := parser.String("c", "cache", &argparse.Options{Help: "LevelDB directory for cached features (disabled if empty)", Default: params.CacheDir})
	excludePadding := parser.Selector("", "exclude-padding", []string{"true", "false"}, &argparse.Options{Help: "Fit the scaler on recorded frames only, not on zero padding", Default: strconv.FormatBool(params.ExcludePadding)})
	if err := parser.Parse(args); err != nil {
		return params, errors.New(parser.Usage(err))
	}

	params.SkeletonDir = *skeletonDir
	params.OutputDir = *outputDir
	params.MaxTimesteps = config.BoundMaxTimesteps(*maxTimesteps)
	params.Workers = config.BoundWorkers(*workers)
	params.CacheDir = *cacheDir
	params.ExcludePadding = *excludePadding == "true"
	return params, nil
}

func run(ctx context.Context, log logs.Log, params config.Params, out io.Writer) error {
	params.Write(out, "Dataset Config")

	assembler := dataset.NewAssembler(log, params)

	if params.CacheDir != "" {
		c, err := cache.Open(params.CacheDir)
		if err != nil {
			return err
		}
		defer c.Close()
		assembler.Cache = c
	}

	pw := progress.NewWriter()
	pw.SetOutputWriter(out)
	pw.SetMessageLength(40)
	pw.SetNumTrackersExpected(1)
	pw.SetStyle(progress.StyleDefault)
	pw.SetTrackerLength(15)
	pw.SetTrackerPosition(progress.PositionRight)
	pw.SetUpdateFrequency(time.Millisecond * 100)
	pw.Style().Colors = progress.StyleColorsExample
	pw.Style().Options.PercentFormat = "%2.0f%%"
	go pw.Render()
	assembler.Progress = pw

	ds, err := assembler.Build(ctx, params.SkeletonDir)

	pw.Stop()
	for pw.IsRenderInProgress() {
		time.Sleep(100 * time.Millisecond)
	}

	if err != nil {
		return fmt.Errorf("failed to build dataset: %w", err)
	}
	ds.Summary.Write(out)

	artifacts, err := dataset.Scale(ds, params.ExcludePadding)
	if err != nil {
		return fmt.Errorf("failed to scale dataset: %w", err)
	}

	paths, err := artifacts.Save(params.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle("Dataset Written")
	t.AppendRows([]table.Row{
		{"Samples", fmt.Sprintf("%d", ds.Len())},
		{"Shape", fmt.Sprintf("%v", artifacts.X.Shape())},
		{"Data", paths.Data},
		{"Labels", paths.Labels},
		{"Scaler", paths.Scaler},
		{"Scaler (JSON)", paths.ScalerJSON},
	})
	t.Render()
	return nil
}

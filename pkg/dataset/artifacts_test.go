package dataset_test

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/grexie/conductor/pkg/dataset"
	"github.com/grexie/conductor/pkg/features"
	"github.com/grexie/conductor/pkg/scaler"
	"github.com/stretchr/testify/require"
)

func buildSmall(t *testing.T) *dataset.Dataset {
	dir := writeFiles(t, map[string]string{
		"S001C001P001R001A001.skeleton": recording(3, 1),
		"S001C001P001R001A002.skeleton": recording(5, 2),
	})
	a := newAssembler(t)
	a.MaxTimesteps = 8
	ds, err := a.Build(context.Background(), dir)
	require.NoError(t, err)
	return ds
}

func TestRows(t *testing.T) {
	ds := buildSmall(t)
	require.Len(t, ds.Rows(false), 16)
	require.Len(t, ds.Rows(true), 8)
}

func TestScaleIncludesPadding(t *testing.T) {
	ds := buildSmall(t)

	artifacts, err := dataset.Scale(ds, false)
	require.NoError(t, err)
	require.Equal(t, []int{2, 8, features.FeatureCount}, []int(artifacts.X.Shape()))
	require.Equal(t, []int{2}, []int(artifacts.Y.Shape()))
	require.Equal(t, []int64{0, 1}, artifacts.Y.Data().([]int64))

	// right_hand.x over 16 rows: 1, 2, 3 then 2, 4, 6, 8, 10, rest zero
	require.InDelta(t, 36.0/16, artifacts.Scaler.Mean[0], 1e-12)

	for _, v := range artifacts.X.Data().([]float64) {
		require.False(t, math.IsNaN(v) || math.IsInf(v, 0))
	}
}

func TestScaleExcludesPadding(t *testing.T) {
	ds := buildSmall(t)

	artifacts, err := dataset.Scale(ds, true)
	require.NoError(t, err)
	require.True(t, artifacts.Scaler.ExcludePadding)
	require.InDelta(t, 36.0/8, artifacts.Scaler.Mean[0], 1e-12)
}

func TestScaleConstantFeature(t *testing.T) {
	content := "2\n1\nheader\n25\n" + repeatLine("1 1 1", 25) + "1\nheader\n25\n" + repeatLine("1 1 1", 25)
	dir := writeFiles(t, map[string]string{"S001C001P001R001A005.skeleton": content})
	a := newAssembler(t)
	a.MaxTimesteps = 2
	ds, err := a.Build(context.Background(), dir)
	require.NoError(t, err)

	artifacts, err := dataset.Scale(ds, false)
	require.NoError(t, err)
	for _, scale := range artifacts.Scaler.Scale {
		require.Equal(t, 1.0, scale)
	}
	for _, v := range artifacts.X.Data().([]float64) {
		require.Equal(t, 0.0, v)
	}
}

func repeatLine(line string, n int) string {
	out := ""
	for range n {
		out += line + "\n"
	}
	return out
}

func TestSaveAndLoad(t *testing.T) {
	ds := buildSmall(t)
	artifacts, err := dataset.Scale(ds, false)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "out")
	paths, err := artifacts.Save(out)
	require.NoError(t, err)
	for _, path := range []string{paths.Data, paths.Labels, paths.Scaler, paths.ScalerJSON} {
		_, err := os.Stat(path)
		require.NoError(t, err, path)
	}

	loaded, err := dataset.Load(out)
	require.NoError(t, err)
	require.Equal(t, artifacts.X.Shape(), loaded.X.Shape())
	require.Equal(t, artifacts.X.Data(), loaded.X.Data())
	require.Equal(t, artifacts.Y.Data(), loaded.Y.Data())
	require.Equal(t, artifacts.Scaler.Mean, loaded.Scaler.Mean)

	raw, err := os.ReadFile(paths.ScalerJSON)
	require.NoError(t, err)
	var doc scaler.Document
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Equal(t, scaler.DocumentVersion, doc.Version)
	require.Equal(t, features.Names(), doc.Features)
	require.Len(t, doc.Mean, features.FeatureCount)
	require.Len(t, doc.Scale, features.FeatureCount)

	// a consumer in another runtime only has the JSON document
	portable, err := scaler.LoadJSON(paths.ScalerJSON, features.Names())
	require.NoError(t, err)
	raw12 := ds.Samples[1][0]
	a, err := portable.Transform(raw12)
	require.NoError(t, err)
	x := loaded.X.Data().([]float64)
	row := x[(1*8+0)*features.FeatureCount : (1*8+1)*features.FeatureCount]
	require.InDeltaSlice(t, row, a, 1e-9)
}

func TestLoadKeepsPaddingPolicy(t *testing.T) {
	artifacts, err := dataset.Scale(buildSmall(t), true)
	require.NoError(t, err)

	out := t.TempDir()
	_, err = artifacts.Save(out)
	require.NoError(t, err)

	loaded, err := dataset.Load(out)
	require.NoError(t, err)
	require.True(t, loaded.Scaler.ExcludePadding)
}

func TestLoadMismatchedScaler(t *testing.T) {
	artifacts, err := dataset.Scale(buildSmall(t), false)
	require.NoError(t, err)

	out := t.TempDir()
	paths, err := artifacts.Save(out)
	require.NoError(t, err)

	other := *artifacts.Scaler
	other.Mean = append([]float64{}, other.Mean...)
	other.Mean[0] += 1
	require.NoError(t, other.SaveNpy(paths.Scaler))

	_, err = dataset.Load(out)
	require.ErrorIs(t, err, scaler.ErrInvalid)
}

func TestLoadMissing(t *testing.T) {
	_, err := dataset.Load(t.TempDir())
	require.ErrorIs(t, err, os.ErrNotExist)
}

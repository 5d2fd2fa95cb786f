package features_test

import (
	"testing"

	"github.com/grexie/conductor/pkg/features"
	"github.com/grexie/conductor/pkg/skeleton"
	"github.com/stretchr/testify/require"
)

func numberedFrame() skeleton.Frame {
	var f skeleton.Frame
	for j := range skeleton.JointCount {
		f[j] = [3]float64{float64(j), float64(j) + 0.5, float64(j) + 0.25}
	}
	return f
}

func TestExtractOrder(t *testing.T) {
	v := features.Extract(numberedFrame())
	require.Equal(t, features.Vector{
		11, 11.5, 11.25,
		7, 7.5, 7.25,
		10, 10.5, 10.25,
		6, 6.5, 6.25,
	}, v)
}

func TestExtractZeroFrame(t *testing.T) {
	require.Equal(t, features.Vector{}, features.Extract(skeleton.Frame{}))
}

func TestNames(t *testing.T) {
	names := features.Names()
	require.Len(t, names, features.FeatureCount)
	require.Equal(t, "right_hand.x", names[0])
	require.Equal(t, "left_hand.y", names[4])
	require.Equal(t, "left_elbow.z", names[11])
}

func TestNormalizePads(t *testing.T) {
	seq := features.ExtractSequence(skeleton.Sequence{numberedFrame(), numberedFrame(), numberedFrame()})
	out := features.Normalize(seq, 150)

	require.Len(t, out, 150)
	for i, row := range out {
		require.Len(t, row, features.FeatureCount)
		if i < 3 {
			require.Equal(t, seq[i][:], row)
		} else {
			require.Equal(t, make([]float64, features.FeatureCount), row)
		}
	}
}

func TestNormalizeTruncates(t *testing.T) {
	seq := make([]features.Vector, 200)
	for i := range seq {
		seq[i][0] = float64(i)
	}
	out := features.Normalize(seq, 150)

	require.Len(t, out, 150)
	require.Equal(t, 0.0, out[0][0])
	require.Equal(t, 149.0, out[149][0])
}

func TestNormalizeEmpty(t *testing.T) {
	out := features.Normalize(nil, 150)
	require.Len(t, out, 150)
	for _, row := range out {
		require.Equal(t, make([]float64, features.FeatureCount), row)
	}
}

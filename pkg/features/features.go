package features

import (
	"fmt"

	"github.com/grexie/conductor/pkg/skeleton"
)

// NTU RGB+D joint indices used for conducting gestures.
const (
	RightHand  = 11
	LeftHand   = 7
	RightElbow = 10
	LeftElbow  = 6
)

// KeyJoints is the order in which joints appear in a feature vector. The
// live inference side must emit features in the same order.
var KeyJoints = [...]int{RightHand, LeftHand, RightElbow, LeftElbow}

var keyJointNames = [...]string{"right_hand", "left_hand", "right_elbow", "left_elbow"}

const FeatureCount = len(KeyJoints) * 3

type Vector [FeatureCount]float64

// Names returns one name per feature, e.g. "right_hand.x".
func Names() []string {
	names := make([]string, 0, FeatureCount)
	for _, joint := range keyJointNames {
		for _, axis := range []string{"x", "y", "z"} {
			names = append(names, fmt.Sprintf("%s.%s", joint, axis))
		}
	}
	return names
}

func Extract(frame skeleton.Frame) Vector {
	var v Vector
	for i, joint := range KeyJoints {
		copy(v[i*3:i*3+3], frame[joint][:])
	}
	return v
}

func ExtractSequence(seq skeleton.Sequence) []Vector {
	out := make([]Vector, len(seq))
	for i, frame := range seq {
		out[i] = Extract(frame)
	}
	return out
}

// Normalize truncates or zero pads vectors to exactly timesteps rows.
func Normalize(vectors []Vector, timesteps int) [][]float64 {
	out := make([][]float64, timesteps)
	for i := range out {
		out[i] = make([]float64, FeatureCount)
		if i < len(vectors) {
			copy(out[i], vectors[i][:])
		}
	}
	return out
}

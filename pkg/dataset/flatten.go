package dataset

func flattenSamples(samples [][][]float64, timesteps int, featureSize int) []float64 {
	flattened := make([]float64, len(samples)*timesteps*featureSize)
	for i, sample := range samples {
		for t, row := range sample {
			copy(flattened[(i*timesteps+t)*featureSize:], row)
		}
	}
	return flattened
}

// labels are stored as int64 so they serialise as NumPy '<i8'
func flattenLabels(labels []int) []int64 {
	flattened := make([]int64, len(labels))
	for i, label := range labels {
		flattened[i] = int64(label)
	}
	return flattened
}

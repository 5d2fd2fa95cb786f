package config

import "math"

func BoundMaxTimesteps(v int) int {
	return int(math.Max(1, math.Min(10000, float64(v)))) // Default: 150
}

func BoundWorkers(v int) int {
	return int(math.Max(1, math.Min(64, float64(v)))) // Default: 1
}

// Package floatutils provides utilities for working with floats
package floatutils

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r1"
)

// Clip clips a floating point to within a minimum and maximum value.
// If the floating point exceeds max, then the function returns the max
// If min exceeds the floating point, then the function returns the min
func Clip(value, min, max float64) float64 {
	clipped := math.Min(value, max)
	return math.Max(clipped, min)
}

// ClipInterval is a wrapper to use Clip with an r1.Interval instead of
// a separate max and min value
func ClipInterval(value float64, interval r1.Interval) float64 {
	return Clip(value, interval.Min, interval.Max)
}

// Argmax returns the maximum value in values and the index at which it
// occurs. If multiple equal max values exist, the first one is
// returned. Argmax panics if values is empty.
func Argmax(values []float64) (max float64, index int) {
	index = floats.MaxIdx(values)
	return values[index], index
}

// MaxSlice gets the maximum value and indices of the maximum values in
// a slice of float64.
func MaxSlice(values []float64) (max float64, indices []int) {
	max, indices = values[0], []int{0}

	for i, value := range values[1:] {
		if value > max {
			max = value
			indices = []int{i + 1}
		} else if value == max {
			indices = append(indices, i+1)
		}
	}
	return
}

// WeightedSum returns Σ weights[i] * values[i]
func WeightedSum(weights, values []float64) float64 {
	return floats.Dot(weights, values)
}

// MaxAbsDiff returns the largest absolute element-wise difference
// between a and b, or 0 if both are empty.
func MaxAbsDiff(a, b []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	return floats.Distance(a, b, math.Inf(1))
}

// Min calculates and returns the minimum float64 in a list
func Min(values ...float64) float64 {
	return floats.Min(values)
}

// Max calculates and returns the maximum float64 in a list
func Max(values ...float64) float64 {
	return floats.Max(values)
}

// Package sliceutils provides utilities for working with slices
package sliceutils

// RemoveRepeats returns the elements of values with every repeat
// removed, keeping the order of first occurrence.
func RemoveRepeats[T comparable](values []T) []T {
	seen := make(map[T]struct{}, len(values))
	result := make([]T, 0, len(values))

	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}

// Index returns a map from each element of values to its position.
// values must not contain repeats.
func Index[T comparable](values []T) map[T]int {
	index := make(map[T]int, len(values))
	for i, v := range values {
		index[v] = i
	}
	return index
}

// Package intutils provides utilities for working with ints
package intutils

// Min calculates and returns the minimum integer in a list
func Min(ints ...int) int {
	min := ints[0]
	for _, val := range ints {
		if val < min {
			min = val
		}
	}
	return min
}

// Mod returns x modulo m in [0, m) for positive m
func Mod(x, m int) int {
	return ((x % m) + m) % m
}

// Pow returns base^exp for non-negative exp
func Pow(base, exp int) int {
	result := 1
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}

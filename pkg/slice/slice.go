// Copyright (c) 2026 GalleManga. All rights reserved.

// Package slice holds generic helpers the standard [slices] package lacks.
package slice

// Filter returns the elements for which predicate is true, in order.
// A nil input yields nil.
func Filter[T any](input []T, predicate func(T) bool) []T {
	if input == nil {
		return nil
	}

	var result []T
	for _, v := range input {
		if predicate(v) {
			result = append(result, v)
		}
	}

	return result
}

// Copyright (c) 2026 GalleManga. All rights reserved.

/*
Package pointer builds and reads the optional fields of partial-update inputs.

  - To: Creates a pointer from a value literal.
  - Val: Dereferences a pointer, returning the zero value if nil.
*/
package pointer

// To returns a pointer to the provided value.
// It is useful when you need to pass a primitive value to a function or struct field
// that expects a pointer (e.g. ptr.To("something")).
func To[T any](v T) *T {
	return &v
}

// Val safely dereferences a pointer.
// If the pointer is nil, it returns the zero value of the underlying type.
func Val[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

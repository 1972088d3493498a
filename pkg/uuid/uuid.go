// Copyright (c) 2026 GalleManga. All rights reserved.

/*
Package uuid provides time-ordered unique identifiers for the platform.

It wraps the google/uuid library to generate Version 7 values, used for every
primary key, request ID and uploaded file name in GalleManga.
*/
package uuid

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
//
// It panics only if the OS random source is unavailable.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}
	return id.String()
}

// Valid reports whether s parses as a UUID of any version.
func Valid(s string) bool {
	return uuid.Validate(s) == nil
}

// Copyright (c) 2026 GalleManga. All rights reserved.

package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

/*
TestConvertToPgx5DSN verifies scheme rewriting for golang-migrate.
*/
func TestConvertToPgx5DSN(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@db:5432/galle":   "pgx5://u:p@db:5432/galle",
		"postgresql://u:p@db:5432/galle": "pgx5://u:p@db:5432/galle",
		"pgx5://u:p@db:5432/galle":       "pgx5://u:p@db:5432/galle",
		"host=db dbname=galle":           "host=db dbname=galle",
	}

	for input, want := range tests {
		assert.Equal(t, want, convertToPgx5DSN(input), input)
	}
}

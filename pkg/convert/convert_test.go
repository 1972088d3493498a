// Copyright (c) 2026 GalleManga. All rights reserved.

package convert_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gallemanga/gallemanga/pkg/convert"
)

/*
TestToInt64 verifies strict integer parsing of form values.
*/
func TestToInt64(t *testing.T) {
	tests := []struct {
		input  string
		want   int64
		wantOK bool
	}{
		{"12", 12, true},
		{" 7 ", 7, true},
		{"-3", -3, true},
		{"", 0, false},
		{"1.5", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := convert.ToInt64(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

/*
TestToBool verifies checkbox and literal boolean parsing.
*/
func TestToBool(t *testing.T) {
	assert.True(t, convert.ToBool("true"))
	assert.True(t, convert.ToBool("on"))
	assert.True(t, convert.ToBool("1"))
	assert.False(t, convert.ToBool(""))
	assert.False(t, convert.ToBool("nope"))
	assert.Equal(t, 5, convert.ToIntD("x", 5))
}

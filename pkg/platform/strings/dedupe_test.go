package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, nil},
		{"empty", []string{}, []string{}},
		{"trims and drops blanks", []string{"  foo ", "", "  "}, []string{"foo"}},
		{"dedupes preserving order", []string{"b", "a", "b"}, []string{"b", "a"}},
		{"case sensitive", []string{"Foo", "foo"}, []string{"Foo", "foo"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeAndTrim(tt.in))
		})
	}
}

func TestDedupeAndTrimLower(t *testing.T) {
	assert.Equal(t, []string{"mwh", "gj"}, DedupeAndTrimLower([]string{" MWh", "mwh", "GJ"}))
	assert.Nil(t, DedupeAndTrimLower(nil))
}

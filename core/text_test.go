package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormID(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{name: "plain digits", in: "0101", want: "0101"},
		{name: "formatted cedula", in: " 180.455.667-7 ", want: "1804556677"},
		{name: "numeric cell", in: float64(1804556677), want: "1804556677"},
		{name: "no digits", in: "N/A", want: ""},
		{name: "nil", in: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormID(tt.in))
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want *float64
	}{
		{name: "dot decimal", in: "6.5", want: ptr(6.5)},
		{name: "comma decimal", in: "6,5", want: ptr(6.5)},
		{name: "integer string", in: "7", want: ptr(7.0)},
		{name: "zero is kept", in: "0", want: ptr(0.0)},
		{name: "float cell", in: 8.25, want: ptr(8.25)},
		{name: "empty is absent", in: "", want: nil},
		{name: "garbage is absent", in: "S/N", want: nil},
		{name: "nil is absent", in: nil, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseNumber(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			if assert.NotNil(t, got) {
				assert.Equal(t, *tt.want, *got)
			}
		})
	}
}

func TestCanonicalFold(t *testing.T) {
	assert.Equal(t, "maria ortega", CanonicalFold("  MARÍA   Ortega "))
	assert.Equal(t, CanonicalFold("María Ortega"), CanonicalFold("MARIA ORTEGA"))
	assert.Equal(t, "nunez penaherrera", CanonicalFold("NÚÑEZ PEÑAHERRERA"))
	assert.Equal(t, "", CanonicalFold("   "))
}

func TestSortNames(t *testing.T) {
	names := []string{"Zambrano", "álvarez", "Ortega", "Álvarez"}
	SortNames(names)
	// accent-insensitive: both Álvarez spellings lead, byte-order tiebreak
	assert.Equal(t, []string{"Álvarez", "álvarez", "Ortega", "Zambrano"}, names)
}

func ptr(f float64) *float64 { return &f }

package rut

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"12.345.678-5", "12345678-5", true},
		{"123456785", "12345678-5", true},
		{" 10.000.013-k ", "10000013-K", true},
		{"14-0", "14-0", true},
		{"12.345.678-4", "", false},
		{"abc", "", false},
		{"-", "", false},
		{"0-0", "", false},
		{"1234567890-1", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Normalize(tt.in)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrInvalid)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckDigit(t *testing.T) {
	assert.Equal(t, "5", CheckDigit(12345678))
	assert.Equal(t, "K", CheckDigit(10000013))
	assert.Equal(t, "0", CheckDigit(14))
	assert.True(t, Valid("11.111.111-1"))
}

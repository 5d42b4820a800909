package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSingleInputSource(t *testing.T) {
	tests := []struct {
		name    string
		sources []bool
		wantErr string
	}{
		{"none", []bool{false, false}, "no model"},
		{"one", []bool{false, true}, ""},
		{"two", []bool{true, true}, "too many models"},
		{"empty", nil, "no model"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSingleInputSource("no model", "too many models", tt.sources...)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestValidateAtMostOneSource(t *testing.T) {
	assert.NoError(t, ValidateAtMostOneSource("both", false, false))
	assert.NoError(t, ValidateAtMostOneSource("both", true, false))
	assert.EqualError(t, ValidateAtMostOneSource("both", true, true), "both")
}

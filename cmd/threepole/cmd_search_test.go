package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBungieName(t *testing.T) {
	tests := []struct {
		input   string
		name    string
		code    int
		wantErr bool
	}{
		{input: "Guardian#0042", name: "Guardian", code: 42},
		{input: "Two Words#1234", name: "Two Words", code: 1234},
		{input: "We#ird#7", name: "We#ird", code: 7},
		{input: "Guardian", wantErr: true},
		{input: "#1234", wantErr: true},
		{input: "Guardian#", wantErr: true},
		{input: "Guardian#abc", wantErr: true},
		{input: "Guardian#12345", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			name, code, err := parseBungieName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.code, code)
		})
	}
}

package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "node-1", false},
		{"valid with colon", "a:out", false},
		{"valid unicode", "knoten-ä", false},

		{"empty", "", true},
		{"too long", strings.Repeat("x", 300), true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID("node", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateZoomRange(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
		wantErr  bool
	}{
		{"default range", 0.5, 2, false},
		{"equal bounds", 1, 1, false},
		{"zero min", 0, 2, true},
		{"negative min", -1, 2, true},
		{"inverted", 3, 2, true},
		{"nan", math.NaN(), 2, true},
		{"inf", 0.5, math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateZoomRange(tt.min, tt.max)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateZoomRange(%v, %v) error = %v, wantErr %v", tt.min, tt.max, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidViewport) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidViewport)
			}
		})
	}
}

func TestValidateViewport(t *testing.T) {
	if err := ValidateViewport(10, -20, 1, 0.5, 2); err != nil {
		t.Errorf("ValidateViewport() unexpected error: %v", err)
	}
	if err := ValidateViewport(0, 0, 4, 0.5, 2); err == nil {
		t.Error("ValidateViewport() accepted zoom outside range")
	}
	if err := ValidateViewport(math.NaN(), 0, 1, 0.5, 2); err == nil {
		t.Error("ValidateViewport() accepted NaN pan")
	}
}

func TestValidateGrid(t *testing.T) {
	if err := ValidateGrid(15, 15); err != nil {
		t.Errorf("ValidateGrid(15, 15) error = %v", err)
	}
	for _, g := range [][2]float64{{0, 15}, {15, -1}, {math.Inf(1), 1}} {
		if err := ValidateGrid(g[0], g[1]); !Is(err, ErrCodeInvalidConfig) {
			t.Errorf("ValidateGrid(%v) error = %v, want %v", g, err, ErrCodeInvalidConfig)
		}
	}
}

package mathutil

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Round up at midpoint", 1.235, 1.24},
		{"Round down below midpoint", 1.234, 1.23},
		{"No rounding needed", 1.23, 1.23},
		{"Large number", 23258.0469, 23258.05},
		{"Negative number round up", -1.235, -1.24},
		{"Zero", 0.0, 0.0},
		{"Very small positive", 0.001, 0.00},
		{"Very small negative", -0.001, 0.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Round(tt.input)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("Round(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestWithinTolerance(t *testing.T) {
	tests := []struct {
		name      string
		a, b, tol float64
		expected  bool
	}{
		{"Equal", 1, 1, 0, true},
		{"Inside", 1.004, 1.0, 0.01, true},
		{"Boundary", 1.5, 1.0, 0.5, true},
		{"Outside", 1.02, 1.0, 0.01, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithinTolerance(tt.a, tt.b, tt.tol); got != tt.expected {
				t.Errorf("WithinTolerance(%v, %v, %v) = %v, expected %v", tt.a, tt.b, tt.tol, got, tt.expected)
			}
		})
	}
}

func TestIsWhole(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected bool
	}{
		{"Integer", 240, true},
		{"Float noise above", 10.000000000000002, true},
		{"Float noise below", 9.999999999999998, true},
		{"Thirds", 20.0 / 3.0, false},
		{"Half", 2.5, false},
		{"Zero", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsWhole(tt.input, 1e-9); got != tt.expected {
				t.Errorf("IsWhole(%v) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsFinite(t *testing.T) {
	if !IsFinite(1, 2, 0, -3.5) {
		t.Errorf("expected finite values to be finite")
	}
	if IsFinite(1, math.NaN()) {
		t.Errorf("expected NaN to be rejected")
	}
	if IsFinite(math.Inf(1)) || IsFinite(math.Inf(-1)) {
		t.Errorf("expected infinities to be rejected")
	}
	if !IsFinite() {
		t.Errorf("expected no values to be finite")
	}
}

func TestRelativeDifference(t *testing.T) {
	if got := RelativeDifference(0, 0); got != 0 {
		t.Errorf("RelativeDifference(0, 0) = %v, expected 0", got)
	}
	if got := RelativeDifference(100, 99); math.Abs(got-0.01) > 1e-12 {
		t.Errorf("RelativeDifference(100, 99) = %v, expected 0.01", got)
	}
	if got := RelativeDifference(-50, 50); math.Abs(got-2) > 1e-12 {
		t.Errorf("RelativeDifference(-50, 50) = %v, expected 2", got)
	}
}

package econet

import "testing"

func ptr(f float64) *float64 { return &f }

func TestLimitsValidate(t *testing.T) {
	limits := &Limits{Min: ptr(27), Max: ptr(68)}

	tests := []struct {
		name    string
		value   any
		wantErr bool
	}{
		{"in range", 50.0, false},
		{"lower bound", 27.0, false},
		{"upper bound", "68", false},
		{"below", 26.5, true},
		{"above", 69, true},
		{"not numeric", "hot", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := limits.Validate("tempCOSet", tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if err != nil && !IsValidationError(err) {
				t.Errorf("IsValidationError(%v) = false, want true", err)
			}
		})
	}
}

func TestLimitsOpenBounds(t *testing.T) {
	var nilLimits *Limits
	if err := nilLimits.Validate("x", "anything"); err != nil {
		t.Errorf("nil limits Validate() error = %v, want nil", err)
	}

	minOnly := &Limits{Min: ptr(10)}
	if !minOnly.Contains(1e6) {
		t.Error("Contains(1e6) = false with no upper bound, want true")
	}
	if minOnly.Contains(5) {
		t.Error("Contains(5) = true below lower bound, want false")
	}
}

func TestLimitsString(t *testing.T) {
	tests := []struct {
		limits *Limits
		want   string
	}{
		{&Limits{Min: ptr(27), Max: ptr(68)}, "[27, 68]"},
		{&Limits{Max: ptr(0.5)}, "[-, 0.5]"},
		{nil, "[-, -]"},
	}

	for _, tt := range tests {
		if got := tt.limits.String(); got != tt.want {
			t.Errorf("String() = %s, want %s", got, tt.want)
		}
	}
}

func TestLimitsFromEntry(t *testing.T) {
	l, ok := limitsFromEntry(map[string]any{"value": 50.0, "minv": 27.0, "maxv": 68.0})
	if !ok {
		t.Fatal("limitsFromEntry() ok = false, want true")
	}
	if *l.Min != 27 || *l.Max != 68 {
		t.Errorf("limits = %s, want [27, 68]", l)
	}

	if _, ok := limitsFromEntry(50.0); ok {
		t.Error("limitsFromEntry(scalar) ok = true, want false")
	}
}

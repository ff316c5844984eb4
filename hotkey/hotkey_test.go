package hotkey

import (
	"errors"
	"slices"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"modifiers_last", []string{"ctrl", "shift", "l"}, []string{"l", "ctrl", "shift"}},
		{"aliases", []string{"Control", "Option", "K"}, []string{"k", "ctrl", "alt"}},
		{"dedupe_and_blanks", []string{" ctrl ", "", "ctrl", "space"}, []string{"space", "ctrl"}},
		{"empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); !slices.Equal(got, tt.want) {
				t.Errorf("Normalize(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestStartWithoutKeys(t *testing.T) {
	m := NewManager(nil, func() {})
	if err := m.Start(); !errors.Is(err, ErrNoKeys) {
		t.Fatalf("Start = %v, want ErrNoKeys", err)
	}
	// Stop on a manager that never started is a no-op.
	m.Stop()
}

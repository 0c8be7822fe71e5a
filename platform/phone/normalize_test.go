package phone

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		err   error
	}{
		{name: "uk national", input: "020 7946 0958", want: "+442079460958"},
		{name: "uk mobile", input: "07400 123456", want: "+447400123456"},
		{name: "international", input: "+44 20 7946 0958", want: "+442079460958"},
		{name: "empty", input: "   ", err: ErrEmpty},
		{name: "too short", input: "12", err: ErrInvalid},
		{name: "letters", input: "not a number", err: ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected error %v, got %v", tt.err, err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNormalizeE164_KeepsUnparseableInput(t *testing.T) {
	got := NormalizeE164("  not a number ")
	if got != "not a number" {
		t.Fatalf("expected trimmed input, got %q", got)
	}
	if IsValid("not a number") {
		t.Fatalf("expected invalid number")
	}
}

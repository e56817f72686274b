package services

import (
	"errors"
	"testing"
)

func TestParseOrderID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected uint
		wantErr  bool
	}{
		{"valid reference", "PHARMA-42", 42, false},
		{"large id", "PHARMA-123456", 123456, false},
		{"missing prefix", "42", 0, true},
		{"wrong prefix", "ORDER-42", 0, true},
		{"non-numeric id", "PHARMA-abc", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseOrderID(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Errorf("err = %v; want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseOrderID(%q): %v", tt.input, err)
			}
			if id != tt.expected {
				t.Errorf("id = %d; want %d", id, tt.expected)
			}
		})
	}
}

func TestPaymentOrderIDRoundTrip(t *testing.T) {
	for _, id := range []uint{1, 99, 100000} {
		ref := paymentOrderID(id)
		got, err := ParseOrderID(ref)
		if err != nil {
			t.Fatalf("ParseOrderID(%q): %v", ref, err)
		}
		if got != id {
			t.Errorf("round trip %d -> %q -> %d", id, ref, got)
		}
	}
}

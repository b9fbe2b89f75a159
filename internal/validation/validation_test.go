package validation

import (
	"testing"
)

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid address", "0x1234567890abcdef1234567890abcdef12345678", false},
		{"valid uppercase", "0x1234567890ABCDEF1234567890ABCDEF12345678", false},
		{"missing 0x", "1234567890abcdef1234567890abcdef12345678", true},
		{"too short", "0x1234", true},
		{"too long", "0x1234567890abcdef1234567890abcdef123456789", true},
		{"invalid characters", "0x1234567890abcdef1234567890abcdef1234567g", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAddress(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAddress(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTags(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantErr bool
	}{
		{"no tags", nil, false},
		{"one tag", []string{"trust"}, false},
		{"two tags", []string{"trust", "oracle-screening"}, false},
		{"three tags", []string{"a", "b", "c"}, true},
		{"empty tag", []string{""}, true},
		{"empty second tag", []string{"trust", ""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTags(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTags(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateChainID(t *testing.T) {
	if err := ValidateChainID(8453); err != nil {
		t.Errorf("ValidateChainID(8453) error = %v", err)
	}
	if err := ValidateChainID(0); err == nil {
		t.Error("ValidateChainID(0) expected error")
	}
}

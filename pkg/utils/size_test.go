package utils

import (
	"testing"
)

func TestParseDataSize(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
		wantErr  bool
	}{
		{"0", 0, false},
		{"1024", 1024, false},
		{"100B", 100, false},

		{"1KB", 1000, false},
		{"1.5KB", 1500, false},
		{"100MB", 100000000, false},
		{"1GB", 1000000000, false},

		{"1K", 1024, false},
		{"1KiB", 1024, false},
		{"1.5MiB", 1572864, false},
		{"1G", 1073741824, false},
		{"1TiB", 1099511627776, false},

		{"100mb", 100000000, false},
		{"1 GiB", 1073741824, false},
		{"  512MB  ", 512000000, false},

		{"", 0, true},
		{"-5", 0, true},
		{"abc", 0, true},
		{"10XB", 0, true},
		{"1.2.3MB", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDataSize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDataSize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.expected {
				t.Errorf("ParseDataSize(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFormatDataSize(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{-1, "invalid"},
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{MegaByte, "1 MB"},
		{100 * MegaByte, "100 MB"},
		{GigaByte + GigaByte/4, "1.25 GB"},
		{2 * TeraByte, "2 TB"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := FormatDataSize(tt.input); got != tt.expected {
				t.Errorf("FormatDataSize(%d) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestUsagePercent(t *testing.T) {
	if got := UsagePercent(50, 0); got != 0 {
		t.Errorf("zero total: got %v", got)
	}
	if got := UsagePercent(25, 100); got != 25 {
		t.Errorf("quarter: got %v", got)
	}
	if got := UsagePercent(300, 100); got != 100 {
		t.Errorf("overflow should clamp: got %v", got)
	}
}

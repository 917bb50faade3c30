package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	KiloByte int64 = 1024
	MegaByte       = 1024 * KiloByte
	GigaByte       = 1024 * MegaByte
	TeraByte       = 1024 * GigaByte
)

var sizePattern = regexp.MustCompile(`^([\d.]+)\s*([A-Za-z]+)$`)

// Decimal suffixes (KB, MB...) are 1000-based, IEC and single-letter suffixes are 1024-based.
var sizeUnits = map[string]int64{
	"B":     1,
	"BYTE":  1,
	"BYTES": 1,
	"KB":    1000,
	"MB":    1000 * 1000,
	"GB":    1000 * 1000 * 1000,
	"TB":    1000 * 1000 * 1000 * 1000,
	"K":     KiloByte,
	"KIB":   KiloByte,
	"M":     MegaByte,
	"MIB":   MegaByte,
	"G":     GigaByte,
	"GIB":   GigaByte,
	"T":     TeraByte,
	"TIB":   TeraByte,
}

// ParseDataSize parses sizes such as "100MB", "1.5GiB" or a bare byte count.
func ParseDataSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative size: %s", s)
		}
		return n, nil
	}

	m := sizePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid size format: %s (expected format like '100MB', '1.5GiB')", s)
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric value: %s", m[1])
	}

	mult, ok := sizeUnits[strings.ToUpper(m[2])]
	if !ok {
		return 0, fmt.Errorf("unknown unit: %s", m[2])
	}

	return int64(value * float64(mult)), nil
}

// FormatDataSize renders a byte count with 1024-based units, e.g. "1.5 MB".
func FormatDataSize(bytes int64) string {
	if bytes < 0 {
		return "invalid"
	}
	if bytes < KiloByte {
		return fmt.Sprintf("%d B", bytes)
	}

	units := []string{"KB", "MB", "GB", "TB", "PB"}
	value := float64(bytes) / float64(KiloByte)
	i := 0
	for value >= 1024 && i < len(units)-1 {
		value /= 1024
		i++
	}

	switch {
	case value == float64(int64(value)):
		return fmt.Sprintf("%.0f %s", value, units[i])
	case value*10 == float64(int64(value*10)):
		return fmt.Sprintf("%.1f %s", value, units[i])
	}
	return fmt.Sprintf("%.2f %s", value, units[i])
}

// UsagePercent returns used/total as a percentage clamped to [0, 100].
func UsagePercent(used, total int64) float64 {
	if total <= 0 {
		return 0
	}
	p := float64(used) / float64(total) * 100
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}

// Package sizeutil parses and formats human-readable byte counts.
package sizeutil

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	KiB = 1 << 10
	MiB = 1 << 20
	GiB = 1 << 30
	TiB = 1 << 40
)

var unitMultiplier = map[string]float64{
	"":    1,
	"b":   1,
	"k":   1000,
	"kb":  1000,
	"kib": KiB,
	"m":   1000 * 1000,
	"mb":  1000 * 1000,
	"mib": MiB,
	"g":   1000 * 1000 * 1000,
	"gb":  1000 * 1000 * 1000,
	"gib": GiB,
	"t":   1000 * 1000 * 1000 * 1000,
	"tb":  1000 * 1000 * 1000 * 1000,
	"tib": TiB,
}

var sizePattern = regexp.MustCompile(`^\s*([0-9]+(?:\.[0-9]+)?)\s*([A-Za-z]*)\s*$`)

// ParseBytes parses strings like "12.5GB", "512MiB" or "1024" into a byte
// count. An empty unit suffix is interpreted as bytes.
func ParseBytes(s string) (uint64, error) {
	m := sizePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("sizeutil: invalid size %q", s)
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("sizeutil: invalid size %q: %w", s, err)
	}
	mult, ok := unitMultiplier[strings.ToLower(m[2])]
	if !ok {
		return 0, fmt.Errorf("sizeutil: unknown unit %q in %q", m[2], s)
	}
	if n < 0 {
		return 0, fmt.Errorf("sizeutil: negative size %q", s)
	}
	return uint64(math.Round(n * mult)), nil
}

// FormatBytes renders a byte count using binary (IEC) units, e.g. "1.50GiB".
func FormatBytes(n uint64) string {
	switch {
	case n >= TiB:
		return fmt.Sprintf("%.2fTiB", float64(n)/float64(TiB))
	case n >= GiB:
		return fmt.Sprintf("%.2fGiB", float64(n)/float64(GiB))
	case n >= MiB:
		return fmt.Sprintf("%.2fMiB", float64(n)/float64(MiB))
	case n >= KiB:
		return fmt.Sprintf("%.2fKiB", float64(n)/float64(KiB))
	default:
		return fmt.Sprintf("%dB", n)
	}
}

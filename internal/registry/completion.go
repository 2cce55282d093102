package registry

import (
	"fmt"
	"strconv"
	"strings"
)

// CompletionBucket is a range label for percent_complete.
type CompletionBucket string

// Completion buckets.
const (
	Completion90to100     CompletionBucket = "90–100%"
	Completion70to89      CompletionBucket = "70–89%"
	Completion40to69      CompletionBucket = "40–69%"
	Completion1to39       CompletionBucket = "1–39%"
	CompletionZero        CompletionBucket = "0%"
	CompletionUnspecified CompletionBucket = "Unspecified"
)

// ClassifyCompletion buckets a numeric string. Lower bounds are inclusive and
// checked from the top; anything that does not parse is Unspecified.
func ClassifyCompletion(value string) CompletionBucket {
	pct, err := parsePercent(value)
	if err != nil {
		return CompletionUnspecified
	}

	switch {
	case pct >= 90:
		return Completion90to100
	case pct >= 70:
		return Completion70to89
	case pct >= 40:
		return Completion40to69
	case pct > 0:
		return Completion1to39
	default:
		return CompletionZero
	}
}

func parsePercent(value string) (float64, error) {
	pct, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errMalformedNumber, value)
	}

	return pct, nil
}

package sentiment

import (
	"math"
	"sort"
)

func sortedCopy(values []float64) []float64 {
	s := make([]float64, len(values))
	copy(s, values)
	sort.Float64s(s)
	return s
}

// median of values; the mean of the two middle values for even counts.
func median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return quantile(sortedCopy(values), 0.5)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// quantile uses linear interpolation between closest ranks on sorted input.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// Mean is the arithmetic mean of the scored items, or nil when none is scored.
func Mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	m := mean(values)
	return &m
}

// Median of values, NaN when empty.
func Median(values []float64) float64 {
	return median(values)
}

package evaluation

import (
	"math"
)

var zScores = map[float64]float64{
	0.90: 1.645,
	0.95: 1.96,
	0.99: 2.576,
}

// ZScore returns the two sided normal quantile for a confidence level in (0, 1).
// The usual levels 0.90, 0.95 and 0.99 use their tabulated values.
func ZScore(confidence float64) float64 {
	if z, ok := zScores[confidence]; ok {
		return z
	}
	if confidence <= 0 || confidence >= 1 || math.IsNaN(confidence) {
		return zScores[0.95]
	}
	return math.Sqrt2 * math.Erfinv(confidence)
}

// Margin is the normal approximation margin z*sqrt(p(1-p)/n) of a proportion.
// It is 0 for n <= 0.
func Margin(p float64, n int, z float64) float64 {
	if n <= 0 {
		return 0
	}
	return z * math.Sqrt(p*(1-p)/float64(n))
}

// ConfidenceInterval is the margin of proportion p over n samples at a confidence level
func ConfidenceInterval(p float64, n int, confidence float64) float64 {
	return Margin(p, n, ZScore(confidence))
}

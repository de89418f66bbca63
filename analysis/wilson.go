package analysis

import "math"

// ZScore returns the two-sided normal quantile for a confidence level,
// 1.96 for 0.95.
func ZScore(confidence float64) float64 {
	return math.Sqrt2 * math.Erfinv(confidence)
}

// Wilson returns the Wilson score interval for successes out of n trials
// and its half-width.
func Wilson(successes, n int64, z float64) (low, high, radius float64) {
	if n <= 0 {
		return 0, 1, 0.5
	}
	nf := float64(n)
	p := float64(successes) / nf
	z2 := z * z
	denom := 1 + z2/nf
	center := (p + z2/(2*nf)) / denom
	radius = z / denom * math.Sqrt(p*(1-p)/nf+z2/(4*nf*nf))
	return math.Max(0, center-radius), math.Min(1, center+radius), radius
}

// WorstCaseRadius is the Wilson half-width at p = 1/2 after n trials.
func WorstCaseRadius(n int64, confidence float64) float64 {
	_, _, r := Wilson(n/2, n-n%2, ZScore(confidence))
	return r
}

// RequiredTrials estimates the trials needed for a worst-case (p = 1/2)
// half-width of radius at the given confidence, using the normal
// approximation n = z²·p(1-p)/r².
func RequiredTrials(radius, confidence float64) int64 {
	if radius <= 0 {
		return math.MaxInt64
	}
	z := ZScore(confidence)
	return int64(math.Ceil(z * z * 0.25 / (radius * radius)))
}

package reduce

import (
	"log"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Missing marks a window slot that has received no value. Reductions treat
// it as absent, not as zero.
const Missing = 1e20

// Weighted reduces a window of spatial arrays into dst using the given
// time-overlap weights. The window is ordered oldest first; weights[i]
// applies to window[i]. The span is the total tick length the weights were
// computed for (the consumer rate).
//
// Mean divides the weighted sum by the total weight; Sum first normalizes
// each weight by span, conserving flux-times-time quantities; Point copies
// the newest value; Minimum and Maximum ignore the weights entirely.
func Weighted(
	m Method,
	dst []float64,
	window [][]float64,
	weights []float64,
	span float64,
) {
	if len(window) != len(weights) {
		log.Panicf("window has %d values but %d weights",
			len(window), len(weights))
	}

	switch m {
	case Mean:
		weightedSum(dst, window, weights)
		floats.Scale(1/floats.Sum(weights), dst)
	case Sum:
		weightedSum(dst, window, weights)
		floats.Scale(1/span, dst)
	case Point:
		copy(dst, window[len(window)-1])
	case Minimum:
		elementwise(dst, window, math.Min)
	case Maximum:
		elementwise(dst, window, math.Max)
	default:
		log.Panicf("unresolved reduction method %d", m)
	}
}

func weightedSum(dst []float64, window [][]float64, weights []float64) {
	for i := range dst {
		dst[i] = 0
	}

	for k, values := range window {
		if weights[k] == 0 {
			continue
		}

		floats.AddScaled(dst, weights[k], values)
	}
}

func elementwise(
	dst []float64,
	window [][]float64,
	pick func(a, b float64) float64,
) {
	copy(dst, window[0])

	for _, values := range window[1:] {
		for i, v := range values {
			dst[i] = pick(dst[i], v)
		}
	}
}

// Window reduces a recording window of spatial arrays into dst, skipping
// Missing slots cell by cell. Cells with no present value reduce to Missing.
// Point is not handled here: a recording stream resolves it to the most
// recently written slot before reducing.
func Window(m Method, dst []float64, window [][]float64) {
	switch m {
	case Mean:
		windowMoments(dst, window, true)
	case Sum:
		windowMoments(dst, window, false)
	case Minimum:
		windowExtreme(dst, window, math.Min)
	case Maximum:
		windowExtreme(dst, window, math.Max)
	default:
		log.Panicf("method %v cannot reduce a recording window", m)
	}
}

func windowMoments(dst []float64, window [][]float64, average bool) {
	counts := make([]int, len(dst))

	for i := range dst {
		dst[i] = 0
	}

	for _, values := range window {
		for i, v := range values {
			if v == Missing {
				continue
			}

			dst[i] += v
			counts[i]++
		}
	}

	for i, n := range counts {
		if n == 0 {
			dst[i] = Missing
			continue
		}

		if average {
			dst[i] /= float64(n)
		}
	}
}

func windowExtreme(
	dst []float64,
	window [][]float64,
	pick func(a, b float64) float64,
) {
	for i := range dst {
		dst[i] = Missing
	}

	for _, values := range window {
		for i, v := range values {
			if v == Missing {
				continue
			}

			if dst[i] == Missing {
				dst[i] = v
				continue
			}

			dst[i] = pick(dst[i], v)
		}
	}
}

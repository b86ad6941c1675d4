// SPDX-License-Identifier: MIT
package analysis

import (
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"

	"nowplaying/pkg/bitint"
)

// ReferenceQuantile is the share of full-track spectrum magnitudes that
// fall below the playback reference magnitude.
const ReferenceQuantile = 0.90

// ReferenceMagnitude returns the q-quantile magnitude of the Hann
// windowed spectrum of the entire buffer. Computed once before playback
// starts, it anchors the decibel scale of Spectral for the whole
// session.
//
// The transform runs on the buffer zero-padded to a power-of-two length,
// which keeps the plan fast for any track length.
func ReferenceMagnitude(samples []float64, q float64) float64 {
	n := len(samples)
	if n == 0 {
		return 0
	}

	size := bitint.NextPowerOfTwo(n)
	input := make([]float64, size)
	if n == 1 {
		input[0] = samples[0]
	} else {
		for i, v := range samples {
			input[i] = v * 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		}
	}

	plan := fourier.NewFFT(size)
	coeffs := plan.Coefficients(nil, input)
	mags := make([]float64, len(coeffs))
	for i, c := range coeffs {
		mags[i] = cmplx.Abs(c)
	}

	// Quantile requires ascending input.
	sort.Float64s(mags)
	return stat.Quantile(q, stat.LinInterp, mags, nil)
}

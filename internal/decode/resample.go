// SPDX-License-Identifier: MIT
package decode

// Resample converts the buffer to dstRate using Catmull-Rom cubic
// interpolation. When downsampling, a one-pole low-pass runs over the
// source first as basic anti-aliasing.
func Resample(b *Buffer, dstRate int) *Buffer {
	if b.Empty() || dstRate <= 0 || b.Rate == dstRate {
		return b
	}

	src := b.Samples
	if dstRate < b.Rate {
		src = lowpass(src, 0.5)
	}

	ratio := float64(b.Rate) / float64(dstRate)
	out := make([]float64, int(float64(len(src))/ratio))
	for i := range out {
		pos := float64(i) * ratio
		j := int(pos)
		x := pos - float64(j)
		y := cubicInterpolate(
			sampleAt(src, j-1),
			sampleAt(src, j),
			sampleAt(src, j+1),
			sampleAt(src, j+2),
			x,
		)
		// The spline can overshoot slightly between samples.
		if y > 1 {
			y = 1
		} else if y < -1 {
			y = -1
		}
		out[i] = y
	}
	return &Buffer{Samples: out, Rate: dstRate}
}

// cubicInterpolate evaluates the Catmull-Rom spline through four
// consecutive samples at fractional position x between y1 and y2,
// 0 <= x <= 1.
func cubicInterpolate(y0, y1, y2, y3, x float64) float64 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2
	a3 := y1

	return a0*x*x*x + a1*x*x + a2*x + a3
}

// sampleAt reads src[i] with the edges clamped, so interpolation near
// the buffer boundaries reuses the first and last samples.
func sampleAt(src []float64, i int) float64 {
	if i < 0 {
		i = 0
	}
	if i >= len(src) {
		i = len(src) - 1
	}
	return src[i]
}

// lowpass applies a one-pole filter, y[n] = alpha*x[n] + (1-alpha)*y[n-1].
// State starts at the first sample to avoid a warm-up transient.
func lowpass(src []float64, alpha float64) []float64 {
	out := make([]float64, len(src))
	state := src[0]
	for i, v := range src {
		state = alpha*v + (1-alpha)*state
		out[i] = state
	}
	return out
}

// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"math"
)

// Waveform maps a window of mono samples to one level per column of an
// amplitude bar display. It block-averages absolute amplitude and
// normalizes against the window's own peak, so the display spans the
// full height regardless of overall loudness. Cheaper and less
// informative than Spectral.
type Waveform struct {
	width  int
	height int
	blocks []float64
	levels []int
}

// Compile-time check for interface implementation.
var _ Analyzer = (*Waveform)(nil)

// NewWaveform creates an amplitude analyzer producing levels in
// [0, height-1] for up to width columns.
func NewWaveform(width, height int) (*Waveform, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("display size must be positive, got %dx%d", width, height)
	}
	return &Waveform{
		width:  width,
		height: height,
		blocks: make([]float64, width),
		levels: make([]int, width),
	}, nil
}

// Analyze returns one level in [0, height-1] per column. Windows with
// fewer samples than columns produce fewer levels and the composer
// leaves the missing columns blank. The returned slice is reused across
// calls.
func (w *Waveform) Analyze(window []float64) []int {
	step := len(window) / w.width
	if step < 1 {
		step = 1
	}
	n := len(window) / step
	if n > w.width {
		n = w.width
	}

	// Mean absolute amplitude per block.
	peak := 0.0
	for i := 0; i < n; i++ {
		sum := 0.0
		for _, v := range window[i*step : (i+1)*step] {
			sum += math.Abs(v)
		}
		mean := sum / float64(step)
		w.blocks[i] = mean
		if mean > peak {
			peak = mean
		}
	}

	levels := w.levels[:n]
	for i, mean := range w.blocks[:n] {
		norm := mean
		if peak > 0 {
			norm = mean / peak
		}
		levels[i] = int(norm * float64(w.height-1))
	}
	return levels
}

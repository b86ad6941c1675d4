// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"nowplaying/pkg/bitint"
)

// dbEpsilon keeps the decibel conversion away from log-of-zero and from
// division by a zero reference magnitude.
const dbEpsilon = 1e-9

// Pre-allocated buffers for the per-frame transform. Grown to
// power-of-two capacities so steady-state Analyze calls do not allocate.
type spectralWorkspace struct {
	input     []float64    // Buffer for windowed input samples.
	fftOutput []complex128 // Buffer for FFT complex results.
	bands     []float64    // Peak magnitude per frequency band.
	window    []float64    // Window coefficients for the current length.
}

// Spectral maps a window of mono samples to one level per column of a
// log-frequency bar display. Levels are decibel heights relative to a
// fixed reference magnitude, so column heights stay comparable across a
// whole track instead of renormalizing per frame. The analysis is
// deterministic: identical window, configuration and reference always
// produce identical levels.
//
// The zero value is not usable; construct with NewSpectral.
type Spectral struct {
	width      int
	height     int
	sampleRate float64
	floorDb    float64
	ref        float64
	windowType WindowFunc

	fftCalculator *fourier.FFT // Plan for the current window length.
	fftSize       int          // Window length the plan was built for.
	edges         []float64    // width+1 log-spaced band edges in Hz.
	levels        []int        // Reused output slice.
	workspace     spectralWorkspace
}

// Compile-time check for interface implementation.
var _ Analyzer = (*Spectral)(nil)

// NewSpectral creates a spectrum analyzer producing width levels in
// [0, height]. floorDb is the silence cutoff (negative), fMin the lower
// edge of the displayed frequency range, and ref the reference magnitude
// computed once per session (see ReferenceMagnitude).
func NewSpectral(width, height int, sampleRate, floorDb, fMin, ref float64, windowType WindowFunc) (*Spectral, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("display size must be positive, got %dx%d", width, height)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", sampleRate)
	}
	if floorDb >= 0 {
		return nil, fmt.Errorf("dB floor must be negative, got %f", floorDb)
	}
	nyquist := sampleRate / 2
	if fMin <= 0 || fMin >= nyquist {
		return nil, fmt.Errorf("minimum frequency must be inside (0, %.1f), got %f", nyquist, fMin)
	}
	if ref < 0 {
		return nil, fmt.Errorf("reference magnitude must be non-negative, got %f", ref)
	}

	return &Spectral{
		width:      width,
		height:     height,
		sampleRate: sampleRate,
		floorDb:    floorDb,
		ref:        ref,
		windowType: windowType,
		edges:      logBandEdges(fMin, nyquist, width),
		levels:     make([]int, width),
		workspace: spectralWorkspace{
			bands: make([]float64, width),
		},
	}, nil
}

// logBandEdges returns width+1 logarithmically spaced edges from fMin to
// fMax, a geometric progression partitioning [fMin, fMax] into width
// bands of equal ratio.
func logBandEdges(fMin, fMax float64, width int) []float64 {
	edges := make([]float64, width+1)
	lo := math.Log10(fMin)
	hi := math.Log10(fMax)
	for i := range edges {
		edges[i] = math.Pow(10, lo+(hi-lo)*float64(i)/float64(width))
	}
	// Pin the outer edges so boundary comparisons are exact.
	edges[0] = fMin
	edges[width] = fMax
	return edges
}

// resize rebuilds the transform plan and window coefficients for a new
// window length. Within a session the length only changes at the final
// partial window, so this stays off the per-frame path.
func (s *Spectral) resize(n int) {
	s.fftCalculator = fourier.NewFFT(n)
	s.fftSize = n

	if cap(s.workspace.input) < n {
		c := bitint.NextPowerOfTwo(n)
		s.workspace.input = make([]float64, 0, c)
		s.workspace.window = make([]float64, 0, c)
		s.workspace.fftOutput = make([]complex128, 0, c/2+1)
	}
	s.workspace.input = s.workspace.input[:n]
	s.workspace.window = s.workspace.window[:n]
	s.workspace.fftOutput = s.workspace.fftOutput[:n/2+1]
	applyWindow(s.workspace.window, s.windowType)
}

// Analyze returns one level in [0, height] per band for the given window.
// An empty window yields the lowest level for every band. The returned
// slice is reused across calls.
func (s *Spectral) Analyze(window []float64) []int {
	if len(window) == 0 {
		for i := range s.levels {
			s.levels[i] = 0
		}
		return s.levels
	}
	if len(window) != s.fftSize {
		s.resize(len(window))
	}

	// --- 1. Window the input ---
	for i, v := range window {
		s.workspace.input[i] = v * s.workspace.window[i]
	}

	// --- 2. Transform ---
	s.fftCalculator.Coefficients(s.workspace.fftOutput, s.workspace.input)

	// --- 3. Peak magnitude per band ---
	// Bin frequencies ascend, so one pass with an advancing band index
	// covers every band. Bands with no bins keep magnitude 0.
	for i := range s.workspace.bands {
		s.workspace.bands[i] = 0
	}
	band := 0
	for k, c := range s.workspace.fftOutput {
		freq := s.fftCalculator.Freq(k) * s.sampleRate
		if freq < s.edges[0] {
			continue
		}
		for band < s.width && freq >= s.edges[band+1] {
			band++
		}
		if band == s.width {
			break // At or above the Nyquist edge.
		}
		if mag := cmplx.Abs(c); mag > s.workspace.bands[band] {
			s.workspace.bands[band] = mag
		}
	}

	// --- 4. Decibels relative to the reference, floored, scaled to rows ---
	for i, peak := range s.workspace.bands {
		db := 20 * math.Log10(peak/(s.ref+dbEpsilon)+dbEpsilon)
		if db < s.floorDb {
			db = s.floorDb
		}
		norm := (db - s.floorDb) / -s.floorDb
		level := int(norm * float64(s.height))
		if level > s.height {
			level = s.height // Bands louder than the reference saturate.
		}
		s.levels[i] = level
	}
	return s.levels
}

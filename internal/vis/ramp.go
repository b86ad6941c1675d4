// SPDX-License-Identifier: MIT
package vis

import "fmt"

// DefaultColors is the built-in ANSI 256 ramp, quiet rows to loud rows.
var DefaultColors = []int{22, 46, 3, 166, 160}

// defaultStops are the height fractions dividing DefaultColors. The
// lowest stop sits just under 2/18 so the bottom two rows of the
// default 18-row display share the quietest color.
var defaultStops = []float64{0.11, 0.5, 0.7, 0.9}

// Ramp maps a row's normalized height fraction to an ANSI 256 color.
// Rows below the first stop get the first color; rows at or above the
// last stop get the last.
type Ramp struct {
	colors []int
	stops  []float64
}

// NewRamp builds a ramp from an ordered bottom-to-top color list. A nil
// or empty list selects the built-in ramp with its historical stops;
// explicit lists of any length at least 2 get evenly spaced stops.
func NewRamp(colors []int) (*Ramp, error) {
	if len(colors) == 0 {
		return &Ramp{colors: DefaultColors, stops: defaultStops}, nil
	}
	if len(colors) < 2 {
		return nil, fmt.Errorf("color ramp needs at least 2 colors, got %d", len(colors))
	}
	for _, code := range colors {
		if code < 0 || code > 255 {
			return nil, fmt.Errorf("color %d outside ANSI-256 range [0, 255]", code)
		}
	}

	stops := make([]float64, len(colors)-1)
	for i := range stops {
		stops[i] = float64(i+1) / float64(len(colors))
	}
	return &Ramp{colors: colors, stops: stops}, nil
}

// At returns the color for a row at the given height fraction.
func (r *Ramp) At(frac float64) int {
	for i := len(r.stops) - 1; i >= 0; i-- {
		if frac >= r.stops[i] {
			return r.colors[i+1]
		}
	}
	return r.colors[0]
}

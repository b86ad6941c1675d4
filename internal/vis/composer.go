// SPDX-License-Identifier: MIT

// Package vis turns analysis levels into terminal frames: a color ramp
// over the display rows and a composer producing a deterministic frame
// grid. Encoding frames into terminal escape sequences lives in
// internal/term.
package vis

import "fmt"

// Blank marks an unfilled cell in a frame grid.
const Blank = -1

// statusPad is the fixed status line width, wide enough to overwrite a
// previous frame's status in place.
const statusPad = 80

// Frame is one composed terminal frame: a grid of cell colors with the
// status and metadata lines shown below it.
type Frame struct {
	// Cells holds one slice per display row, top row first. A cell is
	// an ANSI 256 color for a filled position or Blank.
	Cells  [][]int
	Status string
	Meta   []string
}

// Composer renders level sequences into frames. Compose is
// deterministic: identical levels, elapsed and duration always produce
// an identical frame. The returned frame is reused across calls.
type Composer struct {
	width     int
	height    int
	rowColors []int // Ramp color per row, bottom-based index.
	frame     Frame
}

// NewComposer creates a composer for a width x height cell grid. The
// meta lines are fixed for the life of the composer and carried on
// every frame.
func NewComposer(width, height int, ramp *Ramp, meta []string) (*Composer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("display size must be positive, got %dx%d", width, height)
	}
	if ramp == nil {
		return nil, fmt.Errorf("composer requires a color ramp")
	}

	rowColors := make([]int, height)
	for r := range rowColors {
		rowColors[r] = ramp.At(float64(r) / float64(height))
	}

	cells := make([][]int, height)
	for i := range cells {
		cells[i] = make([]int, width)
	}
	return &Composer{
		width:     width,
		height:    height,
		rowColors: rowColors,
		frame: Frame{
			Cells: cells,
			Meta:  meta,
		},
	}, nil
}

// Compose renders one frame. Row r (0 = bottom) of column c is filled
// when levels[c] >= r; columns beyond len(levels) stay blank. The
// returned frame is valid until the next Compose.
func (c *Composer) Compose(levels []int, elapsed, duration float64) *Frame {
	for displayRow := 0; displayRow < c.height; displayRow++ {
		r := c.height - 1 - displayRow
		row := c.frame.Cells[displayRow]
		for col := 0; col < c.width; col++ {
			if col < len(levels) && levels[col] >= r {
				row[col] = c.rowColors[r]
			} else {
				row[col] = Blank
			}
		}
	}
	c.frame.Status = fmt.Sprintf("%-*s", statusPad,
		fmt.Sprintf("└ Elapsed: %.2fs / %.2fs", elapsed, duration))
	return &c.frame
}

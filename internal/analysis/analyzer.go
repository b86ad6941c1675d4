// SPDX-License-Identifier: MIT
package analysis

// Analyzer is the strategy shared by the visualization analyses. Analyze
// maps a window of mono samples to one integer level per visual column.
// A session selects exactly one strategy up front; the two are never
// mixed within a run.
//
// Implementations reuse the returned slice across calls, so callers must
// consume it before the next Analyze.
type Analyzer interface {
	Analyze(window []float64) []int
}

// Package plot renders measurement series as terminal graphs.
package plot

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
)

const (
	defaultHeight = 10
	defaultWidth  = 80
)

// Series renders a single data series with a caption.
func Series(data []float64, caption string) string {
	if len(data) < 2 {
		return fmt.Sprintf("(not enough points to plot: %d)", len(data))
	}
	return asciigraph.Plot(data,
		asciigraph.Height(defaultHeight),
		asciigraph.Width(defaultWidth),
		asciigraph.Caption(caption),
	)
}

// Sweep renders measured field against setpoint index, captioned with the
// sweep range and unit.
func Sweep(measured []float64, start, stop float64, unit string) string {
	caption := fmt.Sprintf("field sweep %g to %g %s", start, stop, unit)
	return Series(measured, caption)
}

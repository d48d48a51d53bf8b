package dashboard

import (
	"strconv"
	"strings"
)

// Sparkline viewport used by SparklinePath.
const (
	SparklineWidth  = 100
	SparklineHeight = 30
)

// SparklinePath converts a price history into an SVG path ("M x,y L x,y ...")
// normalized to a SparklineWidth x SparklineHeight box with the minimum at the
// bottom. Fewer than two samples produce an empty path. A flat series is drawn
// along the bottom edge.
func SparklinePath(history []float64) string {
	if len(history) < 2 {
		return ""
	}
	lo, hi := bounds(history)
	span := hi - lo
	if span == 0 {
		span = 1
	}

	points := make([]string, len(history))
	for i, v := range history {
		x := float64(i) / float64(len(history)-1) * SparklineWidth
		y := SparklineHeight - (v-lo)/span*SparklineHeight
		points[i] = fmtCoord(x) + "," + fmtCoord(y)
	}
	return "M " + strings.Join(points, " L ")
}

func fmtCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders a history as a row of block characters, one per sample,
// scaled between the series minimum and maximum.
func Sparkline(history []float64) string {
	if len(history) == 0 {
		return ""
	}
	lo, hi := bounds(history)
	span := hi - lo

	var b strings.Builder
	for _, v := range history {
		idx := 0
		if span > 0 {
			idx = int((v - lo) / span * float64(len(sparkRunes)-1))
		}
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}

// BarHeights normalizes each sample against the series maximum, yielding
// values in [0, 1] for the detail view's bar chart.
func BarHeights(history []float64) []float64 {
	_, hi := bounds(history)
	out := make([]float64, len(history))
	if hi <= 0 {
		return out
	}
	for i, v := range history {
		out[i] = v / hi
	}
	return out
}

func bounds(vs []float64) (lo, hi float64) {
	if len(vs) == 0 {
		return 0, 0
	}
	lo, hi = vs[0], vs[0]
	for _, v := range vs[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// Package history encodes and decodes the price-history text stored with each quote.
//
// The stored format is one point per line, most recent first:
//
//	1700000000000, 101.5
//	1699900000000, 99
package history

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultWeeksOnChart is the number of most recent points shown on a chart.
	DefaultWeeksOnChart = 52

	fieldSep = ", "
	lineSep  = "\n"
)

// Point is one historical close.
type Point struct {
	Millis int64   `json:"time"`  // epoch milliseconds
	Close  float64 `json:"close"` // closing price
}

// Time returns the point timestamp as a UTC time.
func (p Point) Time() time.Time {
	return time.UnixMilli(p.Millis).UTC()
}

// Chart is the decoded, display-ready subset of a history blob.
type Chart struct {
	Points []Point `json:"points"` // oldest first
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	YAxis  Axis    `json:"y_axis"`
}

// Axis holds integer y axis bounds and the distance between labels.
type Axis struct {
	Min  int `json:"min"`
	Max  int `json:"max"`
	Step int `json:"step"`
}

// Encode serializes points in the order given. Callers pass them most recent first.
func Encode(points []Point) string {
	var b strings.Builder
	for _, p := range points {
		b.WriteString(strconv.FormatInt(p.Millis, 10))
		b.WriteString(fieldSep)
		b.WriteString(strconv.FormatFloat(p.Close, 'f', -1, 64))
		b.WriteString(lineSep)
	}
	return b.String()
}

// Decode parses a history blob, keeping its order (most recent first).
// Lines that do not hold exactly two parsable fields are skipped.
func Decode(text string) []Point {
	return decodeLines(splitLines(text))
}

// ChartData decodes the first window lines of text (the most recent points),
// returns them oldest first and computes the price range over them.
// A window <= 0 uses DefaultWeeksOnChart.
func ChartData(text string, window int) Chart {
	if window <= 0 {
		window = DefaultWeeksOnChart
	}
	lines := splitLines(text)
	if len(lines) > window {
		lines = lines[:window]
	}
	points := decodeLines(lines)

	// stored most recent first, charts read left to right
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}

	c := Chart{Points: points}
	if len(points) == 0 {
		return c
	}
	c.Min, c.Max = points[0].Close, points[0].Close
	for _, p := range points[1:] {
		c.Min = math.Min(c.Min, p.Close)
		c.Max = math.Max(c.Max, p.Close)
	}
	c.YAxis = YAxis(c.Min, c.Max)
	return c
}

// YAxis computes chart bounds that give eight or nine labels, with the upper
// bound an exact number of steps above the lower one.
func YAxis(min, max float64) Axis {
	lo := int(math.Floor(min))
	hi := int(math.Ceil(max))
	step := (8 + hi - lo) / 8
	if step < 1 {
		step = 1
	}
	labels := (hi - lo) / step
	return Axis{Min: lo, Max: lo + step*(labels+1), Step: step}
}

func splitLines(text string) []string {
	text = strings.TrimRight(text, lineSep)
	if text == "" {
		return nil
	}
	return strings.Split(text, lineSep)
}

func decodeLines(lines []string) []Point {
	points := make([]Point, 0, len(lines))
	for _, line := range lines {
		fields := strings.Split(line, fieldSep)
		if len(fields) != 2 {
			continue
		}
		millis, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			continue
		}
		closePrice, err := strconv.ParseFloat(fields[1], 64)
		if err != nil || math.IsNaN(closePrice) || math.IsInf(closePrice, 0) {
			continue
		}
		points = append(points, Point{Millis: millis, Close: closePrice})
	}
	return points
}

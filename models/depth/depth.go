// Package depth postprocesses recognized text for "Depth Interval" regions
// of borehole profiles, reducing free-form OCR output to a normalized
// "start: <a> end: <b>" transcription.
package depth

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// IntervalLabel marks regions whose recognized text should be reduced to a
// depth interval transcription.
const IntervalLabel = "Depth Interval"

var numberRe = regexp.MustCompile(`-?[0-9]+([.,][0-9]+)?`)

// Numbers extracts all numbers from a string. Decimal commas are treated as
// decimal points and signs are dropped: depth values are magnitudes, a
// leading minus is an artifact of the drawing next to the number.
func Numbers(s string) []float64 {
	matches := numberRe.FindAllString(s, -1)
	numbers := make([]float64, 0, len(matches))
	for _, m := range matches {
		m = strings.ReplaceAll(m, ",", ".")
		v, err := strconv.ParseFloat(m, 64)
		if err != nil {
			continue
		}
		numbers = append(numbers, math.Abs(v))
	}
	return numbers
}

// Interval reduces recognized text to the depth interval transcription. A
// single number means the interval starts at the surface; with two or more
// numbers the first and last are taken as the bounds; with none the fields
// stay empty for the annotator to fill in.
func Interval(text string) string {
	numbers := Numbers(text)
	switch {
	case len(numbers) == 1:
		return fmt.Sprintf("start: 0 end: %s", format(numbers[0]))
	case len(numbers) >= 2:
		return fmt.Sprintf("start: %s end: %s", format(numbers[0]), format(numbers[len(numbers)-1]))
	default:
		return "start: end: "
	}
}

// Format renders a single depth value the way Interval does.
func Format(v float64) string { return format(v) }

// Integral values keep one decimal ("2.0"), matching how the recorded
// transcriptions have always rendered depths.
func format(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

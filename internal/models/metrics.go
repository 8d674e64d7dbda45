package models

import "math"

// Percentage returns part/total*100 rounded to one decimal, or 0 when total is 0.
// Exact halves round to even: 1 of 16 is 6.2, not 6.3.
func Percentage(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.RoundToEven(float64(part)/float64(total)*1000) / 10
}

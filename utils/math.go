package utils

import "math"

// RoundFloat rounds a float64 to the specified number of decimal places
func RoundFloat(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// SharePercent is part's share of whole as a percentage with two decimals.
// A zero whole splits evenly across n.
func SharePercent(part, whole float64, n int) float64 {
	switch {
	case whole > 0:
		return RoundFloat(part/whole*100, 2)
	case n > 0:
		return RoundFloat(100/float64(n), 2)
	}
	return 0
}

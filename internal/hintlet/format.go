package hintlet

import "strconv"

// FormatSeconds renders a millisecond duration as seconds with the
// given number of decimal places:
//
//	FormatSeconds(2500, 2) == "2.50s"
func FormatSeconds(milliseconds float64, decimalPlaces int) string {
	return strconv.FormatFloat(milliseconds/1000, 'f', decimalPlaces, 64) + "s"
}

// FormatMilliseconds renders a millisecond duration with the given
// number of decimal places:
//
//	FormatMilliseconds(2500, 0) == "2500ms"
func FormatMilliseconds(milliseconds float64, decimalPlaces int) string {
	return strconv.FormatFloat(milliseconds, 'f', decimalPlaces, 64) + "ms"
}

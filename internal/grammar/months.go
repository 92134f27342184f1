package grammar

import "strings"

var monthCodes = [12]string{"JAN", "FEB", "MAR", "APR", "MAY", "JUN", "JUL", "AUG", "SEP", "OCT", "NOV", "DEC"}

// MonthNumber maps a three-letter month code to 1-12, ignoring case
func MonthNumber(code string) (int, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for i, c := range monthCodes {
		if c == code {
			return i + 1, true
		}
	}
	return 0, false
}

// MonthName maps 1-12 back to its upper-case three-letter code
func MonthName(n int) (string, bool) {
	if n < 1 || n > 12 {
		return "", false
	}
	return monthCodes[n-1], true
}

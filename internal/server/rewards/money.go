package rewards

import "strconv"

// FormatAmount renders a currency amount: the value rounded to the given
// number of decimal places, a space, then the singular name iff the
// unrounded amount equals exactly 1, else the plural.
func FormatAmount(v float64, decimals int, singular, plural string) string {
	name := plural
	if v == 1 {
		name = singular
	}
	return strconv.FormatFloat(v, 'f', decimals, 64) + " " + name
}

package keymap

import (
	"fmt"
	"math"
)

// FormatETE renders seconds as minutes:seconds, e.g. 125 -> "2:05".
// Fractions round to the nearest second; negative values show as 0:00.
func FormatETE(seconds float64) string {
	total := int64(math.Round(seconds))
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FormatFrequency renders a radio frequency in MHz with two decimals.
func FormatFrequency(mhz float64) string {
	return fmt.Sprintf("%.2f", mhz)
}

func FormatHeading(degrees float64) string {
	return fmt.Sprintf("%.0f°", degrees)
}

func FormatAltitude(feet float64) string {
	return fmt.Sprintf("%.0fft", feet)
}

func FormatVerticalSpeed(fpm float64) string {
	return fmt.Sprintf("%.0f ft/min", fpm)
}

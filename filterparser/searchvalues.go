package filterparser

import (
	"strconv"
	"unicode"
)

// ParseSearchTime interprets a search value as a duration in seconds.
// Accepted forms are bare seconds ("180"), "mm:ss" and "h:mm:ss": digits
// accumulate into the current component and each ':' folds the component into
// the total. Spaces are skipped; scanning stops at any other character and
// keeps whatever was folded so far. Never fails.
func ParseSearchTime(text string) int {
	seconds := 0
	accum := 0
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
			accum = accum*10 + int(r-'0')
		case r == ':':
			seconds = seconds*60 + accum
			accum = 0
		case unicode.IsSpace(r):
		default:
			return seconds*60 + accum
		}
	}
	return seconds*60 + accum
}

// ParseSearchRating converts a 0-5 star value from a filter string to the
// internal 0-1 scale. Empty or unparsable input yields -1, the unrated
// marker. Never fails.
func ParseSearchRating(text string) float32 {
	if text == "" {
		return -1
	}
	f, err := strconv.ParseFloat(text, 32)
	if err != nil {
		return -1
	}
	return float32(f) / 5
}

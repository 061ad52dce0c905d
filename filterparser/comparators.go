package filterparser

import (
	"strconv"
	"strings"
)

// Comparator is a stateless predicate over a single field value. The search
// literal is captured when the comparator is built; decorators wrap an inner
// comparator and transform the value first.
type Comparator func(element string) bool

// defaultComparator matches if the element contains the search term. This is
// the only inexact comparator and the one bare terms get.
func defaultComparator(search string) Comparator {
	return func(element string) bool {
		return strings.Contains(element, search)
	}
}

func eqComparator(search string) Comparator {
	return func(element string) bool {
		return element == search
	}
}

func neComparator(search string) Comparator {
	return func(element string) bool {
		return element != search
	}
}

func lexicalGtComparator(search string) Comparator {
	return func(element string) bool {
		return element > search
	}
}

func lexicalGeComparator(search string) Comparator {
	return func(element string) bool {
		return element >= search
	}
}

func lexicalLtComparator(search string) Comparator {
	return func(element string) bool {
		return element < search
	}
}

func lexicalLeComparator(search string) Comparator {
	return func(element string) bool {
		return element <= search
	}
}

func intGtComparator(search int) Comparator {
	return func(element string) bool {
		return toInt(element) > search
	}
}

func intGeComparator(search int) Comparator {
	return func(element string) bool {
		return toInt(element) >= search
	}
}

func intLtComparator(search int) Comparator {
	return func(element string) bool {
		return toInt(element) < search
	}
}

func intLeComparator(search int) Comparator {
	return func(element string) bool {
		return toInt(element) <= search
	}
}

func floatEqComparator(search float32) Comparator {
	return func(element string) bool {
		return toFloat(element) == search
	}
}

func floatNeComparator(search float32) Comparator {
	return func(element string) bool {
		return toFloat(element) != search
	}
}

func floatGtComparator(search float32) Comparator {
	return func(element string) bool {
		return toFloat(element) > search
	}
}

func floatGeComparator(search float32) Comparator {
	return func(element string) bool {
		return toFloat(element) >= search
	}
}

func floatLtComparator(search float32) Comparator {
	return func(element string) bool {
		return toFloat(element) < search
	}
}

func floatLeComparator(search float32) Comparator {
	return func(element string) bool {
		return toFloat(element) <= search
	}
}

// dropTailComparator aligns nanosecond-precision duration values with
// whole-second search values: the last 9 characters are dropped before
// delegating, when that many are present.
func dropTailComparator(inner Comparator) Comparator {
	return func(element string) bool {
		if len(element) > 9 {
			return inner(element[:len(element)-9])
		}
		return inner(element)
	}
}

// toInt is a tolerant integer parse; anything unparsable is 0.
func toInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// toFloat is a tolerant float parse; anything unparsable is 0.
func toFloat(s string) float32 {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0
	}
	return float32(f)
}

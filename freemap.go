package tunedex

import (
	"errors"
	"sort"
)

// freeMap tracks unused byte ranges of the library file so deleted record
// space can be handed back out.
type freeMap struct {
	freeSpaces []space
}

type space struct {
	start  int
	length int
}

// markFree adds a range to the map, merging it with any contiguous ranges.
func (fm *freeMap) markFree(start, length int) {
	if length <= 0 {
		return
	}

	fm.freeSpaces = append(fm.freeSpaces, space{start, length})

	sort.Slice(fm.freeSpaces, func(i, j int) bool {
		return fm.freeSpaces[i].start < fm.freeSpaces[j].start
	})

	merged := []space{}
	for _, s := range fm.freeSpaces {
		if len(merged) == 0 || merged[len(merged)-1].start+merged[len(merged)-1].length < s.start {
			merged = append(merged, s)
		} else if s.start+s.length > merged[len(merged)-1].start+merged[len(merged)-1].length {
			merged[len(merged)-1].length = s.start + s.length - merged[len(merged)-1].start
		}
	}
	fm.freeSpaces = merged
}

// markUsed carves a range out of whichever free space contains it. Used when
// replaying live records from an existing file.
func (fm *freeMap) markUsed(start, length int) {
	if length <= 0 {
		return
	}

	for i, s := range fm.freeSpaces {
		if s.start <= start && start+length <= s.start+s.length {
			if start == s.start {
				fm.freeSpaces[i].start += length
				fm.freeSpaces[i].length -= length
			} else if start+length == s.start+s.length {
				fm.freeSpaces[i].length -= length
			} else {
				// Used space is in the middle; split the free space.
				fm.freeSpaces = append(fm.freeSpaces, space{
					start:  start + length,
					length: s.start + s.length - (start + length),
				})
				fm.freeSpaces[i].length = start - s.start
				sort.Slice(fm.freeSpaces, func(i, j int) bool {
					return fm.freeSpaces[i].start < fm.freeSpaces[j].start
				})
				return
			}

			if fm.freeSpaces[i].length == 0 {
				fm.freeSpaces = append(fm.freeSpaces[:i], fm.freeSpaces[i+1:]...)
			}
			return
		}
	}
}

// getFreeRange finds a free range for the given length, marks it used and
// returns its start along with the size actually taken. A remainder too small
// to hold a record header is folded into the allocation; leaving it stranded
// would break the record walk on the next open.
func (fm *freeMap) getFreeRange(length int) (int, int, error) {
	if length <= 0 {
		return 0, 0, errors.New("length must be positive")
	}

	for i, s := range fm.freeSpaces {
		if s.length < length {
			continue
		}

		start := s.start
		allocated := length
		if s.length-length < recordHeaderSize {
			allocated = s.length
		}

		fm.freeSpaces[i].start += allocated
		fm.freeSpaces[i].length -= allocated
		if fm.freeSpaces[i].length == 0 {
			fm.freeSpaces = append(fm.freeSpaces[:i], fm.freeSpaces[i+1:]...)
		}
		return start, allocated, nil
	}
	return 0, 0, errors.New("no sufficient free space available")
}

// rangeAt reports the length of the free range beginning exactly at start.
func (fm *freeMap) rangeAt(start int) (int, bool) {
	for _, s := range fm.freeSpaces {
		if s.start == start {
			return s.length, true
		}
	}
	return 0, false
}

// totalFree reports the number of free bytes tracked.
func (fm *freeMap) totalFree() int {
	total := 0
	for _, s := range fm.freeSpaces {
		total += s.length
	}
	return total
}

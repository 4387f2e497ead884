/*
Package similar decides whether two ticker symbols are near-duplicates.

The test is narrower than a general edit distance of one: it accepts exactly one
substitution between equal-length strings, or exactly one inserted/deleted character
between strings whose lengths differ by one. Transpositions and substitutions combined
with a length change are not near-duplicates.
*/
package similar

import "sort"

// IsNearDuplicate reports whether a and b differ by a single substitution or a single
// insertion/deletion. Identical strings are not near-duplicates.
func IsNearDuplicate(a, b string) bool {
	if a == b {
		return false
	}

	ra, rb := []rune(a), []rune(b)
	diff := len(ra) - len(rb)
	if diff > 1 || diff < -1 {
		return false
	}

	if diff == 0 {
		mismatches := 0
		for i := range ra {
			if ra[i] != rb[i] {
				mismatches++
			}
		}
		return mismatches == 1
	}

	shorter, longer := ra, rb
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	for i := range longer {
		if deletionEquals(longer, i, shorter) {
			return true
		}
	}
	return false
}

// deletionEquals reports whether longer with the rune at index skip removed equals shorter.
func deletionEquals(longer []rune, skip int, shorter []rune) bool {
	j := 0
	for i, r := range longer {
		if i == skip {
			continue
		}
		if shorter[j] != r {
			return false
		}
		j++
	}
	return true
}

// FindNearDuplicates returns every entry of known that is a near-duplicate of proposed,
// sorted ascending.
func FindNearDuplicates(proposed string, known []string) []string {
	var matches []string
	for _, t := range known {
		if IsNearDuplicate(proposed, t) {
			matches = append(matches, t)
		}
	}
	sort.Strings(matches)
	return matches
}

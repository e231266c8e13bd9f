package normalize

import "sort"

// NormalizeIndices reduces an arbitrary value list to the integer entries,
// sorted ascending. If answerCount is positive and every value lies in
// [1, answerCount] with no 0 present, the whole list is treated as 1-based
// and shifted down by one; otherwise values pass through as already 0-based.
// Upstream authoring tools alternate between the two conventions without a
// format flag, so this heuristic is the only disambiguation available.
//
// Duplicates are kept as supplied; the sort does not collapse them.
func NormalizeIndices(values []any, answerCount int) []int {
	out := make([]int, 0, len(values))
	for _, v := range values {
		if n, ok := ToInt(v); ok {
			out = append(out, n)
		}
	}
	sort.Ints(out)

	if len(out) == 0 {
		return out
	}

	if answerCount > 0 && isOneBased(out, answerCount) {
		for i := range out {
			out[i]--
		}
	}
	return out
}

// NormalizeIntIndices applies the same rule to an already-integer list.
func NormalizeIntIndices(values []int, answerCount int) []int {
	boxed := make([]any, len(values))
	for i, v := range values {
		boxed[i] = v
	}
	return NormalizeIndices(boxed, answerCount)
}

func isOneBased(sorted []int, answerCount int) bool {
	for _, idx := range sorted {
		if idx < 1 || idx > answerCount {
			return false
		}
	}
	return true
}

// SameIndexSet reports whether two normalized index lists are identical in
// length and content.
func SameIndexSet(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

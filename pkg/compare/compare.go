// Package compare implements the loose, type-tolerant equality used to
// decide whether two forms' data is close enough to merge without asking,
// plus the monotonic collision-avoidance naming scheme used when two spawn
// or evolution ids, or two exported file names, would collide.
package compare

import (
	"regexp"
	"strconv"
)

// Loose reports whether a and b are equal under loose comparison: strings
// compare case-insensitively, same-type empty containers compare equal,
// and maps/slices recurse transitively.
func Loose(a, b any) bool {
	return compareValues(a, b, true)
}

// Strict is plain structural equality (maps by key set, slices by
// loose-free multiset matching).
func Strict(a, b any) bool {
	return compareValues(a, b, false)
}

func compareValues(a, b any, loose bool) bool {
	am, aIsMap := a.(map[string]any)
	bm, bIsMap := b.(map[string]any)
	if aIsMap || bIsMap {
		if !aIsMap || !bIsMap {
			if loose && isEmptyContainer(a) && isEmptyContainer(b) {
				return true
			}
			return false
		}
		return mapsEqual(am, bm, loose)
	}

	as, aIsSlice := a.([]any)
	bs, bIsSlice := b.([]any)
	if aIsSlice || bIsSlice {
		if !aIsSlice || !bIsSlice {
			if loose && isEmptyContainer(a) && isEmptyContainer(b) {
				return true
			}
			return false
		}
		return slicesEqual(as, bs, loose)
	}

	if loose {
		as, aOK := a.(string)
		bs, bOK := b.(string)
		if aOK && bOK {
			return equalFold(as, bs)
		}
	}

	return a == b
}

func isEmptyContainer(v any) bool {
	switch t := v.(type) {
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	case nil:
		return false
	default:
		return false
	}
}

func mapsEqual(a, b map[string]any, loose bool) bool {
	keys := map[string]bool{}
	for k := range a {
		keys[k] = true
	}
	for k := range b {
		keys[k] = true
	}
	for key := range keys {
		av, aok := a[key]
		bv, bok := b[key]
		switch {
		case aok && bok:
			if !compareValues(av, bv, loose) {
				return false
			}
		case aok && !bok:
			if !(loose && isEmptyContainer(av)) {
				return false
			}
		case !aok && bok:
			if !(loose && isEmptyContainer(bv)) {
				return false
			}
		}
	}
	return true
}

func slicesEqual(a, b []any, loose bool) bool {
	if len(a) != len(b) {
		return false
	}
	unmatched := make([]any, len(b))
	copy(unmatched, b)
	for _, av := range a {
		found := -1
		for i, bv := range unmatched {
			if compareValues(av, bv, loose) {
				found = i
				break
			}
		}
		if found < 0 {
			return false
		}
		unmatched = append(unmatched[:found], unmatched[found+1:]...)
	}
	return true
}

func equalFold(a, b string) bool {
	return toLower(a) == toLower(b)
}

func toLower(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			r = r - 'A' + 'a'
		}
		out = append(out, r)
	}
	return string(out)
}

// NextCandidateName finds the last numeric suffix of s (preceded by one of
// "-", "_", ".", or no separator) and increments it; if none is found, it
// appends "-1".
func NextCandidateName(s string) string {
	best := findLastNumeric(s)
	if best == nil {
		return s + "-1"
	}
	prefix, number, suffix := best[0], best[1], best[2]
	return incrementNumeric(prefix, number, suffix)
}

// findLastNumeric returns [prefix, number, suffix] for the numeric run at
// the end of s, trying it preceded by "-", then "_", then ".", then by
// nothing; among candidates the rightmost run wins. Digits followed by
// other characters are not a suffix and are never incremented.
func findLastNumeric(s string) []string {
	type match struct {
		prefix, number, suffix string
		start                  int
	}
	var best *match

	tryPattern := func(sep string) {
		re := regexp.MustCompile(`(?s)(.*` + regexp.QuoteMeta(sep) + `)(\d+)$`)
		loc := re.FindStringSubmatchIndex(s)
		if loc == nil {
			return
		}
		prefix := s[loc[2]:loc[3]]
		number := s[loc[4]:loc[5]]
		suffix := s[loc[5]:]
		m := &match{prefix: prefix, number: number, suffix: suffix, start: loc[4]}
		if best == nil || m.start >= best.start {
			best = m
		}
	}

	for _, sep := range []string{"-", "_", ".", ""} {
		tryPattern(sep)
	}

	if best == nil {
		return nil
	}
	return []string{best.prefix, best.number, best.suffix}
}

func incrementNumeric(prefix, number, suffix string) string {
	n, err := strconv.Atoi(number)
	if err != nil {
		n = 0
	}
	return prefix + strconv.Itoa(n+1) + suffix
}

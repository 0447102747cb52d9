package datagrid

import (
	"cmp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// compareValues orders two field values: numerically when both are numbers,
// false before true when both are booleans, lexically on their string form
// otherwise. Absent values compare as the empty string.
func compareValues(a, b any) int {
	if fa, ok := numeric(a); ok {
		if fb, ok := numeric(b); ok {
			return cmp.Compare(fa, fb)
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			default:
				return 1
			}
		}
	}
	return strings.Compare(stringify(a), stringify(b))
}

// containsFold reports whether value's string form contains needle, ignoring case.
func containsFold(value any, needle string) bool {
	return strings.Contains(strings.ToLower(stringify(value)), strings.ToLower(needle))
}

// containsWordFold reports whether needle occurs in value's string form,
// ignoring case, starting at a word boundary. "active" matches "Active" and
// "Not active" but not "Inactive".
func containsWordFold(value any, needle string) bool {
	haystack := strings.ToLower(stringify(value))
	needle = strings.ToLower(needle)
	if needle == "" {
		return true
	}
	if first, _ := utf8.DecodeRuneInString(needle); !isWordRune(first) {
		return strings.Contains(haystack, needle)
	}
	for offset := 0; offset <= len(haystack); {
		i := strings.Index(haystack[offset:], needle)
		if i < 0 {
			return false
		}
		at := offset + i
		if at == 0 {
			return true
		}
		prev, _ := utf8.DecodeLastRuneInString(haystack[:at])
		if !isWordRune(prev) {
			return true
		}
		_, size := utf8.DecodeRuneInString(haystack[at:])
		offset = at + size
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

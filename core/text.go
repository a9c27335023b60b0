package core

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// NormID strips every non-digit character from v.
func NormID(v interface{}) string {
	var b strings.Builder
	for _, r := range NormText(v) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormText coerces v to a trimmed string; nil becomes "".
func NormText(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	default:
		return ""
	}
}

// ParseNumber parses v as a float accepting either comma or dot as the
// decimal separator. It returns nil (not zero) when v holds no finite
// number, so callers can tell "absent" from "earned zero".
func ParseNumber(v interface{}) *float64 {
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nil
		}
		return &n
	case int:
		f := float64(n)
		return &f
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", ".")
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return &f
	default:
		return nil
	}
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// CanonicalFold returns a diacritic-stripped, lowercased, whitespace-collapsed
// form of s for equality comparison. Never use the result for display.
func CanonicalFold(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// name collation is locale-aware and case/accent-insensitive; the sorted
// orderings it produces are a user-facing contract and must be stable.
var (
	collMu sync.Mutex
	coll   = collate.New(language.Spanish, collate.Loose)
)

func CompareNames(a, b string) int {
	collMu.Lock()
	defer collMu.Unlock()
	return coll.CompareString(a, b)
}

// SortNames sorts in place using the Spanish collator; ties fall back to
// byte order so equal-collating strings still order deterministically.
func SortNames(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		if c := CompareNames(names[i], names[j]); c != 0 {
			return c < 0
		}
		return names[i] < names[j]
	})
}

package report

import (
	"regexp"
	"sort"
)

// Period is the comparable form of an academic period token such as
// "2024-2025 CI" or "2025-II". The zero value is invalid and compares
// lowest, so malformed tokens sort last in newest-first listings instead
// of failing the run.
type Period struct {
	Year  int // first 4-digit year of the pair
	Cycle int // 1 = first term (CI), 2 = second term (CII)
	Raw   string
}

var periodRegex = regexp.MustCompile(`^\s*(\d{4})(?:\s*-\s*\d{4})?\s*[- ]?\s*(C?I{1,2})\s*$`)

func ParsePeriod(raw string) Period {
	m := periodRegex.FindStringSubmatch(raw)
	if m == nil {
		return Period{Raw: raw}
	}
	year := 0
	for _, r := range m[1] {
		year = year*10 + int(r-'0')
	}
	cycle := 1
	tok := m[2]
	if tok == "CII" || tok == "II" {
		cycle = 2
	}
	return Period{Year: year, Cycle: cycle, Raw: raw}
}

func (p Period) Valid() bool { return p.Year != 0 }

func (p Period) Equal(o Period) bool { return p.Year == o.Year && p.Cycle == o.Cycle }

// Less orders by year then cycle; invalid periods compare lowest.
func (p Period) Less(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Cycle < o.Cycle
}

// Prev returns the immediately preceding period: the second term's
// predecessor is the first term of the same year pair; the first term's
// predecessor is the second term of the prior pair.
func (p Period) Prev() Period {
	if !p.Valid() {
		return Period{}
	}
	if p.Cycle == 2 {
		return Period{Year: p.Year, Cycle: 1}
	}
	return Period{Year: p.Year - 1, Cycle: 2}
}

// SortPeriodsDesc orders raw period tokens newest first for selector lists.
func SortPeriodsDesc(raws []string) {
	sort.SliceStable(raws, func(i, j int) bool {
		pi, pj := ParsePeriod(raws[i]), ParsePeriod(raws[j])
		if pi.Equal(pj) {
			return raws[i] > raws[j]
		}
		return pj.Less(pi)
	})
}

package track

import (
	"sort"
	"strings"

	"github.com/campuskit/seguimiento/core"
	"github.com/campuskit/seguimiento/core/report"
)

// FilterContext carries the active period/career selection. Empty fields
// do not filter. It replaces what the source UI kept as ambient state.
type FilterContext struct {
	Period string
	Career string
}

func (fc FilterContext) matches(r report.NormalizedRow) bool {
	if fc.Period != "" && r.Period != fc.Period {
		return false
	}
	if fc.Career != "" && r.Career != fc.Career {
		return false
	}
	return true
}

// StudentAggregate accumulates one student's qualifying occurrences within
// the active filter. Never merged across periods.
type StudentAggregate struct {
	StudentID string
	FullName  string
	Level     string
	NEELabel  string // explicit "No" when the student holds no record

	Emails []string // deduplicated, insertion order

	// Occurrences is an order-preserving set keyed on the exact formatted
	// string; Attempts holds the attempt number behind each entry.
	Occurrences []string
	Attempts    []int

	RiskScore int // 0..100, per-scenario derivation
	RiskTier  string

	Enviar bool

	seenOcc   map[string]struct{}
	seenEmail map[string]struct{}
}

func newAggregate(r report.NormalizedRow, nee report.DisabilityMap) *StudentAggregate {
	return &StudentAggregate{
		StudentID: r.StudentID,
		FullName:  r.FullName,
		Level:     r.Level,
		NEELabel:  nee.Label(r.StudentID),
		Enviar:    r.Enviar,
		seenOcc:   make(map[string]struct{}),
		seenEmail: make(map[string]struct{}),
	}
}

func (a *StudentAggregate) addOccurrence(occ string, attempt int) {
	if occ == "" {
		return
	}
	if _, ok := a.seenOcc[occ]; ok {
		return
	}
	a.seenOcc[occ] = struct{}{}
	a.Occurrences = append(a.Occurrences, occ)
	a.Attempts = append(a.Attempts, attempt)
}

func (a *StudentAggregate) addEmail(addr string) {
	addr = core.CleanString(addr, true)
	if addr == "" {
		return
	}
	if _, ok := a.seenEmail[addr]; ok {
		return
	}
	a.seenEmail[addr] = struct{}{}
	a.Emails = append(a.Emails, addr)
}

// EmailsJoined renders the deduplicated address list for display.
func (a *StudentAggregate) EmailsJoined() string {
	return strings.Join(a.Emails, "; ")
}

// Aggregate runs the single classification-and-grouping pass for a rule.
// Aggregates left without occurrences are dropped; the result is sorted by
// display name with the locale-aware collator, a user-facing contract.
func Aggregate(rows []report.NormalizedRow, fc FilterContext, rule Rule, nee report.DisabilityMap) []*StudentAggregate {
	byID := make(map[string]*StudentAggregate)
	order := make([]string, 0)

	for _, r := range rows {
		if !fc.matches(r) {
			continue
		}
		if rule.Eligible == nil || !rule.Eligible(r, nee) {
			continue
		}
		agg, ok := byID[r.StudentID]
		if !ok {
			agg = newAggregate(r, nee)
			byID[r.StudentID] = agg
			order = append(order, r.StudentID)
		}
		if agg.FullName == "" {
			agg.FullName = r.FullName
		}
		agg.Enviar = agg.Enviar || r.Enviar
		agg.addEmail(r.EmailInstitutional)
		agg.addEmail(r.EmailPersonal)
		agg.addOccurrence(rule.Format(r), r.AttemptNumber)
	}

	out := make([]*StudentAggregate, 0, len(order))
	for _, id := range order {
		agg := byID[id]
		if len(agg.Occurrences) == 0 {
			continue
		}
		agg.RiskScore = rule.Score(agg)
		agg.RiskTier = TierForCount(len(agg.Occurrences))
		out = append(out, agg)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if c := core.CompareNames(out[i].FullName, out[j].FullName); c != 0 {
			return c < 0
		}
		return out[i].StudentID < out[j].StudentID
	})
	return out
}

// countScore maps the occurrence count onto the bounded severity bar.
func countScore(a *StudentAggregate) int {
	score := len(a.Occurrences) * 20
	if score > 100 {
		score = 100
	}
	return score
}

// weightedAttemptScore weighs each occurrence by its attempt number
// (1 point first attempt, 4 second, 6 third or later), scaled by 10.
func weightedAttemptScore(a *StudentAggregate) int {
	total := 0
	for _, attempt := range a.Attempts {
		switch {
		case attempt >= 3:
			total += 6
		case attempt == 2:
			total += 4
		default:
			total++
		}
	}
	score := total * 10
	if score > 100 {
		score = 100
	}
	return score
}

// TierForCount maps distinct-occurrence counts to risk tiers. Monotonic.
func TierForCount(n int) string {
	switch {
	case n <= 1:
		return "Sin riesgo"
	case n == 2:
		return "Riesgo bajo"
	case n == 3:
		return "Riesgo medio"
	case n == 4:
		return "Riesgo alto"
	default:
		return "Riesgo muy alto"
	}
}

// SeverityHue interpolates the UI color hue (green 120 at score 0 down to
// red 0 at score 100).
func SeverityHue(score int) int {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return 120 - (score * 120 / 100)
}

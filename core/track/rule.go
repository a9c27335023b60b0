package track

import (
	"fmt"

	"github.com/campuskit/seguimiento/core/report"
)

// Scenario selects one of the tracking pipelines. They all share the same
// aggregation path and differ only in eligibility, occurrence formatting
// and risk scoring.
type Scenario int

const (
	RepeatEnrollment Scenario = iota // segundas matrículas en adelante
	Partial                          // notas parciales y asistencia
	Final                            // examen final
	SpecialNeeds                     // estudiantes NEE
	NonReenrollment                  // no re-matriculados (anti-join)
)

func (s Scenario) String() string {
	switch s {
	case RepeatEnrollment:
		return "matriculas"
	case Partial:
		return "parciales"
	case Final:
		return "finales"
	case SpecialNeeds:
		return "nee"
	case NonReenrollment:
		return "no-rematriculados"
	}
	return "desconocido"
}

// Rule bundles the per-scenario behavior: an eligibility predicate, an
// occurrence formatter and a risk score over the accumulated aggregate.
type Rule struct {
	Scenario Scenario
	Eligible func(r report.NormalizedRow, nee report.DisabilityMap) bool
	Format   func(r report.NormalizedRow) string
	Score    func(a *StudentAggregate) int // bounded 0..100
}

// RuleFor returns the rule for a scenario.
func RuleFor(s Scenario) Rule {
	switch s {
	case RepeatEnrollment:
		return Rule{
			Scenario: s,
			Eligible: func(r report.NormalizedRow, _ report.DisabilityMap) bool {
				return r.AttemptNumber >= 2
			},
			Format: formatOccurrence,
			Score:  countScore,
		}
	case Partial:
		return Rule{
			Scenario: s,
			Eligible: func(r report.NormalizedRow, nee report.DisabilityMap) bool {
				return PartialState(r) != "" && attemptGate(r, nee)
			},
			Format: formatOccurrenceWithSection,
			Score:  countScore,
		}
	case Final:
		return Rule{
			Scenario: s,
			Eligible: func(r report.NormalizedRow, nee report.DisabilityMap) bool {
				return finalEligible(r) && attemptGate(r, nee)
			},
			Format: formatOccurrenceWithSection,
			Score:  countScore,
		}
	case SpecialNeeds:
		return Rule{
			Scenario: s,
			Eligible: func(r report.NormalizedRow, nee report.DisabilityMap) bool {
				return nee.Has(r.StudentID)
			},
			Format: formatOccurrence,
			Score:  weightedAttemptScore,
		}
	case NonReenrollment:
		return Rule{
			Scenario: s,
			// rows reaching aggregation already passed the anti-join
			Eligible: func(r report.NormalizedRow, _ report.DisabilityMap) bool {
				return nonReenrollmentCandidate(r)
			},
			Format: formatOccurrence,
			Score:  countScore,
		}
	}
	return Rule{Scenario: s}
}

const (
	StateCritical = "critico"
	StateWarning  = "advertencia"

	stateFailed = "REPROBADO"
)

// PartialState classifies a row against the partial-tracking thresholds:
// critical below 40% attendance or grade 4, warning below 70% / 7.
// Empty string means the row does not qualify.
func PartialState(r report.NormalizedRow) string {
	att := minOf(r.Attendance1, r.Attendance2)
	grade := minOf(r.Grade1, r.Grade2)
	if att == nil && grade == nil {
		return ""
	}
	if (att != nil && *att < 40) || (grade != nil && *grade < 4) {
		return StateCritical
	}
	if (att != nil && *att < 70) || (grade != nil && *grade < 7) {
		return StateWarning
	}
	return ""
}

func finalEligible(r report.NormalizedRow) bool {
	avg := r.Promedio
	if avg == nil {
		avg = r.FinalGrade
	}
	if avg == nil || *avg >= 7 {
		return false
	}
	if r.State == stateFailed {
		return true
	}
	grade := minOf(r.Grade1, r.Grade2)
	att := minOf(r.Attendance1, r.Attendance2)
	return (grade != nil && *grade < 4) || (att != nil && *att < 40)
}

// nonReenrollmentCandidate matches the previous-period side of the
// anti-join: second attempt that ended below the passing average.
func nonReenrollmentCandidate(r report.NormalizedRow) bool {
	return r.AttemptNumber == 2 && r.Promedio != nil && *r.Promedio < 7
}

// attemptGate: NEE students qualify from their first attempt, everyone
// else needs at least a second one.
func attemptGate(r report.NormalizedRow, nee report.DisabilityMap) bool {
	if nee.Has(r.StudentID) {
		return r.AttemptNumber >= 1
	}
	return r.AttemptNumber >= 2
}

func minOf(vals ...*float64) *float64 {
	var min *float64
	for _, v := range vals {
		if v == nil {
			continue
		}
		if min == nil || *v < *min {
			min = v
		}
	}
	return min
}

// A row without a subject is not a qualifying occurrence; the aggregator
// drops students left with an empty occurrence set.
func formatOccurrence(r report.NormalizedRow) string {
	if r.Subject == "" {
		return ""
	}
	return fmt.Sprintf("[%d] %s (%s)", r.AttemptNumber, r.Subject, r.InstructorRaw)
}

func formatOccurrenceWithSection(r report.NormalizedRow) string {
	occ := formatOccurrence(r)
	if occ != "" && r.Section != "" {
		occ += ": " + r.Section
	}
	return occ
}

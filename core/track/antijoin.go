package track

import (
	"github.com/campuskit/seguimiento/core/report"
)

// FlagNonReenrollment runs the cross-period anti-join: a student/subject
// pair is flagged iff it appears in the period immediately preceding
// `current` as a failed second attempt and does NOT reappear in `current`
// as a third attempt. The returned rows are the flagged previous-period
// rows, ready for aggregation under the NonReenrollment rule.
//
// The check must be exact: a false negative silently drops a student who
// failed to re-enroll.
func FlagNonReenrollment(rows []report.NormalizedRow, current report.Period) []report.NormalizedRow {
	if !current.Valid() {
		return nil
	}
	prev := current.Prev()

	// student/subject pairs re-enrolled in the current period
	reenrolled := make(map[pairKey]struct{})
	for _, r := range rows {
		if r.AttemptNumber != 3 {
			continue
		}
		if !report.ParsePeriod(r.Period).Equal(current) {
			continue
		}
		reenrolled[keyOf(r)] = struct{}{}
	}

	flagged := make([]report.NormalizedRow, 0)
	for _, r := range rows {
		if !nonReenrollmentCandidate(r) {
			continue
		}
		if !report.ParsePeriod(r.Period).Equal(prev) {
			continue
		}
		if _, ok := reenrolled[keyOf(r)]; ok {
			continue
		}
		flagged = append(flagged, r)
	}
	return flagged
}

type pairKey struct {
	studentID string
	subject   string
}

func keyOf(r report.NormalizedRow) pairKey {
	return pairKey{studentID: r.StudentID, subject: r.Subject}
}

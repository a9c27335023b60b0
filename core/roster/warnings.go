package roster

import (
	"strings"

	"github.com/campuskit/seguimiento/core"
	"github.com/campuskit/seguimiento/core/track"
)

// Warnings lists the recipients that would silently fall out of a dispatch:
// instructors absent from the roster, and instructors present but without a
// recorded contact address. Both lists are deduplicated and collator-sorted
// so output is deterministic for any input ordering.
type Warnings struct {
	Missing []string
	NoEmail []string
}

// ComputeWarnings inspects every distinct instructor appearing in the
// given aggregates' occurrences. Callers pass the final to-be-sent set;
// excluded aggregates must be filtered out beforehand.
func ComputeWarnings(aggs []*track.StudentAggregate, idx *Index) Warnings {
	var w Warnings
	missingSeen := make(map[string]struct{})
	noEmailSeen := make(map[string]struct{})

	for _, agg := range aggs {
		for _, occ := range agg.Occurrences {
			token := InstructorToken(occ)
			if token == "" {
				continue
			}
			ins := ExtractInstructor(token)
			if ins.Name == "" && ins.ID == "" {
				continue
			}

			matches := matchEntries(idx, ins)
			if len(matches) == 0 {
				addOnce(&w.Missing, missingSeen, displayName(ins))
				continue
			}
			if !anyEmail(matches) {
				addOnce(&w.NoEmail, noEmailSeen, noEmailMessage(ins, matches))
			}
		}
	}

	core.SortNames(w.Missing)
	core.SortNames(w.NoEmail)
	return w
}

func matchEntries(idx *Index, ins Instructor) []Entry {
	if ins.ID != "" {
		if e, ok := idx.MatchID(ins.ID); ok {
			return []Entry{e}
		}
	}
	return idx.MatchName(ins.Name)
}

func anyEmail(entries []Entry) bool {
	for _, e := range entries {
		if e.Email != "" {
			return true
		}
	}
	return false
}

// noEmailMessage qualifies the warning with every candidate id so homonym
// matches never silently collapse to one person.
func noEmailMessage(ins Instructor, matches []Entry) string {
	ids := make([]string, 0, len(matches))
	for _, e := range matches {
		if e.ID != "" {
			ids = append(ids, e.ID)
		}
	}
	name := displayName(ins)
	if len(ids) == 0 {
		return name
	}
	return name + " (" + strings.Join(ids, ", ") + ")"
}

func displayName(ins Instructor) string {
	if ins.Name != "" {
		return ins.Name
	}
	return ins.ID
}

func addOnce(list *[]string, seen map[string]struct{}, val string) {
	key := core.CanonicalFold(val)
	if _, ok := seen[key]; ok {
		return
	}
	seen[key] = struct{}{}
	*list = append(*list, val)
}

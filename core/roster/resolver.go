package roster

import (
	"regexp"
	"strings"

	"github.com/campuskit/seguimiento/core"
)

// Instructor is the best-effort parse of a free-text instructor token.
// ID stays empty when the token carries no recognizable id; the caller
// decides how to degrade (Unresolved reports it).
type Instructor struct {
	ID      string
	Name    string
	Section string
}

func (i Instructor) Unresolved() bool { return i.ID == "" }

// Real extracts have shown two separator conventions (hyphen, em-dash)
// and 9- or 10-digit ids; keep the recognized shapes in one place.
var (
	idNameRegex  = regexp.MustCompile(`^(\d{9,10})\s*[-—]\s*(.+)$`)
	occTailRegex = regexp.MustCompile(`\(([^()]*)\)\s*(?::\s*(.+?))?\s*$`)
)

// ExtractInstructor parses an "id - name: section" token. Parsing order:
// a trailing ": section" is stripped first, then the remainder is tried
// as id-dash-name; on no match the whole remainder is the name.
func ExtractInstructor(token string) Instructor {
	token = core.CleanString(token)
	var section string
	if idx := strings.LastIndex(token, ":"); idx >= 0 {
		section = core.CleanString(token[idx+1:])
		token = core.CleanString(token[:idx])
	}
	if m := idNameRegex.FindStringSubmatch(token); m != nil {
		return Instructor{ID: m[1], Name: core.CleanString(m[2]), Section: section}
	}
	return Instructor{Name: token, Section: section}
}

// InstructorToken pulls the parenthesized instructor portion (with any
// trailing ": section") out of a formatted occurrence string. Returns ""
// when the occurrence carries no instructor.
func InstructorToken(occurrence string) string {
	m := occTailRegex.FindStringSubmatch(occurrence)
	if m == nil {
		return ""
	}
	token := m[1]
	if m[2] != "" {
		token += ": " + m[2]
	}
	return core.CleanString(token)
}

// Entry is one instructor in the roster dataset.
type Entry struct {
	ID    string
	Name  string
	Email string
}

// Index resolves instructors by canonical-folded name and by id. A folded
// name mapping to several distinct ids (homonyms) keeps every candidate;
// consumers report all of them instead of silently picking one.
type Index struct {
	byName map[string][]Entry
	byID   map[string]Entry
}

// Roster column aliases. The core accepts whichever are present and never
// requires all of them.
var (
	rosterIDAliases    = []string{"CEDULA", "IDENTIFICACION", "ID_DOCENTE", "DOCUMENTO"}
	rosterFirstAliases = []string{"NOMBRES", "NOMBRE"}
	rosterLastAliases  = []string{"APELLIDOS", "APELLIDO"}
	rosterFullAliases  = []string{"DOCENTE", "NOMBRE_COMPLETO", "APELLIDOS_NOMBRES"}
	rosterEmailAliases = []string{"CORREO", "CORREO_INSTITUCIONAL", "CORREO_ELECTRONICO", "EMAIL", "MAIL"}
)

// BuildIndex indexes the roster table. Every available name-composition
// variant (first+last, last+first, combined column) registers the entry
// under its canonical fold so either ordering convention matches.
func BuildIndex(t core.Table) *Index {
	idx := &Index{
		byName: make(map[string][]Entry),
		byID:   make(map[string]Entry),
	}
	lookup := headerLookup(t.Headers)
	for _, row := range t.Rows {
		id := core.NormID(firstValue(row, lookup, rosterIDAliases))
		first := core.NormText(firstValue(row, lookup, rosterFirstAliases))
		last := core.NormText(firstValue(row, lookup, rosterLastAliases))
		full := core.NormText(firstValue(row, lookup, rosterFullAliases))
		email := core.CleanString(core.NormText(firstValue(row, lookup, rosterEmailAliases)), true)

		name := full
		if name == "" {
			name = core.CleanString(last + " " + first)
		}
		if name == "" && id == "" {
			continue
		}
		entry := Entry{ID: id, Name: name, Email: email}

		if id != "" {
			if _, ok := idx.byID[id]; !ok {
				idx.byID[id] = entry
			}
		}
		for _, variant := range nameVariants(first, last, full) {
			idx.register(variant, entry)
		}
	}
	return idx
}

func (idx *Index) register(name string, entry Entry) {
	folded := core.CanonicalFold(name)
	if folded == "" {
		return
	}
	for _, existing := range idx.byName[folded] {
		if existing.ID == entry.ID {
			return
		}
	}
	idx.byName[folded] = append(idx.byName[folded], entry)
}

// MatchName returns every roster entry registered under the canonical fold
// of name. Multiple entries mean homonyms.
func (idx *Index) MatchName(name string) []Entry {
	return idx.byName[core.CanonicalFold(name)]
}

// MatchID resolves an id carried by the occurrence itself.
func (idx *Index) MatchID(id string) (Entry, bool) {
	e, ok := idx.byID[id]
	return e, ok
}

// Resolve finds the contact entry for a parsed instructor: by id when the
// token carried one, else by canonical name.
func (idx *Index) Resolve(ins Instructor) (Entry, bool) {
	if ins.ID != "" {
		if e, ok := idx.MatchID(ins.ID); ok {
			return e, true
		}
	}
	matches := idx.MatchName(ins.Name)
	if len(matches) == 0 {
		return Entry{}, false
	}
	return matches[0], true
}

func nameVariants(first, last, full string) []string {
	variants := make([]string, 0, 3)
	if full != "" {
		variants = append(variants, full)
	}
	if first != "" && last != "" {
		variants = append(variants, first+" "+last, last+" "+first)
	} else if first != "" {
		variants = append(variants, first)
	} else if last != "" {
		variants = append(variants, last)
	}
	return variants
}

func headerLookup(headers []string) map[string]string {
	m := make(map[string]string, len(headers))
	for _, h := range headers {
		folded := strings.ToUpper(strings.ReplaceAll(core.CanonicalFold(h), " ", "_"))
		if _, ok := m[folded]; !ok {
			m[folded] = h
		}
	}
	return m
}

func firstValue(row core.Row, lookup map[string]string, aliases []string) interface{} {
	for _, alias := range aliases {
		if actual, ok := lookup[alias]; ok {
			if v := row[actual]; v != nil {
				return v
			}
		}
	}
	return nil
}

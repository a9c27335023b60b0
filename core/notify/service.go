package notify

import (
	"context"
	"net/mail"
	"sort"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/campuskit/seguimiento/core"
	"github.com/campuskit/seguimiento/core/roster"
	"github.com/campuskit/seguimiento/core/track"
)

// Audience template keys in the store, with historical variants.
var templateKeys = map[string][]string{
	"authority":  {"PLANTILLA_AUTORIDAD", "TEMPLATE_AUTORIDAD"},
	"instructor": {"PLANTILLA_DOCENTE", "TEMPLATE_DOCENTE"},
	"student":    {"PLANTILLA_ESTUDIANTE", "TEMPLATE_ESTUDIANTE"},
}

var audienceSubjects = map[string]string{
	"authority":  "Reporte de estudiantes en riesgo académico",
	"instructor": "Estudiantes en riesgo académico en sus asignaturas",
	"student":    "Alerta de seguimiento académico",
}

// Request is one dispatch invocation. Aggregates not flagged Enviar are
// excluded before anything runs, so warnings only ever reflect the final
// to-be-sent set.
type Request struct {
	Scenario   string `json:"escenario" validate:"required"`
	Period     string `json:"periodo"`
	Authority  string `json:"autoridad" validate:"omitempty,email"`
	Aggregates []*track.StudentAggregate
	Roster     *roster.Index
}

// Result reports a dispatch attempt. It is always populated, even when
// individual passes fail; already-sent messages stay delivered.
type Result struct {
	BatchID string
	Sent    int
	Missing []string
	NoEmail []string
}

type Service struct {
	conf       *core.Config
	store      core.Store
	email      core.EmailService
	log        core.Logger
	validate   *validator.Validate
	translator ut.Translator
}

func NewService(conf *core.Config, store core.Store, email core.EmailService, log core.Logger) *Service {
	validate, translator := core.NewValidator()
	return &Service{
		conf:       conf,
		store:      store,
		email:      email,
		log:        log,
		validate:   validate,
		translator: translator,
	}
}

// Dispatch runs the three audience passes in order (authority, one message
// per distinct instructor, one per student), each send awaited before the
// next. Pass failures are independent: a failed authority message never
// stops the instructor or student passes. The returned error summarizes
// send failures; the Result is valid either way.
func (svc *Service) Dispatch(ctx context.Context, req Request) (Result, error) {
	res := Result{BatchID: uuid.NewString()}

	if err := svc.validate.Struct(req); err != nil {
		return res, core.TranslateValidationErrors(err, svc.translator)
	}
	if req.Roster == nil {
		return res, errors.New("notify: roster index is required")
	}

	toSend := optedIn(req.Aggregates)
	warnings := roster.ComputeWarnings(toSend, req.Roster)
	res.Missing = warnings.Missing
	res.NoEmail = warnings.NoEmail

	var failed int
	failed += svc.sendAuthority(ctx, req, toSend, res.BatchID, &res.Sent)
	failed += svc.sendInstructors(ctx, req, toSend, res.BatchID, &res.Sent)
	failed += svc.sendStudents(ctx, req, toSend, res.BatchID, &res.Sent)

	if failed > 0 {
		return res, errors.Errorf("notify: batch %s: %d send(s) failed", res.BatchID, failed)
	}
	return res, nil
}

func optedIn(aggs []*track.StudentAggregate) []*track.StudentAggregate {
	out := make([]*track.StudentAggregate, 0, len(aggs))
	for _, a := range aggs {
		if a.Enviar {
			out = append(out, a)
		}
	}
	return out
}

// getTemplate resolves the audience template from the store; absent
// templates degrade to an empty string, never an error.
func (svc *Service) getTemplate(ctx context.Context, audience string) string {
	t, err := svc.store.Get(ctx, templateKeys[audience]...)
	if err != nil {
		svc.log.Error("notify: loading template "+audience+": "+err.Error(), err)
		return ""
	}
	if t.Empty() {
		return ""
	}
	// templates are stored as a single-cell table under a "plantilla" column
	for _, v := range t.Rows[0] {
		if s := core.NormText(v); s != "" {
			return s
		}
	}
	return ""
}

func (svc *Service) send(ctx context.Context, batchID string, to []mail.Address, audience, body string) (sent bool) {
	msg := &core.EmailMessage{To: to, Subject: audienceSubjects[audience], Body: body}
	if err := svc.email.Send(ctx, msg); err != nil {
		svc.log.Error("notify: batch "+batchID+": "+audience+" send failed: "+err.Error(), err)
		return false
	}
	return true
}

func (svc *Service) sendAuthority(ctx context.Context, req Request, toSend []*track.StudentAggregate, batchID string, sent *int) (failed int) {
	if len(toSend) == 0 {
		return 0
	}
	addr := req.Authority
	if addr == "" {
		addr = svc.conf.AuthorityEmail
	}
	if addr == "" {
		svc.log.Warn("notify: batch " + batchID + ": no authority address configured, skipping pass")
		return 0
	}
	tmpl := svc.getTemplate(ctx, "authority")
	if tmpl == "" {
		svc.log.Warn("notify: batch " + batchID + ": authority template missing, skipping pass")
		return 0
	}
	body := core.RenderTemplate(tmpl, authorityData(req, toSend))
	to := []mail.Address{{Name: svc.conf.AuthorityName, Address: addr}}
	if svc.send(ctx, batchID, to, "authority", body) {
		*sent++
		return 0
	}
	return 1
}

func (svc *Service) sendInstructors(ctx context.Context, req Request, toSend []*track.StudentAggregate, batchID string, sent *int) (failed int) {
	tmpl := svc.getTemplate(ctx, "instructor")
	if tmpl == "" && len(toSend) > 0 {
		svc.log.Warn("notify: batch " + batchID + ": instructor template missing, skipping pass")
		return 0
	}
	for _, grp := range groupByInstructor(toSend, req.Roster, svc.log) {
		if grp.entry.Email == "" {
			svc.log.Warn("notify: batch " + batchID + ": instructor " + grp.entry.ID + " has no contact address, skipping")
			continue
		}
		body := core.RenderTemplate(tmpl, map[string]string{
			"nombre_docente":    grp.entry.Name,
			"periodo":           req.Period,
			"lista_estudiantes": strings.Join(grp.lines, "\n"),
		})
		to := []mail.Address{{Name: grp.entry.Name, Address: grp.entry.Email}}
		if svc.send(ctx, batchID, to, "instructor", body) {
			*sent++
		} else {
			failed++
		}
	}
	return failed
}

func (svc *Service) sendStudents(ctx context.Context, req Request, toSend []*track.StudentAggregate, batchID string, sent *int) (failed int) {
	tmpl := svc.getTemplate(ctx, "student")
	if tmpl == "" && len(toSend) > 0 {
		svc.log.Warn("notify: batch " + batchID + ": student template missing, skipping pass")
		return 0
	}
	for _, agg := range toSend {
		if len(agg.Emails) == 0 {
			svc.log.Warn("notify: batch " + batchID + ": student " + agg.StudentID + " has no email, skipping")
			continue
		}
		body := core.RenderTemplate(tmpl, map[string]string{
			"nombre_estudiante": agg.FullName,
			"periodo":           req.Period,
			"nivel":             agg.Level,
			"nee":               agg.NEELabel,
			"lista_materias":    strings.Join(agg.Occurrences, "\n"),
		})
		to := make([]mail.Address, 0, len(agg.Emails))
		for _, e := range agg.Emails {
			to = append(to, mail.Address{Name: agg.FullName, Address: e})
		}
		if svc.send(ctx, batchID, to, "student", body) {
			*sent++
		} else {
			failed++
		}
	}
	return failed
}

func authorityData(req Request, toSend []*track.StudentAggregate) map[string]string {
	students := make([]string, 0, len(toSend))
	occurrences := make([]string, 0)
	detail := make([]string, 0, len(toSend))
	for _, agg := range toSend {
		students = append(students, "- "+agg.FullName+" ("+agg.StudentID+"): "+agg.RiskTier)
		names := make([]string, 0)
		for _, occ := range agg.Occurrences {
			occurrences = append(occurrences, agg.FullName+": "+occ)
			if tok := roster.InstructorToken(occ); tok != "" {
				ins := roster.ExtractInstructor(tok)
				if ins.Name != "" {
					names = append(names, ins.Name)
				}
			}
		}
		detail = append(detail, agg.FullName+": "+strings.Join(dedupe(names), "; "))
	}
	return map[string]string{
		"escenario":         req.Scenario,
		"periodo":           req.Period,
		"lista_estudiantes": strings.Join(students, "\n"),
		"lista_ocurrencias": strings.Join(occurrences, "\n"),
		"detalle_docentes":  strings.Join(detail, "\n"),
	}
}

type instructorGroup struct {
	entry roster.Entry
	lines []string
}

// groupByInstructor buckets occurrence lines under the resolved instructor
// id. Occurrences whose instructor cannot be resolved to an id are skipped
// with a warning (they still reached the student's own message) and show
// up in the missing list computed beforehand.
func groupByInstructor(toSend []*track.StudentAggregate, idx *roster.Index, log core.Logger) []instructorGroup {
	byID := make(map[string]*instructorGroup)
	order := make([]string, 0)
	for _, agg := range toSend {
		for _, occ := range agg.Occurrences {
			tok := roster.InstructorToken(occ)
			if tok == "" {
				continue
			}
			ins := roster.ExtractInstructor(tok)
			entry, ok := idx.Resolve(ins)
			if !ok || entry.ID == "" {
				log.Warn("notify: instructor unresolved in occurrence: " + occ)
				continue
			}
			grp, seen := byID[entry.ID]
			if !seen {
				grp = &instructorGroup{entry: entry}
				byID[entry.ID] = grp
				order = append(order, entry.ID)
			}
			grp.lines = append(grp.lines, "- "+agg.FullName+" ("+agg.StudentID+"): "+occ)
		}
	}

	out := make([]instructorGroup, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := core.CompareNames(out[i].entry.Name, out[j].entry.Name); c != 0 {
			return c < 0
		}
		return out[i].entry.ID < out[j].entry.ID
	})
	return out
}

func dedupe(vals []string) []string {
	seen := make(map[string]struct{}, len(vals))
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		key := core.CanonicalFold(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

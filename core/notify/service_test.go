package notify_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/seguimiento/core"
	"github.com/campuskit/seguimiento/core/notify"
	"github.com/campuskit/seguimiento/core/report"
	"github.com/campuskit/seguimiento/core/roster"
	"github.com/campuskit/seguimiento/core/track"
	emailsvc "github.com/campuskit/seguimiento/services/email"
	"github.com/campuskit/seguimiento/storage/memstore"
	testutil "github.com/campuskit/seguimiento/tests"
)

func testConfig() *core.Config {
	conf := &core.Config{
		AppName:        "Seguimiento",
		AuthorityEmail: "decano@uni.edu",
		AuthorityName:  "Decano",
		TestMode:       true,
	}
	return conf
}

func testLogger() core.Logger {
	return core.NewStdLogger(log.New(os.Stderr, "test : ", log.LstdFlags))
}

func seedTemplates(store *memstore.Store) {
	store.SetTemplate("PLANTILLA_AUTORIDAD",
		"Estudiantes en riesgo:\n{lista_estudiantes}\nOcurrencias:\n{lista_ocurrencias}\nDocentes:\n{detalle_docentes}")
	store.SetTemplate("PLANTILLA_DOCENTE",
		"Estimado/a {nombre_docente}:\n{lista_estudiantes}")
	store.SetTemplate("PLANTILLA_ESTUDIANTE",
		"Hola {nombre_estudiante}:\n{lista_materias}")
}

func testRoster() *roster.Index {
	return roster.BuildIndex(testutil.NewTable(
		[]string{"CEDULA", "DOCENTE", "CORREO"},
		[]interface{}{"1804556677", "ORTEGA MARÍA", "mortega@uni.edu"},
		[]interface{}{"1712345678", "RUIZ JOSÉ", "jruiz@uni.edu"},
	))
}

// two rows for one student, attempts 2 and 3, distinct instructors
func testAggregates(t *testing.T) []*track.StudentAggregate {
	t.Helper()
	a := testutil.EnrollmentRow("0101", "PÉREZ ANA", "2025-I", "A", "1804556677 - ORTEGA MARÍA", 2)
	a.EmailInstitutional = "aperez@uni.edu"
	a.Enviar = true
	b := testutil.EnrollmentRow("0101", "PÉREZ ANA", "2025-I", "B", "1712345678 - RUIZ JOSÉ", 3)
	b.Enviar = true

	aggs := track.Aggregate([]report.NormalizedRow{a, b}, track.FilterContext{Period: "2025-I"},
		track.RuleFor(track.RepeatEnrollment), report.DisabilityMap{})
	require.Len(t, aggs, 1)
	require.Len(t, aggs[0].Occurrences, 2)
	return aggs
}

func TestDispatch_fanOutOrder(t *testing.T) {
	emailsvc.ClearSentMessages()
	conf := testConfig()
	store := memstore.New()
	seedTemplates(store)
	svc := notify.NewService(conf, store, emailsvc.NewConsoleServiceMock(conf), testLogger())

	res, err := svc.Dispatch(context.Background(), notify.Request{
		Scenario:   "matriculas",
		Period:     "2025-I",
		Aggregates: testAggregates(t),
		Roster:     testRoster(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.BatchID)
	assert.Equal(t, 4, res.Sent)
	assert.Empty(t, res.Missing)
	assert.Empty(t, res.NoEmail)

	// exactly 1 authority, 2 instructor, 1 student message, in that order
	msgs := emailsvc.SentMessages
	require.Len(t, msgs, 4)
	assert.Equal(t, "decano@uni.edu", msgs[0].To[0].Address)
	assert.Equal(t, "mortega@uni.edu", msgs[1].To[0].Address) // Ortega collates before Ruiz
	assert.Equal(t, "jruiz@uni.edu", msgs[2].To[0].Address)
	assert.Equal(t, "aperez@uni.edu", msgs[3].To[0].Address)
}

func TestDispatch_authorityBody(t *testing.T) {
	emailsvc.ClearSentMessages()
	conf := testConfig()
	store := memstore.New()
	seedTemplates(store)
	svc := notify.NewService(conf, store, emailsvc.NewConsoleServiceMock(conf), testLogger())

	_, err := svc.Dispatch(context.Background(), notify.Request{
		Scenario:   "matriculas",
		Period:     "2025-I",
		Aggregates: testAggregates(t),
		Roster:     testRoster(),
	})
	require.NoError(t, err)
	require.NotEmpty(t, emailsvc.SentMessages)

	want := "Estudiantes en riesgo:\n" +
		"- PÉREZ ANA (0101): Riesgo bajo\n" +
		"Ocurrencias:\n" +
		"PÉREZ ANA: [2] A (1804556677 - ORTEGA MARÍA)\n" +
		"PÉREZ ANA: [3] B (1712345678 - RUIZ JOSÉ)\n" +
		"Docentes:\n" +
		"PÉREZ ANA: ORTEGA MARÍA; RUIZ JOSÉ"
	got := emailsvc.SentMessages[0].Body
	if got != want {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A: difflib.SplitLines(want), B: difflib.SplitLines(got),
			FromFile: "want", ToFile: "got", Context: 3,
		})
		t.Errorf("authority body mismatch:\n%s", diff)
	}
}

func TestDispatch_optOutExcludedBeforeWarnings(t *testing.T) {
	emailsvc.ClearSentMessages()
	conf := testConfig()
	store := memstore.New()
	seedTemplates(store)
	svc := notify.NewService(conf, store, emailsvc.NewConsoleServiceMock(conf), testLogger())

	aggs := testAggregates(t)
	aggs[0].Enviar = false
	// an occurrence naming an unknown instructor must not surface when the
	// aggregate is excluded from the batch
	aggs[0].Occurrences = append(aggs[0].Occurrences, "[2] C (NADIE CONOCIDO)")

	res, err := svc.Dispatch(context.Background(), notify.Request{
		Scenario:   "matriculas",
		Aggregates: aggs,
		Roster:     testRoster(),
	})
	require.NoError(t, err)
	assert.Zero(t, res.Sent)
	assert.Empty(t, res.Missing)
	assert.Empty(t, emailsvc.SentMessages)
}

func TestDispatch_unresolvedAndMissingWarnings(t *testing.T) {
	emailsvc.ClearSentMessages()
	conf := testConfig()
	store := memstore.New()
	seedTemplates(store)
	svc := notify.NewService(conf, store, emailsvc.NewConsoleServiceMock(conf), testLogger())

	a := testutil.EnrollmentRow("0101", "PÉREZ ANA", "2025-I", "A", "ZAMBRANO EVA", 2)
	a.EmailInstitutional = "aperez@uni.edu"
	a.Enviar = true
	aggs := track.Aggregate([]report.NormalizedRow{a}, track.FilterContext{},
		track.RuleFor(track.RepeatEnrollment), report.DisabilityMap{})

	res, err := svc.Dispatch(context.Background(), notify.Request{
		Scenario:   "matriculas",
		Aggregates: aggs,
		Roster:     testRoster(),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ZAMBRANO EVA"}, res.Missing)

	// instructor pass skipped the unresolved occurrence, student still mailed
	require.Len(t, emailsvc.SentMessages, 2)
	assert.Equal(t, "decano@uni.edu", emailsvc.SentMessages[0].To[0].Address)
	assert.Equal(t, "aperez@uni.edu", emailsvc.SentMessages[1].To[0].Address)
	// the occurrence stays in the student's own message
	assert.Contains(t, emailsvc.SentMessages[1].Body, "[2] A (ZAMBRANO EVA)")
}

func TestDispatch_sendFailureDoesNotStopBatch(t *testing.T) {
	emailsvc.ClearSentMessages()
	conf := testConfig()
	store := memstore.New()
	seedTemplates(store)
	// the first instructor's transport rejects; everything else goes through
	email := emailsvc.NewConsoleServiceMock(conf, "mortega@uni.edu")
	svc := notify.NewService(conf, store, email, testLogger())

	res, err := svc.Dispatch(context.Background(), notify.Request{
		Scenario:   "matriculas",
		Period:     "2025-I",
		Aggregates: testAggregates(t),
		Roster:     testRoster(),
	})
	require.Error(t, err) // surfaced as terminal for the invocation
	assert.Equal(t, 3, res.Sent)

	// later messages were still attempted, no rollback of earlier ones
	msgs := emailsvc.SentMessages
	require.Len(t, msgs, 3)
	assert.Equal(t, "decano@uni.edu", msgs[0].To[0].Address)
	assert.Equal(t, "jruiz@uni.edu", msgs[1].To[0].Address)
	assert.Equal(t, "aperez@uni.edu", msgs[2].To[0].Address)
}

func TestDispatch_missingTemplateSkipsPass(t *testing.T) {
	emailsvc.ClearSentMessages()
	conf := testConfig()
	store := memstore.New()
	store.SetTemplate("PLANTILLA_ESTUDIANTE", "Hola {nombre_estudiante}: tu beca {codigo_beca}")
	svc := notify.NewService(conf, store, emailsvc.NewConsoleServiceMock(conf), testLogger())

	res, err := svc.Dispatch(context.Background(), notify.Request{
		Scenario:   "matriculas",
		Aggregates: testAggregates(t),
		Roster:     testRoster(),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent) // only the student pass had a template

	require.Len(t, emailsvc.SentMessages, 1)
	// absent placeholder renders literally, never as an empty string
	assert.Contains(t, emailsvc.SentMessages[0].Body, "{codigo_beca}")
	assert.Contains(t, emailsvc.SentMessages[0].Body, "PÉREZ ANA")
}

func TestDispatch_validatesRequest(t *testing.T) {
	conf := testConfig()
	svc := notify.NewService(conf, memstore.New(), emailsvc.NewConsoleServiceMock(conf), testLogger())

	_, err := svc.Dispatch(context.Background(), notify.Request{Roster: testRoster()})
	require.Error(t, err)
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Len(t, vErr.Fields, 1)
	assert.Equal(t, "escenario", vErr.Fields[0].Field)

	_, err = svc.Dispatch(context.Background(), notify.Request{Scenario: "matriculas"})
	assert.EqualError(t, err, "notify: roster index is required")
}

package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/seguimiento/core/track"
	testutil "github.com/campuskit/seguimiento/tests"
)

func aggWithOccurrences(occs ...string) *track.StudentAggregate {
	agg := &track.StudentAggregate{StudentID: "0101", FullName: "PÉREZ ANA", Enviar: true}
	agg.Occurrences = occs
	return agg
}

func TestComputeWarnings(t *testing.T) {
	idx := BuildIndex(testutil.NewTable(
		[]string{"CEDULA", "DOCENTE", "CORREO"},
		[]interface{}{"1804556677", "ORTEGA MARÍA", "mortega@uni.edu"},
		[]interface{}{"1712345678", "RUIZ JOSÉ", ""},
	))

	aggs := []*track.StudentAggregate{
		aggWithOccurrences(
			"[2] Cálculo (ORTEGA MARÍA)",          // matched, has email: no warning
			"[2] Física (1712345678 - RUIZ JOSÉ)", // matched, no email
			"[3] Química (ZAMBRANO EVA)",          // not in roster
			"[2] Biología (ANDRADE LUIS)",         // not in roster
		),
		// same missing instructor from another student, different casing
		aggWithOccurrences("[2] Botánica (zambrano eva)"),
	}

	w := ComputeWarnings(aggs, idx)

	// deduplicated and collator-sorted for any input ordering
	assert.Equal(t, []string{"ANDRADE LUIS", "ZAMBRANO EVA"}, w.Missing)
	assert.Equal(t, []string{"RUIZ JOSÉ (1712345678)"}, w.NoEmail)
}

func TestComputeWarnings_nameOnlyNoEmail(t *testing.T) {
	idx := BuildIndex(testutil.NewTable(
		[]string{"DOCENTE", "CORREO"},
		[]interface{}{"ZAMBRANO EVA", ""},
	))
	w := ComputeWarnings([]*track.StudentAggregate{
		aggWithOccurrences("[2] Química (ZAMBRANO EVA)"),
	}, idx)
	require.Len(t, w.NoEmail, 1)
	// no id resolvable: name-qualified message
	assert.Equal(t, "ZAMBRANO EVA", w.NoEmail[0])
	assert.Empty(t, w.Missing)
}

func TestComputeWarnings_homonymsReportAllIDs(t *testing.T) {
	idx := BuildIndex(testutil.NewTable(
		[]string{"CEDULA", "DOCENTE", "CORREO"},
		[]interface{}{"1804556677", "ORTEGA MARÍA", ""},
		[]interface{}{"1712345678", "Ortega Maria", ""},
	))
	w := ComputeWarnings([]*track.StudentAggregate{
		aggWithOccurrences("[2] Cálculo (ORTEGA MARÍA)"),
	}, idx)
	require.Len(t, w.NoEmail, 1)
	assert.Equal(t, "ORTEGA MARÍA (1804556677, 1712345678)", w.NoEmail[0])
}

package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testutil "github.com/campuskit/seguimiento/tests"
)

func TestExtractInstructor(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  Instructor
	}{
		{
			name:  "id hyphen name",
			token: "1804556677 - ORTEGA MARÍA",
			want:  Instructor{ID: "1804556677", Name: "ORTEGA MARÍA"},
		},
		{
			name:  "id em-dash name",
			token: "1804556677 — ORTEGA MARÍA",
			want:  Instructor{ID: "1804556677", Name: "ORTEGA MARÍA"},
		},
		{
			name:  "nine digit id",
			token: "180455667-RUIZ JOSÉ",
			want:  Instructor{ID: "180455667", Name: "RUIZ JOSÉ"},
		},
		{
			name:  "trailing section",
			token: "1804556677 - ORTEGA MARÍA: A",
			want:  Instructor{ID: "1804556677", Name: "ORTEGA MARÍA", Section: "A"},
		},
		{
			name:  "name only",
			token: "ORTEGA MARÍA",
			want:  Instructor{Name: "ORTEGA MARÍA"},
		},
		{
			name:  "short number is part of the name",
			token: "123 - ORTEGA",
			want:  Instructor{Name: "123 - ORTEGA"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractInstructor(tt.token)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.ID == "", got.Unresolved())
		})
	}
}

func TestInstructorToken(t *testing.T) {
	assert.Equal(t, "1804556677 - ORTEGA MARÍA",
		InstructorToken("[2] Cálculo (1804556677 - ORTEGA MARÍA)"))
	assert.Equal(t, "1804556677 - ORTEGA MARÍA: A",
		InstructorToken("[2] Cálculo (1804556677 - ORTEGA MARÍA): A"))
	assert.Equal(t, "", InstructorToken("[2] Cálculo"))
}

func rosterTable() *Index {
	return BuildIndex(testutil.NewTable(
		[]string{"CEDULA", "NOMBRES", "APELLIDOS", "CORREO"},
		[]interface{}{"1804556677", "María", "Ortega", "mortega@uni.edu"},
		[]interface{}{"1712345678", "José", "Ruiz", ""},
	))
}

func TestBuildIndex_nameVariants(t *testing.T) {
	idx := rosterTable()

	// diacritic- and case-insensitive, either name ordering
	for _, name := range []string{"MARIA ORTEGA", "Ortega María", "maría ortega"} {
		matches := idx.MatchName(name)
		require.Len(t, matches, 1, name)
		assert.Equal(t, "1804556677", matches[0].ID)
		assert.Equal(t, "mortega@uni.edu", matches[0].Email)
	}

	e, ok := idx.MatchID("1712345678")
	require.True(t, ok)
	assert.Empty(t, e.Email)
}

func TestBuildIndex_combinedColumn(t *testing.T) {
	idx := BuildIndex(testutil.NewTable(
		[]string{"ID_DOCENTE", "DOCENTE", "EMAIL"},
		[]interface{}{"1804556677", "ORTEGA MARÍA", "mortega@uni.edu"},
	))
	matches := idx.MatchName("ortega maria")
	require.Len(t, matches, 1)
	assert.Equal(t, "mortega@uni.edu", matches[0].Email)
}

func TestBuildIndex_homonymsKeepAllIDs(t *testing.T) {
	idx := BuildIndex(testutil.NewTable(
		[]string{"CEDULA", "DOCENTE", "CORREO"},
		[]interface{}{"1804556677", "ORTEGA MARÍA", ""},
		[]interface{}{"1712345678", "Ortega Maria", ""},
	))
	matches := idx.MatchName("ORTEGA MARIA")
	require.Len(t, matches, 2)
}

func TestResolve(t *testing.T) {
	idx := rosterTable()

	// id beats name when the token carries one
	e, ok := idx.Resolve(Instructor{ID: "1712345678", Name: "alguien distinto"})
	require.True(t, ok)
	assert.Equal(t, "1712345678", e.ID)

	e, ok = idx.Resolve(Instructor{Name: "MARIA ORTEGA"})
	require.True(t, ok)
	assert.Equal(t, "1804556677", e.ID)

	_, ok = idx.Resolve(Instructor{Name: "NADIE CONOCIDO"})
	assert.False(t, ok)
}

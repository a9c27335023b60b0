package testutil

import (
	"github.com/campuskit/seguimiento/core"
	"github.com/campuskit/seguimiento/core/report"
)

// EnrollmentHeaders is the layout most enrollment extracts arrive in.
var EnrollmentHeaders = []string{
	"CEDULA", "ESTUDIANTE", "PERIODO", "CARRERA", "NIVEL", "NRO_MATRICULA",
	"ASIGNATURA", "DOCENTE", "PARALELO", "NOTA1", "NOTA2", "PROMEDIO",
	"ASISTENCIA1", "ASISTENCIA2", "ESTADO", "CORREO_INSTITUCIONAL", "CORREO_PERSONAL",
}

// NewTable builds a table from a header list and per-row cell slices.
// Short rows leave trailing columns absent.
func NewTable(headers []string, cells ...[]interface{}) core.Table {
	t := core.Table{Headers: headers}
	for _, rowCells := range cells {
		row := make(core.Row, len(headers))
		for i, h := range headers {
			if i < len(rowCells) && rowCells[i] != nil {
				row[h] = rowCells[i]
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// EnrollmentRow builds a NormalizedRow directly, for classifier and
// aggregator tests that do not exercise header resolution.
func EnrollmentRow(id, name, period, subject, instructor string, attempt int) report.NormalizedRow {
	return report.NormalizedRow{
		StudentID:     id,
		FullName:      name,
		Period:        period,
		Subject:       subject,
		InstructorRaw: instructor,
		AttemptNumber: attempt,
	}
}

// Float is a shorthand for optional numeric cells.
func Float(v float64) *float64 { return &v }

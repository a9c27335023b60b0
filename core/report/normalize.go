package report

import (
	"strings"

	"github.com/campuskit/seguimiento/core"
)

// Column aliases recognized across the historical extract layouts. The
// extracts are produced by hand in different offices; the same content
// shows up under different headers depending on the source and year.
var columnAliases = map[string][]string{
	"studentId":   {"CEDULA", "IDENTIFICACION", "CEDULA_ESTUDIANTE", "DOCUMENTO"},
	"fullName":    {"ESTUDIANTE", "NOMBRE_ESTUDIANTE", "APELLIDOS_NOMBRES", "NOMBRES_COMPLETOS"},
	"period":      {"PERIODO", "PERIODO_ACADEMICO"},
	"career":      {"CARRERA"},
	"level":       {"NIVEL", "CURSO"},
	"attempt":     {"NRO_MATRICULA", "NUMERO_MATRICULA", "MATRICULA"},
	"subject":     {"ASIGNATURA", "MATERIA"},
	"instructor":  {"DOCENTE", "PROFESOR", "DOCENTE_ASIGNATURA"},
	"section":     {"PARALELO"},
	"grade1":      {"NOTA1", "PARCIAL1", "PRIMER_PARCIAL"},
	"grade2":      {"NOTA2", "PARCIAL2", "SEGUNDO_PARCIAL"},
	"finalGrade":  {"NOTA_FINAL", "EXAMEN_FINAL"},
	"promedio":    {"PROMEDIO", "PROMEDIO_FINAL"},
	"attendance1": {"ASISTENCIA1", "ASISTENCIA_PARCIAL_1", "PORCENTAJE_ASISTENCIA_1"},
	"attendance2": {"ASISTENCIA2", "ASISTENCIA_PARCIAL_2", "PORCENTAJE_ASISTENCIA_2"},
	"state":       {"ESTADO", "OBSERVACION"},
	"emailInst":   {"CORREO_INSTITUCIONAL", "EMAIL_INSTITUCIONAL"},
	"emailPers":   {"CORREO_PERSONAL", "EMAIL_PERSONAL", "CORREO"},
	"enviar":      {"ENVIAR"},
	"condition":   {"CONDICION", "DISCAPACIDAD", "TIPO_DISCAPACIDAD"},
	"percentage":  {"PORCENTAJE", "PORCENTAJE_DISCAPACIDAD"},
}

func normalizeHeader(h string) string {
	folded := core.CanonicalFold(h)
	return strings.ToUpper(strings.NewReplacer(" ", "_", ".", "_").Replace(folded))
}

// headerIndex resolves each logical field to the actual header present in
// the table, first alias wins. Built once per table.
type headerIndex map[string]string

func buildHeaderIndex(t core.Table) headerIndex {
	present := make(map[string]string, len(t.Headers))
	for _, h := range t.Headers {
		norm := normalizeHeader(h)
		if _, ok := present[norm]; !ok {
			present[norm] = h
		}
	}
	idx := make(headerIndex)
	for field, aliases := range columnAliases {
		for _, alias := range aliases {
			if actual, ok := present[alias]; ok {
				idx[field] = actual
				break
			}
		}
	}
	return idx
}

func (idx headerIndex) value(row core.Row, field string) interface{} {
	h, ok := idx[field]
	if !ok {
		return nil
	}
	return row[h]
}

func (idx headerIndex) text(row core.Row, field string) string {
	return core.NormText(idx.value(row, field))
}

func (idx headerIndex) number(row core.Row, field string) *float64 {
	return core.ParseNumber(idx.value(row, field))
}

// NormalizeTable cleans every row of a raw extract. Rows without a usable
// student identifier are dropped here, before any classification runs.
func NormalizeTable(t core.Table) []NormalizedRow {
	idx := buildHeaderIndex(t)
	rows := make([]NormalizedRow, 0, len(t.Rows))
	for _, raw := range t.Rows {
		id := core.NormID(idx.value(raw, "studentId"))
		if id == "" {
			continue
		}
		nr := NormalizedRow{
			StudentID:          id,
			FullName:           idx.text(raw, "fullName"),
			Period:             idx.text(raw, "period"),
			Career:             idx.text(raw, "career"),
			Level:              idx.text(raw, "level"),
			Subject:            idx.text(raw, "subject"),
			InstructorRaw:      idx.text(raw, "instructor"),
			Section:            idx.text(raw, "section"),
			Grade1:             idx.number(raw, "grade1"),
			Grade2:             idx.number(raw, "grade2"),
			FinalGrade:         idx.number(raw, "finalGrade"),
			Promedio:           idx.number(raw, "promedio"),
			Attendance1:        idx.number(raw, "attendance1"),
			Attendance2:        idx.number(raw, "attendance2"),
			State:              idx.text(raw, "state"),
			EmailInstitutional: idx.text(raw, "emailInst"),
			EmailPersonal:      idx.text(raw, "emailPers"),
		}
		if n := idx.number(raw, "attempt"); n != nil && *n >= 1 {
			nr.AttemptNumber = int(*n)
		}
		switch strings.ToLower(idx.text(raw, "enviar")) {
		case "true", "si", "sí", "x", "1":
			nr.Enviar = true
		}
		rows = append(rows, nr)
	}
	return rows
}

// BuildDisabilityMap indexes the NEE roster by student id. A record missing
// either the condition label or the percentage does not qualify and is
// omitted entirely.
func BuildDisabilityMap(t core.Table) DisabilityMap {
	idx := buildHeaderIndex(t)
	m := make(DisabilityMap)
	for _, raw := range t.Rows {
		id := core.NormID(idx.value(raw, "studentId"))
		if id == "" {
			continue
		}
		cond := idx.text(raw, "condition")
		pct := idx.text(raw, "percentage")
		if cond == "" || pct == "" {
			continue
		}
		if _, ok := m[id]; !ok {
			m[id] = DisabilityRecord{StudentID: id, ConditionLabel: cond, Percentage: pct}
		}
	}
	return m
}

package report

// NormalizedRow is the cleaned view of a raw extract row. Nullable floats
// stay nil when the source cell held no finite number.
type NormalizedRow struct {
	StudentID     string // digits only; rows without one are unusable
	FullName      string
	Period        string
	Career        string
	Level         string
	AttemptNumber int // 0 when absent
	Subject       string
	InstructorRaw string // free text, may encode "id - name"
	Section       string

	Grade1     *float64
	Grade2     *float64
	FinalGrade *float64
	Promedio   *float64

	Attendance1 *float64 // percentage
	Attendance2 *float64 // percentage

	State string // free-text approval status, e.g. "REPROBADO"

	EmailInstitutional string
	EmailPersonal      string

	Enviar bool
}

// DisabilityRecord qualifies a student for special-needs tracking. Both
// fields must be non-empty for the NEE flag to be set.
type DisabilityRecord struct {
	StudentID      string
	ConditionLabel string
	Percentage     string
}

type DisabilityMap map[string]DisabilityRecord

// Label renders the NEE annotation for a student, "No" when unqualified.
func (m DisabilityMap) Label(studentID string) string {
	rec, ok := m[studentID]
	if !ok {
		return "No"
	}
	return rec.ConditionLabel + " (" + rec.Percentage + "%)"
}

// Has reports whether the student holds a qualifying record.
func (m DisabilityMap) Has(studentID string) bool {
	_, ok := m[studentID]
	return ok
}

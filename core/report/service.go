package report

import (
	"context"

	"github.com/campuskit/seguimiento/core"
)

// Logical report names resolved through the Service.
const (
	ReportMatriculas = "matriculas" // enrollment extract (repeat/final/NEE tracking)
	ReportParciales  = "parciales"  // partial grades + attendance extract
	ReportFinales    = "finales"    // final grades extract
	ReportNEE        = "nee"        // disability/accommodation roster
	ReportDocentes   = "docentes"   // instructor roster
)

// reportKeys maps a logical name to the ordered physical key variants the
// extract has historically been stored under. First non-empty hit wins.
var reportKeys = map[string][]string{
	ReportMatriculas: {"REPORTE_MATRICULAS", "MATRICULAS", "REPORTE_SEGUNDAS_MATRICULAS"},
	ReportParciales:  {"REPORTE_PARCIALES", "NOTAS_PARCIALES", "REPORTE_NOTAS_PARCIALES"},
	ReportFinales:    {"REPORTE_FINALES", "NOTAS_FINALES", "REPORTE_NOTAS_FINALES"},
	ReportNEE:        {"REPORTE_NEE", "ESTUDIANTES_NEE", "LISTADO_NEE"},
	ReportDocentes:   {"REPORTE_DOCENTES", "NOMINA_DOCENTES", "LISTADO_DOCENTES"},
}

type Service struct {
	store core.Store
	log   core.Logger
}

func NewService(store core.Store, log core.Logger) *Service {
	return &Service{store: store, log: log}
}

// LoadReport resolves a logical report name to its table. A missing or
// unreadable dataset yields an empty table, never an error: callers treat
// empty as "feature unavailable" and clear their dependent selections.
func (svc *Service) LoadReport(ctx context.Context, logical string) core.Table {
	keys, ok := reportKeys[logical]
	if !ok {
		svc.log.Warn("report: unknown logical name " + logical)
		return core.Table{}
	}
	t, err := svc.store.Get(ctx, keys...)
	if err != nil {
		svc.log.Error("report: loading "+logical+": "+err.Error(), err)
		return core.Table{}
	}
	if t.Empty() {
		svc.log.Info("report: no data for " + logical)
	}
	return t
}

// LoadRows loads and normalizes a logical report in one step.
func (svc *Service) LoadRows(ctx context.Context, logical string) []NormalizedRow {
	return NormalizeTable(svc.LoadReport(ctx, logical))
}

// Periods lists the distinct period tokens in rows, newest first. Empty
// input degrades to an empty selector.
func Periods(rows []NormalizedRow) []string {
	return distinct(rows, func(r NormalizedRow) string { return r.Period }, SortPeriodsDesc)
}

// Careers lists the distinct careers in rows, collator-sorted.
func Careers(rows []NormalizedRow) []string {
	return distinct(rows, func(r NormalizedRow) string { return r.Career }, core.SortNames)
}

func distinct(rows []NormalizedRow, key func(NormalizedRow) string, order func([]string)) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range rows {
		k := key(r)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	order(out)
	return out
}

package report_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/seguimiento/core"
	"github.com/campuskit/seguimiento/core/report"
	"github.com/campuskit/seguimiento/storage/memstore"
	testutil "github.com/campuskit/seguimiento/tests"
)

func newService(store core.Store) *report.Service {
	logger := core.NewStdLogger(log.New(os.Stderr, "test : ", log.LstdFlags))
	return report.NewService(store, logger)
}

func TestLoadReport_aliasFallback(t *testing.T) {
	store := memstore.New()
	// the extract lives under a historical key, not the primary one
	store.Set("NOTAS_PARCIALES", testutil.NewTable(
		[]string{"CEDULA", "PERIODO"},
		[]interface{}{"0101", "2025-I"},
	))

	svc := newService(store)
	table := svc.LoadReport(context.Background(), report.ReportParciales)
	require.False(t, table.Empty())
	assert.Len(t, table.Rows, 1)
}

func TestLoadReport_missingDatasetDegrades(t *testing.T) {
	svc := newService(memstore.New())

	table := svc.LoadReport(context.Background(), report.ReportFinales)
	assert.True(t, table.Empty())

	// dependent selectors degrade to empty, never panic
	rows := report.NormalizeTable(table)
	assert.Empty(t, report.Periods(rows))
	assert.Empty(t, report.Careers(rows))
}

func TestSelectors(t *testing.T) {
	rows := []report.NormalizedRow{
		{StudentID: "1", Period: "2023-2024 CII", Career: "Medicina"},
		{StudentID: "2", Period: "2024-2025 CI", Career: "Enfermería"},
		{StudentID: "3", Period: "2024-2025 CI", Career: "Medicina"},
		{StudentID: "4", Period: "", Career: ""},
	}
	assert.Equal(t, []string{"2024-2025 CI", "2023-2024 CII"}, report.Periods(rows))
	assert.Equal(t, []string{"Enfermería", "Medicina"}, report.Careers(rows))
}

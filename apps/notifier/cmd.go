package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/campuskit/seguimiento/core"
	"github.com/campuskit/seguimiento/core/notify"
	"github.com/campuskit/seguimiento/core/report"
	"github.com/campuskit/seguimiento/core/roster"
	"github.com/campuskit/seguimiento/core/track"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf     *core.Config
	log      core.Logger
	reports  *report.Service
	notifier *notify.Service
	out      io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  listar -escenario ESCENARIO [-periodo PERIODO] [-carrera CARRERA] - list risk aggregates")
	fmt.Fprintln(cli.out, "  enviar -escenario ESCENARIO -periodo PERIODO [-carrera CARRERA] [-todos] - dispatch notifications")
	fmt.Fprintln(cli.out, "Escenarios: matriculas, parciales, finales, nee, no-rematriculados")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	listCmd := flag.NewFlagSet("listar", flag.ExitOnError)
	listEsc := listCmd.String("escenario", "", "Tracking scenario to run.")
	listPeriodo := listCmd.String("periodo", "", "Academic period filter.")
	listCarrera := listCmd.String("carrera", "", "Career filter.")

	sendCmd := flag.NewFlagSet("enviar", flag.ExitOnError)
	sendEsc := sendCmd.String("escenario", "", "Tracking scenario to run.")
	sendPeriodo := sendCmd.String("periodo", "", "Academic period filter.")
	sendCarrera := sendCmd.String("carrera", "", "Career filter.")
	sendTodos := sendCmd.Bool("todos", false, "Opt in every aggregate instead of honoring the ENVIAR column.")

	switch args[1] {
	case "listar":
		if err := listCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.list(*listEsc, *listPeriodo, *listCarrera)
	case "enviar":
		if err := sendCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *sendEsc == "" || *sendPeriodo == "" {
			sendCmd.Usage()
			return errHelp
		}
		return cli.send(*sendEsc, *sendPeriodo, *sendCarrera, *sendTodos)
	default:
		cli.printUsage()
		return errHelp
	}
}

var scenarios = map[string]track.Scenario{
	"matriculas":        track.RepeatEnrollment,
	"parciales":         track.Partial,
	"finales":           track.Final,
	"nee":               track.SpecialNeeds,
	"no-rematriculados": track.NonReenrollment,
}

func scenarioFor(name string) (track.Scenario, error) {
	s, ok := scenarios[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("%q: no such scenario", name)
	}
	return s, nil
}

func (cli *commandLine) list(esc, periodo, carrera string) error {
	scenario, err := scenarioFor(esc)
	if err != nil {
		return err
	}
	ctx := context.Background()
	aggs, _, err := cli.aggregates(ctx, scenario, track.FilterContext{Period: periodo, Career: carrera})
	if err != nil {
		return err
	}
	if len(aggs) == 0 {
		fmt.Fprintln(cli.out, "sin estudiantes en riesgo para los filtros dados")
		return nil
	}
	for _, agg := range aggs {
		fmt.Fprintf(cli.out, "%s (%s) nivel=%s nee=%s riesgo=%s (%d%%)\n",
			agg.FullName, agg.StudentID, agg.Level, agg.NEELabel, agg.RiskTier, agg.RiskScore)
		for _, occ := range agg.Occurrences {
			fmt.Fprintf(cli.out, "    %s\n", occ)
		}
	}
	return nil
}

func (cli *commandLine) send(esc, periodo, carrera string, todos bool) error {
	scenario, err := scenarioFor(esc)
	if err != nil {
		return err
	}
	ctx := context.Background()
	fc := track.FilterContext{Period: periodo, Career: carrera}
	aggs, idx, err := cli.aggregates(ctx, scenario, fc)
	if err != nil {
		return err
	}
	if todos {
		for _, agg := range aggs {
			agg.Enviar = true
		}
	}

	res, err := cli.notifier.Dispatch(ctx, notify.Request{
		Scenario:   scenario.String(),
		Period:     periodo,
		Aggregates: aggs,
		Roster:     idx,
	})
	fmt.Fprintf(cli.out, "lote %s: %d mensaje(s) enviados\n", res.BatchID, res.Sent)
	for _, name := range res.Missing {
		fmt.Fprintf(cli.out, "  docente no registrado: %s\n", name)
	}
	for _, name := range res.NoEmail {
		fmt.Fprintf(cli.out, "  docente sin correo: %s\n", name)
	}
	return err
}

// aggregates loads the scenario's datasets (the independent loads run
// concurrently), classifies and groups them.
func (cli *commandLine) aggregates(ctx context.Context, scenario track.Scenario, fc track.FilterContext) ([]*track.StudentAggregate, *roster.Index, error) {
	var (
		wg          sync.WaitGroup
		rows        []report.NormalizedRow
		nee         report.DisabilityMap
		rosterTable core.Table
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		rows = cli.reports.LoadRows(ctx, scenarioSource(scenario))
	}()
	go func() {
		defer wg.Done()
		nee = report.BuildDisabilityMap(cli.reports.LoadReport(ctx, report.ReportNEE))
	}()
	go func() {
		defer wg.Done()
		rosterTable = cli.reports.LoadReport(ctx, report.ReportDocentes)
	}()
	wg.Wait()

	rule := track.RuleFor(scenario)
	if scenario == track.NonReenrollment {
		current := report.ParsePeriod(fc.Period)
		if !current.Valid() {
			return nil, nil, fmt.Errorf("periodo %q: formato no reconocido", fc.Period)
		}
		rows = track.FlagNonReenrollment(rows, current)
		// flagged rows belong to the preceding period; only the career
		// filter still applies
		fc = track.FilterContext{Career: fc.Career}
	}
	aggs := track.Aggregate(rows, fc, rule, nee)
	return aggs, roster.BuildIndex(rosterTable), nil
}

func scenarioSource(s track.Scenario) string {
	switch s {
	case track.Partial:
		return report.ReportParciales
	case track.Final:
		return report.ReportFinales
	default:
		return report.ReportMatriculas
	}
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"flightperf/internal/engine"
	"flightperf/internal/models"
	"flightperf/internal/source"
)

type reportFlags struct {
	reportType string
	year       string
	format     string
}

func newReportCmd(g *globalFlags) *cobra.Command {
	f := &reportFlags{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build one report and print it",
		Long: `Load the dataset once, build the report for --type and --year and print
its five tables. Output is YAML by default.`,
		Example: `  flightperf report --type performance --year 2007
  flightperf report --type avgdelay --year 2010 --source data/airline.csv --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, g, f)
		},
	}

	cmd.Flags().StringVar(&f.reportType, "type", "", "Report type: performance | avgdelay")
	cmd.Flags().StringVar(&f.year, "year", "", "Four digit year, e.g. 2007")
	cmd.Flags().StringVar(&f.format, "format", "yaml", "Output format (yaml|json)")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}

func runReport(cmd *cobra.Command, g *globalFlags, f *reportFlags) error {
	if f.format != "yaml" && f.format != "json" {
		return fmt.Errorf("unknown format %q (expected yaml or json)", f.format)
	}
	t, err := models.ParseReportType(f.reportType)
	if err != nil {
		return err
	}
	year, err := models.ParseYear(f.year)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(g, cmd.Flags())
	if err != nil {
		return err
	}

	src := source.New(cfg.DatasetSource)
	rc, err := src.Open(cmd.Context())
	if err != nil {
		return err
	}
	defer rc.Close()

	records, _, err := engine.LoadCSV(cmd.Context(), rc, engine.LoadOptions{
		Encoding: cfg.DatasetEncoding,
		Logger:   quietLogger(cmd.ErrOrStderr()),
	})
	if err != nil {
		return err
	}

	agg := engine.NewAggregator(engine.Options{
		Workers:           cfg.AggregateWorkers,
		ParallelThreshold: cfg.ParallelThreshold,
	})
	result, err := agg.BuildReport(models.ReportRequest{Type: t, Year: year}, records)
	if err != nil {
		return err
	}

	return writeReport(cmd.OutOrStdout(), f.format, newReportDoc(result))
}

// reportDoc is the printed form of a report: tables carry their chart hint.
type reportDoc struct {
	Type   models.ReportType `json:"type" yaml:"type"`
	Label  string            `json:"label" yaml:"label"`
	Year   int               `json:"year" yaml:"year"`
	Tables []tableDoc        `json:"tables" yaml:"tables"`
}

type tableDoc struct {
	Position     int `json:"position" yaml:"position"`
	models.Table `yaml:",inline"`
	Chart        models.ChartHint `json:"chart" yaml:"chart"`
}

func newReportDoc(result models.ReportResult) reportDoc {
	doc := reportDoc{
		Type:   result.Request.Type,
		Label:  result.Request.Type.Label(),
		Year:   result.Request.Year,
		Tables: make([]tableDoc, 0, len(result.Tables)),
	}
	for pos, table := range result.Tables {
		hint, _ := models.ChartHintFor(result.Request.Type, pos)
		doc.Tables = append(doc.Tables, tableDoc{Position: pos + 1, Table: table, Chart: hint})
	}
	return doc
}

func writeReport(w io.Writer, format string, doc reportDoc) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

// quietLogger keeps load chatter off stdout so the report can be piped.
func quietLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pfrederiksen/subsidy-scrape/internal/config"
	"github.com/pfrederiksen/subsidy-scrape/internal/logger"
	"github.com/pfrederiksen/subsidy-scrape/internal/pipeline"
)

// OutputFormat specifies the summary format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// Summary is the JSON form of a run report.
type Summary struct {
	*pipeline.Report
	Written int `json:"written"`
	Skipped int `json:"skipped"`
	Fatal   int `json:"fatal"`
	Rows    int `json:"rows"`

	Metrics *logger.Snapshot `json:"metrics,omitempty"`
}

// WriteOutput writes the run summary in the specified format. metrics may be
// nil; the text format does not print it.
func WriteOutput(w io.Writer, report *pipeline.Report, metrics *logger.Snapshot, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, report, metrics)
	case FormatText:
		return writeText(w, report, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeJSON(w io.Writer, report *pipeline.Report, metrics *logger.Snapshot) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(Summary{
		Report:  report,
		Written: report.Count(pipeline.StatusWritten),
		Skipped: report.Count(pipeline.StatusSkipped),
		Fatal:   report.Count(pipeline.StatusFatal),
		Rows:    report.Rows(),
		Metrics: metrics,
	})
}

func writeText(w io.Writer, report *pipeline.Report, verbose bool) error {
	if len(report.Outcomes) == 0 {
		fmt.Fprintln(w, "No regions processed.")
		return nil
	}

	for _, o := range report.Outcomes {
		switch o.Status {
		case pipeline.StatusWritten:
			if verbose {
				fmt.Fprintf(w, "  %-7s %-22s %4d rows  %s\n", "OK", o.Region.Label(), o.Rows, o.Path)
			}
		default:
			fmt.Fprintf(w, "  %-7s %-22s %s: %s\n", strings.ToUpper(string(o.Status)), o.Region.Label(), o.Stage, o.Reason)
			if verbose {
				fmt.Fprintf(w, "          URL: %s\n", o.URL)
			}
		}
	}

	fmt.Fprintf(w, "\nMode %s: %d written (%d rows), %d skipped",
		report.Mode,
		report.Count(pipeline.StatusWritten),
		report.Rows(),
		report.Count(pipeline.StatusSkipped))
	if n := report.Count(pipeline.StatusFatal); n > 0 {
		fmt.Fprintf(w, ", aborted")
	}
	fmt.Fprintln(w)
	return nil
}

// WriteModes lists configured modes.
func WriteModes(w io.Writer, cfg *config.Config) error {
	for _, name := range cfg.ModeNames() {
		m := cfg.Modes[name]
		if _, err := fmt.Fprintf(w, "%-20s %-8s %-6s %-6s %s\n", name, m.Source, m.Catalog, m.Kind, m.URL); err != nil {
			return err
		}
	}
	return nil
}

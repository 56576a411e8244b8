package table

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/pfrederiksen/subsidy-scrape/internal/document"
	"github.com/pfrederiksen/subsidy-scrape/internal/embedded"
)

var (
	// ErrTableNotFound means no table carries the expected title.
	ErrTableNotFound = errors.New("titled table not found")

	// ErrLabel means an aria-label did not have the expected shape.
	ErrLabel = errors.New("unrecognized spending label")
)

// ProgramsCaption titles the per-program subsidy table on EWG pages.
const ProgramsCaption = "Programs included in livestock subsidies"

// SpendingLabel is the aria-label substring of rendered spending chart bars.
const SpendingLabel = "Spending"

// LabelColumns is the width of rows built from spending labels: region, year
// and amount.
const LabelColumns = 3

var (
	moneyStripper = strings.NewReplacer(",", "", "$", "")
	yearAmount    = regexp.MustCompile(`in (\d{4}): (\d+)`)
)

// StripMoney removes thousands separators and dollar signs.
func StripMoney(s string) string {
	return moneyStripper.Replace(s)
}

// FromRecords builds a table from decoded records, prefixing each with region.
func FromRecords(region string, header []string, records []embedded.Record) (*Table, error) {
	t := New(header)
	for _, rec := range records {
		row := append(Row{region}, rec...)
		if err := t.Append(row); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// FromChart builds a {region, year, spending} table from chart records.
func FromChart(region string, header []string, records []embedded.ChartRecord) (*Table, error) {
	t := New(header)
	for _, rec := range records {
		if err := t.Append(Row{region, rec.Year, embedded.FormatNumber(rec.Spending)}); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// FromHTMLTable builds a table from the one table whose title equals caption.
// The first row is treated as a header and skipped. Each remaining cell is its
// trimmed text with money formatting removed.
func FromHTMLTable(region string, header []string, doc *document.Document, caption string) (*Table, error) {
	el, err := doc.First("table", document.AttrEquals("title", caption))
	if err != nil {
		return nil, fmt.Errorf("%q: %w", caption, ErrTableNotFound)
	}

	t := New(header)
	first := true
	for tr := range el.Find("tr") {
		if first {
			first = false
			continue
		}
		row := Row{region}
		for cell := range tr.Find("td, th") {
			row = append(row, StripMoney(strings.TrimSpace(cell.Text())))
		}
		if err := t.Append(row); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// FromSpendingLabels builds a table from chart elements labelled like
// "Spending in 2021: $1,234". Only g elements whose aria-label contains
// SpendingLabel are considered.
func FromSpendingLabels(region string, header []string, doc *document.Document) (*Table, error) {
	t := New(header)
	for g := range doc.Find("g", document.AttrContains("aria-label", SpendingLabel)) {
		label := g.Attr("aria-label")
		m := yearAmount.FindStringSubmatch(StripMoney(label))
		if m == nil {
			return nil, fmt.Errorf("%w: %q", ErrLabel, label)
		}
		if err := t.Append(Row{region, m[1], m[2]}); err != nil {
			return nil, err
		}
	}
	return t, nil
}

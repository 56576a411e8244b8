package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/pfrederiksen/subsidy-scrape/internal/embedded"
	"github.com/pfrederiksen/subsidy-scrape/internal/region"
	"github.com/pfrederiksen/subsidy-scrape/internal/table"
)

// Source selects how pages are fetched.
type Source string

const (
	SourceDirect   Source = "direct"
	SourceRendered Source = "rendered"
)

// Kind selects how rows are extracted from a page.
type Kind string

const (
	KindChart  Kind = "chart"
	KindTable  Kind = "table"
	KindLabels Kind = "labels"
)

const (
	ewgURL         = "https://farm.ewg.org/progdetail.php?fips={key}&progcode=livestock"
	usaSpendingURL = "https://www.usaspending.gov/state/{key}/latest"

	// AggregateRegion is the page name of the national roll-up, which is not
	// a region of its own.
	AggregateRegion = "United States"
)

// Mode is one dataset: where its pages live and how rows come out of them.
type Mode struct {
	Name    string         `yaml:"-"`
	Source  Source         `yaml:"source"`
	Catalog region.Catalog `yaml:"catalog"`
	Kind    Kind           `yaml:"kind"`
	URL     string         `yaml:"url"`

	// Variable is the script variable holding chart JSON (KindChart).
	Variable string `yaml:"variable,omitempty"`
	// Fields are the required members of each chart record, in output
	// column order. Empty means year:string, spending:number.
	Fields []FieldSpec `yaml:"fields,omitempty"`
	// Caption is the title attribute of the source table (KindTable).
	Caption string `yaml:"caption,omitempty"`
	// Marker must appear in the rendered source before it is parsed
	// (SourceRendered).
	Marker string `yaml:"marker,omitempty"`

	Header []string `yaml:"header"`
	// Output is the file path under the output directory; "{region}" is
	// replaced by the region name.
	Output string `yaml:"output"`

	// NameFromPage reads the region name from the page's stateface span.
	NameFromPage bool `yaml:"name_from_page,omitempty"`
	// Skip lists page names that are skipped without writing output.
	Skip []string `yaml:"skip,omitempty"`
}

// FieldSpec names a required JSON member and its type ("string" or "number").
type FieldSpec struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// BuiltinModes returns the modes known without a config file.
func BuiltinModes() map[string]Mode {
	return map[string]Mode{
		"livestock": {
			Source:       SourceDirect,
			Catalog:      region.CatalogFIPS,
			Kind:         KindChart,
			URL:          ewgURL,
			Variable:     "chartData",
			Header:       table.YearSpendingHeader,
			Output:       "livestock/{region}.tsv",
			NameFromPage: true,
			Skip:         []string{AggregateRegion},
		},
		"livestock-programs": {
			Source:       SourceDirect,
			Catalog:      region.CatalogFIPS,
			Kind:         KindTable,
			URL:          ewgURL,
			Caption:      table.ProgramsCaption,
			Header:       table.ProgramSpendingHeader,
			Output:       "livestock/programs_{region}.tsv",
			NameFromPage: true,
			Skip:         []string{AggregateRegion},
		},
		"spending": {
			Source:  SourceRendered,
			Catalog: region.CatalogStates,
			Kind:    KindLabels,
			URL:     usaSpendingURL,
			Marker:  "Spending in ",
			Header:  table.YearSpendingHeader,
			Output:  "spending/year_{region}.tsv",
		},
	}
}

// Validate checks that the fields the mode's kind and source need are set.
func (m Mode) Validate() error {
	switch m.Source {
	case SourceDirect:
	case SourceRendered:
		if m.Marker == "" {
			return errors.New("rendered source needs a marker")
		}
	default:
		return fmt.Errorf("unknown source %q", m.Source)
	}

	if _, err := m.Catalog.Regions(); err != nil {
		return err
	}

	switch m.Kind {
	case KindChart:
		if m.Variable == "" {
			return errors.New("chart kind needs a variable")
		}
		x, err := m.Extractor()
		if err != nil {
			return err
		}
		if len(m.Header) != len(x.Fields)+1 {
			return fmt.Errorf("header has %d columns, chart records give %d", len(m.Header), len(x.Fields)+1)
		}
	case KindTable:
		if m.Caption == "" {
			return errors.New("table kind needs a caption")
		}
	case KindLabels:
		if len(m.Header) != table.LabelColumns {
			return fmt.Errorf("header has %d columns, spending labels give %d", len(m.Header), table.LabelColumns)
		}
	default:
		return fmt.Errorf("unknown kind %q", m.Kind)
	}

	if !strings.Contains(m.URL, "{key}") {
		return errors.New("url has no {key} placeholder")
	}
	if len(m.Header) < 2 {
		return errors.New("header needs the region column and at least one more")
	}
	if !strings.Contains(m.Output, "{region}") {
		return errors.New("output has no {region} placeholder")
	}
	return nil
}

// Extractor builds the embedded-JSON extractor for a chart mode.
func (m Mode) Extractor() (embedded.Extractor, error) {
	if len(m.Fields) == 0 {
		return embedded.Chart(m.Variable), nil
	}
	fields := make([]embedded.Field, len(m.Fields))
	for i, f := range m.Fields {
		if f.Name == "" {
			return embedded.Extractor{}, fmt.Errorf("field %d has no name", i)
		}
		switch f.Type {
		case "string":
			fields[i] = embedded.Field{Name: f.Name, Kind: embedded.KindString}
		case "number":
			fields[i] = embedded.Field{Name: f.Name, Kind: embedded.KindNumber}
		default:
			return embedded.Extractor{}, fmt.Errorf("field %q: unknown type %q", f.Name, f.Type)
		}
	}
	return embedded.Extractor{Variable: m.Variable, Fields: fields}, nil
}

// URLFor fills the region key into the mode's URL template.
func (m Mode) URLFor(key string) string {
	return strings.ReplaceAll(m.URL, "{key}", url.PathEscape(key))
}

// Skips reports whether a page name is on the mode's skip list.
func (m Mode) Skips(name string) bool {
	for _, s := range m.Skip {
		if strings.Contains(name, s) {
			return true
		}
	}
	return false
}

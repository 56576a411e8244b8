package embedded

import (
	"strconv"

	"github.com/pfrederiksen/subsidy-scrape/internal/document"
)

// ChartFields is the {year, spending} record shape used by subsidy charts.
var ChartFields = []Field{
	{Name: "year", Kind: KindString},
	{Name: "spending", Kind: KindNumber},
}

// ChartRecord is one year of spending.
type ChartRecord struct {
	Year     string
	Spending float64
}

// Chart returns an Extractor for a {year, spending} array held in variable.
func Chart(variable string) Extractor {
	return Extractor{Variable: variable, Fields: ChartFields}
}

// ExtractChart decodes the chart array assigned to variable.
func ExtractChart(doc *document.Document, variable string) ([]ChartRecord, error) {
	records, err := Chart(variable).Extract(doc)
	if err != nil {
		return nil, err
	}
	out := make([]ChartRecord, len(records))
	for i, rec := range records {
		spending, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, &FieldError{Variable: variable, Index: i, Field: "spending", Err: err}
		}
		out[i] = ChartRecord{Year: rec[0], Spending: spending}
	}
	return out, nil
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/pfrederiksen/subsidy-scrape/internal/config"
	"github.com/pfrederiksen/subsidy-scrape/internal/document"
	"github.com/pfrederiksen/subsidy-scrape/internal/embedded"
	"github.com/pfrederiksen/subsidy-scrape/internal/fetch"
	"github.com/pfrederiksen/subsidy-scrape/internal/logger"
	"github.com/pfrederiksen/subsidy-scrape/internal/region"
	"github.com/pfrederiksen/subsidy-scrape/internal/table"
)

// Runner processes regions for one mode.
type Runner struct {
	mode    config.Mode
	fetcher fetch.Fetcher
	store   *table.Store

	Logger  *logger.Logger
	Metrics *logger.Metrics
}

// New creates a Runner using the package-level logger and metrics.
func New(mode config.Mode, fetcher fetch.Fetcher, store *table.Store) *Runner {
	return &Runner{
		mode:    mode,
		fetcher: fetcher,
		store:   store,
		Logger:  logger.Default(),
		Metrics: logger.DefaultMetrics(),
	}
}

// Run processes every region in order. It stops at the first fatal outcome
// or when ctx is done, returning the report so far and a *FatalError.
func (r *Runner) Run(ctx context.Context, regions iter.Seq[region.Region]) (*Report, error) {
	report := &Report{Mode: r.mode.Name, StartedAt: time.Now().UTC()}
	defer func() { report.FinishedAt = time.Now().UTC() }()

	for reg := range regions {
		if err := ctx.Err(); err != nil {
			return report, &FatalError{Region: reg.Label(), Stage: StageFetch, Err: err}
		}

		out := r.Process(ctx, reg)
		if ctx.Err() != nil && out.Status != StatusWritten {
			out.Status = StatusFatal
		}
		report.Outcomes = append(report.Outcomes, out)
		r.record(out)

		if out.Status == StatusFatal {
			return report, &FatalError{Region: out.Region.Label(), Stage: out.Stage, Err: out.Err}
		}
	}
	return report, nil
}

// Process runs one region through every stage and classifies the result.
func (r *Runner) Process(ctx context.Context, reg region.Region) Outcome {
	start := time.Now()
	out := Outcome{Region: reg, URL: r.mode.URLFor(reg.Key)}

	name, tbl, err := r.scrape(ctx, reg, out.URL)
	if name != "" {
		out.Region = out.Region.WithName(name)
	}
	if err == nil {
		var path string
		path, err = r.store.Save(r.mode.Output, out.Region.Label(), tbl)
		if err != nil {
			err = &StageError{Stage: StageWrite, Err: err}
		}
		out.Path = path
		out.Rows = tbl.Len()
	}
	out.Duration = time.Since(start)

	if err != nil {
		out.Rows = 0
		out.Status = Classify(err)
		out.Err = err
		out.Reason = err.Error()
		var se *StageError
		if errors.As(err, &se) {
			out.Stage = se.Stage
		}
		return out
	}
	out.Status = StatusWritten
	return out
}

// scrape fetches, parses and extracts. It returns the region name read from
// the page when the mode takes names from pages.
func (r *Runner) scrape(ctx context.Context, reg region.Region, url string) (string, *table.Table, error) {
	r.Logger.Debug("fetching region", logger.Fields{"mode": r.mode.Name, "region": reg.Label(), "url": url})
	fetchStart := time.Now()
	html, err := r.fetcher.Fetch(ctx, url)
	r.Metrics.Time("fetch", fetchStart)
	if err != nil {
		return "", nil, &StageError{Stage: StageFetch, Err: err}
	}

	doc, err := document.ParseString(html)
	if err != nil {
		return "", nil, &StageError{Stage: StageParse, Err: err}
	}

	name := reg.Name
	if r.mode.NameFromPage {
		name, err = doc.StateName()
		if err != nil {
			return "", nil, &StageError{Stage: StageParse, Err: err}
		}
	}
	if r.mode.Skips(name) {
		return name, nil, &StageError{Stage: StageParse, Err: fmt.Errorf("%w: %s", ErrExcluded, name)}
	}

	label := reg.WithName(name).Label()
	tbl, err := r.extract(label, doc)
	if err != nil {
		return name, nil, &StageError{Stage: StageExtract, Err: err}
	}
	return name, tbl, nil
}

func (r *Runner) extract(label string, doc *document.Document) (*table.Table, error) {
	switch r.mode.Kind {
	case config.KindChart:
		if len(r.mode.Fields) == 0 {
			records, err := embedded.ExtractChart(doc, r.mode.Variable)
			if err != nil {
				return nil, err
			}
			return table.FromChart(label, r.mode.Header, records)
		}
		x, err := r.mode.Extractor()
		if err != nil {
			return nil, err
		}
		records, err := x.Extract(doc)
		if err != nil {
			return nil, err
		}
		return table.FromRecords(label, r.mode.Header, records)
	case config.KindTable:
		return table.FromHTMLTable(label, r.mode.Header, doc, r.mode.Caption)
	case config.KindLabels:
		return table.FromSpendingLabels(label, r.mode.Header, doc)
	default:
		return nil, fmt.Errorf("unknown mode kind %q", r.mode.Kind)
	}
}

func (r *Runner) record(out Outcome) {
	r.Metrics.IncrCounter("regions." + string(out.Status))
	r.Metrics.RecordTiming("region", out.Duration)

	log := r.Logger.With(logger.Fields{
		"mode":   r.mode.Name,
		"region": out.Region.Label(),
		"url":    out.URL,
	})
	switch out.Status {
	case StatusWritten:
		log.Info("region written", logger.Fields{"path": out.Path, "rows": out.Rows})
	case StatusSkipped:
		if errors.Is(out.Err, ErrExcluded) {
			log.Info("region excluded", logger.Fields{"stage": string(out.Stage)})
			return
		}
		log.WarnErr("region skipped", logger.Fields{"stage": string(out.Stage)}, out.Err)
	case StatusFatal:
		log.Error("region failed", logger.Fields{"stage": string(out.Stage)}, out.Err)
	}
}

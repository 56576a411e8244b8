package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/pfrederiksen/subsidy-scrape/internal/fetch"
	"github.com/pfrederiksen/subsidy-scrape/internal/region"
	"github.com/pfrederiksen/subsidy-scrape/internal/table"
)

// Stage names a step of region processing.
type Stage string

const (
	StageFetch   Stage = "fetch"
	StageParse   Stage = "parse"
	StageExtract Stage = "extract"
	StageWrite   Stage = "write"
)

// Status is the result of one region.
type Status string

const (
	StatusWritten Status = "written"
	StatusSkipped Status = "skipped"
	StatusFatal   Status = "fatal"
)

// ErrExcluded marks a page whose name is on the mode's skip list.
var ErrExcluded = errors.New("region excluded")

// StageError attaches the failing stage to a step error.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Classify decides whether err ends the run. Browser session failures and
// output write failures are fatal; everything else skips the region.
func Classify(err error) Status {
	switch {
	case err == nil:
		return StatusWritten
	case errors.Is(err, fetch.ErrSession), errors.Is(err, table.ErrWrite):
		return StatusFatal
	default:
		return StatusSkipped
	}
}

// Outcome records what happened to one region.
type Outcome struct {
	Region   region.Region `json:"region"`
	URL      string        `json:"url"`
	Status   Status        `json:"status"`
	Stage    Stage         `json:"stage,omitempty"`
	Reason   string        `json:"reason,omitempty"`
	Path     string        `json:"path,omitempty"`
	Rows     int           `json:"rows"`
	Duration time.Duration `json:"duration_ns"`
	Err      error         `json:"-"`
}

// Report collects the outcomes of a run in processing order.
type Report struct {
	Mode       string    `json:"mode"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Outcomes   []Outcome `json:"outcomes"`
}

// Count returns the number of outcomes with status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Rows returns the total rows written.
func (r *Report) Rows() int {
	n := 0
	for _, o := range r.Outcomes {
		n += o.Rows
	}
	return n
}

// FatalError is returned by Run when a region's outcome stops the run.
type FatalError struct {
	Region string
	Stage  Stage
	Err    error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("aborted at %s of region %s: %v", e.Stage, e.Region, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

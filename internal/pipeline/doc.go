// Package pipeline runs one scrape mode over a region catalog.
//
// Each region goes through fetch, parse, extract and write in turn. The steps
// only report errors; Classify turns an error into a per-region Outcome that is
// either a skip (the run continues) or fatal (the run stops). Regions are
// processed strictly one after another because the rendered source shares a
// single browser tab.
package pipeline

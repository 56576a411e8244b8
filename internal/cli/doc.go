// Package cli implements the command-line interface for subsidy-scrape.
//
// The cli package provides the Cobra root command. It loads the configuration,
// resolves the requested mode, acquires the fetcher (opening the shared
// browser session for rendered modes and releasing it when the run ends),
// runs the pipeline over the mode's region catalog and prints a run summary
// as text or JSON.
package cli

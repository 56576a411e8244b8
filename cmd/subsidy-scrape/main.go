// Command subsidy-scrape writes one tab-separated table per state for a
// chosen subsidy or spending dataset.
package main

import "github.com/pfrederiksen/subsidy-scrape/internal/cli"

func main() {
	cli.Execute()
}

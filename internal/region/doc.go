// Package region enumerates the geographic units a scrape iterates over.
//
// Two catalogs exist: a numeric FIPS-style range whose request key is a
// zero-padded state code (01000 through 56000), and the literal list of the
// fifty states plus the District of Columbia whose request key is a lowercase
// URL slug. Both catalogs are exposed as restartable iterators.
package region

// Package table builds and persists the per-region tab-separated tables.
//
// A Table is a fixed header plus rows whose first cell is always the region.
// Rows come from decoded chart records, from a titled HTML table or from the
// aria-labels of rendered chart bars. Tables are written one file per region,
// atomically replacing any earlier output for that region.
package table

// Package fetch retrieves raw page HTML for a region URL.
//
// HTTPFetcher performs a single GET. BrowserFetcher drives a shared browser
// session for pages that render their data client-side, polling the page
// source until a marker substring shows up or the poll budget runs out.
package fetch

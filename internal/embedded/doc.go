// Package embedded pulls JSON literals out of inline script blocks.
//
// Pages that draw charts client-side often ship their data as a JavaScript
// assignment such as
//
//	var chartData = [{"year":"2020","spending":1000.5}, ];
//
// The extractor finds the first script containing "var <name> = ", takes the
// text up to the next ';', repairs the trailing ", ]" the generator emits and
// decodes the result as an array of objects. Each object must carry every
// configured field with the configured type. Extraction is all-or-nothing:
// a single bad record fails the whole page.
//
// Locating the literal is a plain text-span heuristic. A ';' inside a JSON
// string would truncate the literal and surface as a DecodeError.
package embedded

package document

import (
	"fmt"
	"strings"
)

// StateFaceClass marks the span carrying the region name on EWG pages.
const StateFaceClass = "stateface"

// StateName returns the first non-blank text found under the spans whose class
// contains StateFaceClass, taken in document order. Blank spans, such as the
// glyph-only state icon, are passed over.
func (d *Document) StateName() (string, error) {
	for span := range d.Find("span", AttrContains("class", StateFaceClass)) {
		for t := range span.Texts() {
			if name := strings.TrimSpace(t); name != "" {
				return name, nil
			}
		}
	}
	return "", fmt.Errorf("state name span: %w", ErrNotFound)
}

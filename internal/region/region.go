package region

import (
	"fmt"
	"iter"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// FirstFIPS and LastFIPS bound the state index range of the FIPS catalog.
	FirstFIPS = 1
	LastFIPS  = 56
)

// Region is one unit being scraped. Key is what goes into the request URL.
// Name may be empty for FIPS regions until the page reveals it.
type Region struct {
	Name string `json:"name,omitempty"`
	Key  string `json:"key"`
}

// Label returns the name if known, otherwise the request key.
func (r Region) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Key
}

// WithName returns a copy of r carrying the given name.
func (r Region) WithName(name string) Region {
	r.Name = name
	return r
}

// StateNames lists the fifty states plus the District of Columbia.
var StateNames = []string{
	"Alabama", "Alaska", "Arizona", "Arkansas", "California", "Colorado",
	"Connecticut", "Delaware", "District of Columbia", "Florida", "Georgia",
	"Hawaii", "Idaho", "Illinois", "Indiana", "Iowa", "Kansas", "Kentucky",
	"Louisiana", "Maine", "Maryland", "Massachusetts", "Michigan", "Minnesota",
	"Mississippi", "Missouri", "Montana", "Nebraska", "Nevada", "New Hampshire",
	"New Jersey", "New Mexico", "New York", "North Carolina", "North Dakota",
	"Ohio", "Oklahoma", "Oregon", "Pennsylvania", "Rhode Island",
	"South Carolina", "South Dakota", "Tennessee", "Texas", "Utah", "Vermont",
	"Virginia", "Washington", "West Virginia", "Wisconsin", "Wyoming",
}

// FIPSCode returns the five-digit county-level code for a state index
// (the state code followed by 000).
func FIPSCode(index int) string {
	return fmt.Sprintf("%05d", index*1000)
}

// Slug lowercases a state name for use in a URL path.
func Slug(name string) string {
	return cases.Lower(language.English).String(name)
}

// FIPSRange yields one unnamed region per state index in [FirstFIPS, LastFIPS].
func FIPSRange() iter.Seq[Region] {
	return func(yield func(Region) bool) {
		for i := FirstFIPS; i <= LastFIPS; i++ {
			if !yield(Region{Key: FIPSCode(i)}) {
				return
			}
		}
	}
}

// States yields one named region per entry in StateNames.
func States() iter.Seq[Region] {
	return func(yield func(Region) bool) {
		for _, name := range StateNames {
			if !yield(Region{Name: name, Key: Slug(name)}) {
				return
			}
		}
	}
}

// Catalog identifies one of the built-in region catalogs.
type Catalog string

const (
	CatalogFIPS   Catalog = "fips"
	CatalogStates Catalog = "states"
)

// Regions returns the sequence for a catalog.
func (c Catalog) Regions() (iter.Seq[Region], error) {
	switch c {
	case CatalogFIPS:
		return FIPSRange(), nil
	case CatalogStates:
		return States(), nil
	default:
		return nil, fmt.Errorf("unknown region catalog: %q", string(c))
	}
}

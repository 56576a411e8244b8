package region

import (
	"slices"
	"testing"
)

func TestFIPSCode(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{1, "01000"},
		{6, "06000"},
		{11, "11000"},
		{56, "56000"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FIPSCode(tt.index); got != tt.want {
				t.Errorf("FIPSCode(%d) = %q, want %q", tt.index, got, tt.want)
			}
		})
	}
}

func TestFIPSRange(t *testing.T) {
	regions := slices.Collect(FIPSRange())

	if len(regions) != LastFIPS-FirstFIPS+1 {
		t.Fatalf("FIPSRange() yielded %d regions, want %d", len(regions), LastFIPS-FirstFIPS+1)
	}
	if regions[0].Key != "01000" {
		t.Errorf("first key = %q, want 01000", regions[0].Key)
	}
	if regions[len(regions)-1].Key != "56000" {
		t.Errorf("last key = %q, want 56000", regions[len(regions)-1].Key)
	}
	for _, r := range regions {
		if r.Name != "" {
			t.Errorf("FIPS region %s has name %q before fetch", r.Key, r.Name)
		}
	}
}

func TestStates(t *testing.T) {
	regions := slices.Collect(States())

	if len(regions) != 51 {
		t.Fatalf("States() yielded %d regions, want 51", len(regions))
	}

	found := false
	for _, r := range regions {
		if r.Name == "District of Columbia" {
			found = true
			if r.Key != "district of columbia" {
				t.Errorf("DC key = %q, want %q", r.Key, "district of columbia")
			}
		}
	}
	if !found {
		t.Error("District of Columbia missing from States()")
	}
}

func TestKeysDeterministicAndInjective(t *testing.T) {
	for name, seq := range map[string]func() []Region{
		"fips":   func() []Region { return slices.Collect(FIPSRange()) },
		"states": func() []Region { return slices.Collect(States()) },
	} {
		t.Run(name, func(t *testing.T) {
			first := seq()
			second := seq()
			if !slices.Equal(first, second) {
				t.Error("catalog is not deterministic across restarts")
			}

			seen := make(map[string]string)
			for _, r := range first {
				if prev, ok := seen[r.Key]; ok {
					t.Errorf("key %q produced by both %q and %q", r.Key, prev, r.Label())
				}
				seen[r.Key] = r.Label()
			}
		})
	}
}

func TestRangeStopsEarly(t *testing.T) {
	count := 0
	for range FIPSRange() {
		count++
		if count == 3 {
			break
		}
	}
	if count != 3 {
		t.Errorf("iteration count = %d, want 3", count)
	}
}

func TestLabel(t *testing.T) {
	r := Region{Key: "01000"}
	if r.Label() != "01000" {
		t.Errorf("Label() = %q, want key", r.Label())
	}
	named := r.WithName("Alabama")
	if named.Label() != "Alabama" {
		t.Errorf("Label() = %q, want Alabama", named.Label())
	}
	if r.Name != "" {
		t.Error("WithName modified the receiver")
	}
}

func TestCatalogRegions(t *testing.T) {
	if _, err := CatalogFIPS.Regions(); err != nil {
		t.Errorf("CatalogFIPS.Regions() error = %v", err)
	}
	if _, err := CatalogStates.Regions(); err != nil {
		t.Errorf("CatalogStates.Regions() error = %v", err)
	}
	if _, err := Catalog("counties").Regions(); err == nil {
		t.Error("unknown catalog should return an error")
	}
}

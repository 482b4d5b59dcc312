package catalog

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"xsplot/pkg/nuclide"
)

func fixtureRecords() []nuclide.Record {
	return []nuclide.Record{
		{ID: 1, Element: "Fe", Nucleons: 56, Reaction: "(n,total)", MT: 1, Library: "ENDFB-8.0", Temperature: "294"},
		{ID: 2, Element: "Fe", Nucleons: 56, Reaction: "(n,gamma)", MT: 102, Library: "ENDFB-8.0", Temperature: "294"},
		{ID: 3, Element: "Fe", Nucleons: 54, Reaction: "(n,total)", MT: 1, Library: "FENDL-3.2c", Temperature: "294"},
		{ID: 4, Element: "F", Nucleons: 19, Reaction: "(n,total)", MT: 1, Library: "ENDFB-8.0", Temperature: "294"},
		{ID: 5, Element: "U", Nucleons: 235, Reaction: "(n,fission)", MT: 18, Library: "ENDFB-8.0", Temperature: "294"},
		{ID: 6, Element: "U", Nucleons: 238, Reaction: "heating", MT: 301, Library: "FENDL-3.2c", Temperature: "294"},
		{ID: 7, Element: "Li", Nucleons: 6, Reaction: "(n,t)", MT: 105, Library: "ENDFB-8.0", Temperature: "294"},
		{ID: 8, Element: "Li", Nucleons: 7, Reaction: "(n,2n)", MT: 16, Library: "ENDFB-8.0", Temperature: "294"},
	}
}

func ids(records []nuclide.Record) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestFilterExactMatchTakesPrecedence(t *testing.T) {
	got := Filter(fixtureRecords(), nuclide.SearchState{Element: "f"})
	if diff := cmp.Diff([]int{4}, ids(got)); diff != "" {
		t.Fatalf("exact element match should exclude prefix matches (-want +got):\n%s", diff)
	}
}

func TestFilterPrefixFallback(t *testing.T) {
	got := Filter(fixtureRecords(), nuclide.SearchState{Nucleons: "23"})
	if diff := cmp.Diff([]int{5, 6}, ids(got)); diff != "" {
		t.Fatalf("prefix nucleon search mismatch (-want +got):\n%s", diff)
	}
	got = Filter(fixtureRecords(), nuclide.SearchState{Reaction: "(N,"})
	if len(got) != len(fixtureRecords())-1 {
		t.Fatalf("expected every non-heating reaction, got %v", ids(got))
	}
}

func TestFilterNumericExactMatch(t *testing.T) {
	got := Filter(fixtureRecords(), nuclide.SearchState{MT: "1"})
	if diff := cmp.Diff([]int{1, 3, 4}, ids(got)); diff != "" {
		t.Fatalf("mt=1 should not include 102/105/16/18 (-want +got):\n%s", diff)
	}
	got = Filter(fixtureRecords(), nuclide.SearchState{MT: "10"})
	if diff := cmp.Diff([]int{2, 7}, ids(got)); diff != "" {
		t.Fatalf("mt prefix 10 mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterConjoinsFieldsIndependently(t *testing.T) {
	// The exact-match decision for library is made over the whole catalog, not
	// over the rows surviving the element filter.
	got := Filter(fixtureRecords(), nuclide.SearchState{Element: "fe", Library: "endfb-8.0"})
	if diff := cmp.Diff([]int{1, 2}, ids(got)); diff != "" {
		t.Fatalf("conjoined filter mismatch (-want +got):\n%s", diff)
	}
	got = Filter(fixtureRecords(), nuclide.SearchState{Element: "li", Nucleons: "7", Reaction: "(n,2n)", MT: "16", Library: "ENDF"})
	if diff := cmp.Diff([]int{8}, ids(got)); diff != "" {
		t.Fatalf("five-field filter mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterNoTermsReturnsCatalogOrder(t *testing.T) {
	records := fixtureRecords()
	got := Filter(records, nuclide.SearchState{Element: "  "})
	if diff := cmp.Diff(records, got); diff != "" {
		t.Fatalf("unfiltered result should equal catalog (-want +got):\n%s", diff)
	}
	if got := Filter(nil, nuclide.SearchState{Element: "U"}); len(got) != 0 {
		t.Fatalf("empty catalog should produce empty result, got %v", got)
	}
}

func TestFilterNoMatch(t *testing.T) {
	if got := Filter(fixtureRecords(), nuclide.SearchState{Element: "Xe"}); len(got) != 0 {
		t.Fatalf("expected no matches, got %v", ids(got))
	}
}

func TestFilterPropertyExactVersusPrefix(t *testing.T) {
	records := fixtureRecords()
	for _, rec := range records {
		for _, field := range nuclide.Fields {
			term := rec.Value(field)
			got := Filter(records, nuclide.SearchState{}.With(field, term))
			if len(got) == 0 {
				t.Fatalf("%s=%q matched nothing", field, term)
			}
			for _, r := range got {
				if !strings.EqualFold(r.Value(field), term) {
					t.Fatalf("%s=%q returned non-exact value %q", field, term, r.Value(field))
				}
			}
		}
	}
}

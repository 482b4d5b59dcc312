package catalog

import (
	"strings"

	"golang.org/x/text/cases"

	"xsplot/pkg/nuclide"
)

// fieldMatcher is the resolved predicate for one searched field.
type fieldMatcher struct {
	field nuclide.Field
	term  string
	exact bool
}

// Filter returns the records matching state in their original order.
//
// Each searched field first checks, across all records, whether any value
// equals the term ignoring case. If one does, the field only accepts exact
// matches; otherwise it accepts values starting with the term. A record is
// kept when every searched field accepts it.
func Filter(records []nuclide.Record, state nuclide.SearchState) []nuclide.Record {
	folder := cases.Fold()
	matchers := make([]fieldMatcher, 0, len(nuclide.Fields))
	for _, field := range nuclide.Fields {
		term := strings.TrimSpace(state.Term(field))
		if term == "" {
			continue
		}
		matchers = append(matchers, fieldMatcher{field: field, term: folder.String(term)})
	}

	out := make([]nuclide.Record, 0, len(records))
	if len(matchers) == 0 {
		return append(out, records...)
	}

	folded := make([][]string, len(records))
	for i, rec := range records {
		values := make([]string, len(matchers))
		for j, m := range matchers {
			values[j] = folder.String(rec.Value(m.field))
			if values[j] == m.term {
				matchers[j].exact = true
			}
		}
		folded[i] = values
	}

	for i, rec := range records {
		if matchesAll(matchers, folded[i]) {
			out = append(out, rec)
		}
	}
	return out
}

func matchesAll(matchers []fieldMatcher, values []string) bool {
	for j, m := range matchers {
		if m.exact {
			if values[j] != m.term {
				return false
			}
			continue
		}
		if !strings.HasPrefix(values[j], m.term) {
			return false
		}
	}
	return true
}

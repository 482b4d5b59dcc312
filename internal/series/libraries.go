package series

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"

	"xsplot/pkg/nuclide"
)

// Libraries maps a nuclear data library name to the base URL under which its
// per-dataset JSON files are published.
type Libraries map[string]string

// DefaultLibraries returns the public openmc-data-storage mirrors.
func DefaultLibraries() Libraries {
	return Libraries{
		"ENDFB-8.0":  "https://raw.githubusercontent.com/openmc-data-storage/ENDF-B-VIII.0-NNDC-json/refs/heads/main/json_files",
		"FENDL-3.2c": "https://raw.githubusercontent.com/openmc-data-storage/FENDL-3.2c-json/refs/heads/main/FENDL-3.2c_json",
	}
}

// With returns a copy of l with overrides applied. An empty URL removes the
// library.
func (l Libraries) With(overrides map[string]string) Libraries {
	out := maps.Clone(l)
	if out == nil {
		out = Libraries{}
	}
	for name, base := range overrides {
		if strings.TrimSpace(base) == "" {
			delete(out, name)
			continue
		}
		out[name] = base
	}
	return out
}

// Names returns the configured library names in sorted order.
func (l Libraries) Names() []string {
	return slices.Sorted(maps.Keys(l))
}

// URL returns {base}/{key}.json for library, or ErrUnsupportedLibrary.
func (l Libraries) URL(library, key string) (string, error) {
	base, ok := l[library]
	if !ok {
		return "", fmt.Errorf("%w: %q", nuclide.ErrUnsupportedLibrary, library)
	}
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(key) + ".json", nil
}

package blob

import (
	"slices"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// boundary restricts which packages may import a backend tree.
type boundary struct {
	backend string
	allowed []string
}

var boundaries = []boundary{
	// Everything outside the facade talks to blob.Store.
	{backend: "xsplot/internal/infra/blob", allowed: []string{"xsplot/internal/blob"}},
	// Catalog databases are opened by the command wiring only.
	{backend: "xsplot/internal/infra/persistence", allowed: []string{"xsplot/cmd/xsplot"}},
}

func TestBackendImportBoundaries(t *testing.T) {
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports, Tests: true}
	pkgs, err := packages.Load(cfg, "xsplot/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	var violations []string
	for _, pkg := range pkgs {
		for _, b := range boundaries {
			if underPrefix(pkg.PkgPath, b.backend) || slices.ContainsFunc(b.allowed, func(p string) bool {
				return underPrefix(pkg.PkgPath, p)
			}) {
				continue
			}
			for importPath := range pkg.Imports {
				if underPrefix(importPath, b.backend) {
					violations = append(violations, pkg.PkgPath+" -> "+importPath)
				}
			}
		}
	}
	slices.Sort(violations)
	violations = slices.Compact(violations)
	for _, v := range violations {
		t.Errorf("forbidden backend import: %s", v)
	}
}

func TestUnderPrefix(t *testing.T) {
	cases := map[string]bool{
		"xsplot/internal/infra/blob":        true,
		"xsplot/internal/infra/blob/s3":     true,
		"xsplot/internal/infra/blobby":      false,
		"xsplot/internal/infra/persistence": false,
	}
	for path, want := range cases {
		if got := underPrefix(path, "xsplot/internal/infra/blob"); got != want {
			t.Errorf("underPrefix(%q) = %v, want %v", path, got, want)
		}
	}
}

// underPrefix reports whether path is prefix or a package below it. Test
// variants such as "pkg [pkg.test]" and "pkg_test" count as pkg.
func underPrefix(path, prefix string) bool {
	path, _, _ = strings.Cut(path, " ")
	path = strings.TrimSuffix(path, "_test")
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

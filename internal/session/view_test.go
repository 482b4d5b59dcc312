package session

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"xsplot/internal/catalog"
	"xsplot/internal/chart"
	"xsplot/internal/series"
	"xsplot/pkg/nuclide"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	var records []nuclide.Record
	for i := 0; i < 25; i++ {
		records = append(records, nuclide.Record{ID: i, Element: "Fe", Nucleons: 50 + i, Reaction: "(n,gamma)", MT: 102, Library: "ENDFB-8.0", Temperature: "294"})
	}
	records = append(records,
		nuclide.Record{ID: 100, Element: "U", Nucleons: 235, Reaction: "(n,gamma)", MT: 102, Library: "ENDFB-8.0", Temperature: "294"},
		nuclide.Record{ID: 101, Element: "U", Nucleons: 235, Reaction: "heating", MT: 301, Library: "ENDFB-8.0", Temperature: "294"},
	)
	cat, err := catalog.New(records)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return cat
}

func resultFor(ids ...int) series.Result {
	var res series.Result
	for _, id := range ids {
		label := "U235 (n,gamma) ENDFB-8.0"
		if id == 101 {
			label = "U235 heating ENDFB-8.0"
		}
		res.Entries = append(res.Entries, nuclide.Series{ID: id, Label: label, Energy: []float64{1, 2}, CrossSection: []float64{3, 4}, Visible: true})
	}
	return res
}

func TestViewDefaults(t *testing.T) {
	v := New(testCatalog(t), 0)
	snap := v.Snapshot()
	if snap.Page.Size != 10 || len(snap.Page.Rows) != 10 || snap.Page.TotalPages != 3 {
		t.Fatalf("unexpected page %+v", snap.Page)
	}
	if snap.SelectionCount != "0 / 27" || !snap.Scale.XLog || !snap.Scale.YLog {
		t.Fatalf("unexpected defaults %+v", snap)
	}
	if snap.XToggle != "Switch X to Linear Scale" || snap.YAxisTitle != "" {
		t.Fatalf("unexpected captions %q %q", snap.XToggle, snap.YAxisTitle)
	}
}

func TestSearchReclampsPage(t *testing.T) {
	v := New(testCatalog(t), 10)
	if _, err := v.Apply(SetPage(2)); err != nil {
		t.Fatalf("set page: %v", err)
	}
	if got := v.Snapshot().Page.Number; got != 2 {
		t.Fatalf("expected page 2, got %d", got)
	}
	if _, err := v.Apply(SetSearch("element", "u")); err != nil {
		t.Fatalf("search: %v", err)
	}
	snap := v.Snapshot()
	if snap.Page.Number != 0 || snap.Page.TotalItems != 2 {
		t.Fatalf("expected re-clamped single page, got %+v", snap.Page)
	}
	if _, err := v.Apply(SetPage(99)); err != nil {
		t.Fatalf("set page: %v", err)
	}
	if got := v.Snapshot().Page.Number; got != 0 {
		t.Fatalf("out-of-range page must clamp, got %d", got)
	}
}

func TestSearchRejectsUnknownField(t *testing.T) {
	v := New(testCatalog(t), 10)
	if _, err := v.Apply(SetSearch("isotope", "U")); !errors.Is(err, ErrInvalidIntent) {
		t.Fatalf("expected ErrInvalidIntent, got %v", err)
	}
	if _, err := v.Apply(Intent{Type: "explode"}); !errors.Is(err, ErrInvalidIntent) {
		t.Fatalf("expected ErrInvalidIntent, got %v", err)
	}
}

func TestToggleSelection(t *testing.T) {
	v := New(testCatalog(t), 10)
	eff, err := v.Apply(ToggleSelection(3))
	if err != nil || !eff.Refetch {
		t.Fatalf("toggle should request a refetch: %v %v", eff, err)
	}
	snap := v.Snapshot()
	if !snap.Page.Rows[3].Checked || snap.SelectionCount != "1 / 27" {
		t.Fatalf("row 3 should be checked: %+v", snap.Page.Rows[3])
	}
	if _, err := v.Apply(ToggleSelection(3)); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if got := v.Snapshot().Selected; len(got) != 0 {
		t.Fatalf("double toggle should restore the empty selection, got %v", got)
	}
	if _, err := v.Apply(ToggleSelection(999)); !errors.Is(err, ErrInvalidIntent) {
		t.Fatalf("unknown id must be rejected, got %v", err)
	}
}

func TestAxisTogglesDoNotRefetch(t *testing.T) {
	v := New(testCatalog(t), 10)
	for _, in := range []Intent{{Type: IntentToggleXLog}, {Type: IntentToggleYLog}} {
		eff, err := v.Apply(in)
		if err != nil || eff.Refetch {
			t.Fatalf("%s: unexpected effect %v %v", in.Type, eff, err)
		}
	}
	fig := v.Figure()
	if fig.Layout.XAxis.Type != "linear" || fig.Layout.YAxis.Type != "linear" {
		t.Fatalf("expected linear axes, got %+v", fig.Layout)
	}
	if snap := v.Snapshot(); snap.YToggle != "Switch Y to Log Scale" {
		t.Fatalf("unexpected caption %q", snap.YToggle)
	}
}

func TestCompleteRefreshDiscardsStaleGenerations(t *testing.T) {
	v := New(testCatalog(t), 10)
	_, _ = v.Apply(ToggleSelection(100))
	first := v.BeginRefresh()
	_, _ = v.Apply(ToggleSelection(101))
	second := v.BeginRefresh()
	if diff := cmp.Diff([]int{100, 101}, second.IDs); diff != "" {
		t.Fatalf("refresh ids (-want +got):\n%s", diff)
	}

	if !v.CompleteRefresh(second.Generation, resultFor(100, 101)) {
		t.Fatalf("latest generation must apply")
	}
	if v.CompleteRefresh(first.Generation, resultFor(100)) {
		t.Fatalf("stale generation must be discarded")
	}
	snap := v.Snapshot()
	if len(snap.Series) != 2 || snap.YAxisTitle != chart.CombinedTitle {
		t.Fatalf("stale result leaked into view: %+v", snap.Series)
	}
	issued, applied := v.Generation()
	if issued != second.Generation || applied != second.Generation {
		t.Fatalf("unexpected generations %d/%d", issued, applied)
	}
}

func TestSeriesVisibilityHidesTrace(t *testing.T) {
	v := New(testCatalog(t), 10)
	_, _ = v.Apply(ToggleSelection(100))
	_, _ = v.Apply(ToggleSelection(101))
	ref := v.BeginRefresh()
	v.CompleteRefresh(ref.Generation, resultFor(100, 101))

	if _, err := v.Apply(SetSeriesVisibility(101, false)); err != nil {
		t.Fatalf("visibility: %v", err)
	}
	fig := v.Figure()
	if diff := cmp.Diff([]string{"U235 (n,gamma) ENDFB-8.0"}, fig.Names()); diff != "" {
		t.Fatalf("traces (-want +got):\n%s", diff)
	}
	if fig.Layout.YAxis.Title.Text != chart.CrossSectionTitle {
		t.Fatalf("hidden heating entry must not affect title: %q", fig.Layout.YAxis.Title.Text)
	}
	if doc := v.ExportDocument(); len(doc.Labels) != 2 {
		t.Fatalf("export keeps hidden entries, got %v", doc.Labels)
	}
	if _, err := v.Apply(SetSeriesVisibility(5, true)); !errors.Is(err, ErrInvalidIntent) {
		t.Fatalf("expected error for unplotted id, got %v", err)
	}
	if _, err := v.Apply(Intent{Type: IntentSetSeriesVisibility, ID: 100}); !errors.Is(err, ErrInvalidIntent) {
		t.Fatalf("expected error without visible flag, got %v", err)
	}
}

func TestClearSelectionDropsPlotAndSupersedesInflight(t *testing.T) {
	v := New(testCatalog(t), 10)
	_, _ = v.Apply(ToggleSelection(100))
	ref := v.BeginRefresh()
	v.CompleteRefresh(ref.Generation, resultFor(100))
	_, _ = v.Apply(ToggleSelection(101))
	inflight := v.BeginRefresh()

	eff, err := v.Apply(Intent{Type: IntentClearSelection})
	if err != nil || eff.Refetch {
		t.Fatalf("clear: %v %v", eff, err)
	}
	if v.CompleteRefresh(inflight.Generation, resultFor(100, 101)) {
		t.Fatalf("resolve issued before clear must be discarded")
	}
	snap := v.Snapshot()
	if len(snap.Series) != 0 || len(snap.Selected) != 0 || snap.YAxisTitle != "" {
		t.Fatalf("clear should empty the plot: %+v", snap)
	}
}

// Package session owns the state of the single plotting view: search terms,
// page, selection, axis scales and the last applied series. State changes go
// through Apply, and resolves are tagged with a generation so that only the
// most recently issued one is applied.
package session

import (
	"fmt"
	"slices"
	"sync"

	"xsplot/internal/catalog"
	"xsplot/internal/chart"
	"xsplot/internal/export"
	"xsplot/internal/selection"
	"xsplot/internal/series"
	"xsplot/pkg/nuclide"
)

// View is the single owner of the view state. It is safe for concurrent use;
// every method runs under one mutex and never blocks on I/O.
type View struct {
	mu       sync.Mutex
	catalog  *catalog.Catalog
	pageSize int

	search   nuclide.SearchState
	filtered []nuclide.Record
	page     int
	selected *selection.Set
	scale    nuclide.AxisScale

	entries    []nuclide.Series
	failures   []*nuclide.FetchError
	generation uint64
	applied    uint64
}

// New returns a view over cat with nothing selected and log-log axes.
func New(cat *catalog.Catalog, pageSize int) *View {
	if pageSize <= 0 {
		pageSize = catalog.DefaultPageSize
	}
	return &View{
		catalog:  cat,
		pageSize: pageSize,
		filtered: cat.Records(),
		selected: selection.New(),
		scale:    nuclide.DefaultAxisScale(),
	}
}

// Apply updates the view for intent.
func (v *View) Apply(in Intent) (Effect, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch in.Type {
	case IntentSetSearch:
		field, ok := nuclide.ParseField(in.Field)
		if !ok {
			return Effect{}, invalid("unknown search field %q", in.Field)
		}
		v.search = v.search.With(field, in.Term)
		v.filtered = v.catalog.Search(v.search)
		v.page = catalog.ClampPage(len(v.filtered), v.pageSize, v.page)
	case IntentSetPage:
		v.page = catalog.ClampPage(len(v.filtered), v.pageSize, in.Page)
	case IntentToggleSelection:
		if _, ok := v.catalog.Lookup(in.ID); !ok {
			return Effect{}, invalid("id %d is not in the catalog", in.ID)
		}
		v.selected.Toggle(in.ID)
		return Effect{Refetch: true}, nil
	case IntentClearSelection:
		v.selected.Clear()
		// Supersede any resolve in flight and drop the plot right away.
		v.generation++
		v.applied = v.generation
		v.entries = nil
		v.failures = nil
	case IntentToggleXLog:
		v.scale.XLog = !v.scale.XLog
	case IntentToggleYLog:
		v.scale.YLog = !v.scale.YLog
	case IntentSetSeriesVisibility:
		if in.Visible == nil {
			return Effect{}, invalid("set_series_visibility requires visible")
		}
		idx := slices.IndexFunc(v.entries, func(s nuclide.Series) bool { return s.ID == in.ID })
		if idx < 0 {
			return Effect{}, invalid("id %d is not plotted", in.ID)
		}
		v.entries[idx].Visible = *in.Visible
	default:
		return Effect{}, invalid("unknown intent type %q", in.Type)
	}
	return Effect{}, nil
}

// Refresh identifies one issued resolve.
type Refresh struct {
	Generation uint64
	IDs        []int
	// Selection fingerprints IDs for logs.
	Selection string
}

// BeginRefresh issues a new generation for the current selection. Any
// earlier generation still in flight is superseded.
func (v *View) BeginRefresh() Refresh {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.generation++
	return Refresh{Generation: v.generation, IDs: v.selected.IDs(), Selection: v.selected.Fingerprint()}
}

// CompleteRefresh applies res if generation is still the latest one issued.
// It reports whether the result was applied.
func (v *View) CompleteRefresh(generation uint64, res series.Result) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if generation != v.generation {
		return false
	}
	v.entries = slices.Clone(res.Entries)
	v.failures = slices.Clone(res.Failures)
	v.applied = generation
	return true
}

// Generation returns the latest issued and the latest applied generation.
func (v *View) Generation() (issued, applied uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.generation, v.applied
}

// Row is a table row with its selection state.
type Row struct {
	nuclide.Record
	Checked bool `json:"checked"`
}

// PageView is the visible table page.
type PageView struct {
	Number     int   `json:"page"`
	Size       int   `json:"page_size"`
	TotalItems int   `json:"total_items"`
	TotalPages int   `json:"total_pages"`
	Rows       []Row `json:"rows"`
}

// Snapshot is a read-only copy of the view for rendering.
type Snapshot struct {
	Search         nuclide.SearchState   `json:"search"`
	Page           PageView              `json:"page"`
	Selected       []int                 `json:"selected"`
	SelectionCount string                `json:"selection_count"`
	CatalogSize    int                   `json:"catalog_size"`
	Scale          nuclide.AxisScale     `json:"scale"`
	XToggle        string                `json:"x_toggle_caption"`
	YToggle        string                `json:"y_toggle_caption"`
	YAxisTitle     string                `json:"y_axis_title"`
	Series         []SeriesSummary       `json:"series"`
	Failures       []*nuclide.FetchError `json:"failures,omitempty"`
	Generation     uint64                `json:"generation"`
}

// SeriesSummary describes a plotted entry without its points.
type SeriesSummary struct {
	ID      int    `json:"id"`
	Key     string `json:"key"`
	Label   string `json:"label"`
	Points  int    `json:"points"`
	Visible bool   `json:"visible"`
}

// Snapshot returns the current state.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	page := catalog.Paginate(v.filtered, v.pageSize, v.page)
	rows := make([]Row, len(page.Items))
	for i, rec := range page.Items {
		rows[i] = Row{Record: rec, Checked: v.selected.Contains(rec.ID)}
	}
	summaries := make([]SeriesSummary, len(v.entries))
	for i, e := range v.entries {
		summaries[i] = SeriesSummary{ID: e.ID, Key: e.Key, Label: e.Label, Points: e.Len(), Visible: e.Visible}
	}
	return Snapshot{
		Search: v.search,
		Page: PageView{
			Number:     page.Number,
			Size:       page.Size,
			TotalItems: page.TotalItems,
			TotalPages: page.TotalPages,
			Rows:       rows,
		},
		Selected:       v.selected.IDs(),
		SelectionCount: fmt.Sprintf("%d / %d", v.selected.Len(), v.catalog.Len()),
		CatalogSize:    v.catalog.Len(),
		Scale:          v.scale,
		XToggle:        chart.ToggleCaption("X", v.scale.XLog),
		YToggle:        chart.ToggleCaption("Y", v.scale.YLog),
		YAxisTitle:     chart.YAxisTitle(v.entries),
		Series:         summaries,
		Failures:       slices.Clone(v.failures),
		Generation:     v.applied,
	}
}

// Figure builds the chart for the last applied series. Axis toggles take
// effect here without a refetch.
func (v *View) Figure() chart.Figure {
	v.mu.Lock()
	defer v.mu.Unlock()
	return chart.Build(v.entries, v.scale)
}

// ExportRequest snapshots the plotted series for the export worker.
func (v *View) ExportRequest(formats ...export.Format) export.Request {
	v.mu.Lock()
	defer v.mu.Unlock()
	return export.Request{Entries: slices.Clone(v.entries), Scale: v.scale, Formats: formats}
}

// ExportDocument returns the downloadable document for the plotted series.
func (v *View) ExportDocument() export.Document {
	v.mu.Lock()
	defer v.mu.Unlock()
	return export.Build(v.entries)
}

// Package nuclide defines the catalog records, search state and plotted series
// shared by the xsplot catalog, fetcher, chart and export layers.
package nuclide

import (
	"fmt"
	"strconv"
	"strings"
)

// Particle is the projectile encoded in every dataset key. Only incident
// neutron data is published by the remote stores.
const Particle = "n"

// Record is one reaction entry of the static catalog.
type Record struct {
	ID          int    `json:"id"`
	Element     string `json:"element"`
	Nucleons    int    `json:"nucleons"`
	Reaction    string `json:"reaction"`
	MT          int    `json:"mt"`
	Library     string `json:"library"`
	Temperature string `json:"temperature"`
}

// DatasetKey returns the remote dataset key for the record, for example
// U_235_ENDFB-8.0_n_102_294K.
func (r Record) DatasetKey() string {
	return strings.Join([]string{
		r.Element,
		strconv.Itoa(r.Nucleons),
		r.Library,
		Particle,
		strconv.Itoa(r.MT),
		r.Temperature + "K",
	}, "_")
}

// Label returns the legend label used for the record's plotted series.
func (r Record) Label() string {
	return fmt.Sprintf("%s%d %s %s", r.Element, r.Nucleons, r.Reaction, r.Library)
}

// Field identifies one of the searchable catalog columns.
type Field string

// Searchable fields in the order the search inputs are laid out.
const (
	FieldElement  Field = "element"
	FieldNucleons Field = "nucleons"
	FieldReaction Field = "reaction"
	FieldMT       Field = "mt"
	FieldLibrary  Field = "library"
)

// Fields lists every searchable field.
var Fields = []Field{FieldElement, FieldNucleons, FieldReaction, FieldMT, FieldLibrary}

// Value renders the record's value for field as the string the filter compares against.
// Numeric fields use their decimal representation.
func (r Record) Value(field Field) string {
	switch field {
	case FieldElement:
		return r.Element
	case FieldNucleons:
		return strconv.Itoa(r.Nucleons)
	case FieldReaction:
		return r.Reaction
	case FieldMT:
		return strconv.Itoa(r.MT)
	case FieldLibrary:
		return r.Library
	default:
		return ""
	}
}

// SearchState holds the per-field search terms. An empty term means the
// field is not filtered.
type SearchState struct {
	Element  string `json:"element,omitempty"`
	Nucleons string `json:"nucleons,omitempty"`
	Reaction string `json:"reaction,omitempty"`
	MT       string `json:"mt,omitempty"`
	Library  string `json:"library,omitempty"`
}

// Term returns the search term for field.
func (s SearchState) Term(field Field) string {
	switch field {
	case FieldElement:
		return s.Element
	case FieldNucleons:
		return s.Nucleons
	case FieldReaction:
		return s.Reaction
	case FieldMT:
		return s.MT
	case FieldLibrary:
		return s.Library
	default:
		return ""
	}
}

// With returns a copy of s with field set to term.
func (s SearchState) With(field Field, term string) SearchState {
	switch field {
	case FieldElement:
		s.Element = term
	case FieldNucleons:
		s.Nucleons = term
	case FieldReaction:
		s.Reaction = term
	case FieldMT:
		s.MT = term
	case FieldLibrary:
		s.Library = term
	}
	return s
}

// Empty reports whether no field carries a term.
func (s SearchState) Empty() bool {
	for _, f := range Fields {
		if strings.TrimSpace(s.Term(f)) != "" {
			return false
		}
	}
	return true
}

// ParseField converts a field name into a Field.
func ParseField(name string) (Field, bool) {
	f := Field(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Fields {
		if f == known {
			return f, true
		}
	}
	return "", false
}

// Series is the fetched energy / cross-section data for one selected record.
type Series struct {
	ID           int       `json:"id"`
	Key          string    `json:"key"`
	Label        string    `json:"label"`
	Energy       []float64 `json:"energy"`
	CrossSection []float64 `json:"cross_section"`
	Visible      bool      `json:"visible"`
}

// Len returns the number of points in the series.
func (s Series) Len() int { return len(s.Energy) }

// AxisScale records whether each chart axis is logarithmic.
type AxisScale struct {
	XLog bool `json:"x_log"`
	YLog bool `json:"y_log"`
}

// DefaultAxisScale is log-log.
func DefaultAxisScale() AxisScale { return AxisScale{XLog: true, YLog: true} }

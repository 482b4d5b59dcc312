// Package chart turns resolved series into a plot: axis titles derived from
// what is being plotted, a plotly-compatible figure document, and a PNG
// rendering of the same figure.
package chart

import (
	"strings"

	"xsplot/pkg/nuclide"
)

// Axis titles.
const (
	XAxisTitle        = "Energy [eV]"
	CrossSectionTitle = "Microscopic Cross Section [barns]"
	HeatingTitle      = "Heating Cross Section [eV-barn]"
	CombinedTitle     = CrossSectionTitle + ", " + HeatingTitle
	AxisTypeLog       = "log"
	AxisTypeLinear    = "linear"
	heatingMarker     = "heat"
	damageMarker      = "damage"
)

// Class is the physical quantity a series is tabulated in.
type Class int

const (
	// ClassCrossSection series are in barns.
	ClassCrossSection Class = iota
	// ClassHeating series (heating and damage energy) are in eV-barn.
	ClassHeating
)

// Classify decides the quantity plotted by a series from its label.
func Classify(label string) Class {
	if strings.Contains(label, heatingMarker) || strings.Contains(label, damageMarker) {
		return ClassHeating
	}
	return ClassCrossSection
}

// YAxisTitle returns the y axis title for the visible entries.
func YAxisTitle(entries []nuclide.Series) string {
	var xs, heat bool
	for _, e := range entries {
		if !e.Visible {
			continue
		}
		switch Classify(e.Label) {
		case ClassHeating:
			heat = true
		default:
			xs = true
		}
	}
	switch {
	case xs && heat:
		return CombinedTitle
	case heat:
		return HeatingTitle
	case xs:
		return CrossSectionTitle
	default:
		return ""
	}
}

// AxisType maps a log flag to the plotly axis type.
func AxisType(log bool) string {
	if log {
		return AxisTypeLog
	}
	return AxisTypeLinear
}

// ToggleCaption is the label of the button that flips an axis scale.
func ToggleCaption(axis string, log bool) string {
	if log {
		return "Switch " + axis + " to Linear Scale"
	}
	return "Switch " + axis + " to Log Scale"
}

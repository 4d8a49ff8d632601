package core

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Metric names a recognized numeric column. The value is the CSV header.
type Metric string

const (
	MetricAvgTemperature Metric = "Avg_Temperature_degC"
	MetricCO2PerCapita   Metric = "CO2_Emissions_tons_per_capita"
	MetricSeaLevelRise   Metric = "Sea_Level_Rise_mm"
	MetricRainfall       Metric = "Rainfall_mm"
	MetricPopulation     Metric = "Population"
	MetricRenewablePct   Metric = "Renewable_Energy_pct"
	MetricExtremeEvents  Metric = "Extreme_Weather_Events"
	MetricForestAreaPct  Metric = "Forest_Area_pct"
)

// Identity columns of the fixed schema.
const (
	ColumnCountry = "Country"
	ColumnYear    = "Year"
)

// RawRow is one parsed data row keyed by header name.
// Cells missing from a short row are absent from the map.
type RawRow map[string]string

// RawTable is the output of Parse.
type RawTable struct {
	Rows        []RawRow
	Columns     []string // Header order
	Diagnostics []string // Row-level parse problems; never fatal
}

// Record is one normalized country-year observation.
// Metrics that were missing or could not be coerced are NaN.
type Record struct {
	Country string
	Year    int
	HasYear bool

	AvgTemperature float64
	CO2PerCapita   float64
	SeaLevelRise   float64
	Rainfall       float64
	Population     float64
	RenewablePct   float64
	ExtremeEvents  float64
	ForestAreaPct  float64

	// Extra holds cells of unrecognized columns verbatim.
	Extra map[string]string
}

// Value returns the metric's value, NaN for an unknown metric.
func (r Record) Value(m Metric) float64 {
	switch m {
	case MetricAvgTemperature:
		return r.AvgTemperature
	case MetricCO2PerCapita:
		return r.CO2PerCapita
	case MetricSeaLevelRise:
		return r.SeaLevelRise
	case MetricRainfall:
		return r.Rainfall
	case MetricPopulation:
		return r.Population
	case MetricRenewablePct:
		return r.RenewablePct
	case MetricExtremeEvents:
		return r.ExtremeEvents
	case MetricForestAreaPct:
		return r.ForestAreaPct
	default:
		return math.NaN()
	}
}

// Finite reports whether the metric holds a usable number.
func (r Record) Finite(m Metric) bool {
	v := r.Value(m)
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// setValue is only used while a record is being built by Normalize.
func (r *Record) setValue(m Metric, v float64) {
	switch m {
	case MetricAvgTemperature:
		r.AvgTemperature = v
	case MetricCO2PerCapita:
		r.CO2PerCapita = v
	case MetricSeaLevelRise:
		r.SeaLevelRise = v
	case MetricRainfall:
		r.Rainfall = v
	case MetricPopulation:
		r.Population = v
	case MetricRenewablePct:
		r.RenewablePct = v
	case MetricExtremeEvents:
		r.ExtremeEvents = v
	case MetricForestAreaPct:
		r.ForestAreaPct = v
	}
}

// Dataset is the full result of one successful ingestion.
// It is replaced wholesale and never mutated after construction.
type Dataset struct {
	ID          uuid.UUID
	SourceLabel string
	LoadedAt    time.Time
	Columns     []string
	Records     []Record
	Diagnostics []string
	Warnings    []FieldCoercionWarning
}

// Len returns the number of records, 0 for a nil dataset.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// DomainIndex lists the distinct countries and years of a dataset.
type DomainIndex struct {
	Countries []string `json:"countries"`
	Years     []int    `json:"years"`
}

// Equal reports whether both indexes hold the same members in the same order.
func (d DomainIndex) Equal(o DomainIndex) bool {
	if len(d.Countries) != len(o.Countries) || len(d.Years) != len(o.Years) {
		return false
	}
	for i := range d.Countries {
		if d.Countries[i] != o.Countries[i] {
			return false
		}
	}
	for i := range d.Years {
		if d.Years[i] != o.Years[i] {
			return false
		}
	}
	return true
}

// Selection is the current country/year filter. The zero value is empty.
type Selection struct {
	Country string `json:"country"`
	Year    int    `json:"year"`
	HasYear bool   `json:"hasYear"`
}

// MetricPair names the two metrics compared in a cross-section.
type MetricPair struct {
	X Metric `json:"x"`
	Y Metric `json:"y"`
}

// YearlyMean is one point of a global per-year aggregate.
// Count is the number of finite contributors; Mean is 0 when Count is 0.
type YearlyMean struct {
	Year  int     `json:"year"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// ViewOptions parameterizes the views that need more than a selection.
type ViewOptions struct {
	Pair        MetricPair `json:"pair"`
	Aggregate   Metric     `json:"aggregate"`
	RankBy      Metric     `json:"rankBy"`
	RankingSize int        `json:"rankingSize"`
}

// Views bundles every derived view for one (dataset, selection, options).
type Views struct {
	Selection    Selection    `json:"selection"`
	Current      *Record      `json:"current"`
	TimeSeries   []Record     `json:"timeSeries"`
	CrossSection []Record     `json:"crossSection"`
	Aggregate    []YearlyMean `json:"aggregate"`
	Ranking      []Record     `json:"ranking"`
}

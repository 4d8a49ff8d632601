package core

import (
	"errors"
	"testing"
)

func TestLookupMetric(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   Metric
		wantOK bool
	}{
		{name: "exact", input: "Population", want: MetricPopulation, wantOK: true},
		{name: "case insensitive", input: "avg_temperature_degc", want: MetricAvgTemperature, wantOK: true},
		{name: "whitespace", input: " Rainfall_mm ", want: MetricRainfall, wantOK: true},
		{name: "identity column is not a metric", input: "Year", wantOK: false},
		{name: "unknown", input: "GDP", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, ok := LookupMetric(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("LookupMetric(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && def.Metric != tt.want {
				t.Errorf("LookupMetric(%q) = %q, want %q", tt.input, def.Metric, tt.want)
			}
		})
	}
}

func TestParseMetric_Unknown(t *testing.T) {
	_, err := ParseMetric("GDP")
	if !errors.Is(err, ErrUnknownMetric) {
		t.Errorf("error = %v, want ErrUnknownMetric", err)
	}
}

func TestMetrics_SchemaOrder(t *testing.T) {
	want := []Metric{
		MetricAvgTemperature, MetricCO2PerCapita, MetricSeaLevelRise, MetricRainfall,
		MetricPopulation, MetricRenewablePct, MetricExtremeEvents, MetricForestAreaPct,
	}
	defs := Metrics()
	if len(defs) != len(want) || MetricCount() != len(want) {
		t.Fatalf("registered %d metrics, want %d", len(defs), len(want))
	}
	for i, m := range want {
		if defs[i].Metric != m {
			t.Errorf("[%d] = %q, want %q", i, defs[i].Metric, m)
		}
	}

	defs[0].Label = "mutated"
	if Metrics()[0].Label == "mutated" {
		t.Error("Metrics() should return a copy")
	}
}

func TestRegisterMetric_DuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate metric")
		}
	}()
	RegisterMetric(MetricDef{Metric: "population"})
}

func TestRecordValue_UnknownMetric(t *testing.T) {
	r := rec("Chile", 2020, 1, 2)
	if r.Finite("GDP") {
		t.Error("unknown metric should not be finite")
	}
}

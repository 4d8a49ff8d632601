package core

import (
	"encoding/json"
	"math"
	"testing"
)

func rec(country string, year int, pop, temp float64) Record {
	nan := math.NaN()
	return Record{
		Country:        country,
		Year:           year,
		HasYear:        true,
		AvgTemperature: temp,
		CO2PerCapita:   nan,
		SeaLevelRise:   nan,
		Rainfall:       nan,
		Population:     pop,
		RenewablePct:   nan,
		ExtremeEvents:  nan,
		ForestAreaPct:  nan,
	}
}

func countries(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Country
	}
	return out
}

func TestCurrentRecord(t *testing.T) {
	records := []Record{
		rec("Chile", 2020, 1, 10),
		rec("Chile", 2021, 2, 11),
		rec("Chile", 2021, 3, 12),
	}

	tests := []struct {
		name    string
		sel     Selection
		wantOK  bool
		wantPop float64
	}{
		{name: "match", sel: Selection{Country: "Chile", Year: 2020, HasYear: true}, wantOK: true, wantPop: 1},
		{name: "duplicate first wins", sel: Selection{Country: "Chile", Year: 2021, HasYear: true}, wantOK: true, wantPop: 2},
		{name: "no match", sel: Selection{Country: "Peru", Year: 2020, HasYear: true}},
		{name: "no year", sel: Selection{Country: "Chile"}},
		{name: "no country", sel: Selection{Year: 2020, HasYear: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CurrentRecord(records, tt.sel)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got.Population != tt.wantPop {
				t.Errorf("Population = %v, want %v", got.Population, tt.wantPop)
			}
		})
	}
}

func TestCountryTimeSeries(t *testing.T) {
	noYear := rec("Chile", 0, 9, 9)
	noYear.HasYear = false
	records := []Record{
		rec("Chile", 2021, 1, 0),
		noYear,
		rec("Peru", 2019, 0, 0),
		rec("Chile", 2019, 2, 0),
		rec("Chile", 2021, 3, 0),
	}

	got := CountryTimeSeries(records, "Chile")
	wantPop := []float64{2, 1, 3, 9}
	if len(got) != len(wantPop) {
		t.Fatalf("len = %d, want %d", len(got), len(wantPop))
	}
	for i, p := range wantPop {
		if got[i].Population != p {
			t.Errorf("[%d] Population = %v, want %v", i, got[i].Population, p)
		}
	}
	if records[0].Population != 1 {
		t.Error("input was reordered")
	}

	if empty := CountryTimeSeries(records, ""); empty == nil || len(empty) != 0 {
		t.Errorf("empty country = %v, want empty slice", empty)
	}
}

func TestYearCrossSection(t *testing.T) {
	records := []Record{
		rec("A", 2020, 1, 10),
		rec("B", 2020, math.NaN(), 11),
		rec("C", 2021, 3, 12),
		rec("D", 2020, 4, math.Inf(1)),
		rec("E", 2020, 5, 13),
	}
	pair := MetricPair{X: MetricPopulation, Y: MetricAvgTemperature}

	got := countries(YearCrossSection(records, 2020, pair))
	want := []string{"A", "E"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("cross-section = %v, want %v", got, want)
	}
}

func TestGlobalYearlyAggregate(t *testing.T) {
	records := []Record{
		rec("A", 2020, 0, 10),
		rec("B", 2020, 0, 20),
		rec("C", 2020, 0, math.NaN()),
		rec("A", 2021, 0, math.NaN()),
		rec("B", 2019, 0, 1.005),
		rec("C", 2019, 0, 2.0),
	}

	got := GlobalYearlyAggregate(records, MetricAvgTemperature)
	want := []YearlyMean{
		{Year: 2019, Mean: 1.5, Count: 2},
		{Year: 2020, Mean: 15.00, Count: 2},
		{Year: 2021, Mean: 0, Count: 0},
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestGlobalYearlyAggregate_HugeValuesStayFinite(t *testing.T) {
	records := []Record{
		rec("A", 2020, 1e307, 0),
		rec("A", 2021, 1e308, 0),
		rec("B", 2021, 1e308, 0),
		rec("C", 2021, math.MaxFloat64, 0),
	}

	got := GlobalYearlyAggregate(records, MetricPopulation)
	if len(got) != 2 {
		t.Fatalf("got %v, want 2 years", got)
	}
	if got[0].Mean != 1e307 || got[0].Count != 1 {
		t.Errorf("2020 = %+v, want mean 1e307", got[0])
	}
	if math.IsInf(got[1].Mean, 0) || got[1].Mean < 1e308 || got[1].Count != 3 {
		t.Errorf("2021 = %+v, want a finite mean >= 1e308", got[1])
	}

	if _, err := json.Marshal(Views{Aggregate: got}); err != nil {
		t.Errorf("aggregate not encodable: %v", err)
	}
}

func TestGlobalYearlyAggregate_SkipsRecordsWithoutYear(t *testing.T) {
	r := rec("A", 0, 0, 10)
	r.HasYear = false
	if got := GlobalYearlyAggregate([]Record{r}, MetricAvgTemperature); len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}

func TestTopNRanking(t *testing.T) {
	cross := []Record{
		rec("A", 2020, 100, 0),
		rec("B", 2020, 300, 0),
		rec("C", 2020, math.NaN(), 0),
		rec("D", 2020, 300, 0),
		rec("E", 2020, 200, 0),
	}

	tests := []struct {
		name string
		n    int
		want []string
	}{
		{name: "top 1 keeps first of ties", n: 1, want: []string{"B"}},
		{name: "top 3", n: 3, want: []string{"B", "D", "E"}},
		{name: "n larger than input", n: 10, want: []string{"B", "D", "E", "A"}},
		{name: "zero", n: 0, want: []string{}},
		{name: "negative", n: -1, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := countries(TopNRanking(cross, MetricPopulation, tt.n))
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
					break
				}
			}
		})
	}

	if cross[1].Country != "B" || cross[3].Country != "D" {
		t.Error("input was reordered")
	}
}

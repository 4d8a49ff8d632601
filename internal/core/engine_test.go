package core

import (
	"testing"

	"github.com/google/uuid"
)

func testOptions() ViewOptions {
	return ViewOptions{
		Pair:        MetricPair{X: MetricPopulation, Y: MetricAvgTemperature},
		Aggregate:   MetricAvgTemperature,
		RankBy:      MetricPopulation,
		RankingSize: 2,
	}
}

func testDataset() *Dataset {
	return &Dataset{
		ID: uuid.New(),
		Records: []Record{
			rec("Chile", 2020, 19, 14),
			rec("Peru", 2020, 33, 19),
			rec("Chile", 2021, 20, 15),
			rec("Peru", 2021, 34, 20),
			rec("Bolivia", 2021, 12, 22),
		},
	}
}

func TestViewEngine_Compute(t *testing.T) {
	e := NewViewEngine()
	ds := testDataset()
	sel := Selection{Country: "Chile", Year: 2021, HasYear: true}

	v := e.Compute(ds, sel, testOptions())

	if v.Current == nil || v.Current.Population != 20 {
		t.Errorf("Current = %+v, want Chile 2021", v.Current)
	}
	if len(v.TimeSeries) != 2 || v.TimeSeries[0].Year != 2020 {
		t.Errorf("TimeSeries = %v", v.TimeSeries)
	}
	if len(v.CrossSection) != 3 {
		t.Errorf("CrossSection len = %d, want 3", len(v.CrossSection))
	}
	if len(v.Aggregate) != 2 || v.Aggregate[1].Mean != 19 {
		t.Errorf("Aggregate = %v", v.Aggregate)
	}
	if got := countries(v.Ranking); len(got) != 2 || got[0] != "Peru" || got[1] != "Chile" {
		t.Errorf("Ranking = %v, want [Peru Chile]", got)
	}
}

func TestViewEngine_Memoization(t *testing.T) {
	e := NewViewEngine()
	ds := testDataset()
	opts := testOptions()

	e.Compute(ds, Selection{Country: "Chile", Year: 2021, HasYear: true}, opts)
	if s := e.Stats(); s.Misses != 5 || s.Hits != 0 {
		t.Fatalf("after first compute: %+v", s)
	}

	e.Compute(ds, Selection{Country: "Chile", Year: 2021, HasYear: true}, opts)
	if s := e.Stats(); s.Hits != 5 {
		t.Errorf("identical inputs should hit every view: %+v", s)
	}

	// Year change: series and aggregate are reused.
	e.Compute(ds, Selection{Country: "Chile", Year: 2020, HasYear: true}, opts)
	if s := e.Stats(); s.Hits != 7 || s.Misses != 8 {
		t.Errorf("after year change: %+v, want 7 hits 8 misses", s)
	}

	// New dataset invalidates everything.
	e.Compute(testDataset(), Selection{Country: "Chile", Year: 2020, HasYear: true}, opts)
	if s := e.Stats(); s.Misses != 13 {
		t.Errorf("after dataset change: %+v, want 13 misses", s)
	}
}

func TestViewEngine_NilDataset(t *testing.T) {
	v := NewViewEngine().Compute(nil, Selection{Country: "Chile", Year: 2020, HasYear: true}, testOptions())
	if v.Current != nil {
		t.Error("Current should be nil")
	}
	if v.TimeSeries == nil || v.CrossSection == nil || v.Aggregate == nil || v.Ranking == nil {
		t.Error("views should be empty, not nil")
	}
}

func TestViewEngine_NoYearSelected(t *testing.T) {
	v := NewViewEngine().Compute(testDataset(), Selection{Country: "Chile"}, testOptions())
	if len(v.CrossSection) != 0 || len(v.Ranking) != 0 {
		t.Errorf("cross-section and ranking need a year: %+v", v)
	}
	if len(v.TimeSeries) != 2 {
		t.Errorf("time series should not need a year, got %d", len(v.TimeSeries))
	}
}

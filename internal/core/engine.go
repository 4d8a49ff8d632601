package core

// engine.go memoizes the derived views.
//
// Each view is cached on exactly the inputs it reads, so changing the year
// recomputes the snapshot, cross-section and ranking but reuses the country
// time series and the global aggregate. Datasets are keyed by ID; a new
// ingestion always gets a new ID and therefore invalidates everything.
//
// Returned slices are shared with the cache and must be treated as read-only.

import (
	"sync"

	"github.com/google/uuid"
)

// memo holds the last computed value of one view.
type memo[K comparable, V any] struct {
	key K
	val V
	ok  bool
}

func (m *memo[K, V]) get(key K, stats *EngineStats, compute func() V) V {
	if m.ok && m.key == key {
		stats.Hits++
		return m.val
	}
	stats.Misses++
	m.key, m.val, m.ok = key, compute(), true
	return m.val
}

type currentKey struct {
	dataset uuid.UUID
	sel     Selection
}

type seriesKey struct {
	dataset uuid.UUID
	country string
}

type crossKey struct {
	dataset uuid.UUID
	year    int
	hasYear bool
	pair    MetricPair
}

type aggregateKey struct {
	dataset uuid.UUID
	metric  Metric
}

type rankingKey struct {
	cross crossKey
	field Metric
	n     int
}

// EngineStats counts cache hits and misses across all views.
type EngineStats struct {
	Hits   int `json:"hits"`
	Misses int `json:"misses"`
}

// ViewEngine computes Views with per-view memoization.
// It is safe for concurrent use.
type ViewEngine struct {
	mu    sync.Mutex
	stats EngineStats

	current   memo[currentKey, *Record]
	series    memo[seriesKey, []Record]
	cross     memo[crossKey, []Record]
	aggregate memo[aggregateKey, []YearlyMean]
	ranking   memo[rankingKey, []Record]
}

// NewViewEngine creates an empty engine.
func NewViewEngine() *ViewEngine {
	return &ViewEngine{}
}

// Compute returns every view for the dataset and selection.
// A nil dataset yields empty views.
func (e *ViewEngine) Compute(ds *Dataset, sel Selection, opts ViewOptions) Views {
	e.mu.Lock()
	defer e.mu.Unlock()

	var id uuid.UUID
	var records []Record
	if ds != nil {
		id = ds.ID
		records = ds.Records
	}

	views := Views{Selection: sel}

	views.Current = e.current.get(currentKey{id, sel}, &e.stats, func() *Record {
		if r, ok := CurrentRecord(records, sel); ok {
			return &r
		}
		return nil
	})

	views.TimeSeries = e.series.get(seriesKey{id, sel.Country}, &e.stats, func() []Record {
		return CountryTimeSeries(records, sel.Country)
	})

	ck := crossKey{dataset: id, year: sel.Year, hasYear: sel.HasYear, pair: opts.Pair}
	views.CrossSection = e.cross.get(ck, &e.stats, func() []Record {
		if !sel.HasYear {
			return []Record{}
		}
		return YearCrossSection(records, sel.Year, opts.Pair)
	})

	views.Aggregate = e.aggregate.get(aggregateKey{id, opts.Aggregate}, &e.stats, func() []YearlyMean {
		return GlobalYearlyAggregate(records, opts.Aggregate)
	})

	cross := views.CrossSection
	views.Ranking = e.ranking.get(rankingKey{ck, opts.RankBy, opts.RankingSize}, &e.stats, func() []Record {
		return TopNRanking(cross, opts.RankBy, opts.RankingSize)
	})

	return views
}

// Stats returns the cache counters.
func (e *ViewEngine) Stats() EngineStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

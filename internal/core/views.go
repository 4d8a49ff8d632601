package core

// views.go holds the derived views. Each is a pure function of its inputs:
// no caching, no shared state, and the input slice is never modified.

import (
	"sort"
)

// aggregatePlaces is the rounding applied to aggregate means.
const aggregatePlaces = 2

// CurrentRecord returns the record for the selected country and year.
// If several records match, the first in dataset order wins. ok is false
// when nothing matches or the selection is incomplete.
func CurrentRecord(records []Record, sel Selection) (Record, bool) {
	if sel.Country == "" || !sel.HasYear {
		return Record{}, false
	}
	for _, r := range records {
		if r.HasYear && r.Year == sel.Year && r.Country == sel.Country {
			return r, true
		}
	}
	return Record{}, false
}

// CountryTimeSeries returns the country's records ordered by year.
// The sort is stable; records without a year go last in dataset order.
func CountryTimeSeries(records []Record, country string) []Record {
	out := make([]Record, 0)
	if country == "" {
		return out
	}
	for _, r := range records {
		if r.Country == country {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.HasYear != b.HasYear {
			return a.HasYear
		}
		return a.Year < b.Year
	})
	return out
}

// YearCrossSection returns the records of one year where both metrics of
// pair are finite, in dataset order.
func YearCrossSection(records []Record, year int, pair MetricPair) []Record {
	out := make([]Record, 0)
	for _, r := range records {
		if !r.HasYear || r.Year != year {
			continue
		}
		if !r.Finite(pair.X) || !r.Finite(pair.Y) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// GlobalYearlyAggregate averages metric over all countries, per year.
//
// Only finite values contribute. A year whose records all lack the metric is
// still reported, with Mean 0 and Count 0. Means are rounded to two decimal
// places; the result is ordered by year.
func GlobalYearlyAggregate(records []Record, metric Metric) []YearlyMean {
	// Running mean; a plain sum overflows for values near MaxFloat64.
	type acc struct {
		mean  float64
		count int
	}
	byYear := make(map[int]*acc)

	for _, r := range records {
		if !r.HasYear {
			continue
		}
		a, ok := byYear[r.Year]
		if !ok {
			a = &acc{}
			byYear[r.Year] = a
		}
		if r.Finite(metric) {
			a.count++
			a.mean += (r.Value(metric) - a.mean) / float64(a.count)
		}
	}

	out := make([]YearlyMean, 0, len(byYear))
	for year, a := range byYear {
		ym := YearlyMean{Year: year, Count: a.count}
		if a.count > 0 {
			ym.Mean = roundTo(a.mean, aggregatePlaces)
		}
		out = append(out, ym)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// TopNRanking returns the n records with the highest finite field value,
// highest first. Ties keep their order in crossSection.
func TopNRanking(crossSection []Record, field Metric, n int) []Record {
	out := make([]Record, 0)
	if n <= 0 {
		return out
	}
	for _, r := range crossSection {
		if r.Finite(field) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Value(field) > out[j].Value(field)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

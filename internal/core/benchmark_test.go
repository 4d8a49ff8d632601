package core

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/text/language"
)

// ============================================================================
// Conversion Benchmarks
// ============================================================================

// BenchmarkToNumber covers the per-cell hot path of Normalize.
func BenchmarkToNumber(b *testing.B) {
	testCases := []string{
		"123",
		"-456.78",
		"  999.99  ",
		`="17"`,
		"1.5e3",
		"not-a-number",
		"",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			ToNumber(tc)
		}
	}
}

func BenchmarkCleanCell(b *testing.B) {
	for i := 0; i < b.N; i++ {
		CleanCell(`  ="United States"  `)
	}
}

// ============================================================================
// Pipeline Benchmarks
// ============================================================================

func BenchmarkParse(b *testing.B) {
	data := string(generateTestCSV(1000))
	b.SetBytes(int64(len(data)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Parse(data); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkNormalize(b *testing.B) {
	table, err := Parse(string(generateTestCSV(1000)))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Normalize(table)
	}
}

func BenchmarkBuildIndex(b *testing.B) {
	table, _ := Parse(string(generateTestCSV(5000)))
	records, _, _ := Normalize(table)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		BuildIndex(records, language.English)
	}
}

func BenchmarkReadSource_Large(b *testing.B) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, generateTestCSV(10000)...)
	b.SetBytes(int64(len(data)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ReadSource(bytes.NewReader(data), SourceOptions{})
	}
}

// BenchmarkViewEngine_YearChange measures a selection change that reuses the
// time series and aggregate.
func BenchmarkViewEngine_YearChange(b *testing.B) {
	table, _ := Parse(string(generateTestCSV(5000)))
	records, _, _ := Normalize(table)
	ds := &Dataset{ID: uuid.New(), Records: records}
	e := NewViewEngine()
	opts := ViewOptions{
		Pair:        MetricPair{X: MetricCO2PerCapita, Y: MetricAvgTemperature},
		Aggregate:   MetricAvgTemperature,
		RankBy:      MetricPopulation,
		RankingSize: 10,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Compute(ds, Selection{Country: "Country 7", Year: 1990 + i%30, HasYear: true}, opts)
	}
}

func BenchmarkWriteParquet(b *testing.B) {
	table, _ := Parse(string(generateTestCSV(1000)))
	records, _, _ := Normalize(table)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := WriteParquet(io.Discard, records); err != nil {
			b.Fatal(err)
		}
	}
}

// generateTestCSV creates rows spread over 50 countries and 30 years.
func generateTestCSV(rows int) []byte {
	var sb strings.Builder
	sb.WriteString("Country,Year,Avg_Temperature_degC,CO2_Emissions_tons_per_capita,Sea_Level_Rise_mm,Rainfall_mm,Population,Renewable_Energy_pct,Extreme_Weather_Events,Forest_Area_pct\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&sb, "Country %d,%d,%.1f,%.2f,%.1f,%d,%d,%.1f,%d,%.1f\n",
			i%50, 1990+i%30, 10+float64(i%20), float64(i%15)/2, float64(i%7), 500+i%900, 1000000+i*37, float64(i%60), i%25, float64(i%70))
	}
	return []byte(sb.String())
}

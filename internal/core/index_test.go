package core

import (
	"reflect"
	"testing"

	"golang.org/x/text/language"
)

func TestBuildIndex_RoundTrip(t *testing.T) {
	records, _, err := Normalize(mustParse(t, sampleCSV))
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}

	idx := BuildIndex(records, language.English)

	wantCountries := []string{"Brazil", "Germany", "United States"}
	wantYears := []int{2020, 2021}
	if !reflect.DeepEqual(idx.Countries, wantCountries) {
		t.Errorf("Countries = %v, want %v", idx.Countries, wantCountries)
	}
	if !reflect.DeepEqual(idx.Years, wantYears) {
		t.Errorf("Years = %v, want %v", idx.Years, wantYears)
	}
}

func TestBuildIndex_SkipsMissingValues(t *testing.T) {
	records := []Record{
		{Country: "Peru"},
		{Year: 2019, HasYear: true},
		{Country: "Chile", Year: 2018, HasYear: true},
	}

	idx := BuildIndex(records, language.English)
	if !reflect.DeepEqual(idx.Countries, []string{"Chile", "Peru"}) {
		t.Errorf("Countries = %v", idx.Countries)
	}
	if !reflect.DeepEqual(idx.Years, []int{2018, 2019}) {
		t.Errorf("Years = %v", idx.Years)
	}
}

func TestBuildIndex_LocaleCollation(t *testing.T) {
	records := []Record{
		{Country: "Zambia"},
		{Country: "Åland"},
		{Country: "Österreich"},
		{Country: "Albania"},
	}

	tests := []struct {
		name string
		tag  language.Tag
		want []string
	}{
		{
			name: "english folds accents",
			tag:  language.English,
			want: []string{"Åland", "Albania", "Österreich", "Zambia"},
		},
		{
			name: "swedish sorts å and ö after z",
			tag:  language.Swedish,
			want: []string{"Albania", "Zambia", "Åland", "Österreich"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := BuildIndex(records, tt.tag)
			if !reflect.DeepEqual(idx.Countries, tt.want) {
				t.Errorf("Countries = %v, want %v", idx.Countries, tt.want)
			}
		})
	}
}

func TestBuildIndex_Empty(t *testing.T) {
	idx := BuildIndex(nil, language.English)
	if idx.Countries == nil || idx.Years == nil {
		t.Error("empty index should have non-nil slices")
	}
	if !idx.Equal(DomainIndex{}) {
		t.Error("empty index should equal the zero index")
	}
}

func TestDomainIndex_Equal(t *testing.T) {
	a := DomainIndex{Countries: []string{"Chile"}, Years: []int{2020}}
	if !a.Equal(DomainIndex{Countries: []string{"Chile"}, Years: []int{2020}}) {
		t.Error("identical indexes should be equal")
	}
	if a.Equal(DomainIndex{Countries: []string{"Chile"}, Years: []int{2021}}) {
		t.Error("different years should not be equal")
	}
	if a.Equal(DomainIndex{Countries: []string{"Peru"}, Years: []int{2020}}) {
		t.Error("different countries should not be equal")
	}
}

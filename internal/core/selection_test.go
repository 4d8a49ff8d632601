package core

import (
	"testing"
)

func TestResolveCountry(t *testing.T) {
	r := Resolver{PreferredCountry: "United States"}

	tests := []struct {
		name      string
		prior     string
		countries []string
		want      string
	}{
		{name: "prior kept", prior: "Brazil", countries: []string{"Brazil", "United States"}, want: "Brazil"},
		{name: "preferred when prior missing", prior: "Chile", countries: []string{"Brazil", "United States"}, want: "United States"},
		{name: "preferred when no prior", prior: "", countries: []string{"Brazil", "United States"}, want: "United States"},
		{name: "first when preferred absent", prior: "", countries: []string{"Brazil", "Germany"}, want: "Brazil"},
		{name: "empty domain", prior: "Brazil", countries: []string{}, want: ""},
		{name: "matching is exact", prior: "brazil", countries: []string{"Brazil", "Germany"}, want: "Brazil"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.ResolveCountry(tt.prior, tt.countries); got != tt.want {
				t.Errorf("ResolveCountry(%q) = %q, want %q", tt.prior, got, tt.want)
			}
		})
	}
}

func TestResolveYear(t *testing.T) {
	var r Resolver

	tests := []struct {
		name     string
		prior    int
		hasPrior bool
		years    []int
		want     int
		wantOK   bool
	}{
		{name: "latest when no prior", years: []int{2019, 2020, 2021}, want: 2021, wantOK: true},
		{name: "prior kept", prior: 2020, hasPrior: true, years: []int{2019, 2020, 2021}, want: 2020, wantOK: true},
		{name: "latest when prior missing", prior: 1990, hasPrior: true, years: []int{2019, 2020}, want: 2020, wantOK: true},
		{name: "unset prior ignores zero", prior: 0, hasPrior: false, years: []int{0, 5}, want: 5, wantOK: true},
		{name: "unsorted domain", years: []int{2021, 2019, 2023}, want: 2023, wantOK: true},
		{name: "empty domain", prior: 2020, hasPrior: true, years: []int{}, want: 0, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.ResolveYear(tt.prior, tt.hasPrior, tt.years)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ResolveYear() = (%d, %v), want (%d, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestResolve_Idempotent(t *testing.T) {
	r := Resolver{PreferredCountry: "United States"}
	domains := []DomainIndex{
		{Countries: []string{}, Years: []int{}},
		{Countries: []string{"Brazil"}, Years: []int{2020}},
		{Countries: []string{"Brazil", "United States"}, Years: []int{2019, 2020, 2021}},
	}
	priors := []Selection{
		{},
		{Country: "Brazil", Year: 2020, HasYear: true},
		{Country: "Atlantis", Year: 1066, HasYear: true},
		{Country: "United States"},
	}

	for _, d := range domains {
		for _, p := range priors {
			once := r.Resolve(p, d)
			twice := r.Resolve(once, d)
			if once != twice {
				t.Errorf("Resolve not idempotent for prior %+v, domain %+v: %+v then %+v", p, d, once, twice)
			}

			c := r.ResolveCountry(p.Country, d.Countries)
			if r.ResolveCountry(c, d.Countries) != c {
				t.Errorf("ResolveCountry not idempotent for %q", p.Country)
			}
			y, ok := r.ResolveYear(p.Year, p.HasYear, d.Years)
			y2, ok2 := r.ResolveYear(y, ok, d.Years)
			if y != y2 || ok != ok2 {
				t.Errorf("ResolveYear not idempotent for %d", p.Year)
			}
		}
	}
}

func TestResolve_ResultIsMember(t *testing.T) {
	r := Resolver{PreferredCountry: "United States"}
	d := DomainIndex{Countries: []string{"Brazil", "Germany"}, Years: []int{2019, 2021}}

	sel := r.Resolve(Selection{Country: "Chile", Year: 2020, HasYear: true}, d)
	if !containsString(d.Countries, sel.Country) {
		t.Errorf("Country %q not in domain", sel.Country)
	}
	if !sel.HasYear || !containsInt(d.Years, sel.Year) {
		t.Errorf("Year %d not in domain", sel.Year)
	}
}

package core

// Resolver picks a valid selection for a domain.
//
// Every method is a fixed point: feeding a result back in with the same
// domain returns the same result.
type Resolver struct {
	// PreferredCountry is chosen when the prior country is not available.
	PreferredCountry string
}

// ResolveCountry keeps prior if it is a member of countries. Otherwise it
// falls back to PreferredCountry, then to the first country, then to "".
func (r Resolver) ResolveCountry(prior string, countries []string) string {
	if prior != "" && containsString(countries, prior) {
		return prior
	}
	if r.PreferredCountry != "" && containsString(countries, r.PreferredCountry) {
		return r.PreferredCountry
	}
	if len(countries) > 0 {
		return countries[0]
	}
	return ""
}

// ResolveYear keeps prior if it is set and a member of years. Otherwise it
// falls back to the latest year; ok is false when years is empty.
func (r Resolver) ResolveYear(prior int, hasPrior bool, years []int) (year int, ok bool) {
	if hasPrior && containsInt(years, prior) {
		return prior, true
	}
	if len(years) == 0 {
		return 0, false
	}
	latest := years[0]
	for _, y := range years[1:] {
		if y > latest {
			latest = y
		}
	}
	return latest, true
}

// Resolve applies both fallbacks to prior.
func (r Resolver) Resolve(prior Selection, idx DomainIndex) Selection {
	year, ok := r.ResolveYear(prior.Year, prior.HasYear, idx.Years)
	return Selection{
		Country: r.ResolveCountry(prior.Country, idx.Countries),
		Year:    year,
		HasYear: ok,
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsInt(list []int, n int) bool {
	for _, v := range list {
		if v == n {
			return true
		}
	}
	return false
}

package usecase

import "strings"

// CorrelationPolicy holds the league guards applied after name matching.
// Each category lists markers; a category named in the prediction league
// must also be present in the fixture league and vice versa.
type CorrelationPolicy struct {
	Categories        map[string][]string
	Countries         map[string][]string
	ExclusionSuffixes []string
}

func DefaultCorrelationPolicy() CorrelationPolicy {
	return CorrelationPolicy{
		Categories: map[string][]string{
			"youth":   {"u17", "u18", "u19", "u20", "u21", "u23", "youth", "primavera", "juniors", "genclik"},
			"reserve": {"reserve", "reserves", "ii", "b team", "amateur"},
			"women":   {"women", "woman", "ladies", "feminino", "femenino", "kadin", "frauen", "(w)"},
		},
		Countries: map[string][]string{
			"england":     {"england", "english", "premier league"},
			"spain":       {"spain", "spanish", "la liga", "laliga"},
			"germany":     {"germany", "german", "bundesliga", "almanya"},
			"italy":       {"italy", "italian", "serie a", "italya"},
			"france":      {"france", "french", "ligue 1", "fransa"},
			"turkey":      {"turkey", "turkiye", "super lig"},
			"netherlands": {"netherlands", "holland", "eredivisie", "hollanda"},
			"portugal":    {"portugal", "portekiz"},
			"switzerland": {"switzerland", "swiss", "isvicre"},
			"brazil":      {"brazil", "brasil", "brezilya"},
			"argentina":   {"argentina", "arjantin"},
			"scotland":    {"scotland", "scottish", "iskocya"},
			"belgium":     {"belgium", "belcika"},
		},
		ExclusionSuffixes: []string{"(w)", " women", " ladies", " feminino", " femenino", " kadin"},
	}
}

func (p CorrelationPolicy) categoriesIn(league string) map[string]bool {
	out := make(map[string]bool, len(p.Categories))
	padded := " " + league + " "
	for category, markers := range p.Categories {
		for _, marker := range markers {
			if strings.Contains(padded, " "+marker+" ") || (strings.HasPrefix(marker, "(") && strings.Contains(league, marker)) {
				out[category] = true
				break
			}
		}
	}
	return out
}

func (p CorrelationPolicy) countryOf(value string) string {
	padded := " " + value + " "
	for country, markers := range p.Countries {
		for _, marker := range markers {
			if strings.Contains(padded, " "+marker+" ") {
				return country
			}
		}
	}
	return ""
}

// LeagueCompatible reports whether a fixture league and country can host a
// prediction tagged with predictionLeague.
func (p CorrelationPolicy) LeagueCompatible(predictionLeague, fixtureLeague, fixtureCountry string) bool {
	predLeague := FoldDiacritics(predictionLeague)
	fixLeague := FoldDiacritics(fixtureLeague)

	if strings.TrimSpace(predLeague) != "" {
		predCategories := p.categoriesIn(predLeague)
		fixCategories := p.categoriesIn(fixLeague)
		for category := range p.Categories {
			if predCategories[category] != fixCategories[category] {
				return false
			}
		}
	}

	predCountry := p.countryOf(predLeague)
	if predCountry == "" {
		return true
	}
	if country := strings.TrimSpace(FoldDiacritics(fixtureCountry)); country != "" {
		return p.countryOf(country) == predCountry
	}
	fixCountry := p.countryOf(fixLeague)
	return fixCountry == "" || fixCountry == predCountry
}

// exclusionSuffix returns the exclusion marker a team name ends with, if any.
func (p CorrelationPolicy) exclusionSuffix(name string) string {
	folded := strings.TrimSpace(FoldDiacritics(name))
	for _, suffix := range p.ExclusionSuffixes {
		if strings.HasSuffix(folded, suffix) {
			return strings.TrimSpace(suffix)
		}
	}
	return ""
}

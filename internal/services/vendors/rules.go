package vendors

// DefaultRules is the standing vocabulary for fleet spend. Order matters:
// multi-word spellings sit above the generic tokens they contain.
func DefaultRules() []Rule {
	return []Rule{
		{Canonical: "Shell Canada", Variants: []string{"shell"}},
		{Canonical: "Petro-Canada", Variants: []string{"petro-canada", "petrocan", "petro canada"}},
		{Canonical: "Esso", Variants: []string{"esso", "imperial oil"}},
		{Canonical: "Husky", Variants: []string{"husky"}},
		{Canonical: "Chevron", Variants: []string{"chevron"}},
		{Canonical: "Canadian Tire", Variants: []string{"canadian tire", "cdn tire"}},
		{Canonical: "Kal Tire", Variants: []string{"kal tire", "kaltire"}},
		{Canonical: "Fountain Tire", Variants: []string{"fountain tire"}},
		{Canonical: "NAPA Auto Parts", Variants: []string{"napa"}},
		{Canonical: "Mr. Lube", Variants: []string{"mr. lube", "mr lube"}},
		{Canonical: "Lordco", Variants: []string{"lordco"}},
	}
}

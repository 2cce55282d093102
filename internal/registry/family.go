package registry

import "strings"

// Family is a coarse grouping of projects inferred from the project name.
type Family string

// Families, in classification priority order.
const (
	FamilyBOP         Family = "BOP Family"
	FamilyLazyLarry   Family = "LazyLarry Family"
	FamilyPropulse    Family = "Propulse Family"
	FamilyYouTube     Family = "YouTube Automations"
	FamilyCore        Family = "Core Platforms"
	FamilyExperiments Family = "Experiments/Misc"
)

type familyRule struct {
	family   Family
	keywords []string
}

// familyRules are checked in order; the first rule with a keyword contained
// in the lower-cased name wins.
var familyRules = []familyRule{
	{FamilyBOP, []string{"bop", "boppers", "boppin", "boppoed"}},
	{FamilyLazyLarry, []string{"lazylarry", "laziest", "larry"}},
	{FamilyPropulse, []string{"propulse"}},
	{FamilyYouTube, []string{"youtube"}},
	{FamilyCore, []string{"command", "commander", "iws", "intelliwealth", "autonomax", "aimm", "money-machine", "global ai"}},
}

// Families returns every family in canonical order, fallback last.
func Families() []Family {
	out := make([]Family, 0, len(familyRules)+1)
	for _, rule := range familyRules {
		out = append(out, rule.family)
	}

	return append(out, FamilyExperiments)
}

// ClassifyFamily maps a project name to its family.
func ClassifyFamily(name string) Family {
	lower := strings.ToLower(name)

	for _, rule := range familyRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.family
			}
		}
	}

	return FamilyExperiments
}

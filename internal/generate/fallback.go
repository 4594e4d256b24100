package generate

import (
	"strings"

	"github.com/kfalck/ghostfill-cli/api/schemas"
)

// SelectFirstOption is the sentinel a fallback-generated select value
// carries. The fill routine resolves it to the first selectable option,
// since the fallback table cannot know the page's option set.
const SelectFirstOption = "__ghostfill_first_option__"

// fallbackSet holds the deterministic values for one theme, one entry per
// field-type category.
type fallbackSet struct {
	Name          string
	Email         string
	DateOfBirth   string
	Year          string
	Passphrase    string
	Quote         string
	CategoryLabel string
}

var fallbackTables = map[schemas.Theme]fallbackSet{
	schemas.ThemeStarWarsHero: {
		Name:          "Luke Skywalker",
		Email:         "luke.skywalker@rebelalliance.com",
		DateOfBirth:   "1977-05-25",
		Year:          "1977",
		Passphrase:    "May-The-Force-Be-With-You-77",
		Quote:         "The Force will be with you. Always.",
		CategoryLabel: "Star Wars Hero",
	},
	schemas.ThemeLOTRCharacter: {
		Name:          "Frodo Baggins",
		Email:         "frodo.baggins@theshire.me",
		DateOfBirth:   "2968-09-22",
		Year:          "3019",
		Passphrase:    "Speak-Friend-And-Enter-3019",
		Quote:         "Even the smallest person can change the course of the future.",
		CategoryLabel: "Lord of the Rings Character",
	},
	schemas.ThemeSuperhero: {
		Name:          "Clark Kent",
		Email:         "clark.kent@dailyplanet.com",
		DateOfBirth:   "1938-06-01",
		Year:          "1938",
		Passphrase:    "Up-Up-And-Away-38",
		Quote:         "With great power comes great responsibility.",
		CategoryLabel: "Superhero",
	},
}

// genericFallback backs any theme the table does not know.
var genericFallback = fallbackSet{
	Name:          "Alex Morgan",
	Email:         "alex.morgan@example.com",
	DateOfBirth:   "1990-01-15",
	Year:          "1990",
	Passphrase:    "correct-horse-battery-staple",
	Quote:         "This is a sample response generated for testing purposes.",
	CategoryLabel: "Sample Data",
}

// FallbackValue returns the deterministic value for one field type under a
// theme. It is total: every (theme, type) pair yields a non-empty value.
func FallbackValue(theme schemas.Theme, fieldType string) string {
	set, ok := fallbackTables[theme]
	if !ok {
		set = genericFallback
	}

	switch strings.ToLower(strings.TrimSpace(fieldType)) {
	case "text", "search", "url":
		return set.Name
	case "email":
		return set.Email
	case "date", "datetime-local", "month":
		return set.DateOfBirth
	case "number", "tel":
		return set.Year
	case "password":
		return set.Passphrase
	case "textarea":
		return set.Quote
	case "select", "select-one", "select-multiple":
		return SelectFirstOption
	case "checkbox", "radio":
		return "true"
	default:
		return set.CategoryLabel
	}
}

// FallbackValues maps every field to its deterministic value. It never
// fails, so the fill stage always receives a complete value map.
func FallbackValues(fields []schemas.FormField, theme schemas.Theme) schemas.GeneratedValues {
	values := make(map[string]string, len(fields))
	for _, f := range fields {
		values[f.Selector] = FallbackValue(theme, f.Type)
	}

	set, ok := fallbackTables[theme]
	if !ok {
		set = genericFallback
	}
	return schemas.GeneratedValues{
		Values:              values,
		ResourceDescription: "Deterministic fallback persona: " + set.CategoryLabel,
	}
}

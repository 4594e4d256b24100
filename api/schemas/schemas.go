package schemas

import (
	"time"
)

// -- Theme Schemas --

// Theme is a named persona used to bias generated fake data
// (e.g., "STAR_WARS_HERO"). Unknown themes fall back to generic values.
type Theme string

const (
	ThemeStarWarsHero   Theme = "STAR_WARS_HERO"
	ThemeLOTRCharacter  Theme = "LOTR_CHARACTER"
	ThemeSuperhero      Theme = "SUPERHERO"
	ThemeGenericPersona Theme = "GENERIC_PERSONA"
)

// Themes lists every recognized theme.
func Themes() []Theme {
	return []Theme{ThemeStarWarsHero, ThemeLOTRCharacter, ThemeSuperhero, ThemeGenericPersona}
}

// Valid reports whether t is one of the recognized themes.
func (t Theme) Valid() bool {
	switch t {
	case ThemeStarWarsHero, ThemeLOTRCharacter, ThemeSuperhero, ThemeGenericPersona:
		return true
	}
	return false
}

// -- Form Schemas --

// FormField describes a single fillable input as produced by the detector.
// It lives only for the duration of one detect→fill cycle.
type FormField struct {
	Selector string `json:"selector"`
	Type     string `json:"type"`
	Label    string `json:"label,omitempty"`
	Required bool   `json:"required"`

	// TestID and AlternativeSelector are set when the field was derived from
	// a user-selected subtree; the injected data-testid guarantees a stable,
	// collision-free selector for the fill pass.
	TestID              string `json:"testId,omitempty"`
	AlternativeSelector string `json:"alternativeSelector,omitempty"`
}

// DetectedForm is one form boundary returned by page analysis. FormIndex
// disambiguates when a page carries multiple forms.
type DetectedForm struct {
	FormIndex         int         `json:"formIndex"`
	ContainerSelector string      `json:"containerSelector"`
	Fields            []FormField `json:"fields"`
}

// GeneratedValues maps field selectors to the values the pipeline produced
// for one fill cycle. ResourceDescription is an optional human-readable
// justification of the theme choice.
type GeneratedValues struct {
	Values              map[string]string `json:"values"`
	ResourceDescription string            `json:"resourceDescription,omitempty"`
}

// SelectedElement is the page-side capture of a user click in element
// selection mode.
type SelectedElement struct {
	Selector  string `json:"selector"`
	OuterHTML string `json:"outerHTML"`
}

// HintRequest carries the context of a focused input for ghost-writer hint
// generation.
type HintRequest struct {
	FieldID      string `json:"fieldId"`
	FieldType    string `json:"fieldType"`
	Label        string `json:"label,omitempty"`
	Placeholder  string `json:"placeholder,omitempty"`
	FormSelector string `json:"formSelector,omitempty"`
	PageURL      string `json:"pageUrl"`
	PageTitle    string `json:"pageTitle,omitempty"`
}

// -- Generation Record Schemas --

// GeneratedField is the per-field outcome preserved in a Generation record.
type GeneratedField struct {
	Label  string      `json:"label"`
	Type   string      `json:"type"`
	Value  string      `json:"value"`
	Status FieldStatus `json:"status"`
}

// Generation is the immutable record persisted at the end of a successful
// extract-and-fill cycle, keyed by base URL in the external store.
type Generation struct {
	ID                  string           `json:"id"`
	URL                 string           `json:"url"`
	CreatedAt           time.Time        `json:"createdAt"`
	ScreenshotBefore    []byte           `json:"screenshotBefore,omitempty"`
	ScreenshotAfter     []byte           `json:"screenshotAfter,omitempty"`
	ResourceDescription string           `json:"resourceDescription,omitempty"`
	Fields              []GeneratedField `json:"fields"`
}

// -- Settings Schemas --

// AIModelSettings selects the LLM provider and credentials.
type AIModelSettings struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	APIKey   string `json:"apiKey"`
}

// ScraperSettings tunes page HTML acquisition for LLM analysis.
type ScraperSettings struct {
	Timeout      time.Duration `json:"timeout"`
	Retries      int           `json:"retries"`
	Optimization bool          `json:"optimization"`
}

// FillerSettings configures the data generation pipeline.
type FillerSettings struct {
	Prompt  string        `json:"prompt"`
	Timeout time.Duration `json:"timeout"`
}

// GhostWriterSettings configures per-field hint generation.
type GhostWriterSettings struct {
	Prompt string `json:"prompt"`
}

// Settings is the externally-owned configuration consumed by the engine.
// The engine treats it as read-only apart from blending per-website prompt
// overrides in.
type Settings struct {
	AIModel     AIModelSettings     `json:"aiModel"`
	Scraper     ScraperSettings     `json:"scraper"`
	Filler      FillerSettings      `json:"filler"`
	GhostWriter GhostWriterSettings `json:"ghostWriter"`
}

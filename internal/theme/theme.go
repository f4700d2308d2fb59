// Package theme defines the built-in document color themes.
// Themes are process-wide constant data; selection is by name.
package theme

import "sort"

// Color is an RGB triple in the 0-255 range.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Theme is a fixed palette of six colors applied to document text and backgrounds.
type Theme struct {
	Name       string `json:"name"`
	Primary    Color  `json:"primary"`
	Secondary  Color  `json:"secondary"`
	Accent     Color  `json:"accent"`
	Background Color  `json:"background"`
	Text       Color  `json:"text"`
	Muted      Color  `json:"muted"`
}

// DefaultName is the theme used when no theme or an unknown theme is requested.
const DefaultName = "modern"

var themes = map[string]Theme{
	"modern": {
		Name:       "modern",
		Primary:    Color{37, 99, 235},
		Secondary:  Color{100, 116, 139},
		Accent:     Color{14, 165, 233},
		Background: Color{248, 250, 252},
		Text:       Color{15, 23, 42},
		Muted:      Color{148, 163, 184},
	},
	"elegant": {
		Name:       "elegant",
		Primary:    Color{109, 40, 217},
		Secondary:  Color{120, 113, 108},
		Accent:     Color{217, 119, 6},
		Background: Color{250, 250, 249},
		Text:       Color{28, 25, 23},
		Muted:      Color{168, 162, 158},
	},
	"professional": {
		Name:       "professional",
		Primary:    Color{17, 24, 39},
		Secondary:  Color{55, 65, 81},
		Accent:     Color{5, 150, 105},
		Background: Color{249, 250, 251},
		Text:       Color{17, 24, 39},
		Muted:      Color{156, 163, 175},
	},
}

// Resolve returns the theme for the given name, falling back to the default
// theme when the name is empty or unknown. It never fails.
func Resolve(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes[DefaultName]
}

// Lookup returns the theme for the given name and whether it exists.
// Used by the export assembler for fail-fast option validation, where an
// unknown theme is an error rather than a silent fallback.
func Lookup(name string) (Theme, bool) {
	t, ok := themes[name]
	return t, ok
}

// Names returns the available theme names in sorted order.
func Names() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the available themes in name order.
func All() []Theme {
	all := make([]Theme, 0, len(themes))
	for _, name := range Names() {
		all = append(all, themes[name])
	}
	return all
}

// Package theme classifies free-text moods into presentation themes.
package theme

import "strings"

// Theme is a presentation bucket selected from a mood string.
type Theme string

const (
	Default    Theme = "default"
	Joyful     Theme = "joyful"
	Somber     Theme = "somber"
	Frustrated Theme = "frustrated"
	Composed   Theme = "composed"
)

// Palette is the fixed set of presentational attributes for a theme.
type Palette struct {
	Name    string `json:"name"`
	Surface string `json:"surface"`
	Text    string `json:"text"`
	Accent  string `json:"accent"`
}

type rule struct {
	keywords []string
	theme    Theme
}

// Evaluated in order; the first rule with a matching keyword wins.
var rules = []rule{
	{keywords: []string{"happy", "joy", "excit"}, theme: Joyful},
	{keywords: []string{"sad", "blue", "lonely"}, theme: Somber},
	{keywords: []string{"angry", "frustrat"}, theme: Frustrated},
	{keywords: []string{"neutral", "gray", "reflect", "stoic", "calm"}, theme: Composed},
}

var palettes = map[Theme]Palette{
	Default:    {Name: "default", Surface: "#FFFFFF", Text: "#0F172A", Accent: "#F1F5F9"},
	Joyful:     {Name: "joyful", Surface: "#FFFBEB", Text: "#78350F", Accent: "#FDE68A"},
	Somber:     {Name: "somber", Surface: "#EFF6FF", Text: "#1E3A8A", Accent: "#BFDBFE"},
	Frustrated: {Name: "frustrated", Surface: "#FEF2F2", Text: "#7F1D1D", Accent: "#FECACA"},
	Composed:   {Name: "composed", Surface: "#1E293B", Text: "#FFFFFF", Accent: "#475569"},
}

// ambient is used for a mood that is present but matches no rule.
var ambient = Palette{Name: "ambient", Surface: "#EEF2FF", Text: "#1E1B4B", Accent: "#C7D2FE"}

// Resolve maps a mood to a Theme. Matching is case-insensitive substring
// search; an empty or unmatched mood resolves to Default.
func Resolve(mood string) Theme {
	if mood == "" {
		return Default
	}
	m := strings.ToLower(mood)
	for _, r := range rules {
		for _, k := range r.keywords {
			if strings.Contains(m, k) {
				return r.theme
			}
		}
	}
	return Default
}

// PaletteFor returns the palette to render an entry with the given mood.
func PaletteFor(mood string) Palette {
	t := Resolve(mood)
	if t == Default && strings.TrimSpace(mood) != "" {
		return ambient
	}
	return palettes[t]
}

package catalog

// Theme is the presentation metadata of a color theme.
type Theme struct {
	ID      string `json:"id"`
	Classes string `json:"classes"`
}

// Icon is the presentation metadata of a profile icon. Glyph names the
// icon in the client's icon set.
type Icon struct {
	ID    string `json:"id"`
	Glyph string `json:"glyph"`
}

var themes = []Theme{
	{ID: "blue", Classes: "bg-blue-50 text-blue-900"},
	{ID: "green", Classes: "bg-green-50 text-green-900"},
	{ID: "purple", Classes: "bg-purple-50 text-purple-900"},
	{ID: "orange", Classes: "bg-orange-50 text-orange-900"},
	{ID: "gray", Classes: "bg-gray-50 text-gray-900"},
}

var icons = []Icon{
	{ID: "star", Glyph: "Star"},
	{ID: "trophy", Glyph: "Trophy"},
	{ID: "book", Glyph: "BookOpen"},
	{ID: "game", Glyph: "Gamepad2"},
	{ID: "rocket", Glyph: "Rocket"},
	{ID: "heart", Glyph: "Heart"},
	{ID: "zap", Glyph: "Zap"},
	{ID: "smile", Glyph: "Smile"},
}

// ThemeByID never fails: unknown ids resolve to the baseline theme.
func ThemeByID(id string) Theme {
	for _, t := range themes {
		if t.ID == id {
			return t
		}
	}
	return themes[0]
}

// IconByID never fails: unknown ids resolve to the baseline icon.
func IconByID(id string) Icon {
	for _, i := range icons {
		if i.ID == id {
			return i
		}
	}
	return icons[0]
}

func Themes() []Theme {
	out := make([]Theme, len(themes))
	copy(out, themes)
	return out
}

func Icons() []Icon {
	out := make([]Icon, len(icons))
	copy(out, icons)
	return out
}

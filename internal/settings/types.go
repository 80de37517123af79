package settings

// Settings keys used by the annotation layer.
const (
	KeyAnnotations = "message_bookmarks"
	KeyPreferences = "preferences"
)

// PaletteColor is one named color in a bookmark or highlight palette.
type PaletteColor struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Preferences are the user-facing knobs persisted alongside annotation data.
type Preferences struct {
	Enabled               bool           `json:"enabled"`
	DefaultBookmarkColor  string         `json:"default_bookmark_color"`
	DefaultHighlightColor string         `json:"default_highlight_color"`
	BookmarkColors        []PaletteColor `json:"bookmark_colors"`
	HighlightColors       []PaletteColor `json:"highlight_colors"`
	ShowBookmarkPanel     bool           `json:"show_bookmark_panel"`
}

// DefaultColor is used whenever no color is supplied and no preference
// overrides it.
const DefaultColor = "#F5d2d2"

// DefaultPreferences returns the stock palettes and defaults.
func DefaultPreferences() Preferences {
	return Preferences{
		Enabled:               true,
		DefaultBookmarkColor:  DefaultColor,
		DefaultHighlightColor: DefaultColor,
		BookmarkColors: []PaletteColor{
			{Name: "pink", Color: "#F5d2d2"},
			{Name: "sky", Color: "#a3ccda"},
			{Name: "mint", Color: "#bde3c3"},
			{Name: "butter", Color: "#f8f7ba"},
		},
		HighlightColors: []PaletteColor{
			{Name: "pink", Color: "#F5d2d2"},
			{Name: "sky", Color: "#a3ccda"},
			{Name: "mint", Color: "#bde3c3"},
			{Name: "butter", Color: "#f8f7ba"},
		},
		ShowBookmarkPanel: true,
	}
}

// LoadPreferences reads preferences from the store, falling back to
// defaults for anything never saved.
func LoadPreferences(s *Store) (Preferences, error) {
	prefs := DefaultPreferences()
	ok, err := s.Get(KeyPreferences, &prefs)
	if err != nil {
		return Preferences{}, err
	}
	if !ok {
		return DefaultPreferences(), nil
	}
	if prefs.DefaultBookmarkColor == "" {
		prefs.DefaultBookmarkColor = DefaultColor
	}
	if prefs.DefaultHighlightColor == "" {
		prefs.DefaultHighlightColor = DefaultColor
	}
	return prefs, nil
}

// SavePreferences stores preferences with debounced write-back.
func SavePreferences(s *Store, prefs Preferences) error {
	return s.Put(KeyPreferences, prefs)
}

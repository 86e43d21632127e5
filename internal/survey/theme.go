package survey

import (
	"encoding/json"
	"strings"
)

// Theme is the single source of truth for a survey's colour scheme.
// The JSON blob persisted alongside the scalar columns is produced by
// EncodeTheme and never edited independently.
type Theme struct {
	Accent string `json:"accent,omitempty"`
	Panel  string `json:"panel,omitempty"`
}

// IsZero reports whether no theme field is set.
func (t Theme) IsZero() bool {
	return t.Accent == "" && t.Panel == ""
}

// ThemeFromDef derives the structured theme from the wire object.
func ThemeFromDef(d *ThemeDef) Theme {
	if d == nil {
		return Theme{}
	}
	return Theme{
		Accent: strings.TrimSpace(d.Accent),
		Panel:  strings.TrimSpace(d.Panel),
	}
}

// Def returns the wire form of the theme. Never nil.
func (t Theme) Def() *ThemeDef {
	return &ThemeDef{Accent: t.Accent, Panel: t.Panel}
}

// EncodeTheme synthesizes the combined JSON blob from the theme scalars.
// Returns "" for a zero theme.
func EncodeTheme(t Theme) (string, error) {
	if t.IsZero() {
		return "", nil
	}
	obj := map[string]any{}
	if t.Accent != "" {
		obj["accent"] = t.Accent
	}
	if t.Panel != "" {
		obj["panel"] = t.Panel
	}
	data, err := MarshalCanonical(obj)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeTheme rebuilds a theme from stored columns. Scalars win; the blob
// fills only the fields whose scalar is empty. An unparsable blob is ignored.
func DecodeTheme(accent, panel, blob string) Theme {
	t := Theme{Accent: accent, Panel: panel}
	if (t.Accent != "" && t.Panel != "") || strings.TrimSpace(blob) == "" {
		return t
	}
	var fromBlob Theme
	if err := json.Unmarshal([]byte(blob), &fromBlob); err != nil {
		return t
	}
	if t.Accent == "" {
		t.Accent = fromBlob.Accent
	}
	if t.Panel == "" {
		t.Panel = fromBlob.Panel
	}
	return t
}

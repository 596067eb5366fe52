package dashboard

import (
	"encoding/json"
	"strings"
)

// Glyph is an opaque handle for a metric card icon.
type Glyph int

const (
	GlyphWallet Glyph = iota
	GlyphActivity
	GlyphCurrency
	GlyphPercent
)

// DefaultGlyph is used whenever an icon name is missing or unknown.
const DefaultGlyph = GlyphWallet

// LookupGlyph resolves a symbolic icon name. Names are matched case-insensitively;
// "dollarsign" is accepted as an alias of "currency".
func LookupGlyph(name string) (Glyph, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "wallet":
		return GlyphWallet, true
	case "activity":
		return GlyphActivity, true
	case "currency", "dollarsign":
		return GlyphCurrency, true
	case "percent":
		return GlyphPercent, true
	default:
		return DefaultGlyph, false
	}
}

// Valid reports whether g is one of the known glyph handles.
func (g Glyph) Valid() bool {
	return g >= GlyphWallet && g <= GlyphPercent
}

func (g Glyph) String() string {
	switch g {
	case GlyphActivity:
		return "activity"
	case GlyphCurrency:
		return "currency"
	case GlyphPercent:
		return "percent"
	default:
		return "wallet"
	}
}

// Symbol is the character drawn inside the card's icon badge.
func (g Glyph) Symbol() string {
	switch g {
	case GlyphActivity:
		return "∿"
	case GlyphCurrency:
		return "$"
	case GlyphPercent:
		return "%"
	default:
		return "▣"
	}
}

func (g Glyph) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.String())
}

// IconRef is the raw icon field of a metric: either a symbolic name or a glyph
// handle supplied directly.
type IconRef struct {
	Name  string
	Glyph Glyph
	// Direct is set when Glyph was supplied instead of a name.
	Direct bool
}

// IconName references an icon by symbolic name.
func IconName(name string) IconRef {
	return IconRef{Name: name}
}

// IconGlyph references an already resolved glyph.
func IconGlyph(g Glyph) IconRef {
	return IconRef{Glyph: g, Direct: true}
}

// Resolve maps the reference to a glyph, falling back to DefaultGlyph.
func (r IconRef) Resolve() Glyph {
	if r.Direct {
		if r.Glyph.Valid() {
			return r.Glyph
		}
		return DefaultGlyph
	}
	g, _ := LookupGlyph(r.Name)
	return g
}

// iconRefOf converts a decoded JSON icon value. Strings are names; integral
// numbers naming a known glyph are handles; anything else is treated as absent.
func iconRefOf(v any) (IconRef, bool) {
	switch t := v.(type) {
	case string:
		return IconName(t), true
	case float64:
		return glyphHandle(t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return glyphHandle(f)
		}
	}
	return IconRef{}, false
}

func glyphHandle(f float64) (IconRef, bool) {
	g := Glyph(int(f))
	if float64(g) == f && g.Valid() {
		return IconGlyph(g), true
	}
	return IconRef{}, false
}

// Package normalize canonicalizes the free-text fields of filament records.
//
// Every function here is pure and total: input that does not match the known
// vocabulary is returned cleaned but otherwise unmapped.
package normalize

import (
	"strings"
	"unicode"

	"filament-inventory-api/internal/model"
)

// Canonical filament types.
const (
	TypeBasic = "Basic"
	TypeMatte = "Matte"
	TypeSilk  = "Silk"
)

// Canonical materials, in match order. PLA+ precedes PLA.
var materials = []string{"PLA+", "PLA", "PETG", "ABS", "ASA", "TPU"}

// Text trims s, strips a single leading run of characters that are neither
// letters nor numbers, and collapses internal whitespace runs to one space.
func Text(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	return strings.Join(strings.Fields(s), " ")
}

// Type maps s onto Basic, Matte or Silk ignoring case.
func Type(s string) string {
	cleaned := Text(s)
	switch strings.ToLower(cleaned) {
	case "basic":
		return TypeBasic
	case "matte":
		return TypeMatte
	case "silk":
		return TypeSilk
	}
	return cleaned
}

// Material maps s onto one of the known materials, ignoring case and
// whitespace. Unknown materials come back uppercased.
func Material(s string) string {
	cleaned := strings.ToUpper(Text(s))
	compact := strings.Join(strings.Fields(cleaned), "")
	for _, m := range materials {
		if compact == m {
			return m
		}
	}
	return cleaned
}

// Draft canonicalizes the text fields of d. Amount is left as is.
func Draft(d model.Draft) model.Draft {
	d.Brand = strings.TrimSpace(d.Brand)
	d.Color = Text(d.Color)
	d.Type = Type(d.Type)
	d.Material = Material(d.Material)
	return d
}

// Filament canonicalizes the text fields of f. Identity, amount and
// timestamps are left as is.
func Filament(f model.Filament) model.Filament {
	f.Brand = strings.TrimSpace(f.Brand)
	f.Color = Text(f.Color)
	f.Type = Type(f.Type)
	f.Material = Material(f.Material)
	return f
}

// Filaments canonicalizes every record into a new slice.
func Filaments(in []model.Filament) []model.Filament {
	out := make([]model.Filament, len(in))
	for i, f := range in {
		out[i] = Filament(f)
	}
	return out
}

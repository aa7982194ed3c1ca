// Package inventory computes the visible, ordered subset of filament records
// from filter and sort state. All functions are pure and never modify their
// input slices.
package inventory

import (
	"cmp"
	"slices"
	"strings"

	"filament-inventory-api/internal/model"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// All disables an equality filter.
const All = "all"

// LowStockThreshold is the amount at or below which a spool counts as low.
const LowStockThreshold = 0.25

// Options lists the distinct values available for each equality filter.
type Options struct {
	Brands    []string `json:"brands"`
	Materials []string `json:"materials"`
	Types     []string `json:"types"`
}

// Filters is the user-controlled filter state.
type Filters struct {
	Brand          string `json:"brand"`
	Material       string `json:"material"`
	Type           string `json:"type"`
	SearchColor    string `json:"search_color"`
	HideOutOfStock bool   `json:"hide_out_of_stock"`
}

// DefaultFilters returns filters that let every record through.
func DefaultFilters() Filters {
	return Filters{Brand: All, Material: All, Type: All}
}

// HasActiveFilters reports whether f would hide any record.
func HasActiveFilters(f Filters) bool {
	return f.Brand != All ||
		f.Material != All ||
		f.Type != All ||
		strings.TrimSpace(f.SearchColor) != "" ||
		f.HideOutOfStock
}

// FilterOptions collects the distinct brands, materials and types of records,
// each sorted ascending.
func FilterOptions(records []model.Filament) Options {
	brands := make(map[string]struct{})
	materials := make(map[string]struct{})
	types := make(map[string]struct{})

	for _, f := range records {
		brands[f.Brand] = struct{}{}
		materials[f.Material] = struct{}{}
		types[f.Type] = struct{}{}
	}

	return Options{
		Brands:    sortedKeys(brands),
		Materials: sortedKeys(materials),
		Types:     sortedKeys(types),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Filter returns the records that pass every condition of f, in input order.
func Filter(records []model.Filament, f Filters) []model.Filament {
	search := strings.ToLower(strings.TrimSpace(f.SearchColor))

	out := make([]model.Filament, 0, len(records))
	for _, r := range records {
		if matches(r, f, search) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r model.Filament, f Filters, search string) bool {
	if f.Brand != All && r.Brand != f.Brand {
		return false
	}
	if f.Material != All && r.Material != f.Material {
		return false
	}
	if f.Type != All && r.Type != f.Type {
		return false
	}
	if f.HideOutOfStock && r.Amount <= 0 {
		return false
	}
	if search != "" {
		return strings.Contains(strings.ToLower(r.Color), search)
	}
	return true
}

// Sort returns a sorted copy of records. Text fields use English collation,
// amount compares numerically.
func Sort(records []model.Filament, s SortState) []model.Filament {
	out := slices.Clone(records)
	if out == nil {
		out = []model.Filament{}
	}

	dir := s.Direction.sign()
	if s.Field == FieldAmount {
		slices.SortStableFunc(out, func(a, b model.Filament) int {
			return cmp.Compare(a.Amount, b.Amount) * dir
		})
		return out
	}

	col := collate.New(language.English)
	slices.SortStableFunc(out, func(a, b model.Filament) int {
		return col.CompareString(s.Field.text(a), s.Field.text(b)) * dir
	})
	return out
}

// Visible is Sort applied to Filter.
func Visible(records []model.Filament, f Filters, s SortState) []model.Filament {
	return Sort(Filter(records, f), s)
}

// TotalSpools sums the amount of every record.
func TotalSpools(records []model.Filament) float64 {
	var total float64
	for _, r := range records {
		total += r.Amount
	}
	return total
}

// IsLowStock reports whether f is at or below LowStockThreshold.
func IsLowStock(f model.Filament) bool {
	return f.Amount <= LowStockThreshold
}

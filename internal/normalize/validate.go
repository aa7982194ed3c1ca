package normalize

import (
	"math"
	"strings"

	"filament-inventory-api/internal/model"
)

// FieldErrors maps a draft field name to a human-readable problem.
type FieldErrors map[string]string

// Field names used as FieldErrors keys.
const (
	FieldBrand    = "brand"
	FieldColor    = "color"
	FieldType     = "type"
	FieldMaterial = "material"
	FieldAmount   = "amount"
)

// ValidateDraft reports every field of d that would be rejected by the API.
// A nil result means the draft is valid.
func ValidateDraft(d model.Draft) FieldErrors {
	var errs FieldErrors
	add := func(field, msg string) {
		if errs == nil {
			errs = make(FieldErrors)
		}
		errs[field] = msg
	}

	if strings.TrimSpace(d.Brand) == "" {
		add(FieldBrand, "Brand is required.")
	}
	if strings.TrimSpace(d.Color) == "" {
		add(FieldColor, "Color is required.")
	}
	if strings.TrimSpace(d.Type) == "" {
		add(FieldType, "Type is required.")
	}
	if strings.TrimSpace(d.Material) == "" {
		add(FieldMaterial, "Material is required.")
	}
	if !ValidAmount(d.Amount) {
		add(FieldAmount, "Amount must be zero or greater.")
	}

	return errs
}

// ValidAmount reports whether a is a finite, non-negative number.
func ValidAmount(a float64) bool {
	return !math.IsNaN(a) && !math.IsInf(a, 0) && a >= 0
}

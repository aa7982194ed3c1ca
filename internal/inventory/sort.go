package inventory

import (
	"fmt"
	"strings"

	"filament-inventory-api/internal/model"
)

// Field is a sortable filament column.
type Field string

const (
	FieldBrand    Field = "brand"
	FieldColor    Field = "color"
	FieldType     Field = "type"
	FieldMaterial Field = "material"
	FieldAmount   Field = "amount"
)

// Direction is a sort order.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

func (d Direction) sign() int {
	if d == Desc {
		return -1
	}
	return 1
}

// SortState is the current column and direction.
type SortState struct {
	Field     Field     `json:"field"`
	Direction Direction `json:"direction"`
}

// DefaultSort orders by brand ascending.
func DefaultSort() SortState {
	return SortState{Field: FieldBrand, Direction: Asc}
}

// ToggleSort flips the direction when field is already active, otherwise
// switches to field ascending.
func ToggleSort(s SortState, field Field) SortState {
	if s.Field == field {
		if s.Direction == Asc {
			return SortState{Field: field, Direction: Desc}
		}
		return SortState{Field: field, Direction: Asc}
	}
	return SortState{Field: field, Direction: Asc}
}

// ParseField resolves a user supplied column name.
func ParseField(s string) (Field, error) {
	switch f := Field(strings.ToLower(strings.TrimSpace(s))); f {
	case FieldBrand, FieldColor, FieldType, FieldMaterial, FieldAmount:
		return f, nil
	}
	return "", fmt.Errorf("unknown sort field %q", s)
}

func (f Field) text(r model.Filament) string {
	switch f {
	case FieldColor:
		return r.Color
	case FieldType:
		return r.Type
	case FieldMaterial:
		return r.Material
	default:
		return r.Brand
	}
}

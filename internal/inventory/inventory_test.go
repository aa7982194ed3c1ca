package inventory

import (
	"testing"

	"filament-inventory-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtures() []model.Filament {
	return []model.Filament{
		{ID: 1, Brand: "Aster", Color: "Ivory", Type: "Basic", Material: "PLA", Amount: 0},
		{ID: 2, Brand: "Boreal", Color: "Forest Green", Type: "Matte", Material: "PLA+", Amount: 0.7},
		{ID: 3, Brand: "Cinder", Color: "Signal Red", Type: "Silk", Material: "PETG", Amount: 0.2},
	}
}

func ids(records []model.Filament) []int64 {
	out := make([]int64, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestFilterOptions(t *testing.T) {
	records := append(fixtures(), model.Filament{ID: 4, Brand: "Aster", Material: "ABS", Type: "Basic"})

	opts := FilterOptions(records)
	assert.Equal(t, []string{"Aster", "Boreal", "Cinder"}, opts.Brands)
	assert.Equal(t, []string{"ABS", "PETG", "PLA", "PLA+"}, opts.Materials)
	assert.Equal(t, []string{"Basic", "Matte", "Silk"}, opts.Types)

	empty := FilterOptions(nil)
	assert.Empty(t, empty.Brands)
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name    string
		filters func(f *Filters)
		want    []int64
	}{
		{
			name:    "no filters",
			filters: func(f *Filters) {},
			want:    []int64{1, 2, 3},
		},
		{
			name: "combined filters",
			filters: func(f *Filters) {
				f.Material = "PLA+"
				f.Type = "Matte"
				f.SearchColor = "green"
			},
			want: []int64{2},
		},
		{
			name:    "hide out of stock",
			filters: func(f *Filters) { f.HideOutOfStock = true },
			want:    []int64{2, 3},
		},
		{
			name:    "brand is exact",
			filters: func(f *Filters) { f.Brand = "aster" },
			want:    []int64{},
		},
		{
			name:    "color search trims and ignores case",
			filters: func(f *Filters) { f.SearchColor = "  RED " },
			want:    []int64{3},
		},
		{
			name:    "blank search matches all",
			filters: func(f *Filters) { f.SearchColor = "   " },
			want:    []int64{1, 2, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := DefaultFilters()
			tt.filters(&f)
			assert.Equal(t, tt.want, ids(Filter(fixtures(), f)))
		})
	}
}

func TestFilterIsIdempotentAndPure(t *testing.T) {
	records := fixtures()
	f := DefaultFilters()
	f.HideOutOfStock = true

	once := Filter(records, f)
	twice := Filter(once, f)
	assert.Equal(t, once, twice)
	assert.Equal(t, fixtures(), records)

	once[0].Brand = "changed"
	assert.Equal(t, "Boreal", records[1].Brand)
}

func TestSort(t *testing.T) {
	records := fixtures()

	byBrand := Sort(records, SortState{Field: FieldBrand, Direction: Desc})
	assert.Equal(t, []int64{3, 2, 1}, ids(byBrand))

	byAmount := Sort(records, SortState{Field: FieldAmount, Direction: Asc})
	amounts := make([]float64, len(byAmount))
	for i, r := range byAmount {
		amounts[i] = r.Amount
	}
	assert.Equal(t, []float64{0, 0.2, 0.7}, amounts)

	// input order untouched
	assert.Equal(t, []int64{1, 2, 3}, ids(records))
}

func TestSortCollation(t *testing.T) {
	records := []model.Filament{
		{ID: 1, Color: "blue"},
		{ID: 2, Color: "Azure"},
		{ID: 3, Color: "Écru"},
		{ID: 4, Color: "black"},
	}

	got := Sort(records, SortState{Field: FieldColor, Direction: Asc})
	assert.Equal(t, []int64{2, 4, 1, 3}, ids(got))
}

func TestSortEmpty(t *testing.T) {
	got := Sort(nil, DefaultSort())
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestVisible(t *testing.T) {
	f := DefaultFilters()
	f.HideOutOfStock = true
	got := Visible(fixtures(), f, SortState{Field: FieldAmount, Direction: Desc})
	assert.Equal(t, []int64{2, 3}, ids(got))
}

func TestTotalSpools(t *testing.T) {
	assert.InDelta(t, 0.9, TotalSpools(fixtures()), 1e-9)
	assert.Zero(t, TotalSpools(nil))
}

func TestHasActiveFilters(t *testing.T) {
	assert.False(t, HasActiveFilters(DefaultFilters()))

	f := DefaultFilters()
	f.SearchColor = "  "
	assert.False(t, HasActiveFilters(f))

	f.Brand = "Aster"
	assert.True(t, HasActiveFilters(f))
}

func TestToggleSort(t *testing.T) {
	s := DefaultSort()
	s = ToggleSort(s, FieldBrand)
	assert.Equal(t, SortState{Field: FieldBrand, Direction: Desc}, s)

	s = ToggleSort(s, FieldBrand)
	assert.Equal(t, SortState{Field: FieldBrand, Direction: Asc}, s)

	s = ToggleSort(SortState{Field: FieldBrand, Direction: Desc}, FieldAmount)
	assert.Equal(t, SortState{Field: FieldAmount, Direction: Asc}, s)
}

func TestParseField(t *testing.T) {
	f, err := ParseField(" Amount ")
	require.NoError(t, err)
	assert.Equal(t, FieldAmount, f)

	_, err = ParseField("weight")
	assert.Error(t, err)
}

func TestIsLowStock(t *testing.T) {
	assert.True(t, IsLowStock(model.Filament{Amount: 0.25}))
	assert.False(t, IsLowStock(model.Filament{Amount: 0.26}))
}

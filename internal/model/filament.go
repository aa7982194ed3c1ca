package model

import "time"

// Filament represents a single spool record in the filaments table.
type Filament struct {
	ID        int64     `json:"id"`
	Brand     string    `json:"brand"`
	Color     string    `json:"color"`
	Type      string    `json:"type"`
	Material  string    `json:"material"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Draft is the editable subset of a filament, used for create and update payloads.
type Draft struct {
	Brand    string  `json:"brand"`
	Color    string  `json:"color"`
	Type     string  `json:"type"`
	Material string  `json:"material"`
	Amount   float64 `json:"amount"`
}

// Draft returns the editable fields of f.
func (f Filament) Draft() Draft {
	return Draft{
		Brand:    f.Brand,
		Color:    f.Color,
		Type:     f.Type,
		Material: f.Material,
		Amount:   f.Amount,
	}
}

// OK is the acknowledgement body returned by delete and verify.
type OK struct {
	OK bool `json:"ok"`
}

package state

import (
	"filament-inventory-api/internal/client"
	"filament-inventory-api/internal/inventory"
	"filament-inventory-api/internal/model"
	"filament-inventory-api/internal/normalize"
)

// Status is the lifecycle of one operation source.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Operation is the status of one operation source and its last error.
type Operation struct {
	Status Status
	Err    *client.APIError
}

// Operations holds one Operation per client.OperationSource.
type Operations struct {
	Load       Operation
	Create     Operation
	Update     Operation
	Delete     Operation
	AuthVerify Operation
}

// Get returns the operation tracked for src.
func (o Operations) Get(src client.OperationSource) Operation {
	switch src {
	case client.SourceLoad:
		return o.Load
	case client.SourceCreate:
		return o.Create
	case client.SourceUpdate:
		return o.Update
	case client.SourceDelete:
		return o.Delete
	case client.SourceAuthVerify:
		return o.AuthVerify
	default:
		return Operation{}
	}
}

func (o *Operations) set(src client.OperationSource, op Operation) {
	switch src {
	case client.SourceLoad:
		o.Load = op
	case client.SourceCreate:
		o.Create = op
	case client.SourceUpdate:
		o.Update = op
	case client.SourceDelete:
		o.Delete = op
	case client.SourceAuthVerify:
		o.AuthVerify = op
	}
}

// generations counts started requests per source.
type generations [len(client.Sources)]uint64

// NoID marks an empty editing or delete slot. Store ids start at 1.
const NoID int64 = 0

// State is everything a front end renders. Values are immutable once
// published: reducers return a new State and never write through slices
// shared with an older one.
type State struct {
	// Records is the full list as returned by the server, normalized.
	Records []model.Filament

	Filters inventory.Filters
	Sort    inventory.SortState

	Ops Operations

	// Token is the verified passcode, empty when signed out.
	Token string
	// AuthReady is set once the saved passcode has been checked.
	AuthReady bool

	// EditingID and DeleteConfirmID are mutually exclusive.
	EditingID       int64
	EditDraft       model.Draft
	EditErrors      normalize.FieldErrors
	CreateErrors    normalize.FieldErrors
	DeleteConfirmID int64

	// PendingUpdateID and PendingDeleteID name the records with a request in flight.
	PendingUpdateID int64
	PendingDeleteID int64

	gens generations
}

// Initial returns the state before any request has been made.
func Initial(hideOutOfStock bool) State {
	f := inventory.DefaultFilters()
	f.HideOutOfStock = hideOutOfStock
	return State{
		Records: []model.Filament{},
		Filters: f,
		Sort:    inventory.DefaultSort(),
	}
}

// Authorized reports whether mutations may be attempted.
func (s State) Authorized() bool {
	return s.AuthReady && s.Token != ""
}

// Visible is the list to display: the records filtered, then sorted.
func (s State) Visible() []model.Filament {
	return inventory.Visible(s.Records, s.Filters, s.Sort)
}

// Options returns the distinct brand, material and type values.
func (s State) Options() inventory.Options {
	return inventory.FilterOptions(s.Records)
}

// TotalSpools sums the amount of every record, ignoring filters.
func (s State) TotalSpools() float64 {
	return inventory.TotalSpools(s.Records)
}

// HasActiveFilters reports whether any filter narrows the list.
func (s State) HasActiveFilters() bool {
	return inventory.HasActiveFilters(s.Filters)
}

// Record returns the record with id.
func (s State) Record(id int64) (model.Filament, bool) {
	for _, r := range s.Records {
		if r.ID == id {
			return r, true
		}
	}
	return model.Filament{}, false
}

func (s State) generation(src client.OperationSource) uint64 {
	return s.gens[src]
}

package state

import (
	"net/http"
	"slices"

	"filament-inventory-api/internal/client"
	"filament-inventory-api/internal/inventory"
	"filament-inventory-api/internal/model"
	"filament-inventory-api/internal/normalize"
)

// Messages surfaced by the controller itself.
const (
	MsgPasscodeRejected = "Passcode rejected. Enter the current passcode."
	MsgFixCreateFields  = "Fix the highlighted fields before creating a filament entry."
	MsgFixUpdateFields  = "Fix the highlighted fields before saving changes."
	MsgSavedPasscode    = "Saved passcode is invalid."
	MsgVerifyFailed     = "Unable to verify passcode."
	MsgLoadFailed       = "Failed to load inventory."
	MsgCreateFailed     = "Unable to create filament."
	MsgUpdateFailed     = "Unable to update filament."
	MsgDeleteFailed     = "Unable to delete filament."
)

// Action is a state transition. Reduce must not mutate its argument.
type Action interface {
	reduce(s State) State
}

// Reduce applies a to s and returns the resulting state.
func Reduce(s State, a Action) State {
	return a.reduce(s)
}

// OpStarted marks Source as loading and opens a new generation.
// Completions of earlier generations are ignored afterwards.
type OpStarted struct {
	Source client.OperationSource
}

func (a OpStarted) reduce(s State) State {
	s.gens[a.Source]++
	s.Ops.set(a.Source, Operation{Status: StatusLoading})
	return s
}

// OpFailed records a failed request. A 401 on a request made with the
// current token also signs the user out.
type OpFailed struct {
	Source client.OperationSource
	Gen    uint64
	Token  string
	Err    *client.APIError
}

func (a OpFailed) reduce(s State) State {
	if a.Err != nil && a.Err.Unauthorized() && a.Source != client.SourceAuthVerify && a.Token != "" && a.Token == s.Token {
		s = clearAuth(s)
		s.Ops.AuthVerify = Operation{
			Status: StatusError,
			Err:    &client.APIError{Source: client.SourceAuthVerify, Status: http.StatusUnauthorized, Message: MsgPasscodeRejected},
		}
	}
	if s.gens[a.Source] != a.Gen {
		return s
	}
	s.Ops.set(a.Source, Operation{Status: StatusError, Err: a.Err})
	switch a.Source {
	case client.SourceUpdate:
		s.PendingUpdateID = NoID
	case client.SourceDelete:
		s.PendingDeleteID = NoID
	}
	return s
}

// DraftRejected reports client-side validation errors for a create or an
// edit without contacting the server.
type DraftRejected struct {
	Source client.OperationSource
	Errors normalize.FieldErrors
}

func (a DraftRejected) reduce(s State) State {
	msg := MsgFixCreateFields
	if a.Source == client.SourceUpdate {
		msg = MsgFixUpdateFields
		s.EditErrors = a.Errors
	} else {
		s.CreateErrors = a.Errors
	}
	s.Ops.set(a.Source, Operation{
		Status: StatusError,
		Err:    &client.APIError{Source: a.Source, Status: http.StatusBadRequest, Message: msg},
	})
	return s
}

// Loaded replaces the record list.
type Loaded struct {
	Gen     uint64
	Records []model.Filament
}

func (a Loaded) reduce(s State) State {
	if s.gens[client.SourceLoad] != a.Gen {
		return s
	}
	s.Records = normalize.Filaments(a.Records)
	s.Ops.Load = Operation{Status: StatusSuccess}
	return s
}

// Created appends a persisted record, or replaces it when a load that
// overlapped the create already returned it. The record is kept even when
// the completion is stale since the server already holds it.
type Created struct {
	Gen    uint64
	Record model.Filament
}

func (a Created) reduce(s State) State {
	rec := normalize.Filament(a.Record)
	if i := slices.IndexFunc(s.Records, func(r model.Filament) bool { return r.ID == rec.ID }); i >= 0 {
		records := slices.Clone(s.Records)
		records[i] = rec
		s.Records = records
	} else {
		s.Records = append(slices.Clip(s.Records), rec)
	}
	if s.gens[client.SourceCreate] != a.Gen {
		return s
	}
	s.CreateErrors = nil
	s.Ops.Create = Operation{Status: StatusSuccess}
	return s
}

// Updated replaces a persisted record.
type Updated struct {
	Gen    uint64
	Record model.Filament
}

func (a Updated) reduce(s State) State {
	rec := normalize.Filament(a.Record)
	records := make([]model.Filament, len(s.Records))
	for i, r := range s.Records {
		if r.ID == rec.ID {
			r = rec
		}
		records[i] = r
	}
	s.Records = records

	if s.gens[client.SourceUpdate] != a.Gen {
		return s
	}
	if s.EditingID == rec.ID {
		s.EditingID = NoID
		s.EditDraft = model.Draft{}
		s.EditErrors = nil
	}
	s.PendingUpdateID = NoID
	s.Ops.Update = Operation{Status: StatusSuccess}
	return s
}

// Deleted removes a record.
type Deleted struct {
	Gen uint64
	ID  int64
}

func (a Deleted) reduce(s State) State {
	records := make([]model.Filament, 0, len(s.Records))
	for _, r := range s.Records {
		if r.ID != a.ID {
			records = append(records, r)
		}
	}
	s.Records = records
	if s.EditingID == a.ID {
		s.EditingID = NoID
	}

	if s.gens[client.SourceDelete] != a.Gen {
		return s
	}
	if s.DeleteConfirmID == a.ID {
		s.DeleteConfirmID = NoID
	}
	s.PendingDeleteID = NoID
	s.Ops.Delete = Operation{Status: StatusSuccess}
	return s
}

// AuthVerified installs a token the server accepted.
type AuthVerified struct {
	Gen   uint64
	Token string
}

func (a AuthVerified) reduce(s State) State {
	if s.gens[client.SourceAuthVerify] != a.Gen {
		return s
	}
	s.Token = a.Token
	s.AuthReady = true
	s.Ops.AuthVerify = Operation{Status: StatusSuccess}
	return s
}

// AuthRejected clears credentials after a failed verification.
type AuthRejected struct {
	Gen uint64
	Err *client.APIError
}

func (a AuthRejected) reduce(s State) State {
	if s.gens[client.SourceAuthVerify] != a.Gen {
		return s
	}
	s = clearAuth(s)
	s.AuthReady = true
	s.Ops.AuthVerify = Operation{Status: StatusError, Err: a.Err}
	return s
}

// SignedOut clears credentials and resets the auth operation. It also
// supersedes any verification in flight.
type SignedOut struct{}

func (SignedOut) reduce(s State) State {
	s = clearAuth(s)
	s.AuthReady = true
	s.gens[client.SourceAuthVerify]++
	s.Ops.AuthVerify = Operation{}
	return s
}

// FiltersChanged replaces the filter state.
type FiltersChanged struct {
	Filters inventory.Filters
}

func (a FiltersChanged) reduce(s State) State {
	s.Filters = a.Filters
	return s
}

// SortToggled applies inventory.ToggleSort.
type SortToggled struct {
	Field inventory.Field
}

func (a SortToggled) reduce(s State) State {
	s.Sort = inventory.ToggleSort(s.Sort, a.Field)
	return s
}

// SortChanged replaces the sort state.
type SortChanged struct {
	Sort inventory.SortState
}

func (a SortChanged) reduce(s State) State {
	s.Sort = a.Sort
	return s
}

// EditStarted opens record ID for editing and drops any pending delete.
type EditStarted struct {
	ID int64
}

func (a EditStarted) reduce(s State) State {
	rec, ok := s.Record(a.ID)
	if !ok {
		return s
	}
	s.EditingID = rec.ID
	s.EditDraft = rec.Draft()
	s.EditErrors = nil
	s.DeleteConfirmID = NoID
	return s
}

// EditDraftChanged replaces the draft of the record being edited.
type EditDraftChanged struct {
	Draft model.Draft
}

func (a EditDraftChanged) reduce(s State) State {
	if s.EditingID == NoID {
		return s
	}
	s.EditDraft = a.Draft
	return s
}

// EditCancelled closes the editor.
type EditCancelled struct{}

func (EditCancelled) reduce(s State) State {
	s.EditingID = NoID
	s.EditDraft = model.Draft{}
	s.EditErrors = nil
	return s
}

// DeleteRequested asks for confirmation of deleting ID and closes the editor.
type DeleteRequested struct {
	ID int64
}

func (a DeleteRequested) reduce(s State) State {
	s.DeleteConfirmID = a.ID
	s.EditingID = NoID
	s.EditDraft = model.Draft{}
	s.EditErrors = nil
	return s
}

// DeleteCancelled withdraws the confirmation request.
type DeleteCancelled struct{}

func (DeleteCancelled) reduce(s State) State {
	s.DeleteConfirmID = NoID
	return s
}

// UpdateSubmitted marks ID as having an update in flight.
type UpdateSubmitted struct {
	ID int64
}

func (a UpdateSubmitted) reduce(s State) State {
	s = OpStarted{Source: client.SourceUpdate}.reduce(s)
	s.PendingUpdateID = a.ID
	s.EditErrors = nil
	return s
}

// DeleteSubmitted marks ID as having a delete in flight.
type DeleteSubmitted struct {
	ID int64
}

func (a DeleteSubmitted) reduce(s State) State {
	s = OpStarted{Source: client.SourceDelete}.reduce(s)
	s.PendingDeleteID = a.ID
	return s
}

func clearAuth(s State) State {
	s.Token = ""
	s.EditingID = NoID
	s.EditDraft = model.Draft{}
	s.EditErrors = nil
	s.DeleteConfirmID = NoID
	return s
}

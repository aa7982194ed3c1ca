package state

import (
	"net/http"
	"testing"
	"time"

	"filament-inventory-api/internal/client"
	"filament-inventory-api/internal/inventory"
	"filament-inventory-api/internal/model"
	"filament-inventory-api/internal/normalize"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func rec(id int64, brand, color, material string, amount float64) model.Filament {
	return model.Filament{ID: id, Brand: brand, Color: color, Type: "basic", Material: material, Amount: amount, CreatedAt: at, UpdatedAt: at}
}

func loadedState(t *testing.T, records ...model.Filament) State {
	t.Helper()
	s := Reduce(Initial(false), OpStarted{Source: client.SourceLoad})
	s = Reduce(s, Loaded{Gen: s.generation(client.SourceLoad), Records: records})
	require.Equal(t, StatusSuccess, s.Ops.Load.Status)
	return s
}

func TestLoadedNormalizes(t *testing.T) {
	s := loadedState(t, rec(1, " Aster ", "  Ivory ", "petg", 0.5))

	require.Len(t, s.Records, 1)
	assert.Equal(t, "Aster", s.Records[0].Brand)
	assert.Equal(t, "Ivory", s.Records[0].Color)
	assert.Equal(t, "PETG", s.Records[0].Material)
	assert.Equal(t, normalize.TypeBasic, s.Records[0].Type)
}

func TestStaleLoadIgnored(t *testing.T) {
	s := Reduce(Initial(false), OpStarted{Source: client.SourceLoad})
	first := s.generation(client.SourceLoad)
	s = Reduce(s, OpStarted{Source: client.SourceLoad})
	second := s.generation(client.SourceLoad)

	s = Reduce(s, Loaded{Gen: second, Records: []model.Filament{rec(2, "Boreal", "Red", "PLA", 1)}})
	s = Reduce(s, Loaded{Gen: first, Records: []model.Filament{rec(1, "Aster", "Ivory", "PLA", 1)}})

	require.Len(t, s.Records, 1)
	assert.Equal(t, int64(2), s.Records[0].ID)

	s = Reduce(s, OpFailed{Source: client.SourceLoad, Gen: first, Err: &client.APIError{Message: "late"}})
	assert.Equal(t, StatusSuccess, s.Ops.Load.Status)
}

func TestVisibleFollowsFiltersAndSort(t *testing.T) {
	s := loadedState(t,
		rec(1, "Aster", "Ivory", "PLA", 0),
		rec(2, "Boreal", "Red", "PLA", 0.7),
		rec(3, "Cinder", "Blue", "PLA", 0.2),
	)

	f := s.Filters
	f.HideOutOfStock = true
	s = Reduce(s, FiltersChanged{Filters: f})
	s = Reduce(s, SortToggled{Field: inventory.FieldAmount})

	visible := s.Visible()
	require.Len(t, visible, 2)
	assert.Equal(t, int64(3), visible[0].ID)
	assert.Equal(t, int64(2), visible[1].ID)
	assert.InDelta(t, 0.9, s.TotalSpools(), 1e-9)
	assert.True(t, s.HasActiveFilters())
}

func TestEditAndDeleteAreExclusive(t *testing.T) {
	s := loadedState(t, rec(1, "Aster", "Ivory", "PLA", 1), rec(2, "Boreal", "Red", "PLA", 1))

	s = Reduce(s, DeleteRequested{ID: 2})
	assert.Equal(t, int64(2), s.DeleteConfirmID)

	s = Reduce(s, EditStarted{ID: 1})
	assert.Equal(t, int64(1), s.EditingID)
	assert.Equal(t, NoID, s.DeleteConfirmID)
	assert.Equal(t, "Aster", s.EditDraft.Brand)

	s = Reduce(s, DeleteRequested{ID: 2})
	assert.Equal(t, NoID, s.EditingID)
	assert.Equal(t, int64(2), s.DeleteConfirmID)

	s = Reduce(s, EditStarted{ID: 99})
	assert.Equal(t, NoID, s.EditingID)
	assert.Equal(t, int64(2), s.DeleteConfirmID)
}

func TestUnauthorizedMutationSignsOut(t *testing.T) {
	s := loadedState(t, rec(1, "Aster", "Ivory", "PLA", 1))
	s = Reduce(s, OpStarted{Source: client.SourceAuthVerify})
	s = Reduce(s, AuthVerified{Gen: s.generation(client.SourceAuthVerify), Token: "tok"})
	require.True(t, s.Authorized())

	s = Reduce(s, EditStarted{ID: 1})
	s = Reduce(s, OpStarted{Source: client.SourceCreate})
	s = Reduce(s, OpFailed{
		Source: client.SourceCreate,
		Gen:    s.generation(client.SourceCreate),
		Token:  "tok",
		Err:    &client.APIError{Source: client.SourceCreate, Status: http.StatusUnauthorized, Message: "Unauthorized"},
	})

	assert.False(t, s.Authorized())
	assert.Empty(t, s.Token)
	assert.Equal(t, NoID, s.EditingID)
	assert.Equal(t, StatusError, s.Ops.Create.Status)
	assert.Equal(t, StatusError, s.Ops.AuthVerify.Status)
	assert.Equal(t, MsgPasscodeRejected, s.Ops.AuthVerify.Err.Message)
}

func TestUnauthorizedWithOldTokenKeepsNewToken(t *testing.T) {
	s := Reduce(Initial(false), OpStarted{Source: client.SourceAuthVerify})
	s = Reduce(s, AuthVerified{Gen: s.generation(client.SourceAuthVerify), Token: "new"})

	s = Reduce(s, OpFailed{
		Source: client.SourceDelete,
		Gen:    s.generation(client.SourceDelete),
		Token:  "old",
		Err:    &client.APIError{Status: http.StatusUnauthorized},
	})
	assert.Equal(t, "new", s.Token)
}

func TestOperationsAreIndependent(t *testing.T) {
	s := Reduce(Initial(false), OpStarted{Source: client.SourceDelete})
	s = Reduce(s, OpFailed{Source: client.SourceDelete, Gen: s.generation(client.SourceDelete), Err: &client.APIError{Status: 404, Message: "Not found"}})
	s = Reduce(s, OpStarted{Source: client.SourceLoad})
	s = Reduce(s, Loaded{Gen: s.generation(client.SourceLoad)})

	assert.Equal(t, StatusError, s.Ops.Get(client.SourceDelete).Status)
	assert.Equal(t, "Not found", s.Ops.Get(client.SourceDelete).Err.Message)
	assert.Equal(t, StatusSuccess, s.Ops.Get(client.SourceLoad).Status)
	assert.Equal(t, StatusIdle, s.Ops.Get(client.SourceCreate).Status)
}

func TestStaleCreateKeepsRecord(t *testing.T) {
	s := loadedState(t)
	s = Reduce(s, OpStarted{Source: client.SourceCreate})
	first := s.generation(client.SourceCreate)
	s = Reduce(s, OpStarted{Source: client.SourceCreate})

	s = Reduce(s, Created{Gen: first, Record: rec(5, "Aster", "Ivory", "pla", 1)})
	require.Len(t, s.Records, 1)
	assert.Equal(t, "PLA", s.Records[0].Material)
	assert.Equal(t, StatusLoading, s.Ops.Create.Status)
}

func TestUpdatedAndDeleted(t *testing.T) {
	s := loadedState(t, rec(1, "Aster", "Ivory", "PLA", 1), rec(2, "Boreal", "Red", "PLA", 1))
	before := s.Records

	s = Reduce(s, EditStarted{ID: 1})
	s = Reduce(s, UpdateSubmitted{ID: 1})
	assert.Equal(t, int64(1), s.PendingUpdateID)

	updated := rec(1, "Aster", "Ivory", "PLA", 0.1)
	s = Reduce(s, Updated{Gen: s.generation(client.SourceUpdate), Record: updated})
	assert.Equal(t, 0.1, s.Records[0].Amount)
	assert.Equal(t, 1.0, before[0].Amount)
	assert.Equal(t, NoID, s.EditingID)
	assert.Equal(t, NoID, s.PendingUpdateID)

	s = Reduce(s, DeleteRequested{ID: 2})
	s = Reduce(s, DeleteSubmitted{ID: 2})
	s = Reduce(s, Deleted{Gen: s.generation(client.SourceDelete), ID: 2})
	require.Len(t, s.Records, 1)
	assert.Equal(t, NoID, s.DeleteConfirmID)
	assert.Equal(t, NoID, s.PendingDeleteID)
}

func TestDraftRejected(t *testing.T) {
	s := Reduce(Initial(false), DraftRejected{Source: client.SourceCreate, Errors: normalize.FieldErrors{"brand": "Brand is required."}})
	assert.Equal(t, StatusError, s.Ops.Create.Status)
	assert.Equal(t, MsgFixCreateFields, s.Ops.Create.Err.Message)
	assert.Equal(t, http.StatusBadRequest, s.Ops.Create.Err.Status)
	assert.Contains(t, s.CreateErrors, "brand")
}

func TestSignedOutSupersedesVerify(t *testing.T) {
	s := Reduce(Initial(false), OpStarted{Source: client.SourceAuthVerify})
	gen := s.generation(client.SourceAuthVerify)
	s = Reduce(s, SignedOut{})
	s = Reduce(s, AuthVerified{Gen: gen, Token: "late"})

	assert.Empty(t, s.Token)
	assert.True(t, s.AuthReady)
	assert.Equal(t, StatusIdle, s.Ops.AuthVerify.Status)
}

func TestCreatedAfterOverlappingLoadKeepsIDsUnique(t *testing.T) {
	s := loadedState(t, rec(1, "Aster", "Blue", "pla", 1))
	s = Reduce(s, OpStarted{Source: client.SourceCreate})
	createGen := s.generation(client.SourceCreate)

	// A reload finishes first and already contains the new row.
	s = Reduce(s, OpStarted{Source: client.SourceLoad})
	s = Reduce(s, Loaded{Gen: s.generation(client.SourceLoad), Records: []model.Filament{
		rec(1, "Aster", "Blue", "pla", 1),
		rec(2, "Brio", "Red", "petg", 0.5),
	}})
	before := s.Records

	s = Reduce(s, Created{Gen: createGen, Record: rec(2, "Brio", "Red", "petg", 0.5)})

	require.Len(t, s.Records, 2)
	assert.Equal(t, []int64{1, 2}, []int64{s.Records[0].ID, s.Records[1].ID})
	assert.Equal(t, "PETG", s.Records[1].Material)
	assert.Equal(t, StatusSuccess, s.Ops.Create.Status)
	assert.Equal(t, []model.Filament{
		normalize.Filament(rec(1, "Aster", "Blue", "pla", 1)),
		normalize.Filament(rec(2, "Brio", "Red", "petg", 0.5)),
	}, before)
}

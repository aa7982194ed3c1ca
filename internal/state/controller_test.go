package state

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"filament-inventory-api/internal/client"
	"filament-inventory-api/internal/inventory"
	"filament-inventory-api/internal/logger"
	"filament-inventory-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) ListFilaments(ctx context.Context) ([]model.Filament, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Filament), args.Error(1)
}

func (m *MockAPI) VerifyPasscode(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockAPI) CreateFilament(ctx context.Context, d model.Draft, token string) (*model.Filament, error) {
	args := m.Called(ctx, d, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Filament), args.Error(1)
}

func (m *MockAPI) UpdateFilament(ctx context.Context, id int64, d model.Draft, token string) (*model.Filament, error) {
	args := m.Called(ctx, id, d, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Filament), args.Error(1)
}

func (m *MockAPI) DeleteFilament(ctx context.Context, id int64, token string) error {
	return m.Called(ctx, id, token).Error(0)
}

func unauthorized(src client.OperationSource) *client.APIError {
	return &client.APIError{Source: src, Status: http.StatusUnauthorized, Message: "Unauthorized"}
}

func signedIn(t *testing.T, api *MockAPI, store *MemoryStore) *Controller {
	t.Helper()
	api.On("VerifyPasscode", mock.Anything, "tok").Return(nil).Once()

	c := NewController(api, store, store, logger.Discard())
	require.NoError(t, c.SavePasscode(context.Background(), "  tok  "))
	require.True(t, c.State().Authorized())
	return c
}

func TestStartRestoresSavedPasscode(t *testing.T) {
	api := new(MockAPI)
	store := &MemoryStore{}
	require.NoError(t, store.Save("saved"))

	api.On("ListFilaments", mock.Anything).Return([]model.Filament{rec(1, "Aster", "Ivory", "pla", 1)}, nil)
	api.On("VerifyPasscode", mock.Anything, "saved").Return(nil)

	c := NewController(api, store, store, logger.Discard())
	require.NoError(t, c.Start(context.Background()))

	s := c.State()
	assert.True(t, s.Authorized())
	assert.Equal(t, "saved", s.Token)
	assert.Len(t, s.Records, 1)
	assert.Equal(t, StatusSuccess, s.Ops.Load.Status)
	assert.Equal(t, StatusSuccess, s.Ops.AuthVerify.Status)
}

func TestStartWithoutSavedPasscode(t *testing.T) {
	api := new(MockAPI)
	store := &MemoryStore{}
	api.On("ListFilaments", mock.Anything).Return([]model.Filament{}, nil)

	c := NewController(api, store, store, logger.Discard())
	require.NoError(t, c.Start(context.Background()))

	s := c.State()
	assert.True(t, s.AuthReady)
	assert.False(t, s.Authorized())
	api.AssertNotCalled(t, "VerifyPasscode", mock.Anything, mock.Anything)
}

func TestRestoreRejectedPasscodeIsCleared(t *testing.T) {
	api := new(MockAPI)
	store := &MemoryStore{}
	require.NoError(t, store.Save("stale"))
	api.On("VerifyPasscode", mock.Anything, "stale").Return(unauthorized(client.SourceAuthVerify))

	c := NewController(api, store, store, logger.Discard())
	require.Error(t, c.RestorePasscode(context.Background()))

	token, _ := store.Load()
	assert.Empty(t, token)
	s := c.State()
	assert.True(t, s.AuthReady)
	assert.False(t, s.Authorized())
	assert.Equal(t, StatusError, s.Ops.AuthVerify.Status)
}

func TestSavePasscodePersistsOnlyAfterVerify(t *testing.T) {
	api := new(MockAPI)
	store := &MemoryStore{}
	api.On("VerifyPasscode", mock.Anything, "bad").Return(unauthorized(client.SourceAuthVerify))

	c := NewController(api, store, store, logger.Discard())
	require.Error(t, c.SavePasscode(context.Background(), "bad"))

	token, _ := store.Load()
	assert.Empty(t, token)

	c = signedIn(t, api, store)
	token, _ = store.Load()
	assert.Equal(t, "tok", token)

	require.NoError(t, c.SavePasscode(context.Background(), "   "))
	token, _ = store.Load()
	assert.Empty(t, token)
	assert.False(t, c.State().Authorized())
	assert.Equal(t, StatusIdle, c.State().Ops.AuthVerify.Status)
}

func TestCreateSendsNormalizedDraft(t *testing.T) {
	api := new(MockAPI)
	store := &MemoryStore{}
	c := signedIn(t, api, store)

	want := model.Draft{Brand: "MakerCo", Color: "Midnight Blue", Type: "Basic", Material: "PLA", Amount: 0.45}
	api.On("CreateFilament", mock.Anything, want, "tok").Return(&model.Filament{ID: 3, Brand: "MakerCo", Color: "Midnight Blue", Type: "Basic", Material: "PLA", Amount: 0.45}, nil)

	err := c.Create(context.Background(), model.Draft{Brand: " MakerCo ", Color: "  Midnight  Blue ", Type: "basic", Material: " pla ", Amount: 0.45})
	require.NoError(t, err)

	s := c.State()
	require.Len(t, s.Records, 1)
	assert.Equal(t, StatusSuccess, s.Ops.Create.Status)
	api.AssertExpectations(t)
}

func TestCreateRequiresAuth(t *testing.T) {
	c := NewController(new(MockAPI), &MemoryStore{}, &MemoryStore{}, logger.Discard())
	assert.ErrorIs(t, c.Create(context.Background(), model.Draft{}), ErrNotAuthorized)
}

func TestCreateInvalidDraftNeverSent(t *testing.T) {
	api := new(MockAPI)
	c := signedIn(t, api, &MemoryStore{})

	err := c.Create(context.Background(), model.Draft{Brand: "A", Color: "B", Type: "C", Material: "D", Amount: -1})
	assert.ErrorIs(t, err, ErrInvalidDraft)
	assert.Contains(t, c.State().CreateErrors, "amount")
	api.AssertNotCalled(t, "CreateFilament", mock.Anything, mock.Anything, mock.Anything)
}

func TestUnauthorizedDeleteForcesSignOut(t *testing.T) {
	api := new(MockAPI)
	store := &MemoryStore{}
	c := signedIn(t, api, store)

	api.On("ListFilaments", mock.Anything).Return([]model.Filament{rec(1, "Aster", "Ivory", "PLA", 1)}, nil)
	require.NoError(t, c.Load(context.Background()))
	c.RequestDelete(1)

	api.On("DeleteFilament", mock.Anything, int64(1), "tok").Return(unauthorized(client.SourceDelete))
	err := c.ConfirmDelete(context.Background(), 1)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.Unauthorized())

	s := c.State()
	assert.False(t, s.Authorized())
	assert.Equal(t, NoID, s.DeleteConfirmID)
	assert.Equal(t, MsgPasscodeRejected, s.Ops.AuthVerify.Err.Message)
	assert.Equal(t, StatusError, s.Ops.Delete.Status)
	assert.Len(t, s.Records, 1)

	token, _ := store.Load()
	assert.Empty(t, token)
}

func TestEditFlow(t *testing.T) {
	api := new(MockAPI)
	c := signedIn(t, api, &MemoryStore{})

	api.On("ListFilaments", mock.Anything).Return([]model.Filament{rec(1, "Aster", "Ivory", "PLA", 1)}, nil)
	require.NoError(t, c.Load(context.Background()))

	assert.ErrorIs(t, c.SaveEdit(context.Background()), ErrNotEditing)
	assert.ErrorIs(t, c.StartEdit(42), ErrUnknownRecord)
	require.NoError(t, c.StartEdit(1))

	d := c.State().EditDraft
	d.Amount = 0.2
	d.Material = "petg"
	c.SetEditDraft(d)

	want := d
	want.Material = "PETG"
	want.Type = "Basic"
	api.On("UpdateFilament", mock.Anything, int64(1), want, "tok").Return(&model.Filament{ID: 1, Brand: "Aster", Color: "Ivory", Type: "Basic", Material: "PETG", Amount: 0.2}, nil)

	require.NoError(t, c.SaveEdit(context.Background()))
	s := c.State()
	assert.Equal(t, NoID, s.EditingID)
	assert.Equal(t, 0.2, s.Records[0].Amount)
	assert.Equal(t, "PETG", s.Records[0].Material)
}

func TestStaleLoadDropped(t *testing.T) {
	api := new(MockAPI)
	c := NewController(api, &MemoryStore{}, &MemoryStore{}, logger.Discard())

	release := make(chan struct{})
	entered := make(chan struct{})
	api.On("ListFilaments", mock.Anything).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return([]model.Filament{rec(1, "Old", "Ivory", "PLA", 1)}, nil).Once()
	api.On("ListFilaments", mock.Anything).
		Return([]model.Filament{rec(2, "New", "Red", "PLA", 1)}, nil).Once()

	done := make(chan error)
	go func() { done <- c.Load(context.Background()) }()
	<-entered

	require.NoError(t, c.Load(context.Background()))
	close(release)
	require.NoError(t, <-done)

	s := c.State()
	require.Len(t, s.Records, 1)
	assert.Equal(t, "New", s.Records[0].Brand)
}

func TestHideOutOfStockPersisted(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "spoolctl", "state.json"))

	c := NewController(new(MockAPI), store, store, logger.Discard())
	assert.False(t, c.State().Filters.HideOutOfStock)

	f := c.State().Filters
	f.HideOutOfStock = true
	c.SetFilters(f)

	c = NewController(new(MockAPI), store, store, logger.Discard())
	assert.True(t, c.State().Filters.HideOutOfStock)

	c.ResetFilters()
	assert.Equal(t, inventory.DefaultFilters(), c.State().Filters)
	hide, err := store.HideOutOfStock()
	require.NoError(t, err)
	assert.False(t, hide)
}

func TestToggleSort(t *testing.T) {
	c := NewController(new(MockAPI), &MemoryStore{}, &MemoryStore{}, logger.Discard())

	c.ToggleSort(inventory.FieldBrand)
	assert.Equal(t, inventory.Desc, c.State().Sort.Direction)
	c.ToggleSort(inventory.FieldAmount)
	assert.Equal(t, inventory.SortState{Field: inventory.FieldAmount, Direction: inventory.Asc}, c.State().Sort)
}

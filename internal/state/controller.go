package state

import (
	"context"
	"errors"
	"strings"
	"sync"

	"filament-inventory-api/internal/client"
	"filament-inventory-api/internal/inventory"
	"filament-inventory-api/internal/logger"
	"filament-inventory-api/internal/model"
	"filament-inventory-api/internal/normalize"

	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNotAuthorized is returned by mutations attempted while signed out.
	ErrNotAuthorized = errors.New("not signed in")
	// ErrNotEditing is returned by SaveEdit when no record is open.
	ErrNotEditing = errors.New("no record is being edited")
	// ErrUnknownRecord is returned when an id is not in the loaded list.
	ErrUnknownRecord = errors.New("unknown filament")
	// ErrInvalidDraft is returned when a draft fails validation before sending.
	ErrInvalidDraft = errors.New("invalid filament draft")
)

// API is the subset of *client.Client the controller drives.
type API interface {
	ListFilaments(ctx context.Context) ([]model.Filament, error)
	VerifyPasscode(ctx context.Context, token string) error
	CreateFilament(ctx context.Context, d model.Draft, token string) (*model.Filament, error)
	UpdateFilament(ctx context.Context, id int64, d model.Draft, token string) (*model.Filament, error)
	DeleteFilament(ctx context.Context, id int64, token string) error
}

// Controller owns the client State. All methods are safe for concurrent use;
// blocking methods may run in parallel and their completions are applied in
// arrival order, with stale ones dropped per operation source.
type Controller struct {
	api    API
	tokens TokenStore
	prefs  PreferenceStore
	log    *slog.Logger

	mu    sync.Mutex
	state State
}

// NewController creates a controller. The saved hide-out-of-stock
// preference is applied to the initial filters.
func NewController(api API, tokens TokenStore, prefs PreferenceStore, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "state"))

	hide, err := prefs.HideOutOfStock()
	if err != nil {
		log.Warn("reading preferences failed", logger.Err(err))
	}

	return &Controller{
		api:    api,
		tokens: tokens,
		prefs:  prefs,
		log:    log,
		state:  Initial(hide),
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dispatch applies a and returns the new state.
func (c *Controller) Dispatch(a Action) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = a.reduce(c.state)
	return c.state
}

// start opens a new generation for src and returns it with the token to use.
func (c *Controller) start(a Action, src client.OperationSource) (uint64, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = a.reduce(c.state)
	return c.state.generation(src), c.state.Token
}

// fail records err and clears the saved token when it caused a sign-out.
func (c *Controller) fail(src client.OperationSource, gen uint64, token string, err error, fallback string) error {
	apiErr := client.ToAPIError(err, src, fallback)

	c.mu.Lock()
	before := c.state.Token
	c.state = OpFailed{Source: src, Gen: gen, Token: token, Err: apiErr}.reduce(c.state)
	signedOut := before != "" && c.state.Token == ""
	c.mu.Unlock()

	if signedOut {
		c.log.Info("passcode rejected, signing out", slog.String("source", src.String()))
		c.clearToken()
	}
	return apiErr
}

func (c *Controller) clearToken() {
	if err := c.tokens.Clear(); err != nil {
		c.log.Warn("clearing saved passcode failed", logger.Err(err))
	}
}

// Start loads the inventory and restores the saved passcode concurrently.
func (c *Controller) Start(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return c.Load(ctx) })
	g.Go(func() error { return c.RestorePasscode(ctx) })
	return g.Wait()
}

// Load fetches the record list.
func (c *Controller) Load(ctx context.Context) error {
	gen, _ := c.start(OpStarted{Source: client.SourceLoad}, client.SourceLoad)

	records, err := c.api.ListFilaments(ctx)
	if err != nil {
		return c.fail(client.SourceLoad, gen, "", err, MsgLoadFailed)
	}

	c.Dispatch(Loaded{Gen: gen, Records: records})
	return nil
}

// RestorePasscode verifies the saved passcode, if any, and signs in with it.
func (c *Controller) RestorePasscode(ctx context.Context) error {
	token, err := c.tokens.Load()
	if err != nil {
		c.log.Warn("reading saved passcode failed", logger.Err(err))
	}
	if token == "" {
		c.mu.Lock()
		c.state.AuthReady = true
		c.mu.Unlock()
		return nil
	}
	return c.verify(ctx, token, false, MsgSavedPasscode)
}

// SavePasscode verifies input and, when the server accepts it, signs in and
// saves it. Blank input signs out.
func (c *Controller) SavePasscode(ctx context.Context, input string) error {
	token := strings.TrimSpace(input)
	if token == "" {
		return c.SignOut()
	}
	return c.verify(ctx, token, true, MsgVerifyFailed)
}

func (c *Controller) verify(ctx context.Context, token string, save bool, fallback string) error {
	gen, _ := c.start(OpStarted{Source: client.SourceAuthVerify}, client.SourceAuthVerify)

	if err := c.api.VerifyPasscode(ctx, token); err != nil {
		apiErr := client.ToAPIError(err, client.SourceAuthVerify, fallback)
		c.mu.Lock()
		stale := c.state.generation(client.SourceAuthVerify) != gen
		c.state = AuthRejected{Gen: gen, Err: apiErr}.reduce(c.state)
		c.mu.Unlock()
		if !stale {
			c.clearToken()
		}
		return apiErr
	}

	c.mu.Lock()
	stale := c.state.generation(client.SourceAuthVerify) != gen
	c.state = AuthVerified{Gen: gen, Token: token}.reduce(c.state)
	c.mu.Unlock()
	if stale {
		c.log.Debug("dropping stale verification")
		return nil
	}

	if save {
		if err := c.tokens.Save(token); err != nil {
			c.log.Warn("saving passcode failed", logger.Err(err))
		}
	}
	return nil
}

// SignOut forgets the passcode in memory and on disk.
func (c *Controller) SignOut() error {
	c.Dispatch(SignedOut{})
	return c.tokens.Clear()
}

// SetFilters replaces the filters and persists the hide-out-of-stock choice.
func (c *Controller) SetFilters(f inventory.Filters) {
	c.mu.Lock()
	changed := c.state.Filters.HideOutOfStock != f.HideOutOfStock
	c.state = FiltersChanged{Filters: f}.reduce(c.state)
	c.mu.Unlock()

	if changed {
		if err := c.prefs.SetHideOutOfStock(f.HideOutOfStock); err != nil {
			c.log.Warn("saving preferences failed", logger.Err(err))
		}
	}
}

// ResetFilters restores the default filters.
func (c *Controller) ResetFilters() {
	c.SetFilters(inventory.DefaultFilters())
}

// ToggleSort sorts by field, flipping direction when already sorted by it.
func (c *Controller) ToggleSort(field inventory.Field) {
	c.Dispatch(SortToggled{Field: field})
}

// SetSort replaces the sort state.
func (c *Controller) SetSort(s inventory.SortState) {
	c.Dispatch(SortChanged{Sort: s})
}

// Create validates d and, if valid, sends its normalized form.
func (c *Controller) Create(ctx context.Context, d model.Draft) error {
	if !c.State().Authorized() {
		return ErrNotAuthorized
	}
	if errs := normalize.ValidateDraft(d); len(errs) > 0 {
		c.Dispatch(DraftRejected{Source: client.SourceCreate, Errors: errs})
		return ErrInvalidDraft
	}

	gen, token := c.start(OpStarted{Source: client.SourceCreate}, client.SourceCreate)

	created, err := c.api.CreateFilament(ctx, normalize.Draft(d), token)
	if err != nil {
		return c.fail(client.SourceCreate, gen, token, err, MsgCreateFailed)
	}

	c.Dispatch(Created{Gen: gen, Record: *created})
	return nil
}

// StartEdit opens id for editing.
func (c *Controller) StartEdit(id int64) error {
	if s := c.Dispatch(EditStarted{ID: id}); s.EditingID != id {
		return ErrUnknownRecord
	}
	return nil
}

// SetEditDraft replaces the draft being edited.
func (c *Controller) SetEditDraft(d model.Draft) {
	c.Dispatch(EditDraftChanged{Draft: d})
}

// CancelEdit closes the editor.
func (c *Controller) CancelEdit() {
	c.Dispatch(EditCancelled{})
}

// SaveEdit validates the edit draft and sends its normalized form.
func (c *Controller) SaveEdit(ctx context.Context) error {
	s := c.State()
	if !s.Authorized() {
		return ErrNotAuthorized
	}
	if s.EditingID == NoID {
		return ErrNotEditing
	}
	if errs := normalize.ValidateDraft(s.EditDraft); len(errs) > 0 {
		c.Dispatch(DraftRejected{Source: client.SourceUpdate, Errors: errs})
		return ErrInvalidDraft
	}

	id, d := s.EditingID, s.EditDraft
	gen, token := c.start(UpdateSubmitted{ID: id}, client.SourceUpdate)

	updated, err := c.api.UpdateFilament(ctx, id, normalize.Draft(d), token)
	if err != nil {
		return c.fail(client.SourceUpdate, gen, token, err, MsgUpdateFailed)
	}

	c.Dispatch(Updated{Gen: gen, Record: *updated})
	return nil
}

// RequestDelete asks for confirmation before deleting id.
func (c *Controller) RequestDelete(id int64) {
	c.Dispatch(DeleteRequested{ID: id})
}

// CancelDelete withdraws a delete request.
func (c *Controller) CancelDelete() {
	c.Dispatch(DeleteCancelled{})
}

// ConfirmDelete deletes id.
func (c *Controller) ConfirmDelete(ctx context.Context, id int64) error {
	if !c.State().Authorized() {
		return ErrNotAuthorized
	}

	gen, token := c.start(DeleteSubmitted{ID: id}, client.SourceDelete)

	if err := c.api.DeleteFilament(ctx, id, token); err != nil {
		return c.fail(client.SourceDelete, gen, token, err, MsgDeleteFailed)
	}

	c.Dispatch(Deleted{Gen: gen, ID: id})
	return nil
}

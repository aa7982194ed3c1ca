package handler

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"filament-inventory-api/internal/model"
	"filament-inventory-api/internal/service"
	"filament-inventory-api/pkg/apierror"
	"filament-inventory-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// maxBodyBytes bounds create/update payloads.
const maxBodyBytes = 1 << 20

// FilamentHandler handles filament CRUD requests.
type FilamentHandler struct {
	filamentService *service.FilamentService
}

// NewFilamentHandler creates a new filament handler.
func NewFilamentHandler(filamentService *service.FilamentService) *FilamentHandler {
	return &FilamentHandler{
		filamentService: filamentService,
	}
}

// draftPayload accepts amount as a JSON number or a numeric string.
type draftPayload struct {
	Brand    string      `json:"brand"`
	Color    string      `json:"color"`
	Type     string      `json:"type"`
	Material string      `json:"material"`
	Amount   json.Number `json:"amount"`
}

func (p draftPayload) draft() model.Draft {
	amount, err := strconv.ParseFloat(strings.TrimSpace(p.Amount.String()), 64)
	if err != nil {
		amount = math.NaN()
	}
	return model.Draft{
		Brand:    p.Brand,
		Color:    p.Color,
		Type:     p.Type,
		Material: p.Material,
		Amount:   amount,
	}
}

// List handles GET /api/filaments
func (h *FilamentHandler) List(w http.ResponseWriter, r *http.Request) {
	filaments, err := h.filamentService.List(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, filaments)
}

// Create handles POST /api/filaments
func (h *FilamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	d, err := decodeDraft(w, r)
	if err != nil {
		response.Error(w, err)
		return
	}

	f, err := h.filamentService.Create(r.Context(), d)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Created(w, f)
}

// Update handles PUT /api/filaments/{id}
func (h *FilamentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := filamentID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	d, err := decodeDraft(w, r)
	if err != nil {
		response.Error(w, err)
		return
	}

	f, err := h.filamentService.Update(r.Context(), id, d)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, f)
}

// Delete handles DELETE /api/filaments/{id}
func (h *FilamentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := filamentID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	if err := h.filamentService.Delete(r.Context(), id); err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, model.OK{OK: true})
}

func filamentID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, apierror.BadRequest("Invalid filament id")
	}
	return id, nil
}

func decodeDraft(w http.ResponseWriter, r *http.Request) (model.Draft, error) {
	defer r.Body.Close()

	var p draftPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&p); err != nil {
		return model.Draft{}, apierror.BadRequest("Invalid filament data")
	}
	return p.draft(), nil
}

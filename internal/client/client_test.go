package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"filament-inventory-api/internal/logger"
	"filament-inventory-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", WithHTTPClient(srv.Client()), WithLogger(logger.Discard()))
}

func TestListFilaments(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/filaments", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`[{"id":1,"brand":"Aster","color":"Ivory","type":"basic","material":"pla","amount":0.5,"created_at":"2025-01-01T00:00:00Z","updated_at":"2025-01-01T00:00:00Z"}]`))
	})

	list, err := c.ListFilaments(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].ID)
	assert.Equal(t, "pla", list[0].Material)
}

func TestListFilamentsNullBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	})

	list, err := c.ListFilaments(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestCreateFilamentSendsTokenAndBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var d model.Draft
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&d))
		assert.Equal(t, "PETG", d.Material)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(model.Filament{ID: 7, Material: d.Material})
	})

	f, err := c.CreateFilament(context.Background(), model.Draft{Brand: "A", Color: "B", Type: "Basic", Material: "PETG", Amount: 1}, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, int64(7), f.ID)
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"error field", http.StatusNotFound, `{"error":"Not found"}`, "Not found"},
		{"message field", http.StatusBadRequest, `{"message":"bad amount"}`, "bad amount"},
		{"no json", http.StatusBadGateway, `<html>`, "Delete failed (502)"},
		{"empty object", http.StatusInternalServerError, `{}`, "Delete failed (500)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			err := c.DeleteFilament(context.Background(), 3, "tok")
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, SourceDelete, apiErr.Source)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestVerifyUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/verify", r.URL.Path)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Unauthorized"}`))
	})

	err := c.VerifyPasscode(context.Background(), "wrong")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.Unauthorized())
	assert.Equal(t, SourceAuthVerify, apiErr.Source)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, WithLogger(logger.Discard()))
	_, err := c.UpdateFilament(context.Background(), 1, model.Draft{}, "tok")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 0, apiErr.Status)
	assert.Equal(t, SourceUpdate, apiErr.Source)
}

func TestInvalidSuccessBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	_, err := c.ListFilaments(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 0, apiErr.Status)
}

func TestToAPIError(t *testing.T) {
	orig := &APIError{Source: SourceCreate, Status: 400, Message: "x"}
	assert.Same(t, orig, ToAPIError(orig, SourceLoad, "fallback"))

	wrapped := ToAPIError(errors.New("boom"), SourceLoad, "fallback")
	assert.Equal(t, SourceLoad, wrapped.Source)
	assert.Equal(t, 0, wrapped.Status)
	assert.Equal(t, "boom", wrapped.Message)

	assert.Equal(t, "fallback", ToAPIError(nil, SourceLoad, "fallback").Message)
}

func TestOperationSourceString(t *testing.T) {
	assert.Equal(t, "authVerify", SourceAuthVerify.String())
	assert.Equal(t, "load", SourceLoad.String())
	assert.Len(t, Sources, 5)
}

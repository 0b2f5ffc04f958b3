package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "aqevent/pkg/errors"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"not found", apperrors.NotFoundWithID("Event", "EVT_1"), http.StatusNotFound, apperrors.CodeNotFound, "Event not found"},
		{"conflict", apperrors.Conflict("already approved"), http.StatusConflict, apperrors.CodeConflict, "already approved"},
		{"unauthorized", apperrors.Unauthorized("admin token required"), http.StatusUnauthorized, apperrors.CodeUnauthorized, "admin token required"},
		{"plain error hidden", errors.New("mongo: connection reset"), http.StatusInternalServerError, apperrors.CodeInternal, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			require.NoError(t, WriteError(rec, tt.err))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Equal(t, tt.wantMsg, resp.Error)
		})
	}
}

func TestWriteList(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteList(rec, []string{"a", "b"}, 2))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":["a","b"],"total_count":2}`, rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Recital"}`))
	require.NoError(t, DecodeJSON(r, &dst))
	assert.Equal(t, "Recital", dst.Name)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	err := DecodeJSON(r, &dst)
	assert.True(t, errors.Is(err, apperrors.InvalidInput("")))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	err = DecodeJSON(r, &dst)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.AsAppError(err).Code)
}

func TestDecodeJSON_TooLarge(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"`+strings.Repeat("x", 64)+`"}`))
	r.Body = http.MaxBytesReader(rec, r.Body, 16)

	var dst map[string]any
	err := DecodeJSON(r, &dst)
	assert.Equal(t, apperrors.CodeTooLarge, apperrors.AsAppError(err).Code)
}

func TestQueryHelpers(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?seriesOnly=true&from=2026-10-20&bad=maybe&to=20-10-2026", nil)

	v, err := QueryBool(r, "seriesOnly")
	require.NoError(t, err)
	assert.True(t, v)

	v, err = QueryBool(r, "hasFiles")
	require.NoError(t, err)
	assert.False(t, v)

	_, err = QueryBool(r, "bad")
	assert.Error(t, err)

	d, err := QueryDate(r, "from")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-20", d)

	_, err = QueryDate(r, "to")
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, BearerToken(r))

	r.Header.Set("Authorization", "Bearer secret-token")
	assert.Equal(t, "secret-token", BearerToken(r))

	r.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, BearerToken(r))
}

package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-lang/msaflow-go/internal/config"
)

func testRouter(t *testing.T, maxUpload int64) http.Handler {
	t.Helper()
	v := config.New("")
	v.Set("server.max-upload-bytes", maxUpload)
	cfg, err := config.Load(v)
	require.NoError(t, err)
	return newRouter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHealth(t *testing.T) {
	srv := testRouter(t, 1024)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestAPIMounted(t *testing.T) {
	srv := testRouter(t, 1024)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/tables",
		strings.NewReader(`{"name": "demo", "sequences": ["MKV", "MKL"]}`)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tables/demo?format=a3m", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ">seq0\nMKV\n>seq1\nMKL\n", rec.Body.String())
}

func TestUploadLimit(t *testing.T) {
	srv := testRouter(t, 16)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/tables",
		strings.NewReader(`{"name": "demo", "sequences": ["MKVLLLLLLLLLLLLLLLLL"]}`)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

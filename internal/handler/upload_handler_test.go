package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"backend/internal/service"
	"backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadFixture(t *testing.T) (*gin.Engine, *storage.LocalStore) {
	t.Helper()
	store, err := storage.NewLocalStore(storage.Config{BaseURL: "http://localhost:8080", LocalDir: t.TempDir()})
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewUploadHandler(service.NewUploadService(store), store).RegisterRoutes(&r.RouterGroup)
	return r, store
}

func presignedPath(t *testing.T, presigned string) string {
	t.Helper()
	u, err := url.Parse(presigned)
	require.NoError(t, err)
	return u.Path + "?" + u.RawQuery
}

func TestPutObject_RoundTripsThroughPresignedURL(t *testing.T) {
	r, store := uploadFixture(t)

	putURL, err := store.PresignUpload(context.Background(), "forms/1_cash.pdf", "application/pdf", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, presignedPath(t, putURL), strings.NewReader("pdf bytes"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	getURL, err := store.PresignDownload(context.Background(), "forms/1_cash.pdf", time.Hour)
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, presignedPath(t, getURL), nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pdf bytes", w.Body.String())
}

func TestPutObject_RejectsUnpresignedToken(t *testing.T) {
	r, _ := uploadFixture(t)

	req := httptest.NewRequest(http.MethodPut, "/uploads/forged-token?key=forms/1_cash.pdf", strings.NewReader("x"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetObject_RejectsUnpresignedToken(t *testing.T) {
	r, store := uploadFixture(t)
	require.NoError(t, store.Save("forms/1_cash.pdf", strings.NewReader("secret")))

	req := httptest.NewRequest(http.MethodGet, "/downloads/forged-token?key=forms/1_cash.pdf", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotContains(t, w.Body.String(), "secret")
}

func TestGetObject_DownloadTokenCannotWrite(t *testing.T) {
	r, store := uploadFixture(t)

	getURL, err := store.PresignDownload(context.Background(), "forms/1_cash.pdf", time.Hour)
	require.NoError(t, err)
	u, err := url.Parse(getURL)
	require.NoError(t, err)
	token := u.Path[strings.LastIndex(u.Path, "/")+1:]

	req := httptest.NewRequest(http.MethodPut, "/uploads/"+token+"?key=forms/1_cash.pdf", strings.NewReader("x"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

package api

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"

	"grocerynana/internal/storage"

	"github.com/stretchr/testify/assert"
)

// mockStorage implements storage.Storage for handler tests
type mockStorage struct {
	pingErr error
	pings   int
	lastCtx context.Context
}

func (m *mockStorage) Ping(ctx context.Context) error {
	m.pings++
	m.lastCtx = ctx
	return m.pingErr
}

func (m *mockStorage) Migrate(_ context.Context, _ fs.FS) ([]storage.AppliedMigration, error) {
	return nil, nil
}

func (m *mockStorage) Driver() string { return "mock" }
func (m *mockStorage) Close() error   { return nil }

func TestNewHandlers(t *testing.T) {
	handlers := NewHandlers()
	assert.NotNil(t, handlers)
	assert.Nil(t, handlers.storage)
}

func TestNewHandlers_WithStorage(t *testing.T) {
	store := &mockStorage{}
	handlers := NewHandlers(WithStorage(store))
	assert.Equal(t, store, handlers.storage)
}

func TestHandlers_Hello(t *testing.T) {
	handlers := NewHandlers()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	recorder := httptest.NewRecorder()

	handlers.Hello(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
	assert.Equal(t, `{"message":"Hello World from GroceryNana Backend!"}`, recorder.Body.String())
}

func TestHandlers_Hello_IgnoresStorage(t *testing.T) {
	store := &mockStorage{pingErr: errors.New("database is down")}
	handlers := NewHandlers(WithStorage(store))

	recorder := httptest.NewRecorder()
	handlers.Hello(recorder, httptest.NewRequest(http.MethodGet, "/?q=1", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Zero(t, store.pings)
}

func TestHandlers_HealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		store      *mockStorage
		wantStatus int
		wantBody   string
	}{
		{
			name:       "database reachable",
			store:      &mockStorage{},
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ok","message":"Database connected"}`,
		},
		{
			name:       "database unreachable",
			store:      &mockStorage{pingErr: errors.New("dial tcp 10.0.0.1:5432: connection refused")},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"status":"error","message":"Database connection failed"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlers := NewHandlers(WithStorage(tt.store))

			req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
			recorder := httptest.NewRecorder()

			handlers.HealthCheck(recorder, req)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantBody, recorder.Body.String())
			assert.NotContains(t, recorder.Body.String(), "connection refused")
			assert.Equal(t, 1, tt.store.pings)
		})
	}
}

func TestHandlers_HealthCheck_UsesRequestContext(t *testing.T) {
	store := &mockStorage{}
	handlers := NewHandlers(WithStorage(store))

	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "request")
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil).WithContext(ctx)

	handlers.HealthCheck(httptest.NewRecorder(), req)

	assert.Equal(t, "request", store.lastCtx.Value(ctxKey{}))
}

func TestHandlers_HealthCheck_NoStorage(t *testing.T) {
	handlers := NewHandlers()

	recorder := httptest.NewRecorder()
	handlers.HealthCheck(recorder, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Equal(t, `{"status":"error","message":"Database connection failed"}`, recorder.Body.String())
}

func TestWriteJSON_UnencodableValue(t *testing.T) {
	recorder := httptest.NewRecorder()
	writeJSON(recorder, http.StatusOK, map[string]any{"bad": make(chan int)})

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Empty(t, recorder.Body.String())
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/schoolbus-tracker/internal/mapview"
	"github.com/ukydev/schoolbus-tracker/internal/middleware"
	"github.com/ukydev/schoolbus-tracker/internal/models"
	"github.com/ukydev/schoolbus-tracker/internal/web"
)

var fixedNow = time.Date(2024, 9, 2, 7, 30, 0, 0, time.UTC)

func newTestDashboardHandler(t *testing.T) *DashboardHandler {
	t.Helper()
	pages, err := web.NewPages()
	require.NoError(t, err)
	builder := mapview.NewBuilder(mapview.DefaultIcon())
	builder.Now = func() time.Time { return fixedNow }
	h := NewDashboardHandler(pages, builder)
	h.now = func() time.Time { return fixedNow }
	return h
}

func TestDashboardHandler_Parent(t *testing.T) {
	handler := newTestDashboardHandler(t)

	req := httptest.NewRequest("GET", ParentDashboardPath, nil)
	ctx := context.WithValue(req.Context(), middleware.SessionContextKey, &models.Claims{Username: "pat", Role: models.RoleParent})
	w := httptest.NewRecorder()

	handler.Parent(w, req.WithContext(ctx))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "pat")
	assert.Contains(t, body, "John Doe")
	assert.Contains(t, body, "Morning Route A")
	assert.Contains(t, body, "40.7128, -74.0060")
}

func TestDashboardHandler_Admin(t *testing.T) {
	handler := newTestDashboardHandler(t)

	req := httptest.NewRequest("GET", AdminDashboardPath, nil)
	w := httptest.NewRecorder()

	handler.Admin(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	for _, driver := range []string{"John Doe", "Jane Smith", "Mike Johnson"} {
		assert.Contains(t, body, driver)
	}
}

func TestDashboardHandler_NoSessionStillServed(t *testing.T) {
	handler := newTestDashboardHandler(t)

	for _, path := range []string{ParentDashboardPath, AdminDashboardPath} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		if path == ParentDashboardPath {
			handler.Parent(w, req)
		} else {
			handler.Admin(w, req)
		}
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestHealth(t *testing.T) {
	req := httptest.NewRequest("GET", HealthPath, nil)
	w := httptest.NewRecorder()

	Health(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

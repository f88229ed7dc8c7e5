package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/schoolbus-tracker/internal/fleet"
	"github.com/ukydev/schoolbus-tracker/internal/mapview"
	"github.com/ukydev/schoolbus-tracker/internal/models"
)

func TestNewPages(t *testing.T) {
	pages, err := NewPages()
	require.NoError(t, err)
	assert.Len(t, pages.templates, 3)
}

func TestRender_Login(t *testing.T) {
	pages, err := NewPages()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	err = pages.Render(w, http.StatusBadRequest, PageLogin, LoginPage{
		Error:    "Username and password are required",
		Role:     models.RoleAdmin,
		Username: "<pat>",
	})
	require.NoError(t, err)

	body := w.Body.String()
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, body, "Username and password are required")
	assert.Contains(t, body, `value="admin" checked`)
	assert.Contains(t, body, "&lt;pat&gt;")
	assert.NotContains(t, body, "<pat>")
}

func TestRender_Dashboards(t *testing.T) {
	pages, err := NewPages()
	require.NoError(t, err)
	builder := mapview.NewBuilder(mapview.DefaultIcon())
	now := time.Date(2024, 9, 2, 7, 30, 0, 0, time.UTC)

	t.Run("parent", func(t *testing.T) {
		w := httptest.NewRecorder()
		require.NoError(t, pages.Render(w, http.StatusOK, PageParent, DashboardPage{
			Username:   "pat",
			StreamPath: "/ws/parent-dashboard",
			LogoutPath: "/logout",
			Update:     builder.Parent(fleet.ParentBus(now)),
		}))
		body := w.Body.String()
		assert.Contains(t, body, "#123")
		assert.Contains(t, body, "Morning Route A")
		assert.Contains(t, body, "40.7128, -74.0060")
		assert.Contains(t, body, "07:30:00")
		assert.Contains(t, body, "parent-dashboard")
	})

	t.Run("admin", func(t *testing.T) {
		w := httptest.NewRecorder()
		require.NoError(t, pages.Render(w, http.StatusOK, PageAdmin, DashboardPage{
			StreamPath: "/ws/admin-dashboard",
			LogoutPath: "/logout",
			Update:     builder.Admin(fleet.AdminBuses(now)),
		}))
		body := w.Body.String()
		for _, s := range []string{"bus-1", "bus-2", "bus-3", "Jane Smith", "555-0125", "dot yellow"} {
			assert.Contains(t, body, s)
		}
	})
}

func TestRender_UnknownPage(t *testing.T) {
	pages, err := NewPages()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	assert.Error(t, pages.Render(w, http.StatusOK, "missing.html", nil))
}

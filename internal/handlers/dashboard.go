package handlers

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/schoolbus-tracker/internal/fleet"
	"github.com/ukydev/schoolbus-tracker/internal/mapview"
	"github.com/ukydev/schoolbus-tracker/internal/middleware"
	"github.com/ukydev/schoolbus-tracker/internal/web"
)

// DashboardHandler serves the two dashboard pages. Each page is rendered with
// the seed snapshot; live updates arrive over the page's stream.
type DashboardHandler struct {
	pages   *web.Pages
	builder *mapview.Builder
	now     func() time.Time
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(pages *web.Pages, builder *mapview.Builder) *DashboardHandler {
	return &DashboardHandler{
		pages:   pages,
		builder: builder,
		now:     time.Now,
	}
}

// Parent renders the single-bus parent dashboard
func (h *DashboardHandler) Parent(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, web.PageParent, ParentStreamPath, h.builder.Parent(fleet.ParentBus(h.now())))
}

// Admin renders the fleet dashboard
func (h *DashboardHandler) Admin(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, web.PageAdmin, AdminStreamPath, h.builder.Admin(fleet.AdminBuses(h.now())))
}

func (h *DashboardHandler) render(w http.ResponseWriter, r *http.Request, page, streamPath string, update mapview.Update) {
	data := web.DashboardPage{
		StreamPath: streamPath,
		LogoutPath: LogoutPath,
		Update:     update,
	}
	if claims, ok := middleware.GetSessionFromContext(r.Context()); ok {
		data.Username = claims.Username
	}

	if err := h.pages.Render(w, http.StatusOK, page, data); err != nil {
		log.WithError(err).WithField("page", page).Error("Failed to render dashboard")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

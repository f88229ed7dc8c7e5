package server

import (
	"net/http"

	"github.com/ukydev/schoolbus-tracker/internal/auth"
	"github.com/ukydev/schoolbus-tracker/internal/config"
	"github.com/ukydev/schoolbus-tracker/internal/handlers"
	"github.com/ukydev/schoolbus-tracker/internal/mapview"
	"github.com/ukydev/schoolbus-tracker/internal/middleware"
	"github.com/ukydev/schoolbus-tracker/internal/mirror"
	"github.com/ukydev/schoolbus-tracker/internal/web"
)

// NewRouter wires every route of the tracker behind the request logger and
// the session middleware. publisher may be nil.
func NewRouter(cfg *config.Config, publisher mirror.Publisher) (http.Handler, error) {
	pages, err := web.NewPages()
	if err != nil {
		return nil, err
	}

	authService := auth.NewService(cfg.Session.JWTSecret, cfg.Session.Expiry)
	builder := mapview.NewBuilder(mapview.DefaultIcon())

	authHandler := handlers.NewAuthHandler(authService, pages)
	dashboardHandler := handlers.NewDashboardHandler(pages, builder)
	streamHandler := handlers.NewStreamHandler(builder, cfg.TickInterval, publisher)

	sessions := middleware.NewSessionMiddleware(authService)
	throttle := middleware.NewThrottle(cfg.LoginLimit.MaxRequests, cfg.LoginLimit.Window())

	mux := http.NewServeMux()
	registerRoutes(mux, authHandler, dashboardHandler, streamHandler, throttle)

	return middleware.RequestLogger(sessions.Attach(mux)), nil
}

func registerRoutes(mux *http.ServeMux, authHandler *handlers.AuthHandler, dashboardHandler *handlers.DashboardHandler, streamHandler *handlers.StreamHandler, throttle *middleware.Throttle) {
	mux.HandleFunc("GET "+handlers.HealthPath, handlers.Health)

	// Login
	mux.HandleFunc("GET /{$}", authHandler.LoginPage)
	mux.Handle("POST "+handlers.LoginSubmitPath, throttle.Limit(http.HandlerFunc(authHandler.Login)))
	mux.Handle("POST "+handlers.APILoginPath, throttle.Limit(http.HandlerFunc(authHandler.APILogin)))
	mux.HandleFunc("GET "+handlers.LogoutPath, authHandler.Logout)
	mux.HandleFunc("POST "+handlers.LogoutPath, authHandler.Logout)

	// Dashboards
	mux.HandleFunc("GET "+handlers.ParentDashboardPath, dashboardHandler.Parent)
	mux.HandleFunc("GET "+handlers.AdminDashboardPath, dashboardHandler.Admin)

	// Live streams, one feed per connection
	mux.HandleFunc("GET "+handlers.ParentStreamPath, streamHandler.Parent)
	mux.HandleFunc("GET "+handlers.AdminStreamPath, streamHandler.Admin)
}

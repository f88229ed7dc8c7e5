package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/ukydev/schoolbus-tracker/internal/mapview"
	"github.com/ukydev/schoolbus-tracker/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names
const (
	PageLogin  = "login.html"
	PageParent = "parent.html"
	PageAdmin  = "admin.html"
)

// LoginPage is the data behind the login screen.
type LoginPage struct {
	Error    string
	Role     models.Role
	Username string
}

// DashboardPage is the data behind either dashboard.
type DashboardPage struct {
	Username   string
	StreamPath string
	LogoutPath string
	Update     mapview.Update
}

// Pages renders the embedded templates.
type Pages struct {
	templates map[string]*template.Template
}

var funcs = template.FuncMap{
	"statusColor":    mapview.StatusColor,
	"indicatorColor": mapview.IndicatorColor,
	"formatTime":     mapview.FormatTime,
	"formatLocation": mapview.FormatLocation,
}

// NewPages parses every page together with the shared layout.
func NewPages() (*Pages, error) {
	p := &Pages{templates: make(map[string]*template.Template)}
	for _, name := range []string{PageLogin, PageParent, PageAdmin} {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		p.templates[name] = tmpl
	}
	return p, nil
}

// Render writes a page with the given status. The page is rendered to a
// buffer first so a template error never leaves half a page behind.
func (p *Pages) Render(w http.ResponseWriter, status int, name string, data interface{}) error {
	tmpl, ok := p.templates[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Package views renders the site's HTML pages from embedded templates.
package views

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/grtshw/event-registration/events"
	"github.com/grtshw/event-registration/signup"
	"github.com/grtshw/event-registration/utils"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/template"
)

// Page names.
const (
	PageIndex       = "index"
	PageRegister    = "register"
	PageSuccess     = "success"
	PageLogin       = "login"
	PageDashboard   = "dashboard"
	PageTable       = "dashboard_table"
	PageEventsAdmin = "dashboard_events"
	PageEvents      = "events"
	PageEvent       = "event"
	PageNotFound    = "not_found"
)

const layoutFile = "templates/layout.html"

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Static returns the embedded static assets rooted at the static directory.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Page is the data every template receives.
type Page struct {
	Title   string
	Admin   bool
	Flashes []utils.Flash
	Data    any
}

// RegistrationRow is one registration in an admin table.
type RegistrationRow struct {
	ID string
	signup.Registration
}

// DashboardData backs the admin dashboard.
type DashboardData struct {
	RegistrationCount   int64
	SubscriberCount     int64
	EventCount          int64
	RecentRegistrations []RegistrationRow
	RecentEvents        []events.Event
}

// TableData backs the paginated registrations table.
type TableData struct {
	Rows       []RegistrationRow
	Total      int64
	Page       int
	TotalPages int
}

// HasPrev reports whether a previous page exists.
func (d TableData) HasPrev() bool { return d.Page > 1 }

// HasNext reports whether a next page exists.
func (d TableData) HasNext() bool { return d.Page < d.TotalPages }

// PrevPage returns the previous page number.
func (d TableData) PrevPage() int { return d.Page - 1 }

// NextPage returns the next page number.
func (d TableData) NextPage() int { return d.Page + 1 }

// EventsAdminData backs the admin events page and its publish form.
type EventsAdminData struct {
	Events []events.Event
}

// LoginData backs the admin login form.
type LoginData struct {
	Email string
}

// Renderer renders pages inside the shared layout.
type Renderer struct {
	fsys     fs.FS
	registry *template.Registry
}

// NewRenderer creates a renderer over the embedded templates.
func NewRenderer() *Renderer {
	return &Renderer{
		fsys:     templatesFS,
		registry: template.NewRegistry(),
	}
}

// Render returns the HTML for page.
func (r *Renderer) Render(page string, data Page) (string, error) {
	if page == "" || strings.ContainsAny(page, `/\.`) {
		return "", fmt.Errorf("invalid page name %q", page)
	}
	html, err := r.registry.LoadFS(r.fsys, layoutFile, "templates/"+page+".html").Render(data)
	if err != nil {
		return "", fmt.Errorf("render page %s: %w", page, err)
	}
	return html, nil
}

// HTML renders page and writes it with status.
func (r *Renderer) HTML(re *core.RequestEvent, status int, page string, data Page) error {
	html, err := r.Render(page, data)
	if err != nil {
		return err
	}
	return re.HTML(status, html)
}

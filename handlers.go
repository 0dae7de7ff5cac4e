package main

import (
	"net/http"

	"github.com/grtshw/event-registration/events"
	"github.com/grtshw/event-registration/signup"
	"github.com/grtshw/event-registration/store"
	"github.com/grtshw/event-registration/utils"
	"github.com/grtshw/event-registration/views"
	"github.com/pocketbase/pocketbase/core"
)

// posterFiles stores and serves event posters.
type posterFiles interface {
	events.PosterStorage
	Serve(re *core.RequestEvent, key string) error
}

// server holds the dependencies shared by the site's handlers.
type server struct {
	store    store.Store
	signup   *signup.Service
	events   *events.Service
	posters  posterFiles
	views    *views.Renderer
	sessions *utils.SessionManager
	gate     *utils.AdminGate
	admin    utils.AdminCredentials
	auditor  utils.Auditor
}

func newServer(cfg *utils.Config, st store.Store, notifier signup.Notifier, posters posterFiles, auditor utils.Auditor) *server {
	sessions := utils.NewSessionManager(cfg.SessionSecret, cfg.SessionTTL, cfg.SessionSecureCookie)
	if auditor == nil {
		auditor = utils.NopAuditor
	}

	return &server{
		store:    st,
		signup:   signup.NewService(st, notifier),
		events:   events.NewService(st, posters),
		posters:  posters,
		views:    views.NewRenderer(),
		sessions: sessions,
		gate:     utils.NewAdminGate(sessions),
		admin:    utils.AdminCredentials{Email: cfg.AdminEmail, Password: cfg.AdminPassword},
		auditor:  auditor,
	}
}

// registerRoutes sets up the public site and the admin area
func (s *server) registerRoutes(e *core.ServeEvent, limiter *utils.RateLimiter) {
	// Public pages
	e.Router.GET("/{$}", s.handleIndex)
	e.Router.GET("/register", s.handleRegisterForm)
	e.Router.GET("/success", s.handleSuccess)
	e.Router.GET("/events", s.handleEvents)
	e.Router.GET("/event/{id}", s.handleEvent)
	e.Router.GET("/posters/{key...}", s.handlePoster)
	e.Router.GET("/static/{path...}", s.handleStatic)

	// Public form submissions, rate limited per IP
	e.Router.POST("/register", s.handleRegister).BindFunc(limiter.Middleware("register"))
	e.Router.POST("/subscribe", s.handleSubscribe).BindFunc(limiter.Middleware("subscribe"))

	// Admin session
	e.Router.GET(utils.AdminLoginPath, s.handleLoginForm)
	e.Router.POST(utils.AdminLoginPath, s.handleLogin)
	e.Router.GET("/admin/logout", s.handleLogout)

	// Admin views (session gated)
	e.Router.GET(utils.AdminDashboardPath, s.gate.Wrap(s.handleDashboard))
	e.Router.GET("/dashboard-table", s.gate.Wrap(s.handleDashboardTable))
	e.Router.GET("/dashboard-events", s.gate.Wrap(s.handleDashboardEvents))
	e.Router.POST("/publish-event", s.gate.Wrap(s.handlePublishEvent))
}

// render pops pending flashes from the session and renders page inside the layout.
func (s *server) render(re *core.RequestEvent, status int, page, title string, data any, extra ...utils.Flash) error {
	session := s.sessions.Load(re.Request)
	flashes := session.PopFlashes()
	if len(flashes) > 0 {
		// write the session back so the flashes are shown only once
		if err := s.sessions.Save(re.Response, session); err != nil {
			return err
		}
	}

	return s.views.HTML(re, status, page, views.Page{
		Title:   title,
		Admin:   session.IsAdmin(),
		Flashes: append(flashes, extra...),
		Data:    data,
	})
}

// flashRedirect stores a flash in the session and redirects.
func (s *server) flashRedirect(re *core.RequestEvent, status int, url, category, message string) error {
	session := s.sessions.Load(re.Request)
	session.AddFlash(category, message)
	if err := s.sessions.Save(re.Response, session); err != nil {
		return err
	}
	return re.Redirect(status, url)
}

func (s *server) notFound(re *core.RequestEvent) error {
	return s.render(re, http.StatusNotFound, views.PageNotFound, "Page not found", nil)
}

package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/grtshw/event-registration/events"
	"github.com/grtshw/event-registration/signup"
	"github.com/grtshw/event-registration/store"
	"github.com/grtshw/event-registration/utils"
	"github.com/grtshw/event-registration/views"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/filesystem"
)

const (
	loginFailedMessage    = "Invalid email or password"
	eventPublishedMessage = "Event published successfully"
)

func (s *server) handleLoginForm(re *core.RequestEvent) error {
	if s.sessions.Load(re.Request).IsAdmin() {
		return re.Redirect(http.StatusFound, utils.AdminDashboardPath)
	}
	return s.render(re, http.StatusOK, views.PageLogin, "Admin login", views.LoginData{})
}

// handleLogin checks the submitted pair against the configured admin credentials
func (s *server) handleLogin(re *core.RequestEvent) error {
	email := re.Request.PostFormValue("email")
	password := re.Request.PostFormValue("password")

	if !s.admin.Match(email, password) {
		log.Printf("[Admin] Failed login attempt for %s", email)
		entry := utils.EntryFromRequest(re, "login_failed", "admin", "", "failure")
		entry.UserEmail = email
		s.auditor.Log(entry)

		return s.render(re, http.StatusOK, views.PageLogin, "Admin login", views.LoginData{Email: email},
			utils.Flash{Category: utils.FlashError, Message: loginFailedMessage})
	}

	session := s.sessions.Load(re.Request)
	session.Admin = true
	if err := s.sessions.Save(re.Response, session); err != nil {
		return err
	}

	log.Printf("[Admin] %s logged in", email)
	entry := utils.EntryFromRequest(re, "login", "admin", "", "success")
	entry.UserEmail = email
	s.auditor.Log(entry)

	return re.Redirect(http.StatusFound, utils.AdminDashboardPath)
}

// handleLogout clears the session marker unconditionally
func (s *server) handleLogout(re *core.RequestEvent) error {
	session := s.sessions.Load(re.Request)
	wasAdmin := session.IsAdmin()
	session.Admin = false
	if err := s.sessions.Save(re.Response, session); err != nil {
		return err
	}

	if wasAdmin {
		s.auditor.Log(utils.EntryFromRequest(re, "logout", "admin", "", "success"))
	}
	return re.Redirect(http.StatusFound, utils.AdminLoginPath)
}

func (s *server) handleDashboard(re *core.RequestEvent) error {
	ctx := re.Request.Context()

	var data views.DashboardData
	var err error
	if data.RegistrationCount, err = s.store.Count(ctx, utils.CollectionRegistrations); err != nil {
		return err
	}
	if data.SubscriberCount, err = s.store.Count(ctx, utils.CollectionSubscribers); err != nil {
		return err
	}
	if data.EventCount, err = s.events.Count(ctx); err != nil {
		return err
	}

	// Registrations carry no event reference, so they are listed without an event lookup.
	if data.RecentRegistrations, err = s.registrationRows(re, store.ListOptions{Limit: utils.DashboardRecentSize}); err != nil {
		return err
	}
	if data.RecentEvents, err = s.events.List(ctx, store.ListOptions{Limit: utils.DashboardRecentSize}); err != nil {
		return err
	}

	return s.render(re, http.StatusOK, views.PageDashboard, "Dashboard", data)
}

func (s *server) handleDashboardTable(re *core.RequestEvent) error {
	page := utils.ParsePage(re.Request)

	total, err := s.store.Count(re.Request.Context(), utils.CollectionRegistrations)
	if err != nil {
		return err
	}

	rows, err := s.registrationRows(re, store.ListOptions{
		Limit:  utils.DashboardPageSize,
		Offset: (page - 1) * utils.DashboardPageSize,
	})
	if err != nil {
		return err
	}

	totalPages := utils.TotalPages(total, utils.DashboardPageSize)
	if totalPages == 0 {
		totalPages = 1
	}

	return s.render(re, http.StatusOK, views.PageTable, "Registrations", views.TableData{
		Rows:       rows,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	})
}

func (s *server) registrationRows(re *core.RequestEvent, opts store.ListOptions) ([]views.RegistrationRow, error) {
	docs, err := s.store.List(re.Request.Context(), utils.CollectionRegistrations, opts)
	if err != nil {
		return nil, err
	}
	rows := make([]views.RegistrationRow, len(docs))
	for i, doc := range docs {
		rows[i] = views.RegistrationRow{ID: doc.ID(), Registration: signup.RegistrationFromDocument(doc)}
	}
	return rows, nil
}

func (s *server) handleDashboardEvents(re *core.RequestEvent) error {
	list, err := s.events.List(re.Request.Context(), store.ListOptions{})
	if err != nil {
		return err
	}
	return s.render(re, http.StatusOK, views.PageEventsAdmin, "Manage events", views.EventsAdminData{Events: list})
}

// handlePublishEvent creates an event from the multipart publish form
func (s *server) handlePublishEvent(re *core.RequestEvent) error {
	if err := re.Request.ParseMultipartForm(utils.MaxPosterFileSize + 1<<20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return utils.BadRequestResponse(re, "Invalid form data")
	}

	ev, err := events.ParseForm(re.Request.PostForm)
	if errors.Is(err, events.ErrInvalidDate) {
		return utils.BadRequestResponse(re, "Invalid event date")
	}
	if err != nil {
		return err
	}

	poster, err := posterFromRequest(re)
	if err != nil {
		return utils.BadRequestResponse(re, "Invalid poster upload")
	}

	published, err := s.events.Publish(re.Request.Context(), ev, poster)
	switch {
	case errors.Is(err, events.ErrPosterTooLarge):
		return utils.BadRequestResponse(re, fmt.Sprintf("Poster must be smaller than %dMB", utils.MaxPosterFileSize>>20))
	case errors.Is(err, events.ErrPosterType):
		return utils.BadRequestResponse(re, "Poster must be a JPG, PNG, GIF or WebP image")
	case err != nil:
		return err
	}

	entry := utils.EntryFromRequest(re, "event_published", utils.CollectionEvents, published.ID, "success")
	entry.Metadata = map[string]any{"name": published.Name, "date": published.DateString()}
	s.auditor.Log(entry)

	return s.flashRedirect(re, http.StatusSeeOther, "/dashboard-events", utils.FlashSuccess, eventPublishedMessage)
}

// posterFromRequest returns the uploaded event_poster, or nil when none was sent.
func posterFromRequest(re *core.RequestEvent) (*filesystem.File, error) {
	file, header, err := re.Request.FormFile("event_poster")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if header.Filename == "" || header.Size == 0 {
		return nil, nil
	}

	fileBytes, err := io.ReadAll(io.LimitReader(file, utils.MaxPosterFileSize+1))
	if err != nil {
		return nil, err
	}
	return filesystem.NewFileFromBytes(fileBytes, header.Filename)
}

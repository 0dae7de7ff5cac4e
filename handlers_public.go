package main

import (
	"errors"
	"net/http"

	"github.com/grtshw/event-registration/signup"
	"github.com/grtshw/event-registration/store"
	"github.com/grtshw/event-registration/utils"
	"github.com/grtshw/event-registration/views"
	"github.com/pocketbase/pocketbase/core"
)

func (s *server) handleIndex(re *core.RequestEvent) error {
	return s.render(re, http.StatusOK, views.PageIndex, "Event registration", nil)
}

func (s *server) handleRegisterForm(re *core.RequestEvent) error {
	return s.render(re, http.StatusOK, views.PageRegister, "Register", nil)
}

func (s *server) handleSuccess(re *core.RequestEvent) error {
	return s.render(re, http.StatusOK, views.PageSuccess, "Thank you", nil)
}

// handleRegister stores an event registration and sends the confirmation mail
func (s *server) handleRegister(re *core.RequestEvent) error {
	r := re.Request
	reg := signup.Registration{
		Fullname:       r.PostFormValue("fullname"),
		Email:          r.PostFormValue("email"),
		Phone:          r.PostFormValue("phone"),
		Gender:         r.PostFormValue("gender"),
		Profession:     r.PostFormValue("profession"),
		InstituteName:  r.PostFormValue("institute-name"),
		LinkedinLink:   r.PostFormValue("linkedin-link"),
		HeardAboutUs:   r.PostFormValue("heared-us"),
		Expectations:   r.PostFormValue("message"),
		JoinedWhatsapp: utils.FormBool(r.PostFormValue("ws-group")),
	}

	id, err := s.signup.Register(r.Context(), reg)
	if errors.Is(err, signup.ErrAlreadyRegistered) {
		return utils.BadRequestResponse(re, "Email already registered")
	}
	if err != nil {
		return err
	}

	if utils.WantsJSON(r) {
		return utils.SuccessResponse(re, "Registration successful", map[string]any{"id": id})
	}
	return re.Redirect(http.StatusSeeOther, "/success")
}

// handleSubscribe adds a newsletter subscriber
func (s *server) handleSubscribe(re *core.RequestEvent) error {
	email := re.Request.PostFormValue("newsletter-mail")

	_, err := s.signup.Subscribe(re.Request.Context(), email)
	switch {
	case errors.Is(err, signup.ErrEmailRequired):
		return utils.BadRequestResponse(re, "Email is required")
	case errors.Is(err, signup.ErrAlreadySubscribed):
		return utils.BadRequestResponse(re, "Email already subscribed")
	case err != nil:
		return err
	}

	return utils.SuccessResponse(re, "Subscribed successfully", nil)
}

func (s *server) handleEvents(re *core.RequestEvent) error {
	list, err := s.events.List(re.Request.Context(), store.ListOptions{})
	if err != nil {
		return err
	}
	return s.render(re, http.StatusOK, views.PageEvents, "Events", list)
}

func (s *server) handleEvent(re *core.RequestEvent) error {
	ev, err := s.events.Get(re.Request.Context(), re.Request.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		return s.notFound(re)
	}
	if err != nil {
		return err
	}
	return s.render(re, http.StatusOK, views.PageEvent, ev.Name, ev)
}

func (s *server) handlePoster(re *core.RequestEvent) error {
	if s.posters == nil {
		return s.notFound(re)
	}
	return s.posters.Serve(re, utils.PosterKeyPrefix+re.Request.PathValue("key"))
}

func (s *server) handleStatic(re *core.RequestEvent) error {
	return re.FileFS(views.Static(), re.Request.PathValue("path"))
}

// Package signup implements the event registration and newsletter
// subscription workflows: duplicate check, persist, notify.
package signup

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/grtshw/event-registration/notify"
	"github.com/grtshw/event-registration/store"
	"github.com/grtshw/event-registration/utils"
)

var (
	ErrEmailRequired     = errors.New("email is required")
	ErrAlreadyRegistered = errors.New("email already registered")
	ErrAlreadySubscribed = errors.New("email already subscribed")
)

// Confirmation mail subjects.
const (
	RegistrationSubject = "Registration Completed!"
	SubscriptionSubject = "Subscription Confirmed!"
)

// Notifier delivers one templated message. *notify.Sender implements it.
type Notifier interface {
	Send(ctx context.Context, recipient, subject, templateName string, vars map[string]any) notify.Delivery
}

// Guard checks a collection for an existing document with the same email.
// Matching is exact; case and whitespace are significant.
type Guard struct {
	store store.Store
}

// NewGuard creates a guard over s.
func NewGuard(s store.Store) *Guard {
	return &Guard{store: s}
}

// Exists reports whether collection already holds email.
func (g *Guard) Exists(ctx context.Context, collection, email string) (bool, error) {
	return g.store.Exists(ctx, collection, utils.FieldEmail, email)
}

// Registration is a submitted event registration form.
type Registration struct {
	Fullname       string
	Email          string
	Phone          string
	Gender         string
	Profession     string
	InstituteName  string
	LinkedinLink   string
	HeardAboutUs   string
	Expectations   string
	JoinedWhatsapp bool
}

// Document maps the registration onto its stored field names.
func (r Registration) Document() store.Document {
	return store.Document{
		utils.FieldFullname:       r.Fullname,
		utils.FieldEmail:          r.Email,
		utils.FieldPhone:          r.Phone,
		utils.FieldGender:         r.Gender,
		utils.FieldProfession:     r.Profession,
		utils.FieldInstituteName:  r.InstituteName,
		utils.FieldLinkedinLink:   r.LinkedinLink,
		utils.FieldHeardAboutUs:   r.HeardAboutUs,
		utils.FieldExpectations:   r.Expectations,
		utils.FieldJoinedWhatsapp: r.JoinedWhatsapp,
	}
}

// RegistrationFromDocument reads a stored registration back.
func RegistrationFromDocument(doc store.Document) Registration {
	return Registration{
		Fullname:       doc.GetString(utils.FieldFullname),
		Email:          doc.GetString(utils.FieldEmail),
		Phone:          doc.GetString(utils.FieldPhone),
		Gender:         doc.GetString(utils.FieldGender),
		Profession:     doc.GetString(utils.FieldProfession),
		InstituteName:  doc.GetString(utils.FieldInstituteName),
		LinkedinLink:   doc.GetString(utils.FieldLinkedinLink),
		HeardAboutUs:   doc.GetString(utils.FieldHeardAboutUs),
		Expectations:   doc.GetString(utils.FieldExpectations),
		JoinedWhatsapp: doc.GetBool(utils.FieldJoinedWhatsapp),
	}
}

// Service runs the signup workflows.
//
// The duplicate check and the insert are separate store calls, so two
// concurrent submissions of one email can both be stored.
type Service struct {
	guard    *Guard
	store    store.Store
	notifier Notifier
}

// NewService creates a workflow service persisting into s and notifying through n.
func NewService(s store.Store, n Notifier) *Service {
	return &Service{
		guard:    NewGuard(s),
		store:    s,
		notifier: n,
	}
}

// Register stores reg and sends the registration confirmation.
// It returns the new document id. Fields are stored as given.
func (s *Service) Register(ctx context.Context, reg Registration) (string, error) {
	exists, err := s.guard.Exists(ctx, utils.CollectionRegistrations, reg.Email)
	if err != nil {
		return "", fmt.Errorf("check registration: %w", err)
	}
	if exists {
		return "", ErrAlreadyRegistered
	}

	id, err := s.store.Insert(ctx, utils.CollectionRegistrations, reg.Document())
	if err != nil {
		return "", fmt.Errorf("store registration: %w", err)
	}
	log.Printf("[Register] Stored registration %s for %s", id, reg.Email)

	s.confirm(ctx, "[Register]", reg.Email, RegistrationSubject, notify.TemplateRegistration, map[string]any{
		"name": reg.Fullname,
	})
	return id, nil
}

// Subscribe stores email as a newsletter subscriber and sends the confirmation.
func (s *Service) Subscribe(ctx context.Context, email string) (string, error) {
	return s.subscribe(ctx, email, true)
}

// SubscribeQuietly stores email as a subscriber without sending a confirmation.
func (s *Service) SubscribeQuietly(ctx context.Context, email string) (string, error) {
	return s.subscribe(ctx, email, false)
}

func (s *Service) subscribe(ctx context.Context, email string, notifySubscriber bool) (string, error) {
	if email == "" {
		return "", ErrEmailRequired
	}

	exists, err := s.guard.Exists(ctx, utils.CollectionSubscribers, email)
	if err != nil {
		return "", fmt.Errorf("check subscriber: %w", err)
	}
	if exists {
		return "", ErrAlreadySubscribed
	}

	id, err := s.store.Insert(ctx, utils.CollectionSubscribers, store.Document{utils.FieldEmail: email})
	if err != nil {
		return "", fmt.Errorf("store subscriber: %w", err)
	}
	log.Printf("[Subscribe] Stored subscriber %s for %s", id, email)

	if notifySubscriber {
		s.confirm(ctx, "[Subscribe]", email, SubscriptionSubject, notify.TemplateSubscription, nil)
	}
	return id, nil
}

// confirm sends a confirmation mail. A failed delivery never fails the signup.
func (s *Service) confirm(ctx context.Context, tag, recipient, subject, templateName string, vars map[string]any) {
	d := s.notifier.Send(ctx, recipient, subject, templateName, vars)
	if d.Status == notify.Failed {
		log.Printf("%s Ignoring failed confirmation to %s: %v", tag, recipient, d.Reason)
	}
}

// Package notify renders confirmation emails and delivers them over SMTP.
package notify

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/grtshw/event-registration/utils"
	"github.com/pocketbase/pocketbase/tools/mailer"
	"github.com/pocketbase/pocketbase/tools/template"
)

// Template names understood by Send.
const (
	TemplateRegistration = "registration"
	TemplateSubscription = "subscription"
)

const (
	layoutFile   = "templates/email/layout.html"
	templatesDir = "templates/email/"

	defaultTimeout = 10 * time.Second
)

//go:embed templates/email/*.html
var templatesFS embed.FS

var (
	// ErrNoRecipient is the Failed reason for an empty recipient address.
	ErrNoRecipient = errors.New("recipient address is empty")
	// ErrTimeout is the Failed reason when the SMTP exchange did not finish in time.
	ErrTimeout = errors.New("mail delivery timed out")
)

// Status is the outcome of a single delivery attempt.
type Status int

const (
	Delivered Status = iota
	Failed
)

func (s Status) String() string {
	if s == Delivered {
		return "delivered"
	}
	return "failed"
}

// Delivery is the explicit result of Send. Reason is set only when Failed.
type Delivery struct {
	Status Status
	Reason error
}

// OK reports whether the message was handed to the relay.
func (d Delivery) OK() bool {
	return d.Status == Delivered
}

func failed(reason error) Delivery {
	return Delivery{Status: Failed, Reason: reason}
}

// MailClientFactory opens a fresh mail client per message.
// core.App satisfies it through its configured SMTP settings.
type MailClientFactory interface {
	NewMailClient() mailer.Mailer
}

// FactoryFunc adapts a function to MailClientFactory.
type FactoryFunc func() mailer.Mailer

// NewMailClient calls f().
func (f FactoryFunc) NewMailClient() mailer.Mailer { return f() }

// SMTPFactory returns a factory that dials the relay in cfg directly,
// without going through PocketBase settings.
func SMTPFactory(cfg utils.SMTPConfig) MailClientFactory {
	return FactoryFunc(func() mailer.Mailer {
		return &mailer.SMTPClient{
			Host:     cfg.Host,
			Port:     cfg.Port,
			Username: cfg.Username,
			Password: cfg.Password,
			TLS:      cfg.TLS,
		}
	})
}

// Sender formats and sends one message per call. Single attempt, no retries.
type Sender struct {
	clients   MailClientFactory
	from      mail.Address
	timeout   time.Duration
	templates fs.FS
	registry  *template.Registry
}

// NewSender creates a sender using the From identity and timeout in cfg.
func NewSender(clients MailClientFactory, cfg utils.SMTPConfig) *Sender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Sender{
		clients:   clients,
		from:      mail.Address{Address: cfg.SenderAddress, Name: cfg.SenderName},
		timeout:   timeout,
		templates: templatesFS,
		registry:  template.NewRegistry(),
	}
}

// Send renders templateName with vars inside the mail layout and delivers it to recipient.
func (s *Sender) Send(ctx context.Context, recipient, subject, templateName string, vars map[string]any) Delivery {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return failed(ErrNoRecipient)
	}

	html, err := s.Render(templateName, subject, vars)
	if err != nil {
		return failed(err)
	}

	msg := &mailer.Message{
		From:    s.from,
		To:      []mail.Address{{Address: recipient}},
		Subject: subject,
		HTML:    html,
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// The mailer has no context support; the buffered channel lets an
	// abandoned send finish without leaking a blocked goroutine.
	done := make(chan error, 1)
	go func() {
		done <- s.clients.NewMailClient().Send(msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			log.Printf("[Email] Failed to send %q to %s: %v", subject, recipient, err)
			return failed(err)
		}
	case <-ctx.Done():
		log.Printf("[Email] Timed out sending %q to %s after %s", subject, recipient, s.timeout)
		return failed(fmt.Errorf("%w: %v", ErrTimeout, ctx.Err()))
	}

	log.Printf("[Email] %q sent to %s", subject, recipient)
	return Delivery{Status: Delivered}
}

// Render returns the full HTML body for templateName.
func (s *Sender) Render(templateName, subject string, vars map[string]any) (string, error) {
	if templateName == "" || strings.ContainsAny(templateName, `/\.`) {
		return "", fmt.Errorf("invalid template name %q", templateName)
	}

	data := map[string]any{}
	for k, v := range vars {
		data[k] = v
	}
	data["subject"] = subject
	data["sender_name"] = s.from.Name

	html, err := s.registry.LoadFS(s.templates, layoutFile, templatesDir+templateName+".html").Render(data)
	if err != nil {
		return "", fmt.Errorf("render template %s: %w", templateName, err)
	}
	return html, nil
}

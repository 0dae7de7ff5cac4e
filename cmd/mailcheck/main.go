// mailcheck sends one confirmation email through the configured SMTP relay
// Run: go run ./cmd/mailcheck -to you@example.com
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/grtshw/event-registration/notify"
	"github.com/grtshw/event-registration/signup"
	"github.com/grtshw/event-registration/utils"
)

func main() {
	to := flag.String("to", "", "Recipient address (required)")
	template := flag.String("template", notify.TemplateRegistration, "Template to send: registration or subscription")
	name := flag.String("name", "Test Attendee", "Name used by the registration template")
	flag.Parse()

	if *to == "" {
		fmt.Println("Usage: go run ./cmd/mailcheck -to EMAIL [-template registration|subscription]")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg := utils.LoadSMTPConfig("../.env", ".env")
	if !cfg.Enabled() {
		log.Fatal("SMTP_HOST and SMTP_PASSWORD must be set in .env or environment")
	}

	subject, vars, err := message(*template, *name)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("Sending %q via %s:%d as %s", subject, cfg.Host, cfg.Port, cfg.SenderAddress)

	sender := notify.NewSender(notify.SMTPFactory(cfg), cfg)
	d := sender.Send(context.Background(), *to, subject, *template, vars)
	if !d.OK() {
		log.Fatalf("Delivery failed: %v", d.Reason)
	}

	log.Printf("Delivered to %s", *to)
}

// message returns the subject and variables the site uses for template.
func message(template, name string) (string, map[string]any, error) {
	switch template {
	case notify.TemplateRegistration:
		return signup.RegistrationSubject, map[string]any{"name": name}, nil
	case notify.TemplateSubscription:
		return signup.SubscriptionSubject, nil, nil
	}
	return "", nil, fmt.Errorf("unknown template %q", template)
}

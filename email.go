package main

import (
	"log"

	"github.com/grtshw/event-registration/utils"
	"github.com/pocketbase/pocketbase/core"
)

// configurePocketBaseSMTP copies the relay settings from cfg into the app
// settings so app.NewMailClient dials the configured relay.
func configurePocketBaseSMTP(app core.App, cfg utils.SMTPConfig) {
	if !cfg.Enabled() {
		log.Println("[SMTP] No SMTP_HOST/SMTP_PASSWORD configured, skipping SMTP setup")
		return
	}

	settings := app.Settings()

	// Check if already configured correctly
	if settings.SMTP.Enabled &&
		settings.SMTP.Host == cfg.Host &&
		settings.SMTP.Port == cfg.Port &&
		settings.SMTP.Username == cfg.Username &&
		settings.SMTP.Password == cfg.Password &&
		settings.SMTP.TLS == cfg.TLS &&
		settings.Meta.SenderAddress == cfg.SenderAddress &&
		settings.Meta.SenderName == cfg.SenderName {
		log.Println("[SMTP] Already configured correctly")
		return
	}

	settings.SMTP.Enabled = true
	settings.SMTP.Host = cfg.Host
	settings.SMTP.Port = cfg.Port
	settings.SMTP.Username = cfg.Username
	settings.SMTP.Password = cfg.Password
	settings.SMTP.TLS = cfg.TLS

	// Sender info
	settings.Meta.SenderName = cfg.SenderName
	settings.Meta.SenderAddress = cfg.SenderAddress

	if err := app.Save(settings); err != nil {
		log.Printf("[SMTP] Failed to save settings: %v", err)
	} else {
		log.Printf("[SMTP] Settings saved for %s:%d", cfg.Host, cfg.Port)
	}
}

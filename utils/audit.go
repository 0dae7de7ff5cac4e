package utils

import (
	"log"

	"github.com/pocketbase/pocketbase/core"
)

// AuditEntry represents an audit log entry
type AuditEntry struct {
	UserEmail    string
	Action       string // login, login_failed, logout, event_published
	ResourceType string
	ResourceID   string
	IPAddress    string
	UserAgent    string
	Metadata     map[string]any
	Status       string // success, failure
	ErrorMessage string
}

// Auditor records audit entries.
type Auditor interface {
	Log(entry AuditEntry)
}

// AuditorFunc adapts a function to the Auditor interface.
type AuditorFunc func(entry AuditEntry)

// Log calls f(entry).
func (f AuditorFunc) Log(entry AuditEntry) { f(entry) }

// NopAuditor discards every entry.
var NopAuditor Auditor = AuditorFunc(func(AuditEntry) {})

// AppAuditor writes entries to the audit_logs collection.
type AppAuditor struct {
	app core.App
}

// NewAppAuditor creates an auditor saving into app.
func NewAppAuditor(app core.App) *AppAuditor {
	return &AppAuditor{app: app}
}

// Log creates an audit log entry asynchronously to avoid blocking requests
func (a *AppAuditor) Log(entry AuditEntry) {
	go func() {
		if err := a.save(entry); err != nil {
			log.Printf("[Audit] Failed to save audit log: %v", err)
		}
	}()
}

func (a *AppAuditor) save(entry AuditEntry) error {
	collection, err := a.app.FindCachedCollectionByNameOrId(CollectionAuditLogs)
	if err != nil {
		return err
	}

	record := core.NewRecord(collection)
	// clipped to the audit_logs column limits; failed logins carry unchecked input
	record.Set("user_email", clip(entry.UserEmail, 320))
	record.Set("action", entry.Action)
	record.Set("resource_type", clip(entry.ResourceType, 50))
	record.Set("resource_id", clip(entry.ResourceID, 50))
	record.Set("ip_address", clip(entry.IPAddress, 45))
	record.Set("user_agent", clip(entry.UserAgent, 500))
	record.Set("metadata", entry.Metadata)
	record.Set("status", entry.Status)
	record.Set("error_message", clip(entry.ErrorMessage, 1000))

	return a.app.Save(record)
}

// clip shortens s to at most n characters.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// EntryFromRequest fills the request-derived parts of an audit entry
func EntryFromRequest(re *core.RequestEvent, action, resourceType, resourceID, status string) AuditEntry {
	ip := re.Request.RemoteAddr
	if re.App != nil {
		ip = re.RealIP()
	}

	return AuditEntry{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ip,
		UserAgent:    re.Request.UserAgent(),
		Status:       status,
	}
}

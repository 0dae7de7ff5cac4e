package migrations

import (
	"log"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		return EnsureAuditLogs(app)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("audit_logs")
		if err == nil {
			return app.Delete(collection)
		}
		return nil
	})
}

// EnsureAuditLogs creates the audit_logs collection when missing.
func EnsureAuditLogs(app core.App) error {
	existing, _ := app.FindCollectionByNameOrId("audit_logs")
	if existing != nil {
		log.Println("[Migration] audit_logs collection already exists")
		return nil
	}

	collection := core.NewBaseCollection("audit_logs")
	collection.Fields.Add(
		&core.TextField{
			Id:   "audit_user_email",
			Name: "user_email",
			Max:  320,
		},
		&core.SelectField{
			Id:        "audit_action",
			Name:      "action",
			Required:  true,
			MaxSelect: 1,
			Values:    []string{"login", "login_failed", "logout", "event_published"},
		},
		&core.TextField{
			Id:       "audit_resource_type",
			Name:     "resource_type",
			Required: true,
			Max:      50,
		},
		&core.TextField{
			Id:   "audit_resource_id",
			Name: "resource_id",
			Max:  50,
		},
		&core.TextField{
			Id:   "audit_ip_address",
			Name: "ip_address",
			Max:  45, // IPv6 max length
		},
		&core.TextField{
			Id:   "audit_user_agent",
			Name: "user_agent",
			Max:  500,
		},
		&core.JSONField{
			Id:      "audit_metadata",
			Name:    "metadata",
			MaxSize: 10000,
		},
		&core.SelectField{
			Id:        "audit_status",
			Name:      "status",
			Required:  true,
			MaxSelect: 1,
			Values:    []string{"success", "failure"},
		},
		&core.TextField{
			Id:   "audit_error_message",
			Name: "error_message",
			Max:  1000,
		},
		&core.AutodateField{
			Id:       "audit_created",
			Name:     "created",
			OnCreate: true,
		},
	)

	collection.Indexes = []string{
		"CREATE INDEX idx_audit_action ON audit_logs (action)",
		"CREATE INDEX idx_audit_created ON audit_logs (created)",
		"CREATE INDEX idx_audit_ip ON audit_logs (ip_address)",
	}

	// No API rules: only superusers and server code can read or write.
	if err := app.Save(collection); err != nil {
		return err
	}

	log.Println("[Migration] Created audit_logs collection")
	return nil
}

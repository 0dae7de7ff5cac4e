package migrations

import (
	"log"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

// unboundedText is the largest Max PocketBase accepts for a text field.
// A zero Max would fall back to a 5000 character limit, and submissions
// are stored as given whatever their length.
const unboundedText = 1<<53 - 1

func init() {
	m.Register(func(app core.App) error {
		return EnsureSiteCollections(app)
	}, func(app core.App) error {
		for _, name := range []string{"events", "subscribers", "registrations"} {
			if collection, err := app.FindCollectionByNameOrId(name); err == nil {
				if err := app.Delete(collection); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// EnsureSiteCollections creates the registrations, subscribers and events
// collections when missing. It is safe to call more than once.
//
// Email fields carry a plain lookup index. Uniqueness is checked by the
// signup workflow before insert, not by the database.
func EnsureSiteCollections(app core.App) error {
	if err := ensureCollection(app, "registrations", registrationsCollection); err != nil {
		return err
	}
	if err := ensureCollection(app, "subscribers", subscribersCollection); err != nil {
		return err
	}
	return ensureCollection(app, "events", eventsCollection)
}

func ensureCollection(app core.App, name string, build func() *core.Collection) error {
	existing, _ := app.FindCollectionByNameOrId(name)
	if existing != nil {
		log.Printf("[Migration] %s collection already exists", name)
		return nil
	}

	if err := app.Save(build()); err != nil {
		return err
	}
	log.Printf("[Migration] Created %s collection", name)
	return nil
}

func registrationsCollection() *core.Collection {
	collection := core.NewBaseCollection("registrations")
	collection.Fields.Add(
		&core.TextField{Id: "reg_fullname", Name: "fullname", Max: unboundedText},
		// Plain text, not EmailField: submissions are stored as given.
		&core.TextField{Id: "reg_email", Name: "email", Max: unboundedText},
		&core.TextField{Id: "reg_phone", Name: "phone", Max: unboundedText},
		&core.TextField{Id: "reg_gender", Name: "gender", Max: unboundedText},
		&core.TextField{Id: "reg_profession", Name: "profession", Max: unboundedText},
		&core.TextField{Id: "reg_institute_name", Name: "institute_name", Max: unboundedText},
		&core.TextField{Id: "reg_linkedin_link", Name: "linkedin_link", Max: unboundedText},
		&core.TextField{Id: "reg_heard_about_us", Name: "heard_about_us", Max: unboundedText},
		&core.TextField{Id: "reg_expectations", Name: "expectations", Max: unboundedText},
		&core.BoolField{Id: "reg_joined_whatsapp", Name: "joined_whatsapp"},
		&core.AutodateField{Id: "reg_created", Name: "created", OnCreate: true},
	)
	collection.Indexes = []string{
		"CREATE INDEX idx_registrations_email ON registrations (email)",
		"CREATE INDEX idx_registrations_created ON registrations (created)",
	}
	return collection
}

func subscribersCollection() *core.Collection {
	collection := core.NewBaseCollection("subscribers")
	collection.Fields.Add(
		&core.TextField{Id: "sub_email", Name: "email", Max: unboundedText},
		&core.AutodateField{Id: "sub_created", Name: "created", OnCreate: true},
	)
	collection.Indexes = []string{
		"CREATE INDEX idx_subscribers_email ON subscribers (email)",
	}
	return collection
}

func eventsCollection() *core.Collection {
	collection := core.NewBaseCollection("events")
	collection.Fields.Add(
		&core.TextField{Id: "evt_name", Name: "name", Max: unboundedText},
		&core.DateField{Id: "evt_date", Name: "date"},
		&core.TextField{Id: "evt_time", Name: "time", Max: unboundedText},
		&core.TextField{Id: "evt_event_type", Name: "event_type", Max: unboundedText},
		&core.NumberField{Id: "evt_capacity", Name: "capacity", OnlyInt: true},
		&core.TextField{Id: "evt_location", Name: "location", Max: unboundedText},
		&core.TextField{Id: "evt_registration_deadline", Name: "registration_deadline", Max: unboundedText},
		&core.TextField{Id: "evt_registration_link", Name: "registration_link", Max: unboundedText},
		&core.NumberField{Id: "evt_fee", Name: "fee"},
		&core.TextField{Id: "evt_description", Name: "description", Max: unboundedText},
		&core.TextField{Id: "evt_additional_info", Name: "additional_info", Max: unboundedText},
		&core.TextField{Id: "evt_poster_image", Name: "poster_image", Max: unboundedText},
		&core.DateField{Id: "evt_created_at", Name: "created_at"},
		&core.AutodateField{Id: "evt_created", Name: "created", OnCreate: true},
	)
	collection.Indexes = []string{
		"CREATE INDEX idx_events_created ON events (created)",
	}
	return collection
}

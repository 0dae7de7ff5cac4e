// Package events parses, publishes and reads admin-published events.
package events

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/grtshw/event-registration/store"
	"github.com/grtshw/event-registration/utils"
	"github.com/pocketbase/pocketbase/tools/filesystem"
)

// DateLayout is the format of the event_date form field.
const DateLayout = "2006-01-02"

var (
	ErrInvalidDate    = errors.New("invalid event date")
	ErrPosterTooLarge = errors.New("poster exceeds maximum size")
	ErrPosterType     = errors.New("poster must be an image")
)

// Event is a published event.
type Event struct {
	ID                   string
	Name                 string
	Date                 time.Time
	Time                 string
	EventType            string
	Capacity             int
	Location             string
	RegistrationDeadline string
	RegistrationLink     string
	Fee                  float64
	Description          string
	AdditionalInfo       string
	PosterImage          string
	CreatedAt            time.Time
}

// HasPoster reports whether an uploaded poster is attached.
func (e Event) HasPoster() bool {
	return strings.HasPrefix(e.PosterImage, utils.PosterKeyPrefix)
}

// PosterURL returns the public path of the uploaded poster, or "" for the placeholder.
func (e Event) PosterURL() string {
	if !e.HasPoster() {
		return ""
	}
	return "/" + e.PosterImage
}

// DateString formats Date the way it is submitted.
func (e Event) DateString() string {
	if e.Date.IsZero() {
		return ""
	}
	return e.Date.Format(DateLayout)
}

// IsFree reports whether no fee is charged.
func (e Event) IsFree() bool {
	return e.Fee == 0
}

// Document maps the event onto its stored field names.
func (e Event) Document() store.Document {
	return store.Document{
		utils.FieldName:                 e.Name,
		utils.FieldDate:                 e.Date,
		utils.FieldTime:                 e.Time,
		utils.FieldEventType:            e.EventType,
		utils.FieldCapacity:             e.Capacity,
		utils.FieldLocation:             e.Location,
		utils.FieldRegistrationDeadline: e.RegistrationDeadline,
		utils.FieldRegistrationLink:     e.RegistrationLink,
		utils.FieldFee:                  e.Fee,
		utils.FieldDescription:          e.Description,
		utils.FieldAdditionalInfo:       e.AdditionalInfo,
		utils.FieldPosterImage:          e.PosterImage,
		utils.FieldCreatedAt:            e.CreatedAt,
	}
}

// FromDocument reads an event back from the store.
func FromDocument(doc store.Document) Event {
	return Event{
		ID:                   doc.ID(),
		Name:                 doc.GetString(utils.FieldName),
		Date:                 doc.GetTime(utils.FieldDate),
		Time:                 doc.GetString(utils.FieldTime),
		EventType:            doc.GetString(utils.FieldEventType),
		Capacity:             int(doc.GetFloat(utils.FieldCapacity)),
		Location:             doc.GetString(utils.FieldLocation),
		RegistrationDeadline: doc.GetString(utils.FieldRegistrationDeadline),
		RegistrationLink:     doc.GetString(utils.FieldRegistrationLink),
		Fee:                  doc.GetFloat(utils.FieldFee),
		Description:          doc.GetString(utils.FieldDescription),
		AdditionalInfo:       doc.GetString(utils.FieldAdditionalInfo),
		PosterImage:          doc.GetString(utils.FieldPosterImage),
		CreatedAt:            doc.GetTime(utils.FieldCreatedAt),
	}
}

// ParseForm reads the publish form fields. Only event_date is validated;
// fee and capacity fall back to 0 when missing or unparsable.
func ParseForm(form url.Values) (Event, error) {
	date, err := time.Parse(DateLayout, strings.TrimSpace(form.Get("event_date")))
	if err != nil {
		return Event{}, fmt.Errorf("%w: %q", ErrInvalidDate, form.Get("event_date"))
	}

	return Event{
		Name:                 form.Get("event_name"),
		Date:                 date,
		Time:                 form.Get("event_time"),
		EventType:            form.Get("event_type"),
		Capacity:             parseCapacity(form.Get("event_capacity")),
		Location:             form.Get("event_location"),
		RegistrationDeadline: form.Get("registration_deadline"),
		RegistrationLink:     form.Get("registration_link"),
		Fee:                  parseFee(form.Get("event_fee")),
		Description:          form.Get("event_description"),
		AdditionalInfo:       form.Get("additional_info"),
	}, nil
}

func parseFee(value string) float64 {
	fee, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || fee < 0 || math.IsNaN(fee) || math.IsInf(fee, 0) {
		return 0
	}
	return fee
}

func parseCapacity(value string) int {
	capacity, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || capacity < 0 {
		return 0
	}
	return capacity
}

// Service publishes and reads events.
type Service struct {
	store   store.Store
	posters PosterStorage
	now     func() time.Time
}

// NewService creates an event service. posters may be nil when uploads are unavailable.
func NewService(s store.Store, posters PosterStorage) *Service {
	return &Service{
		store:   s,
		posters: posters,
		now:     time.Now,
	}
}

// Publish stores the poster (if any) and then the event. Events are immutable once published.
func (s *Service) Publish(ctx context.Context, ev Event, poster *filesystem.File) (Event, error) {
	ev.PosterImage = utils.DefaultPosterImage
	if poster != nil {
		if err := validatePoster(poster); err != nil {
			return Event{}, err
		}
		if s.posters == nil {
			return Event{}, errors.New("poster storage is not configured")
		}
		key, err := s.posters.Save(ctx, poster)
		if err != nil {
			return Event{}, fmt.Errorf("save poster: %w", err)
		}
		ev.PosterImage = key
	}
	ev.CreatedAt = s.now().UTC()

	id, err := s.store.Insert(ctx, utils.CollectionEvents, ev.Document())
	if err != nil {
		return Event{}, fmt.Errorf("store event: %w", err)
	}
	ev.ID = id

	log.Printf("[Events] Published event %s (%s) on %s", id, ev.Name, ev.DateString())
	return ev, nil
}

// List returns events newest first.
func (s *Service) List(ctx context.Context, opts store.ListOptions) ([]Event, error) {
	docs, err := s.store.List(ctx, utils.CollectionEvents, opts)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	out := make([]Event, len(docs))
	for i, doc := range docs {
		out[i] = FromDocument(doc)
	}
	return out, nil
}

// Get returns one event, or an error wrapping store.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (Event, error) {
	doc, err := s.store.Find(ctx, utils.CollectionEvents, id)
	if err != nil {
		return Event{}, err
	}
	return FromDocument(doc), nil
}

// Count returns the number of published events.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.store.Count(ctx, utils.CollectionEvents)
}

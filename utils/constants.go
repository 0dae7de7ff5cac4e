package utils

// Collection names
const (
	CollectionRegistrations = "registrations"
	CollectionSubscribers   = "subscribers"
	CollectionEvents        = "events"
	CollectionAuditLogs     = "audit_logs"
)

// Registration field names
const (
	FieldFullname       = "fullname"
	FieldEmail          = "email"
	FieldPhone          = "phone"
	FieldGender         = "gender"
	FieldProfession     = "profession"
	FieldInstituteName  = "institute_name"
	FieldLinkedinLink   = "linkedin_link"
	FieldHeardAboutUs   = "heard_about_us"
	FieldExpectations   = "expectations"
	FieldJoinedWhatsapp = "joined_whatsapp"
)

// Event field names
const (
	FieldName                 = "name"
	FieldDate                 = "date"
	FieldTime                 = "time"
	FieldEventType            = "event_type"
	FieldCapacity             = "capacity"
	FieldLocation             = "location"
	FieldRegistrationDeadline = "registration_deadline"
	FieldRegistrationLink     = "registration_link"
	FieldFee                  = "fee"
	FieldDescription          = "description"
	FieldAdditionalInfo       = "additional_info"
	FieldPosterImage          = "poster_image"
	FieldCreatedAt            = "created_at"
)

// DefaultPosterImage is stored when an event is published without a poster.
const DefaultPosterImage = "default-poster.png"

// PosterKeyPrefix namespaces uploaded posters inside the app filesystem.
const PosterKeyPrefix = "posters/"

// File size limits (in bytes)
const (
	MaxPosterFileSize = 5242880 // 5MB
)

// Pagination
const (
	DashboardPageSize   = 20
	DashboardRecentSize = 5
)

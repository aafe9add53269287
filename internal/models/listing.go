package models

import (
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Listing types. Unknown values are never stored; queries treat them as
// literal filters that match nothing.
const (
	TypeJob       = "job"
	TypeResult    = "result"
	TypeAdmitCard = "admit-card"
)

// CountRow is one bucket of a grouped-count aggregation, keyed by the
// grouped field value.
type CountRow struct {
	Key   string `json:"key"   bson:"_id"`
	Count int64  `json:"count" bson:"count"`
}

// Source records where a listing was found. URL is unique among listings
// that have one (partial index), so re-ingesting the same notification
// fails loudly instead of duplicating.
type Source struct {
	Name string `json:"name,omitempty" bson:"name,omitempty"`
	URL  string `json:"url,omitempty"  bson:"url,omitempty"`
}

// Listing is a job/result/admit-card document stored in MongoDB.
type Listing struct {
	ID               primitive.ObjectID `json:"id"                         bson:"_id,omitempty"`
	Type             string             `json:"type"                       bson:"type"`
	Title            string             `json:"title"                      bson:"title"`
	Slug             string             `json:"slug"                       bson:"slug"`
	Department       string             `json:"department"                 bson:"department"`
	State            string             `json:"state"                      bson:"state"`
	Qualification    string             `json:"qualification"              bson:"qualification"`
	Eligibility      string             `json:"eligibility,omitempty"      bson:"eligibility,omitempty"`
	AgeLimit         string             `json:"ageLimit,omitempty"         bson:"ageLimit,omitempty"`
	Vacancies        string             `json:"vacancies,omitempty"        bson:"vacancies,omitempty"`
	Salary           string             `json:"salary,omitempty"           bson:"salary,omitempty"`
	Fees             string             `json:"fees,omitempty"             bson:"fees,omitempty"`
	SelectionProcess string             `json:"selectionProcess,omitempty" bson:"selectionProcess,omitempty"`
	StartDate        *time.Time         `json:"startDate,omitempty"        bson:"startDate,omitempty"`
	LastDate         *time.Time         `json:"lastDate,omitempty"         bson:"lastDate,omitempty"`
	ApplyLink        string             `json:"applyLink"                  bson:"applyLink"`
	NotificationPDF  string             `json:"notificationPDF,omitempty"  bson:"notificationPDF,omitempty"`
	Source           *Source            `json:"source,omitempty"           bson:"source,omitempty"`
	IsExpired        bool               `json:"isExpired"                  bson:"isExpired"`
	CreatedAt        time.Time          `json:"createdAt"                  bson:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"                  bson:"updatedAt"`
}

// CreateListingRequest is the JSON body for POST /api/jobs.
type CreateListingRequest struct {
	Type             string     `json:"type"`
	Title            string     `json:"title"`
	Department       string     `json:"department"`
	State            string     `json:"state"`
	Qualification    string     `json:"qualification"`
	Eligibility      string     `json:"eligibility"`
	AgeLimit         string     `json:"ageLimit"`
	Vacancies        string     `json:"vacancies"`
	Salary           string     `json:"salary"`
	Fees             string     `json:"fees"`
	SelectionProcess string     `json:"selectionProcess"`
	StartDate        *time.Time `json:"startDate"`
	LastDate         *time.Time `json:"lastDate"`
	ApplyLink        string     `json:"applyLink"`
	NotificationPDF  string     `json:"notificationPDF"`
	Source           *Source    `json:"source"`
	IsExpired        bool       `json:"isExpired"`
}

// Validate checks required fields before anything touches the store.
// Returns nil when the request is valid.
func (r *CreateListingRequest) Validate() *ValidationError {
	fields := map[string]string{}

	if r.Type == "" {
		r.Type = TypeJob
	}
	switch r.Type {
	case TypeJob, TypeResult, TypeAdmitCard:
	default:
		fields["type"] = "must be one of job, result, admit-card"
	}

	requireNonBlank(fields, "title", r.Title)
	requireNonBlank(fields, "department", r.Department)
	requireNonBlank(fields, "state", r.State)
	requireNonBlank(fields, "qualification", r.Qualification)

	if strings.TrimSpace(r.ApplyLink) == "" {
		fields["applyLink"] = "is required"
	} else if !isURL(r.ApplyLink) {
		fields["applyLink"] = "must be a valid http(s) URL"
	}
	if r.NotificationPDF != "" && !isURL(r.NotificationPDF) {
		fields["notificationPDF"] = "must be a valid http(s) URL"
	}
	if r.Source != nil && r.Source.URL != "" && !isURL(r.Source.URL) {
		fields["source.url"] = "must be a valid http(s) URL"
	}

	if len(fields) > 0 {
		return NewValidationError(fields)
	}
	return nil
}

// UpdateListingRequest is the JSON body for PUT /api/jobs/{id}. Nil
// pointers leave the field untouched; slug is immutable and not listed.
type UpdateListingRequest struct {
	Title            *string    `json:"title"`
	Department       *string    `json:"department"`
	State            *string    `json:"state"`
	Qualification    *string    `json:"qualification"`
	Eligibility      *string    `json:"eligibility"`
	AgeLimit         *string    `json:"ageLimit"`
	Vacancies        *string    `json:"vacancies"`
	Salary           *string    `json:"salary"`
	Fees             *string    `json:"fees"`
	SelectionProcess *string    `json:"selectionProcess"`
	StartDate        *time.Time `json:"startDate"`
	LastDate         *time.Time `json:"lastDate"`
	ApplyLink        *string    `json:"applyLink"`
	NotificationPDF  *string    `json:"notificationPDF"`
	Source           *Source    `json:"source"`
	IsExpired        *bool      `json:"isExpired"`
}

// Validate rejects updates that would blank out a required field.
func (r *UpdateListingRequest) Validate() *ValidationError {
	fields := map[string]string{}

	for name, v := range map[string]*string{
		"title":         r.Title,
		"department":    r.Department,
		"state":         r.State,
		"qualification": r.Qualification,
	} {
		if v != nil && strings.TrimSpace(*v) == "" {
			fields[name] = "cannot be blank"
		}
	}
	if r.ApplyLink != nil && !isURL(*r.ApplyLink) {
		fields["applyLink"] = "must be a valid http(s) URL"
	}

	if len(fields) > 0 {
		return NewValidationError(fields)
	}
	return nil
}

func requireNonBlank(fields map[string]string, name, value string) {
	if strings.TrimSpace(value) == "" {
		fields[name] = "is required"
	}
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

package listing

import (
	"context"
	"log/slog"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vacancydesk/backend/internal/metrics"
	"github.com/vacancydesk/backend/internal/models"
)

// Store defines the interface for listing persistence.
type Store interface {
	Insert(ctx context.Context, doc *models.Listing) (string, error)
	FindPage(ctx context.Context, filter bson.M, page, limit int64) ([]models.Listing, int64, error)
	FindLatest(ctx context.Context, filter bson.M, limit int64) ([]models.Listing, error)
	FindBySlug(ctx context.Context, slug string) (*models.Listing, error)
	FindByID(ctx context.Context, id string) (*models.Listing, error)
	Update(ctx context.Context, id string, set bson.M) error
	Delete(ctx context.Context, id string) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	Aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]models.CountRow, error)
	StatsByType(ctx context.Context) (map[string]int64, error)
}

// Service orchestrates listing writes: slug assignment, persistence, and
// partial updates. Reads go straight from the handler to the store.
type Service struct {
	store     Store
	collector *metrics.Collector
}

func NewService(store Store, collector *metrics.Collector) *Service {
	return &Service{store: store, collector: collector}
}

// Create assigns a unique slug and inserts the listing. The request must
// already be validated. The slug probe and the insert are not atomic;
// the unique index turns a racing duplicate into models.ErrConflict.
func (s *Service) Create(ctx context.Context, req *models.CreateListingRequest) (*models.Listing, error) {
	slug, err := AssignSlug(ctx, s.store, req.Title)
	if err != nil {
		return nil, err
	}

	doc := &models.Listing{
		Type:             req.Type,
		Title:            strings.TrimSpace(req.Title),
		Slug:             slug,
		Department:       strings.TrimSpace(req.Department),
		State:            strings.TrimSpace(req.State),
		Qualification:    strings.TrimSpace(req.Qualification),
		Eligibility:      req.Eligibility,
		AgeLimit:         req.AgeLimit,
		Vacancies:        req.Vacancies,
		Salary:           req.Salary,
		Fees:             req.Fees,
		SelectionProcess: req.SelectionProcess,
		StartDate:        req.StartDate,
		LastDate:         req.LastDate,
		ApplyLink:        req.ApplyLink,
		NotificationPDF:  req.NotificationPDF,
		Source:           req.Source,
		IsExpired:        req.IsExpired,
	}

	id, err := s.store.Insert(ctx, doc)
	if err != nil {
		return nil, err
	}

	s.collector.RecordListingCreated()
	slog.Info("listing created",
		slog.String("id", id),
		slog.String("slug", slug),
		slog.String("type", doc.Type),
	)

	return doc, nil
}

// Update applies the non-nil fields of the request to one listing. The
// slug never changes after assignment.
func (s *Service) Update(ctx context.Context, id string, req *models.UpdateListingRequest) error {
	set := bson.M{}

	for field, v := range map[string]*string{
		"title":            req.Title,
		"department":       req.Department,
		"state":            req.State,
		"qualification":    req.Qualification,
		"eligibility":      req.Eligibility,
		"ageLimit":         req.AgeLimit,
		"vacancies":        req.Vacancies,
		"salary":           req.Salary,
		"fees":             req.Fees,
		"selectionProcess": req.SelectionProcess,
		"applyLink":        req.ApplyLink,
		"notificationPDF":  req.NotificationPDF,
	} {
		if v != nil {
			set[field] = *v
		}
	}
	if req.StartDate != nil {
		set["startDate"] = *req.StartDate
	}
	if req.LastDate != nil {
		set["lastDate"] = *req.LastDate
	}
	if req.Source != nil {
		set["source"] = req.Source
	}
	if req.IsExpired != nil {
		set["isExpired"] = *req.IsExpired
	}

	if len(set) == 0 {
		return models.NewValidationError(map[string]string{"body": "no fields to update"})
	}
	return s.store.Update(ctx, id, set)
}

// Delete hard-deletes one listing.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, id)
	if err == nil {
		slog.Info("listing deleted", slog.String("id", id))
	}
	return err
}

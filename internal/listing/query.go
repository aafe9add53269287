package listing

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vacancydesk/backend/internal/models"
)

// Pagination bounds. Anything the client sends is clamped into these.
const (
	DefaultLimit = 20
	MaxLimit     = 50
)

// ListQuery is a validated filter + paging spec built from request
// parameters. Zero values never reach the store: Page is ≥1 and Limit is
// in [1, MaxLimit] after parsing.
type ListQuery struct {
	Type           string
	Q              string
	State          string
	Qualification  string
	Department     string
	IncludeExpired bool
	Page           int64
	Limit          int64
}

// ParseListQuery translates URL parameters into a ListQuery. Unknown
// type values pass through as literal filters that match nothing; the
// endpoint stays permissive.
func ParseListQuery(values url.Values) ListQuery {
	q := ListQuery{
		Type:          values.Get("type"),
		Q:             values.Get("q"),
		State:         values.Get("state"),
		Qualification: values.Get("qualification"),
		Department:    values.Get("department"),
		Page:          parsePage(values.Get("page")),
		Limit:         parseLimit(values.Get("limit")),
	}
	if q.Type == "" {
		q.Type = models.TypeJob
	}
	switch values.Get("includeExpired") {
	case "1", "true", "yes":
		q.IncludeExpired = true
	}
	return q
}

// Filter builds the Mongo filter document. Equality filters apply only
// when non-blank after trimming; the free-text term is escaped so the
// regex engine treats it literally.
func (q ListQuery) Filter() bson.M {
	filter := bson.M{"type": q.Type}
	if !q.IncludeExpired {
		filter["isExpired"] = false
	}

	for field, value := range map[string]string{
		"state":         q.State,
		"qualification": q.Qualification,
		"department":    q.Department,
	} {
		if v := strings.TrimSpace(value); v != "" {
			filter[field] = v
		}
	}

	if term := strings.TrimSpace(q.Q); term != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"department": re},
			bson.M{"state": re},
			bson.M{"qualification": re},
		}
	}
	return filter
}

// TotalPages computes max(ceil(total/limit), 1).
func TotalPages(total, limit int64) int64 {
	pages := (total + limit - 1) / limit
	if pages < 1 {
		return 1
	}
	return pages
}

// CountFields is the whitelist of groupable fields for the counts
// endpoints.
var CountFields = map[string]bool{
	"state":         true,
	"qualification": true,
	"department":    true,
}

// CountsPipeline groups non-expired listings of one type by field and
// orders buckets by descending count, then ascending key so ties break
// deterministically.
func CountsPipeline(field, listingType string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"type": listingType, "isExpired": false}}},
		{{Key: "$group", Value: bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
}

func parsePage(raw string) int64 {
	page, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func parseLimit(raw string) int64 {
	if raw == "" {
		return DefaultLimit
	}
	limit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return DefaultLimit
	}
	if limit < 1 {
		return 1
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// ParseLatestLimit clamps the /latest limit into [1, MaxLimit] with a
// default of 10.
func ParseLatestLimit(raw string) int64 {
	if raw == "" {
		return 10
	}
	limit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 10
	}
	if limit < 1 {
		return 1
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

package mirror

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/ModularHallway100/harmony-backend/internal/domain/artist"
	apperrors "github.com/ModularHallway100/harmony-backend/internal/pkg/errors"
)

const (
	DefaultSearchLimit  int64 = 20
	DefaultPopularLimit int64 = 10
)

type SearchFilters struct {
	Query         string `form:"q" json:"query"`
	OwnerID       string `form:"ownerId" json:"ownerId"`
	VisualStyle   string `form:"visualStyle" json:"visualStyle"`
	SpeakingStyle string `form:"speakingStyle" json:"speakingStyle"`
	Genre         string `form:"genre" json:"genre"`
}

type SearchOptions struct {
	SortBy    string `form:"sortBy" json:"sortBy"`
	SortOrder string `form:"sortOrder" json:"sortOrder"`
	Skip      int64  `form:"skip" json:"skip"`
	Limit     int64  `form:"limit" json:"limit"`
}

// sortable maps accepted sortBy values onto document paths.
var sortable = map[string]string{
	"createdAt":      artist.DocFieldCreatedAt,
	"updatedAt":      artist.DocFieldUpdatedAt,
	"name":           artist.DocFieldName,
	"engagementRate": artist.DocFieldEngagementRate,
	"plays":          artist.DocFieldPlays,
}

// BuildSearchFilter combines the optional text clause with equality
// filters. Empty filters match every document.
func BuildSearchFilter(f SearchFilters) bson.D {
	filter := bson.D{}
	if q := strings.TrimSpace(f.Query); q != "" {
		filter = append(filter, bson.E{Key: "$text", Value: bson.D{{Key: "$search", Value: q}}})
	}
	if v := strings.TrimSpace(f.OwnerID); v != "" {
		filter = append(filter, bson.E{Key: artist.DocFieldOwnerID, Value: v})
	}
	if v := strings.TrimSpace(f.VisualStyle); v != "" {
		filter = append(filter, bson.E{Key: artist.DocFieldVisualStyle, Value: v})
	}
	if v := strings.TrimSpace(f.SpeakingStyle); v != "" {
		filter = append(filter, bson.E{Key: artist.DocFieldSpeakingStyle, Value: v})
	}
	if v := strings.TrimSpace(f.Genre); v != "" {
		// Equality on an array field matches membership.
		filter = append(filter, bson.E{Key: artist.DocFieldGenres, Value: v})
	}
	return filter
}

// BuildSort resolves sortBy/sortOrder against the whitelist, defaulting to
// newest first. Unknown fields fall back to created_at.
func BuildSort(opts SearchOptions) bson.D {
	field, ok := sortable[strings.TrimSpace(opts.SortBy)]
	if !ok {
		field = artist.DocFieldCreatedAt
	}
	dir := -1
	if strings.EqualFold(strings.TrimSpace(opts.SortOrder), "asc") {
		dir = 1
	}
	sort := bson.D{{Key: field, Value: dir}}
	if field != artist.DocFieldCreatedAt {
		sort = append(sort, bson.E{Key: artist.DocFieldCreatedAt, Value: -1})
	}
	return sort
}

// Paginate computes the 1-based page and page count. limit must be
// positive; there is no meaningful page size otherwise.
func Paginate(total, skip, limit int64) (page, totalPages int64, err error) {
	if limit <= 0 {
		return 0, 0, apperrors.New(apperrors.KindInvalidArgument, "Paginate", "limit must be positive")
	}
	if skip < 0 {
		return 0, 0, apperrors.New(apperrors.KindInvalidArgument, "Paginate", "skip must not be negative")
	}
	page = skip/limit + 1
	totalPages = total / limit
	if total%limit != 0 {
		totalPages++
	}
	return page, totalPages, nil
}

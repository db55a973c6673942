package book

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"bookstore/internal/apperror"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Field names a sortable book attribute, spelled as in the JSON API.
type Field string

const (
	FieldTitle         Field = "title"
	FieldAuthor        Field = "author"
	FieldCategory      Field = "category"
	FieldPrice         Field = "price"
	FieldRating        Field = "rating"
	FieldPublishedDate Field = "publishedDate"
	FieldCreatedAt     Field = "createdAt"
)

var sortable = map[Field]bool{
	FieldTitle:         true,
	FieldAuthor:        true,
	FieldCategory:      true,
	FieldPrice:         true,
	FieldRating:        true,
	FieldPublishedDate: true,
	FieldCreatedAt:     true,
}

// Filter is a conjunction of predicates; zero values mean "no predicate".
type Filter struct {
	Author    string
	Category  string
	MinRating *float64
	// Title is matched as a case-insensitive literal substring.
	Title string
}

type SortField struct {
	Field Field
	Desc  bool
}

// Query is the listing request handed to Repository.Find.
type Query struct {
	Filter Filter
	Sort   []SortField
	Page   int
	Limit  int
}

// Skip is the number of records before the requested window.
func (q Query) Skip() int {
	return (q.Page - 1) * q.Limit
}

// DefaultSort orders newest first.
func DefaultSort() []SortField {
	return []SortField{{Field: FieldCreatedAt, Desc: true}}
}

// ParseQuery builds a Query from raw query parameters. Missing or malformed
// pagination values fall back to defaults and limit is capped at maxLimit.
// The only rejected input is a rating that is not a finite number.
func ParseQuery(values url.Values, maxLimit int) (Query, error) {
	q := Query{
		Filter: Filter{
			Author:   values.Get("author"),
			Category: values.Get("category"),
			Title:    values.Get("title"),
		},
		Page:  positiveInt(values.Get("page"), DefaultPage),
		Limit: positiveInt(values.Get("limit"), DefaultLimit),
		Sort:  parseSort(values.Get("sort")),
	}

	if maxLimit > 0 && q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	// Keep Skip within int range for absurdly large pages.
	if q.Page > math.MaxInt/q.Limit {
		q.Page = math.MaxInt / q.Limit
	}

	if raw := values.Get("rating"); raw != "" {
		rating, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || math.IsNaN(rating) || math.IsInf(rating, 0) {
			return Query{}, apperror.Invalid("rating", "Rating must be a number")
		}
		q.Filter.MinRating = &rating
	}

	return q, nil
}

func positiveInt(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func parseSort(raw string) []SortField {
	if raw == "" {
		return DefaultSort()
	}

	seen := make(map[Field]bool)
	var out []SortField
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		field := Field(strings.TrimPrefix(part, "-"))
		if !sortable[field] || seen[field] {
			continue
		}
		seen[field] = true
		out = append(out, SortField{Field: field, Desc: desc})
	}

	if len(out) == 0 {
		return DefaultSort()
	}
	return out
}

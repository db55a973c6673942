package book

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildFilterDoc(t *testing.T) {
	rating := 3.0

	assert.Equal(t, bson.D{}, buildFilterDoc(Filter{}))

	got := buildFilterDoc(Filter{Author: "Tolkien", Category: "Fantasy", MinRating: &rating, Title: "the.hobbit?"})
	assert.Equal(t, bson.D{
		{Key: "author", Value: "Tolkien"},
		{Key: "category", Value: "Fantasy"},
		{Key: "rating", Value: bson.D{{Key: "$gte", Value: 3.0}}},
		{Key: "title", Value: primitive.Regex{Pattern: `the\.hobbit\?`, Options: "i"}},
	}, got)
}

func TestBuildSortDoc(t *testing.T) {
	tests := []struct {
		name string
		sort []SortField
		want bson.D
	}{
		{"default", nil, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}},
		{
			"keeps order",
			[]SortField{{FieldPrice, true}, {FieldTitle, false}},
			bson.D{{Key: "price", Value: -1}, {Key: "title", Value: 1}, {Key: "_id", Value: 1}},
		},
		{
			"drops unknown",
			[]SortField{{Field("$where"), false}, {FieldPublishedDate, false}},
			bson.D{{Key: "publishedDate", Value: 1}, {Key: "_id", Value: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildSortDoc(tt.sort))
		})
	}
}

func TestBuildSetDoc(t *testing.T) {
	assert.Empty(t, buildSetDoc(Patch{}))

	rating := 4.0
	category := "Classics"
	published := time.Date(1813, 1, 28, 0, 0, 0, 0, time.UTC)

	got := buildSetDoc(Patch{Category: &category, Rating: &rating, PublishedDate: &published})
	assert.Equal(t, bson.D{
		{Key: "category", Value: "Classics"},
		{Key: "rating", Value: 4.0},
		{Key: "publishedDate", Value: published},
	}, got)
}

func TestBookDocument_Book(t *testing.T) {
	oid := primitive.NewObjectID()
	loc := time.FixedZone("X", 3600)
	doc := bookDocument{
		ID:            oid,
		Title:         "Emma",
		PublishedDate: time.Date(1815, 12, 23, 1, 0, 0, 0, loc),
	}

	b := doc.book()
	assert.Equal(t, oid.Hex(), b.ID)
	assert.Equal(t, "Emma", b.Title)
	assert.Equal(t, time.UTC, b.PublishedDate.Location())
	assert.Nil(t, b.Rating)
}

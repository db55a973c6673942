package book

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a book does not exist or its identifier
// cannot be parsed by the store.
var ErrNotFound = errors.New("book not found")

// Book represents a catalog entry.
type Book struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Category      string    `json:"category"`
	Price         float64   `json:"price"`
	Rating        *float64  `json:"rating,omitempty"`
	PublishedDate time.Time `json:"publishedDate"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Patch holds the fields of a partial update. Nil fields are left as they are.
type Patch struct {
	Title         *string
	Author        *string
	Category      *string
	Price         *float64
	Rating        *float64
	PublishedDate *time.Time
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Author == nil && p.Category == nil &&
		p.Price == nil && p.Rating == nil && p.PublishedDate == nil
}

// Apply returns a copy of b with the patch applied.
func (p Patch) Apply(b Book) Book {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.Category != nil {
		b.Category = *p.Category
	}
	if p.Price != nil {
		b.Price = *p.Price
	}
	if p.Rating != nil {
		r := *p.Rating
		b.Rating = &r
	}
	if p.PublishedDate != nil {
		b.PublishedDate = *p.PublishedDate
	}
	return b
}

// Page is one window of a listing together with the totals of the whole
// filtered set.
type Page struct {
	Books []Book
	Total int
	Page  int
	Limit int
}

// Pages is the number of windows needed to cover Total.
func (p Page) Pages() int {
	if p.Limit <= 0 {
		return 0
	}
	return (p.Total + p.Limit - 1) / p.Limit
}

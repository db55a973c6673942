package book

import (
	"context"
	"fmt"
)

// Service provides book-related business logic.
type Service struct {
	repo Repository
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, b Book) (Book, error) {
	if err := s.repo.Create(ctx, &b); err != nil {
		return Book{}, fmt.Errorf("create book: %w", err)
	}
	return b, nil
}

// List returns the requested window and the size of the whole filtered set.
func (s *Service) List(ctx context.Context, q Query) (Page, error) {
	books, err := s.repo.Find(ctx, q)
	if err != nil {
		return Page{}, fmt.Errorf("find books: %w", err)
	}
	total, err := s.repo.Count(ctx, q.Filter)
	if err != nil {
		return Page{}, fmt.Errorf("count books: %w", err)
	}
	if books == nil {
		books = []Book{}
	}
	return Page{Books: books, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

func (s *Service) Get(ctx context.Context, id string) (Book, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies p to an existing book and returns the stored result.
func (s *Service) Update(ctx context.Context, id string, p Patch) (Book, error) {
	if p.Empty() {
		return s.repo.GetByID(ctx, id)
	}
	return s.repo.Update(ctx, id, p)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

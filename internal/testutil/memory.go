package testutil

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"bookstore/internal/apperror"
	"bookstore/internal/book"
	"bookstore/internal/user"
)

// MemoryBooks is a book.Repository kept in a map. Its filtering, ordering
// and paging follow the SQL repository.
type MemoryBooks struct {
	mu    sync.RWMutex
	books map[string]book.Book
	now   func() time.Time
}

func NewMemoryBooks() *MemoryBooks {
	return &MemoryBooks{books: make(map[string]book.Book), now: time.Now}
}

// WithClock replaces the source of CreatedAt values.
func (m *MemoryBooks) WithClock(now func() time.Time) *MemoryBooks {
	m.now = now
	return m
}

var _ book.Repository = (*MemoryBooks)(nil)

func (m *MemoryBooks) Create(_ context.Context, b *book.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = uuid.NewString()
	b.CreatedAt = m.now().UTC()
	m.books[b.ID] = *b
	return nil
}

func (m *MemoryBooks) Find(_ context.Context, q book.Query) ([]book.Book, error) {
	m.mu.RLock()
	matched := m.filter(q.Filter)
	m.mu.RUnlock()

	sortFields := q.Sort
	if len(sortFields) == 0 {
		sortFields = book.DefaultSort()
	}
	slices.SortFunc(matched, func(a, b book.Book) int {
		for _, s := range sortFields {
			c := compareField(a, b, s.Field)
			if s.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return cmp.Compare(a.ID, b.ID)
	})

	start := min(q.Skip(), len(matched))
	end := min(start+q.Limit, len(matched))
	return matched[start:end], nil
}

func (m *MemoryBooks) Count(_ context.Context, f book.Filter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.filter(f)), nil
}

func (m *MemoryBooks) GetByID(_ context.Context, id string) (book.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.books[id]
	if !ok {
		return book.Book{}, book.ErrNotFound
	}
	return b, nil
}

func (m *MemoryBooks) Update(_ context.Context, id string, p book.Patch) (book.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return book.Book{}, book.ErrNotFound
	}
	b = p.Apply(b)
	m.books[id] = b
	return b, nil
}

func (m *MemoryBooks) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[id]; !ok {
		return book.ErrNotFound
	}
	delete(m.books, id)
	return nil
}

func (m *MemoryBooks) filter(f book.Filter) []book.Book {
	out := []book.Book{}
	for _, b := range m.books {
		if f.Author != "" && b.Author != f.Author {
			continue
		}
		if f.Category != "" && b.Category != f.Category {
			continue
		}
		if f.MinRating != nil && (b.Rating == nil || *b.Rating < *f.MinRating) {
			continue
		}
		if f.Title != "" && !strings.Contains(strings.ToLower(b.Title), strings.ToLower(f.Title)) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// compareField orders a missing rating below every value.
func compareField(a, b book.Book, field book.Field) int {
	switch field {
	case book.FieldTitle:
		return cmp.Compare(a.Title, b.Title)
	case book.FieldAuthor:
		return cmp.Compare(a.Author, b.Author)
	case book.FieldCategory:
		return cmp.Compare(a.Category, b.Category)
	case book.FieldPrice:
		return cmp.Compare(a.Price, b.Price)
	case book.FieldRating:
		switch {
		case a.Rating == nil && b.Rating == nil:
			return 0
		case a.Rating == nil:
			return -1
		case b.Rating == nil:
			return 1
		}
		return cmp.Compare(*a.Rating, *b.Rating)
	case book.FieldPublishedDate:
		return a.PublishedDate.Compare(b.PublishedDate)
	case book.FieldCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
	return 0
}

// MemoryUsers is a user.Repository kept in a map with a unique email index.
type MemoryUsers struct {
	mu      sync.RWMutex
	byID    map[string]user.User
	byEmail map[string]string
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{byID: make(map[string]user.User), byEmail: make(map[string]string)}
}

var _ user.Repository = (*MemoryUsers)(nil)

func (m *MemoryUsers) Create(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.byEmail[u.Email]; taken {
		return apperror.ErrDuplicateKey
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().UTC()
	m.byID[u.ID] = *u
	m.byEmail[u.Email] = u.ID
	return nil
}

func (m *MemoryUsers) GetByEmail(_ context.Context, email string) (user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byEmail[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return m.byID[id], nil
}

func (m *MemoryUsers) GetByID(_ context.Context, id string) (user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.byID[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

// Remove deletes an account, leaving any tokens issued for it dangling.
func (m *MemoryUsers) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		delete(m.byEmail, u.Email)
		delete(m.byID, id)
	}
}

package book

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstore/internal/apperror"
)

var testBook = Book{
	ID:            "8f14e45f-ceea-467a-9575-4f1a8ff1f6f2",
	Title:         "The Hobbit",
	Author:        "Tolkien",
	Category:      "Fantasy",
	Price:         12.5,
	PublishedDate: time.Date(1937, 9, 21, 0, 0, 0, 0, time.UTC),
	CreatedAt:     time.Now(),
}

func newTestRouter(t *testing.T) (*MockRepository, http.Handler) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo), 100)

	r := chi.NewRouter()
	r.Route("/api/books", handler.Routes)
	return mockRepo, r
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHTTPHandler_List(t *testing.T) {
	mockRepo, router := newTestRouter(t)

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().Find(gomock.Any(), gomock.Any()).Return([]Book{testBook}, nil)
		mockRepo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(1, nil)

		w := do(router, http.MethodGet, "/api/books", "")

		assert.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, float64(1), body["count"])
		assert.Equal(t, map[string]any{
			"total": float64(1),
			"page":  float64(1),
			"limit": float64(10),
			"pages": float64(1),
		}, body["pagination"])
		assert.Len(t, body["data"], 1)
	})

	t.Run("query is built from parameters", func(t *testing.T) {
		rating := 4.0
		want := Query{
			Filter: Filter{Author: "Tolkien", MinRating: &rating, Title: "hob"},
			Sort:   []SortField{{FieldPrice, true}, {FieldTitle, false}},
			Page:   2,
			Limit:  5,
		}
		mockRepo.EXPECT().Find(gomock.Any(), want).Return([]Book{}, nil)
		mockRepo.EXPECT().Count(gomock.Any(), want.Filter).Return(12, nil)

		w := do(router, http.MethodGet, "/api/books?author=Tolkien&rating=4&title=hob&page=2&limit=5&sort=-price,title", "")

		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, float64(0), body["count"])
		assert.Equal(t, float64(3), body["pagination"].(map[string]any)["pages"])
		assert.Equal(t, []any{}, body["data"])
	})

	t.Run("malformed rating", func(t *testing.T) {
		w := do(router, http.MethodGet, "/api/books?rating=high", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decode(t, w)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, []any{map[string]any{"field": "rating", "message": "Rating must be a number"}}, body["errors"])
	})

	t.Run("store error", func(t *testing.T) {
		mockRepo.EXPECT().Find(gomock.Any(), gomock.Any()).Return(nil, context.DeadlineExceeded)

		w := do(router, http.MethodGet, "/api/books", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Server Error", decode(t, w)["message"])
	})
}

func TestHTTPHandler_Get(t *testing.T) {
	mockRepo, router := newTestRouter(t)

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), testBook.ID).Return(testBook, nil)

		w := do(router, http.MethodGet, "/api/books/"+testBook.ID, "")

		assert.Equal(t, http.StatusOK, w.Code)
		data := decode(t, w)["data"].(map[string]any)
		assert.Equal(t, testBook.ID, data["id"])
		assert.Equal(t, "The Hobbit", data["title"])
		assert.Equal(t, "1937-09-21T00:00:00Z", data["publishedDate"])
		assert.NotContains(t, data, "rating")
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), "missing").Return(Book{}, ErrNotFound)

		w := do(router, http.MethodGet, "/api/books/missing", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		body := decode(t, w)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Book not found", body["message"])
	})
}

func TestHTTPHandler_Create(t *testing.T) {
	mockRepo, router := newTestRouter(t)

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, b *Book) error {
			assert.Equal(t, "The Hobbit", b.Title)
			assert.Equal(t, 0.0, b.Price)
			require.NotNil(t, b.Rating)
			assert.Equal(t, 5.0, *b.Rating)
			assert.Equal(t, time.Date(1937, 9, 21, 0, 0, 0, 0, time.UTC), b.PublishedDate)
			b.ID = "new-id"
			return nil
		})

		w := do(router, http.MethodPost, "/api/books",
			`{"title":"The Hobbit","author":"Tolkien","category":"Fantasy","price":0,"rating":5,"publishedDate":"1937-09-21"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		body := decode(t, w)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "new-id", body["data"].(map[string]any)["id"])
	})

	t.Run("missing fields", func(t *testing.T) {
		w := do(router, http.MethodPost, "/api/books", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decode(t, w)
		assert.Equal(t, false, body["success"])
		assert.ElementsMatch(t, []any{
			map[string]any{"field": "title", "message": "Title is required"},
			map[string]any{"field": "author", "message": "Author is required"},
			map[string]any{"field": "category", "message": "Category is required"},
			map[string]any{"field": "price", "message": "Price must be a positive number"},
			map[string]any{"field": "publishedDate", "message": "Published date is required"},
		}, body["errors"])
	})

	t.Run("out of range values", func(t *testing.T) {
		w := do(router, http.MethodPost, "/api/books",
			`{"title":"T","author":"A","category":"C","price":-1,"rating":7,"publishedDate":"someday"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.ElementsMatch(t, []any{
			map[string]any{"field": "price", "message": "Price must be a positive number"},
			map[string]any{"field": "rating", "message": "Rating must be between 0 and 5"},
			map[string]any{"field": "publishedDate", "message": "Published date must be a valid date"},
		}, decode(t, w)["errors"])
	})

	t.Run("malformed body", func(t *testing.T) {
		w := do(router, http.MethodPost, "/api/books", `{"title":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid request body", decode(t, w)["message"])
	})

	t.Run("duplicate key", func(t *testing.T) {
		mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(apperror.ErrDuplicateKey)

		w := do(router, http.MethodPost, "/api/books",
			`{"title":"T","author":"A","category":"C","price":1,"publishedDate":"2020-01-01T00:00:00Z"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Duplicate field value entered", decode(t, w)["message"])
	})
}

func TestHTTPHandler_Update(t *testing.T) {
	mockRepo, router := newTestRouter(t)

	t.Run("partial update", func(t *testing.T) {
		price := 9.99
		updated := testBook
		updated.Price = price

		mockRepo.EXPECT().GetByID(gomock.Any(), testBook.ID).Return(testBook, nil)
		mockRepo.EXPECT().Update(gomock.Any(), testBook.ID, Patch{Price: &price}).Return(updated, nil)

		w := do(router, http.MethodPut, "/api/books/"+testBook.ID, `{"price":9.99}`)

		assert.Equal(t, http.StatusOK, w.Code)
		data := decode(t, w)["data"].(map[string]any)
		assert.Equal(t, 9.99, data["price"])
		assert.Equal(t, "The Hobbit", data["title"])
	})

	t.Run("not found before validation", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), "not-an-id").Return(Book{}, ErrNotFound)

		w := do(router, http.MethodPut, "/api/books/not-an-id", `{"price":-5}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Book not found", decode(t, w)["message"])
	})

	t.Run("invalid supplied field", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), testBook.ID).Return(testBook, nil)

		w := do(router, http.MethodPut, "/api/books/"+testBook.ID, `{"title":"","rating":5.5}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.ElementsMatch(t, []any{
			map[string]any{"field": "title", "message": "Title is required"},
			map[string]any{"field": "rating", "message": "Rating must be between 0 and 5"},
		}, decode(t, w)["errors"])
	})

	t.Run("removed concurrently", func(t *testing.T) {
		title := "New"
		mockRepo.EXPECT().GetByID(gomock.Any(), testBook.ID).Return(testBook, nil)
		mockRepo.EXPECT().Update(gomock.Any(), testBook.ID, Patch{Title: &title}).Return(Book{}, ErrNotFound)

		w := do(router, http.MethodPut, "/api/books/"+testBook.ID, `{"title":"New"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHTTPHandler_Delete(t *testing.T) {
	mockRepo, router := newTestRouter(t)

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), testBook.ID).Return(testBook, nil)
		mockRepo.EXPECT().Delete(gomock.Any(), testBook.ID).Return(nil)

		w := do(router, http.MethodDelete, "/api/books/"+testBook.ID, "")

		assert.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, map[string]any{}, body["data"])
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), "123").Return(Book{}, ErrNotFound)

		w := do(router, http.MethodDelete, "/api/books/123", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

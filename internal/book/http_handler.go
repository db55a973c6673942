package book

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bookstore/internal/apperror"
	"bookstore/internal/httpx"
)

type HTTPHandler struct {
	service     *Service
	maxPageSize int
}

func NewHTTPHandler(service *Service, maxPageSize int) *HTTPHandler {
	return &HTTPHandler{service: service, maxPageSize: maxPageSize}
}

// Routes mounts the book endpoints on r. Authentication is applied by the
// caller.
func (h *HTTPHandler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

type createReq struct {
	Title         string   `json:"title" validate:"required" msg:"Title is required"`
	Author        string   `json:"author" validate:"required" msg:"Author is required"`
	Category      string   `json:"category" validate:"required" msg:"Category is required"`
	Price         *float64 `json:"price" validate:"required,gte=0" msg:"Price must be a positive number"`
	Rating        *float64 `json:"rating" validate:"omitempty,gte=0,lte=5" msg:"Rating must be between 0 and 5"`
	PublishedDate string   `json:"publishedDate" validate:"required,date" msg:"required=Published date is required;date=Published date must be a valid date"`
}

func (req createReq) book() Book {
	published, _ := httpx.ParseDate(req.PublishedDate)
	return Book{
		Title:         req.Title,
		Author:        req.Author,
		Category:      req.Category,
		Price:         *req.Price,
		Rating:        req.Rating,
		PublishedDate: published,
	}
}

type updateReq struct {
	Title         *string  `json:"title" validate:"omitempty,min=1" msg:"Title is required"`
	Author        *string  `json:"author" validate:"omitempty,min=1" msg:"Author is required"`
	Category      *string  `json:"category" validate:"omitempty,min=1" msg:"Category is required"`
	Price         *float64 `json:"price" validate:"omitempty,gte=0" msg:"Price must be a positive number"`
	Rating        *float64 `json:"rating" validate:"omitempty,gte=0,lte=5" msg:"Rating must be between 0 and 5"`
	PublishedDate *string  `json:"publishedDate" validate:"omitempty,min=1,date" msg:"min=Published date is required;date=Published date must be a valid date"`
}

func (req updateReq) patch() Patch {
	p := Patch{
		Title:    req.Title,
		Author:   req.Author,
		Category: req.Category,
		Price:    req.Price,
		Rating:   req.Rating,
	}
	if req.PublishedDate != nil {
		published, _ := httpx.ParseDate(*req.PublishedDate)
		p.PublishedDate = &published
	}
	return p
}

type pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

type listResponse struct {
	Success    bool       `json:"success"`
	Count      int        `json:"count"`
	Pagination pagination `json:"pagination"`
	Data       []Book     `json:"data"`
}

var errBookNotFound = apperror.New(http.StatusNotFound, "Book not found")

// Create handles POST /api/books
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	if validationErrors := httpx.ValidateStruct(req); len(validationErrors) > 0 {
		httpx.JSONValidationError(w, validationErrors)
		return
	}

	created, err := h.service.Create(r.Context(), req.book())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, created)
}

// List handles GET /api/books
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := ParseQuery(r.URL.Query(), h.maxPageSize)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	page, err := h.service.List(r.Context(), q)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, listResponse{
		Success: true,
		Count:   len(page.Books),
		Pagination: pagination{
			Total: page.Total,
			Page:  page.Page,
			Limit: page.Limit,
			Pages: page.Pages(),
		},
		Data: page.Books,
	})
}

// Get handles GET /api/books/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, ok := h.resolve(w, r)
	if !ok {
		return
	}
	httpx.JSONSuccess(w, b)
}

// Update handles PUT /api/books/{id}. Only the fields present in the body
// are changed.
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.resolve(w, r); !ok {
		return
	}

	var req updateReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	if validationErrors := httpx.ValidateStruct(req); len(validationErrors) > 0 {
		httpx.JSONValidationError(w, validationErrors)
		return
	}

	updated, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req.patch())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, updated)
}

// Delete handles DELETE /api/books/{id}
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.resolve(w, r); !ok {
		return
	}

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, struct{}{})
}

// resolve loads the book named by the {id} path parameter and answers 404
// itself when there is none.
func (h *HTTPHandler) resolve(w http.ResponseWriter, r *http.Request) (Book, bool) {
	b, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return Book{}, false
	}
	return b, true
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrNotFound) {
		httpx.WriteError(w, r, errBookNotFound)
		return
	}
	httpx.WriteError(w, r, err)
}

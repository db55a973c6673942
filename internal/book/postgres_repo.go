package book

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookstore/internal/apperror"
	"bookstore/internal/platform/postgres"
)

const bookColumns = "id, title, author, category, price, rating, published_date, created_at"

var sortColumns = map[Field]string{
	FieldTitle:         "title",
	FieldAuthor:        "author",
	FieldCategory:      "category",
	FieldPrice:         "price",
	FieldRating:        "rating",
	FieldPublishedDate: "published_date",
	FieldCreatedAt:     "created_at",
}

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) Create(ctx context.Context, b *Book) error {
	const query = `
	INSERT INTO books (title, author, category, price, rating, published_date)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, created_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query,
		b.Title, b.Author, b.Category, b.Price, b.Rating, b.PublishedDate,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("insert book: %w", apperror.ErrDuplicateKey)
		}
		return err
	}
	return nil
}

func (r *PostgresRepo) Find(ctx context.Context, q Query) ([]Book, error) {
	where, args := buildWhere(q.Filter)
	argn := len(args) + 1

	dataSQL := fmt.Sprintf(`SELECT %s FROM books %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		bookColumns, where, buildOrderBy(q.Sort), argn, argn+1)
	args = append(args, q.Limit, q.Skip())

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, dataSQL, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Count(ctx context.Context, f Filter) (int, error) {
	where, args := buildWhere(f)
	var total int
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.db.QueryRow(timeoutCtx, "SELECT COUNT(*) FROM books "+where, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Book, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Book{}, ErrNotFound
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(timeoutCtx, "SELECT "+bookColumns+" FROM books WHERE id = $1 LIMIT 1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) Update(ctx context.Context, id string, p Patch) (Book, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Book{}, ErrNotFound
	}

	set, args := buildSet(p)
	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := "UPDATE books SET " + strings.Join(set, ", ") +
		" WHERE id = $" + strconv.Itoa(len(args)) + " RETURNING " + bookColumns

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(timeoutCtx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		if postgres.IsUniqueViolation(err) {
			return Book{}, fmt.Errorf("update book: %w", apperror.ErrDuplicateKey)
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, "DELETE FROM books WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanBook(row pgx.Row) (Book, error) {
	var b Book
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Category, &b.Price, &b.Rating, &b.PublishedDate, &b.CreatedAt)
	return b, err
}

// buildWhere renders f as a WHERE clause with positional arguments
// starting at $1.
func buildWhere(f Filter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	argn := 1

	if f.Author != "" {
		clauses = append(clauses, fmt.Sprintf("author = $%d", argn))
		args = append(args, f.Author)
		argn++
	}

	if f.Category != "" {
		clauses = append(clauses, fmt.Sprintf("category = $%d", argn))
		args = append(args, f.Category)
		argn++
	}

	if f.MinRating != nil {
		clauses = append(clauses, fmt.Sprintf("rating >= $%d", argn))
		args = append(args, *f.MinRating)
		argn++
	}

	if f.Title != "" {
		clauses = append(clauses, fmt.Sprintf("title ILIKE $%d", argn))
		args = append(args, "%"+escapeLike(f.Title)+"%")
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// buildOrderBy renders the sort fields in order and appends id so that
// page windows are stable. NULL ratings sort below every value, in both
// directions.
func buildOrderBy(sort []SortField) string {
	if len(sort) == 0 {
		sort = DefaultSort()
	}
	parts := make([]string, 0, len(sort)+1)
	for _, s := range sort {
		col, ok := sortColumns[s.Field]
		if !ok {
			continue
		}
		if s.Desc {
			parts = append(parts, col+" DESC NULLS LAST")
		} else {
			parts = append(parts, col+" ASC NULLS FIRST")
		}
	}
	parts = append(parts, "id ASC")
	return strings.Join(parts, ", ")
}

func buildSet(p Patch) ([]string, []any) {
	set := []string{}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, col+" = $"+strconv.Itoa(len(args)))
	}

	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Author != nil {
		add("author", *p.Author)
	}
	if p.Category != nil {
		add("category", *p.Category)
	}
	if p.Price != nil {
		add("price", *p.Price)
	}
	if p.Rating != nil {
		add("rating", *p.Rating)
	}
	if p.PublishedDate != nil {
		add("published_date", *p.PublishedDate)
	}
	return set, args
}

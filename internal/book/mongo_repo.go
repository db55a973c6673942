package book

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bookstore/internal/apperror"
	"bookstore/internal/platform/mongodb"
)

type bookDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Title         string             `bson:"title"`
	Author        string             `bson:"author"`
	Category      string             `bson:"category"`
	Price         float64            `bson:"price"`
	Rating        *float64           `bson:"rating,omitempty"`
	PublishedDate time.Time          `bson:"publishedDate"`
	CreatedAt     time.Time          `bson:"createdAt"`
}

func (d bookDocument) book() Book {
	return Book{
		ID:            d.ID.Hex(),
		Title:         d.Title,
		Author:        d.Author,
		Category:      d.Category,
		Price:         d.Price,
		Rating:        d.Rating,
		PublishedDate: d.PublishedDate.UTC(),
		CreatedAt:     d.CreatedAt.UTC(),
	}
}

type MongoRepo struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewMongoRepo(db *mongo.Database, timeout time.Duration) *MongoRepo {
	return &MongoRepo{coll: db.Collection(mongodb.BooksCollection), timeout: timeout}
}

func (r *MongoRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *MongoRepo) Create(ctx context.Context, b *Book) error {
	doc := bookDocument{
		ID:            primitive.NewObjectID(),
		Title:         b.Title,
		Author:        b.Author,
		Category:      b.Category,
		Price:         b.Price,
		Rating:        b.Rating,
		PublishedDate: b.PublishedDate,
		CreatedAt:     time.Now().UTC().Truncate(time.Millisecond),
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if _, err := r.coll.InsertOne(timeoutCtx, doc); err != nil {
		if mongodb.IsDuplicateKey(err) {
			return fmt.Errorf("insert book: %w", apperror.ErrDuplicateKey)
		}
		return err
	}
	*b = doc.book()
	return nil
}

func (r *MongoRepo) Find(ctx context.Context, q Query) ([]Book, error) {
	opts := options.Find().
		SetSort(buildSortDoc(q.Sort)).
		SetSkip(int64(q.Skip())).
		SetLimit(int64(q.Limit))

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	cur, err := r.coll.Find(timeoutCtx, buildFilterDoc(q.Filter), opts)
	if err != nil {
		return nil, err
	}

	var docs []bookDocument
	if err := cur.All(timeoutCtx, &docs); err != nil {
		return nil, err
	}
	out := make([]Book, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.book())
	}
	return out, nil
}

func (r *MongoRepo) Count(ctx context.Context, f Filter) (int, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	n, err := r.coll.CountDocuments(timeoutCtx, buildFilterDoc(f))
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *MongoRepo) GetByID(ctx context.Context, id string) (Book, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Book{}, ErrNotFound
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var doc bookDocument
	if err := r.coll.FindOne(timeoutCtx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return doc.book(), nil
}

func (r *MongoRepo) Update(ctx context.Context, id string, p Patch) (Book, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Book{}, ErrNotFound
	}

	set := buildSetDoc(p)
	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var doc bookDocument
	err = r.coll.FindOneAndUpdate(timeoutCtx,
		bson.M{"_id": oid},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Book{}, ErrNotFound
		}
		if mongodb.IsDuplicateKey(err) {
			return Book{}, fmt.Errorf("update book: %w", apperror.ErrDuplicateKey)
		}
		return Book{}, err
	}
	return doc.book(), nil
}

func (r *MongoRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	res, err := r.coll.DeleteOne(timeoutCtx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func buildFilterDoc(f Filter) bson.D {
	filter := bson.D{}
	if f.Author != "" {
		filter = append(filter, bson.E{Key: "author", Value: f.Author})
	}
	if f.Category != "" {
		filter = append(filter, bson.E{Key: "category", Value: f.Category})
	}
	if f.MinRating != nil {
		filter = append(filter, bson.E{Key: "rating", Value: bson.D{{Key: "$gte", Value: *f.MinRating}}})
	}
	if f.Title != "" {
		filter = append(filter, bson.E{Key: "title", Value: primitive.Regex{
			Pattern: regexp.QuoteMeta(f.Title),
			Options: "i",
		}})
	}
	return filter
}

// buildSortDoc keeps the requested order and appends _id so that page
// windows are stable.
func buildSortDoc(sort []SortField) bson.D {
	if len(sort) == 0 {
		sort = DefaultSort()
	}
	doc := make(bson.D, 0, len(sort)+1)
	for _, s := range sort {
		if !sortable[s.Field] {
			continue
		}
		dir := 1
		if s.Desc {
			dir = -1
		}
		doc = append(doc, bson.E{Key: string(s.Field), Value: dir})
	}
	return append(doc, bson.E{Key: "_id", Value: 1})
}

func buildSetDoc(p Patch) bson.D {
	set := bson.D{}
	if p.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *p.Title})
	}
	if p.Author != nil {
		set = append(set, bson.E{Key: "author", Value: *p.Author})
	}
	if p.Category != nil {
		set = append(set, bson.E{Key: "category", Value: *p.Category})
	}
	if p.Price != nil {
		set = append(set, bson.E{Key: "price", Value: *p.Price})
	}
	if p.Rating != nil {
		set = append(set, bson.E{Key: "rating", Value: *p.Rating})
	}
	if p.PublishedDate != nil {
		set = append(set, bson.E{Key: "publishedDate", Value: *p.PublishedDate})
	}
	return set
}

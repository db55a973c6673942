// Package storage opens the backend selected by STORE_DRIVER and builds the
// repositories on top of it.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"bookstore/internal/book"
	"bookstore/internal/config"
	"bookstore/internal/platform/mongodb"
	"bookstore/internal/platform/postgres"
	"bookstore/internal/user"
)

// Store bundles the repositories of one backend with its lifecycle hooks.
type Store struct {
	Books book.Repository
	Users user.Repository

	ping  func(ctx context.Context) error
	close func()
}

// Ping reports whether the backend answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Close releases the connection pool or client.
func (s *Store) Close() {
	s.close()
}

// Open connects to the configured backend and bootstraps its schema or
// indexes. Both operations are idempotent.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, log)
	case config.DriverMongo:
		return openMongo(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	pool, err := postgres.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	log.Info().Str("dsn", postgres.RedactDSN(cfg.DatabaseDSN)).Msg("postgres ready")

	return &Store{
		Books: book.NewPostgresRepo(pool, cfg.DBTimeout),
		Users: user.NewPostgresRepo(pool, cfg.DBTimeout),
		ping:  pool.Ping,
		close: pool.Close,
	}, nil
}

func openMongo(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	client, err := mongodb.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.MongoDatabase)
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	log.Info().Str("database", cfg.MongoDatabase).Msg("mongo ready")

	return &Store{
		Books: book.NewMongoRepo(db, cfg.DBTimeout),
		Users: user.NewMongoRepo(db, cfg.DBTimeout),
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		close: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect")
			}
		},
	}, nil
}

// New assembles a Store from existing repositories. It is used by tools and
// tests that bring their own backend.
func New(books book.Repository, users user.Repository, ping func(context.Context) error) *Store {
	if ping == nil {
		ping = func(context.Context) error { return nil }
	}
	return &Store{Books: books, Users: users, ping: ping, close: func() {}}
}

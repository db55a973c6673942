package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"

	"bookstore/internal/book"
	"bookstore/internal/config"
	"bookstore/internal/platform/logger"
	"bookstore/internal/storage"
)

var (
	categories = []string{"Fiction", "Science Fiction", "History", "Science", "Technology", "Romance", "Mystery", "Biography", "Philosophy", "Art"}
	authors    = []string{"Austen", "Tolkien", "Herbert", "Le Guin", "Orwell", "Woolf", "Borges", "Calvino"}
	words      = []string{
		"Adventure", "Mystery", "Journey", "Discovery", "Secrets", "Dreams", "Hope",
		"Love", "War", "Peace", "Science", "Nature", "Technology", "History", "Future",
		"Past", "Present", "Reality", "Imagination", "Wisdom", "Life", "Death",
		"Light", "Darkness", "World", "Universe", "Time", "Space", "Mind", "Soul",
	}
)

func main() {
	count := flag.Int("count", 100, "number of books to insert")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "json", os.Stderr)
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}
	defer store.Close()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	inserted, err := seed(ctx, store.Books, *count, rng, log)
	if err != nil {
		log.Error().Err(err).Int("inserted", inserted).Msg("seed aborted")
		return
	}

	total, err := store.Books.Count(ctx, book.Filter{})
	if err != nil {
		log.Error().Err(err).Msg("count books")
		return
	}
	log.Info().Int("inserted", inserted).Int("total", total).Msg("seed complete")
}

// seed inserts count generated books through repo and returns how many were
// stored before the first failure.
func seed(ctx context.Context, repo book.Repository, count int, rng *rand.Rand, log zerolog.Logger) (int, error) {
	for i := 0; i < count; i++ {
		b := randomBook(i, rng)
		if err := repo.Create(ctx, &b); err != nil {
			return i, fmt.Errorf("insert book %d: %w", i+1, err)
		}
		if (i+1)%1000 == 0 {
			log.Info().Int("done", i+1).Int("count", count).Msg("seeding")
		}
	}
	return count, nil
}

func randomBook(i int, rng *rand.Rand) book.Book {
	b := book.Book{
		Title:         fmt.Sprintf("Book Title %d - %s", i+1, words[rng.Intn(len(words))]),
		Author:        authors[rng.Intn(len(authors))],
		Category:      categories[rng.Intn(len(categories))],
		Price:         float64(100+rng.Intn(5000)) / 100,
		PublishedDate: time.Date(1950+rng.Intn(75), time.Month(1+rng.Intn(12)), 1, 0, 0, 0, 0, time.UTC),
	}
	// Roughly one in five books stays unrated.
	if rng.Intn(5) > 0 {
		rating := float64(rng.Intn(51)) / 10
		b.Rating = &rating
	}
	return b
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"voyago/internal/database"

	"github.com/rs/zerolog"
)

// Operator tool: moves dead letters back into the sync queue so the
// next pass retries them with a fresh attempt counter.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		dbPath = flag.String("db", "./data/voyago.db", "path to sqlite db")
		itemID = flag.String("item", "", "requeue only the dead letter with this item id")
		limit  = flag.Int("limit", 100, "maximum dead letters to requeue")
	)
	flag.Parse()

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	letters, err := db.ListDeadLetters(ctx, *limit)
	if err != nil {
		return fmt.Errorf("list dead letters: %w", err)
	}

	requeued := 0
	for _, letter := range letters {
		if *itemID != "" && letter.ItemID != *itemID {
			continue
		}
		if _, err := db.Enqueue(ctx, letter.Type, letter.Payload); err != nil {
			return fmt.Errorf("requeue %s: %w", letter.ItemID, err)
		}
		if err := db.RemoveDeadLetter(ctx, letter.ID); err != nil {
			return fmt.Errorf("remove dead letter %s: %w", letter.ID, err)
		}
		requeued++
	}

	fmt.Printf("done: requeued=%d\n", requeued)
	return nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	"github.com/sudo-init-do/studentmarket/internal/config"
	"github.com/sudo-init-do/studentmarket/internal/dataservice"
	"github.com/sudo-init-do/studentmarket/internal/db"
	"github.com/sudo-init-do/studentmarket/internal/logging"
	"github.com/sudo-init-do/studentmarket/internal/store"
	"github.com/sudo-init-do/studentmarket/internal/store/memory"
	"github.com/sudo-init-do/studentmarket/internal/store/postgres"
)

func main() {
	migrate := flag.Bool("migrate", true, "Apply pending migrations first")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatalf("usage: SUPABASE_DB_URL=postgres://... go run ./cmd/adminutil/seed_categories")
	}
	ctx := context.Background()
	quiet := logging.Discard()

	if *migrate {
		if err := db.Migrate(cfg.DatabaseURL, quiet); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}
	pool, err := db.Connect(ctx, cfg.DatabaseURL, quiet)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	st := postgres.New(pool)
	defer st.Close()

	cats := memory.Fixtures().Categories
	err = st.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		for _, c := range cats {
			c.GigCount = 0
			if err := tx.UpsertCategory(ctx, c); err != nil {
				return fmt.Errorf("upsert %s: %w", c.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("failed to seed categories: %v", err)
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := dataservice.InvalidateCategories(ctx, rdb); err != nil {
			log.Printf("warning: category cache not cleared: %v", err)
		}
	}

	fmt.Printf("Seeded %d categories.\n", len(cats))
}

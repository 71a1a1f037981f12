// Command seed loads the catalog fixture and optional generated content.
package main

import (
	"context"
	"flag"
	"log"

	"sangrachna/internal/bootstrap"
	"sangrachna/internal/cache"
	"sangrachna/internal/config"
	"sangrachna/internal/seed"
)

func main() {
	fixture := flag.String("fixture", "fixtures/catalog.yml", "YAML catalog to load (empty to skip)")
	fake := flag.Int("fake", 0, "number of generated books, poems and pen-down posts")
	clean := flag.Bool("clean", false, "delete existing content before seeding")
	fakeSeed := flag.Int64("seed", 0, "random seed for generated data (0 = clock)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	ctx := context.Background()
	db, _, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{ApplySchema: true})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	s := seed.NewSeeder(db, *fakeSeed)
	if *clean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if *fixture != "" {
		f, err := seed.LoadFixture(*fixture)
		if err != nil {
			log.Fatalf("Fixture invalid: %v", err)
		}
		if err := s.ApplyFixture(ctx, f); err != nil {
			log.Fatalf("Fixture seeding failed: %v", err)
		}
	}

	if *fake > 0 {
		if _, err := s.SeedFake(ctx, *fake); err != nil {
			log.Fatalf("Fake seeding failed: %v", err)
		}
	}

	// Public listings are cached; drop them so the new rows show up.
	cache.InvalidateBooks(ctx)
	cache.InvalidateEvents(ctx)
	cache.InvalidateTeam(ctx)
	cache.InvalidateFeed(ctx)

	log.Println("Seeding complete")
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/buzdealz-backend/internal/auth"
	"github.com/angelmondragon/buzdealz-backend/internal/deals"
	"github.com/angelmondragon/buzdealz-backend/internal/users"
	"github.com/angelmondragon/buzdealz-backend/internal/wishlist"
	"github.com/angelmondragon/buzdealz-backend/pkg/config"
	"github.com/angelmondragon/buzdealz-backend/pkg/db"
	"github.com/angelmondragon/buzdealz-backend/pkg/logger"
	"github.com/angelmondragon/buzdealz-backend/pkg/migrate"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	file := flag.String("file", "", "seed YAML file (defaults to the built-in catalog)")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	raw := defaultCatalog
	if *file != "" {
		raw, err = os.ReadFile(*file)
		requireResource(ctx, logg, "seed file", err)
	}
	data, err := parseSeedFile(raw)
	requireResource(ctx, logg, "seed file", err)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	err = migrate.MaybeRunDev(ctx, cfg, logg, dbClient)
	requireResource(ctx, logg, "migrations", err)

	authService, err := auth.NewService(auth.ServiceParams{
		DB:             dbClient,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	requireResource(ctx, logg, "auth service", err)

	dealService, err := deals.NewService(deals.ServiceParams{
		DB:       dbClient,
		Wishlist: wishlist.NewRepository(dbClient.DB()),
	})
	requireResource(ctx, logg, "deal service", err)

	s := &seeder{
		auth:  authService,
		users: users.NewRepository(dbClient.DB()),
		deals: dealService,
		logg:  logg,
	}
	if err := s.run(ctx, data); err != nil {
		logg.Error(ctx, "seed failed", err)
		os.Exit(1)
	}

	fmt.Println("Seeding completed")
	for _, u := range data.Users {
		fmt.Printf("- %s / %s (subscriber=%t)\n", u.Email, u.Password, u.Subscriber)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}

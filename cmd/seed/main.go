package main

import (
	"context"
	"flag"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/seed"
)

func main() {
	ingredientsPath := flag.String("ingredients", "data/ingredients.json", "ingredients JSON file, empty to skip")
	tagsPath := flag.String("tags", "data/tags.json", "tags JSON file, empty to skip")
	adminEmail := flag.String("admin-email", "", "create an admin with this email")
	adminUsername := flag.String("admin-username", "admin", "admin username")
	demoUsers := flag.Int("demo-users", 0, "number of demo users to create")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(logger.Config{Level: cfg.LogLevel, Console: true})

	db, err := database.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	ctx := context.Background()

	if *ingredientsPath != "" {
		f, err := os.Open(*ingredientsPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *ingredientsPath).Msg("Failed to open ingredients file")
		}
		n, err := seed.Ingredients(ctx, db, f)
		f.Close()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to seed ingredients")
		}
		log.Info().Int("inserted", n).Msg("Ingredients loaded")
	}

	if *tagsPath != "" {
		f, err := os.Open(*tagsPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *tagsPath).Msg("Failed to open tags file")
		}
		n, err := seed.Tags(ctx, db, f)
		f.Close()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to seed tags")
		}
		log.Info().Int("inserted", n).Msg("Tags loaded")
	}

	if *adminEmail != "" {
		password := os.Getenv("ADMIN_PASSWORD")
		if password == "" {
			log.Fatal().Msg("ADMIN_PASSWORD must be set to create an admin")
		}
		admin, err := seed.Admin(ctx, db, *adminEmail, *adminUsername, password)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create admin")
		}
		log.Info().Uint("id", admin.ID).Str("email", admin.Email).Msg("Admin ready")
	}

	if *demoUsers > 0 {
		password := os.Getenv("DEMO_PASSWORD")
		if password == "" {
			password = "demo-password"
		}
		users, err := seed.DemoUsers(ctx, db, *demoUsers, password)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create demo users")
		}
		log.Info().Int("count", len(users)).Msg("Demo users created")
	}
}

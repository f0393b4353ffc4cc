package main

import (
	"flag"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/models"
)

func main() {
	check := flag.Bool("check", false, "only report missing tables, do not migrate")
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

	if *check {
		missing := 0
		for _, model := range models.All() {
			if !db.Migrator().HasTable(model) {
				log.Warn().Str("model", tableName(db, model)).Msg("Table missing")
				missing++
			}
		}
		if missing > 0 {
			log.Fatal().Int("missing", missing).Msg("Schema is not up to date")
		}
		log.Info().Msg("Schema is up to date")
		return
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
	log.Info().Int("models", len(models.All())).Msg("Migrations applied")
}

func tableName(db *gorm.DB, model interface{}) string {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return fmt.Sprintf("%T", model)
	}
	return stmt.Schema.Table
}

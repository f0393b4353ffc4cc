package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks the configuration and reports every problem at once.
func ValidateConfig(cfg *Config) error {
	var errs []ValidationError

	if cfg.ServerPort == "" {
		errs = append(errs, ValidationError{"SERVER_PORT", "is required"})
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" || cfg.DBName == "" {
			errs = append(errs, ValidationError{"DB_HOST", "host and database name are required for postgres"})
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			errs = append(errs, ValidationError{"SQLITE_PATH", "is required for sqlite"})
		}
	default:
		errs = append(errs, ValidationError{"DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	if cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{"JWT_SECRET", "is required"})
	}
	if cfg.Env == Production {
		if cfg.JWTSecret == defaultJWTSecret {
			errs = append(errs, ValidationError{"JWT_SECRET", "must be changed from the default in production"})
		}
		if cfg.DBDriver == "sqlite" {
			errs = append(errs, ValidationError{"DB_DRIVER", "sqlite is not allowed in production"})
		}
	}
	if cfg.TokenTTL <= 0 {
		errs = append(errs, ValidationError{"TOKEN_TTL", "must be positive"})
	}

	if cfg.PageSize < 1 {
		errs = append(errs, ValidationError{"PAGE_SIZE", "must be at least 1"})
	}
	if cfg.UserPageSize < 1 {
		errs = append(errs, ValidationError{"USER_PAGE_SIZE", "must be at least 1"})
	}
	if cfg.MaxPageSize < cfg.PageSize || cfg.MaxPageSize < cfg.UserPageSize {
		errs = append(errs, ValidationError{"MAX_PAGE_SIZE", "must not be smaller than the page sizes"})
	}

	if cfg.RecipeCreateLimit < 0 {
		errs = append(errs, ValidationError{"RECIPE_CREATE_LIMIT", "must not be negative"})
	}
	if cfg.RecipeCreateLimit > 0 && cfg.RecipeCreateWindow <= 0 {
		errs = append(errs, ValidationError{"RECIPE_CREATE_WINDOW", "must be positive when rate limiting is enabled"})
	}

	if len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(msgs, "\n"))
	}

	return nil
}

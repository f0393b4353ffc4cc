// Package seed loads catalog data and demo accounts into the database.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/models"
)

type ingredientRecord struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type tagRecord struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

// Ingredients reads a JSON array of {name, measurement_unit} and inserts the
// pairs that are not present yet. It returns the number of inserted rows.
func Ingredients(ctx context.Context, db *gorm.DB, r io.Reader) (int, error) {
	var records []ingredientRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return 0, fmt.Errorf("failed to decode ingredients: %w", err)
	}

	inserted := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rec := range records {
			name := strings.TrimSpace(rec.Name)
			unit := strings.TrimSpace(rec.MeasurementUnit)
			if name == "" || unit == "" {
				continue
			}
			var count int64
			if err := tx.Model(&models.Ingredient{}).
				Where("name = ? AND measurement_unit = ?", name, unit).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			if err := tx.Create(&models.Ingredient{Name: name, MeasurementUnit: unit}).Error; err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to load ingredients: %w", err)
	}
	return inserted, nil
}

// Tags reads a JSON array of {name, color, slug}. Existing slugs are left alone.
func Tags(ctx context.Context, db *gorm.DB, r io.Reader) (int, error) {
	var records []tagRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return 0, fmt.Errorf("failed to decode tags: %w", err)
	}

	tags := make([]models.Tag, 0, len(records))
	for _, rec := range records {
		if rec.Slug == "" || rec.Name == "" {
			continue
		}
		tags = append(tags, models.Tag{Name: rec.Name, Color: strings.ToUpper(rec.Color), Slug: rec.Slug})
	}
	if len(tags) == 0 {
		return 0, nil
	}

	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "slug"}}, DoNothing: true}).
		Create(&tags)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to load tags: %w", result.Error)
	}
	return int(result.RowsAffected), nil
}

// Admin creates a catalog administrator unless the email is taken.
func Admin(ctx context.Context, db *gorm.DB, email, username, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var existing models.User
	err := db.WithContext(ctx).Where("email = ?", email).Limit(1).Find(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}
	if existing.ID != 0 {
		log.Info().Str("email", email).Msg("admin already exists, skipping")
		return &existing, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	admin := &models.User{
		Email:        email,
		Username:     username,
		FirstName:    "Admin",
		LastName:     "User",
		PasswordHash: string(hash),
		IsActive:     true,
		IsAdmin:      true,
		IsStaff:      true,
		IsSuperuser:  true,
	}
	if err := db.WithContext(ctx).Create(admin).Error; err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	return admin, nil
}

// DemoUsers creates n regular accounts with fake names that share password.
func DemoUsers(ctx context.Context, db *gorm.DB, n int, password string) ([]models.User, error) {
	if n <= 0 {
		return nil, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		person := gofakeit.Person()
		username := strings.ToLower(fmt.Sprintf("%s%s%d", person.FirstName, person.LastName, gofakeit.Number(1000, 9999)))
		users = append(users, models.User{
			Email:        username + "@example.com",
			Username:     username,
			FirstName:    person.FirstName,
			LastName:     person.LastName,
			PasswordHash: string(hash),
			IsActive:     true,
		})
	}

	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to create demo users: %w", err)
	}
	return users, nil
}

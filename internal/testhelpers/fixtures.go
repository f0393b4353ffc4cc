package testhelpers

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/pageza/foodgram/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "s3cret-pass"

var seq atomic.Int64

// CreateUser inserts a user with fake but unique identity fields. Options run before insert.
func CreateUser(t *testing.T, db *gorm.DB, opts ...func(*models.User)) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	n := seq.Add(1)
	user := &models.User{
		Email:        strings.ToLower(fmt.Sprintf("user%d.%s", n, gofakeit.Email())),
		Username:     fmt.Sprintf("%s%d", gofakeit.Username(), n),
		FirstName:    gofakeit.FirstName(),
		LastName:     gofakeit.LastName(),
		PasswordHash: string(hash),
		IsActive:     true,
	}
	for _, opt := range opts {
		opt(user)
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// AsAdmin marks a fixture user as an admin.
func AsAdmin(u *models.User) { u.IsAdmin = true }

func CreateTag(t *testing.T, db *gorm.DB, name string) *models.Tag {
	t.Helper()
	tag := &models.Tag{
		Name:  name,
		Color: gofakeit.HexColor(),
		Slug:  fmt.Sprintf("%s-%d", name, seq.Add(1)),
	}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create tag: %v", err)
	}
	return tag
}

func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ing := &models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(ing).Error; err != nil {
		t.Fatalf("failed to create ingredient: %v", err)
	}
	return ing
}

// CreateRecipe inserts a recipe for author with the given tags and ingredient amounts.
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, tags []*models.Tag, amounts map[*models.Ingredient]int) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Image:       "data:image/png;base64,iVBORw0KGgo=",
		Text:        gofakeit.Sentence(12),
		CookingTime: 10 + int(seq.Add(1)%50),
	}
	for _, tag := range tags {
		recipe.Tags = append(recipe.Tags, *tag)
	}
	for ing, amount := range amounts {
		recipe.Ingredients = append(recipe.Ingredients, models.IngredientAmount{IngredientID: ing.ID, Amount: amount})
	}
	if err := db.Omit("Tags.*").Create(recipe).Error; err != nil {
		t.Fatalf("failed to create recipe: %v", err)
	}
	return recipe
}

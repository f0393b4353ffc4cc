package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type RecipeService struct {
	db *gorm.DB
}

var _ IRecipeService = (*RecipeService)(nil)

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name ASC") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("ingredient_amounts.id ASC") }).
		Preload("Ingredients.Ingredient")
}

// ListRecipes returns recipes newest first. Membership filters only apply when requesterID is set.
func (s *RecipeService) ListRecipes(ctx context.Context, requesterID uint, filter types.RecipeFilter, page types.Page) ([]models.Recipe, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Recipe{})
	if filter.AuthorID != 0 {
		q = q.Where("recipes.author_id = ?", filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		q = q.Where("recipes.id IN (?)", s.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs))
	}
	if requesterID != 0 && filter.IsFavorited {
		q = q.Where("recipes.id IN (?)", s.db.Model(&models.Favorite{}).
			Select("recipe_id").Where("user_id = ?", requesterID))
	}
	if requesterID != 0 && filter.IsInShoppingCart {
		q = q.Where("recipes.id IN (?)", s.db.Model(&models.Cart{}).
			Select("recipe_id").Where("user_id = ?", requesterID))
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}

	var recipes []models.Recipe
	err := withDetails(q).
		Order("recipes.pub_date DESC, recipes.id DESC").
		Limit(page.Limit).Offset(page.Offset).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, total, nil
}

func (s *RecipeService) GetRecipe(ctx context.Context, id uint) (*models.Recipe, error) {
	return s.getRecipe(s.db.WithContext(ctx), id)
}

func (s *RecipeService) getRecipe(db *gorm.DB, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := withDetails(db).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return &recipe, nil
}

func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uint, req *types.RecipeRequest) (*models.Recipe, error) {
	if err := requireRecipeFields(req); err != nil {
		return nil, err
	}

	var id uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.validate(tx, req); err != nil {
			return err
		}

		name := strings.TrimSpace(*req.Name)
		var count int64
		if err := tx.Model(&models.Recipe{}).Where("author_id = ? AND name = ?", authorID, name).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check recipe name: %w", err)
		}
		if count > 0 {
			return invalid("name", "you already have a recipe with this name")
		}

		recipe := &models.Recipe{
			AuthorID:    authorID,
			Name:        name,
			Image:       *req.Image,
			Text:        *req.Text,
			CookingTime: int(*req.CookingTime),
		}
		if err := tx.Omit("Tags", "Ingredients", "Author").Create(recipe).Error; err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}
		if err := setTags(tx, recipe.ID, *req.Tags); err != nil {
			return err
		}
		if err := setIngredients(tx, recipe.ID, *req.Ingredients); err != nil {
			return err
		}
		id = recipe.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint("recipe_id", id).Uint("author_id", authorID).Msg("recipe created")
	return s.GetRecipe(ctx, id)
}

// UpdateRecipe applies the fields present in req. Tags and ingredients are
// replaced wholesale only when their keys were sent.
func (s *RecipeService) UpdateRecipe(ctx context.Context, requesterID, id uint, req *types.RecipeRequest) (*models.Recipe, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipeNotFound
			}
			return fmt.Errorf("failed to get recipe: %w", err)
		}
		if recipe.AuthorID != requesterID {
			return ErrNotRecipeAuthor
		}

		if err := validatePresentFields(req); err != nil {
			return err
		}
		if err := s.validate(tx, req); err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if req.Name != nil {
			updates["name"] = strings.TrimSpace(*req.Name)
		}
		if req.Image != nil {
			updates["image"] = *req.Image
		}
		if req.Text != nil {
			updates["text"] = *req.Text
		}
		if req.CookingTime != nil {
			updates["cooking_time"] = int(*req.CookingTime)
		}
		if len(updates) > 0 {
			if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update recipe: %w", err)
			}
		}

		if req.Tags != nil {
			if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", id).Error; err != nil {
				return fmt.Errorf("failed to clear tags: %w", err)
			}
			if err := setTags(tx, id, *req.Tags); err != nil {
				return err
			}
		}
		if req.Ingredients != nil {
			if err := tx.Where("recipe_id = ?", id).Delete(&models.IngredientAmount{}).Error; err != nil {
				return fmt.Errorf("failed to clear ingredients: %w", err)
			}
			if err := setIngredients(tx, id, *req.Ingredients); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetRecipe(ctx, id)
}

func (s *RecipeService) DeleteRecipe(ctx context.Context, requesterID, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipeNotFound
			}
			return fmt.Errorf("failed to get recipe: %w", err)
		}
		if recipe.AuthorID != requesterID {
			return ErrNotRecipeAuthor
		}

		if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete recipe tags: %w", err)
		}
		for _, model := range []interface{}{&models.IngredientAmount{}, &models.Favorite{}, &models.Cart{}} {
			if err := tx.Where("recipe_id = ?", id).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to delete recipe relations: %w", err)
			}
		}
		if err := tx.Delete(&recipe).Error; err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}
		return nil
	})
}

// validate checks the ingredient list, then tags, then cooking time; absent keys are skipped.
func (s *RecipeService) validate(tx *gorm.DB, req *types.RecipeRequest) error {
	if req.Ingredients != nil {
		if err := validateIngredients(tx, *req.Ingredients); err != nil {
			return err
		}
	}
	if req.Tags != nil {
		if err := validateTags(tx, *req.Tags); err != nil {
			return err
		}
	}
	if req.CookingTime != nil && *req.CookingTime <= 0 {
		return invalid("cooking_time", "cooking time must be greater than 0")
	}
	return nil
}

func requireRecipeFields(req *types.RecipeRequest) error {
	switch {
	case req.Ingredients == nil:
		return invalid("ingredients", "this field is required")
	case req.Tags == nil:
		return invalid("tags", "this field is required")
	case req.Name == nil:
		return invalid("name", "this field is required")
	case req.Image == nil:
		return invalid("image", "this field is required")
	case req.Text == nil:
		return invalid("text", "this field is required")
	case req.CookingTime == nil:
		return invalid("cooking_time", "this field is required")
	}
	return validatePresentFields(req)
}

func validatePresentFields(req *types.RecipeRequest) error {
	switch {
	case req.Name != nil && strings.TrimSpace(*req.Name) == "":
		return invalid("name", "this field may not be blank")
	case req.Image != nil && strings.TrimSpace(*req.Image) == "":
		return invalid("image", "this field may not be blank")
	case req.Text != nil && strings.TrimSpace(*req.Text) == "":
		return invalid("text", "this field may not be blank")
	}
	return nil
}

func validateIngredients(tx *gorm.DB, items []types.IngredientInput) error {
	if len(items) == 0 {
		return invalid("ingredients", "at least one ingredient is required")
	}

	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, uint(item.ID))
	}
	var existing []uint
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Pluck("id", &existing).Error; err != nil {
		return fmt.Errorf("failed to load ingredients: %w", err)
	}
	found := make(map[uint]bool, len(existing))
	for _, id := range existing {
		found[id] = true
	}

	seen := make(map[uint]bool, len(items))
	for _, item := range items {
		id := uint(item.ID)
		if !found[id] {
			return fmt.Errorf("%w: %d", ErrIngredientNotFound, item.ID)
		}
		if seen[id] {
			return invalid("ingredients", "ingredients must be unique")
		}
		seen[id] = true
		if item.Amount <= 0 {
			return invalid("amount", "ingredient amount must be greater than 0")
		}
	}
	return nil
}

func validateTags(tx *gorm.DB, tags []types.FlexInt) error {
	if len(tags) == 0 {
		return invalid("tags", "at least one tag is required")
	}

	seen := make(map[uint]bool, len(tags))
	ids := make([]uint, 0, len(tags))
	for _, t := range tags {
		id := uint(t)
		if seen[id] {
			return invalid("tags", "tags must be unique")
		}
		seen[id] = true
		ids = append(ids, id)
	}

	var count int64
	if err := tx.Model(&models.Tag{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to load tags: %w", err)
	}
	if int(count) != len(ids) {
		return ErrTagNotFound
	}
	return nil
}

func setTags(tx *gorm.DB, recipeID uint, tags []types.FlexInt) error {
	rows := make([]map[string]interface{}, 0, len(tags))
	for _, t := range tags {
		rows = append(rows, map[string]interface{}{"recipe_id": recipeID, "tag_id": uint(t)})
	}
	if err := tx.Table("recipe_tags").Create(rows).Error; err != nil {
		return fmt.Errorf("failed to set tags: %w", err)
	}
	return nil
}

func setIngredients(tx *gorm.DB, recipeID uint, items []types.IngredientInput) error {
	amounts := make([]models.IngredientAmount, 0, len(items))
	for _, item := range items {
		amounts = append(amounts, models.IngredientAmount{
			RecipeID:     recipeID,
			IngredientID: uint(item.ID),
			Amount:       int(item.Amount),
		})
	}
	if err := tx.Omit("Ingredient").Create(&amounts).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return invalid("ingredients", "ingredients must be unique")
		}
		return fmt.Errorf("failed to set ingredients: %w", err)
	}
	return nil
}

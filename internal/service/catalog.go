package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pageza/foodgram/backend/internal/cache"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

const (
	tagCachePrefix        = "catalog:tags:"
	ingredientCachePrefix = "catalog:ingredients:"
)

// CatalogService manages tags and ingredients. Reads go through the cache when one is set.
type CatalogService struct {
	db    *gorm.DB
	cache *cache.Cache
}

var _ ICatalogService = (*CatalogService)(nil)

// NewCatalogService creates the service; c may be nil.
func NewCatalogService(db *gorm.DB, c *cache.Cache) *CatalogService {
	return &CatalogService{db: db, cache: c}
}

type tagPage struct {
	Items []models.Tag `json:"items"`
	Total int64        `json:"total"`
}

type ingredientPage struct {
	Items []models.Ingredient `json:"items"`
	Total int64               `json:"total"`
}

func (s *CatalogService) ListTags(ctx context.Context, page types.Page) ([]models.Tag, int64, error) {
	var result tagPage
	key := fmt.Sprintf("%slist:%d:%d", tagCachePrefix, page.Limit, page.Offset)
	err := s.cache.Remember(ctx, key, &result, func() error {
		if err := s.db.WithContext(ctx).Model(&models.Tag{}).Count(&result.Total).Error; err != nil {
			return fmt.Errorf("failed to count tags: %w", err)
		}
		err := s.db.WithContext(ctx).Order("name ASC, id ASC").
			Limit(page.Limit).Offset(page.Offset).
			Find(&result.Items).Error
		if err != nil {
			return fmt.Errorf("failed to list tags: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return result.Items, result.Total, nil
}

func (s *CatalogService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	key := fmt.Sprintf("%s%d", tagCachePrefix, id)
	err := s.cache.Remember(ctx, key, &tag, func() error {
		if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTagNotFound
			}
			return fmt.Errorf("failed to get tag: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (s *CatalogService) CreateTag(ctx context.Context, req *types.CreateTagRequest) (*models.Tag, error) {
	tag := &models.Tag{
		Name:  strings.TrimSpace(req.Name),
		Color: strings.ToUpper(req.Color),
		Slug:  strings.TrimSpace(req.Slug),
	}
	if err := s.checkSlug(ctx, tag.Slug, 0); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, invalid("slug", "a tag with this slug already exists")
		}
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	s.cache.InvalidatePrefix(ctx, tagCachePrefix)
	return tag, nil
}

func (s *CatalogService) UpdateTag(ctx context.Context, id uint, req *types.UpdateTagRequest) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}

	if req.Name != nil {
		if tag.Name = strings.TrimSpace(*req.Name); tag.Name == "" {
			return nil, invalid("name", "this field may not be blank")
		}
	}
	if req.Color != nil {
		tag.Color = strings.ToUpper(*req.Color)
	}
	if req.Slug != nil {
		if tag.Slug = strings.TrimSpace(*req.Slug); tag.Slug == "" {
			return nil, invalid("slug", "this field may not be blank")
		}
		if err := s.checkSlug(ctx, tag.Slug, tag.ID); err != nil {
			return nil, err
		}
	}

	if err := s.db.WithContext(ctx).Save(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, invalid("slug", "a tag with this slug already exists")
		}
		return nil, fmt.Errorf("failed to update tag: %w", err)
	}
	s.cache.InvalidatePrefix(ctx, tagCachePrefix)
	return &tag, nil
}

func (s *CatalogService) DeleteTag(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM recipe_tags WHERE tag_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Tag{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTagNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrTagNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	s.cache.InvalidatePrefix(ctx, tagCachePrefix)
	return nil
}

func (s *CatalogService) checkSlug(ctx context.Context, slug string, exceptID uint) error {
	if slug == "" {
		return invalid("slug", "this field may not be blank")
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Tag{}).
		Where("slug = ? AND id <> ?", slug, exceptID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check slug: %w", err)
	}
	if count > 0 {
		return invalid("slug", "a tag with this slug already exists")
	}
	return nil
}

// ListIngredients returns ingredients whose name starts with namePrefix, case-insensitively.
func (s *CatalogService) ListIngredients(ctx context.Context, namePrefix string, page types.Page) ([]models.Ingredient, int64, error) {
	prefix := strings.ToLower(strings.TrimSpace(namePrefix))

	var result ingredientPage
	key := fmt.Sprintf("%slist:%d:%d:%s", ingredientCachePrefix, page.Limit, page.Offset, prefix)
	err := s.cache.Remember(ctx, key, &result, func() error {
		q := s.db.WithContext(ctx).Model(&models.Ingredient{})
		if prefix != "" {
			q = q.Where("LOWER(name) LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%")
		}
		q = q.Session(&gorm.Session{})

		if err := q.Count(&result.Total).Error; err != nil {
			return fmt.Errorf("failed to count ingredients: %w", err)
		}
		err := q.Order("name ASC, id ASC").
			Limit(page.Limit).Offset(page.Offset).
			Find(&result.Items).Error
		if err != nil {
			return fmt.Errorf("failed to list ingredients: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return result.Items, result.Total, nil
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ing models.Ingredient
	key := fmt.Sprintf("%s%d", ingredientCachePrefix, id)
	err := s.cache.Remember(ctx, key, &ing, func() error {
		if err := s.db.WithContext(ctx).First(&ing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrIngredientNotFound
			}
			return fmt.Errorf("failed to get ingredient: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ing, nil
}

func (s *CatalogService) CreateIngredient(ctx context.Context, req *types.CreateIngredientRequest) (*models.Ingredient, error) {
	ing := &models.Ingredient{
		Name:            strings.TrimSpace(req.Name),
		MeasurementUnit: strings.TrimSpace(req.MeasurementUnit),
	}
	if err := s.db.WithContext(ctx).Create(ing).Error; err != nil {
		return nil, fmt.Errorf("failed to create ingredient: %w", err)
	}
	s.cache.InvalidatePrefix(ctx, ingredientCachePrefix)
	return ing, nil
}

func (s *CatalogService) UpdateIngredient(ctx context.Context, id uint, req *types.UpdateIngredientRequest) (*models.Ingredient, error) {
	var ing models.Ingredient
	if err := s.db.WithContext(ctx).First(&ing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, fmt.Errorf("failed to get ingredient: %w", err)
	}
	if req.Name != nil {
		if ing.Name = strings.TrimSpace(*req.Name); ing.Name == "" {
			return nil, invalid("name", "this field may not be blank")
		}
	}
	if req.MeasurementUnit != nil {
		if ing.MeasurementUnit = strings.TrimSpace(*req.MeasurementUnit); ing.MeasurementUnit == "" {
			return nil, invalid("measurement_unit", "this field may not be blank")
		}
	}
	if err := s.db.WithContext(ctx).Save(&ing).Error; err != nil {
		return nil, fmt.Errorf("failed to update ingredient: %w", err)
	}
	s.cache.InvalidatePrefix(ctx, ingredientCachePrefix)
	return &ing, nil
}

// DeleteIngredient removes the ingredient together with the recipe amounts that use it.
func (s *CatalogService) DeleteIngredient(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ingredient_id = ?", id).Delete(&models.IngredientAmount{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Ingredient{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrIngredientNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrIngredientNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete ingredient: %w", err)
	}
	s.cache.InvalidatePrefix(ctx, ingredientCachePrefix)
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

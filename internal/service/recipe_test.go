package service_test

import (
	"context"
	"testing"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recipeFixture struct {
	db     *gorm.DB
	svc    *service.RecipeService
	author *models.User
	tags   []*models.Tag
	salt   *models.Ingredient
	flour  *models.Ingredient
}

func setupRecipeService(t *testing.T) *recipeFixture {
	db := testhelpers.SetupTestDatabase(t)
	return &recipeFixture{
		db:     db,
		svc:    service.NewRecipeService(db),
		author: testhelpers.CreateUser(t, db),
		tags:   []*models.Tag{testhelpers.CreateTag(t, db, "breakfast"), testhelpers.CreateTag(t, db, "dinner")},
		salt:   testhelpers.CreateIngredient(t, db, "salt", "g"),
		flour:  testhelpers.CreateIngredient(t, db, "flour", "g"),
	}
}

func strPtr(s string) *string { return &s }

func (f *recipeFixture) request(name string) *types.RecipeRequest {
	cooking := types.FlexInt(15)
	ingredients := []types.IngredientInput{
		{ID: types.FlexInt(f.salt.ID), Amount: 5},
		{ID: types.FlexInt(f.flour.ID), Amount: 200},
	}
	tags := []types.FlexInt{types.FlexInt(f.tags[0].ID), types.FlexInt(f.tags[1].ID)}
	return &types.RecipeRequest{
		Name:        strPtr(name),
		Image:       strPtr("data:image/png;base64,iVBORw0KGgo="),
		Text:        strPtr("Mix and bake."),
		CookingTime: &cooking,
		Ingredients: &ingredients,
		Tags:        &tags,
	}
}

func validationField(t *testing.T, err error) string {
	t.Helper()
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	return verr.Field
}

func TestCreateRecipe(t *testing.T) {
	f := setupRecipeService(t)

	recipe, err := f.svc.CreateRecipe(context.Background(), f.author.ID, f.request("bread"))
	require.NoError(t, err)

	assert.Equal(t, "bread", recipe.Name)
	assert.Equal(t, f.author.ID, recipe.Author.ID)
	assert.Len(t, recipe.Tags, 2)
	require.Len(t, recipe.Ingredients, 2)
	assert.Equal(t, "salt", recipe.Ingredients[0].Ingredient.Name)
	assert.Equal(t, 5, recipe.Ingredients[0].Amount)
}

func TestCreateRecipeTagValidation(t *testing.T) {
	f := setupRecipeService(t)
	ctx := context.Background()

	req := f.request("empty tags")
	*req.Tags = []types.FlexInt{}
	_, err := f.svc.CreateRecipe(ctx, f.author.ID, req)
	assert.Equal(t, "tags", validationField(t, err))

	req = f.request("duplicate tags")
	*req.Tags = []types.FlexInt{types.FlexInt(f.tags[0].ID), types.FlexInt(f.tags[0].ID)}
	_, err = f.svc.CreateRecipe(ctx, f.author.ID, req)
	assert.Equal(t, "tags", validationField(t, err))

	req = f.request("unknown tag")
	*req.Tags = []types.FlexInt{9999}
	_, err = f.svc.CreateRecipe(ctx, f.author.ID, req)
	assert.ErrorIs(t, err, service.ErrTagNotFound)

	req = f.request("unique tags")
	*req.Tags = []types.FlexInt{types.FlexInt(f.tags[1].ID)}
	_, err = f.svc.CreateRecipe(ctx, f.author.ID, req)
	assert.NoError(t, err)
}

func TestCreateRecipeIngredientValidation(t *testing.T) {
	f := setupRecipeService(t)
	ctx := context.Background()

	req := f.request("duplicate ingredient")
	*req.Ingredients = []types.IngredientInput{
		{ID: types.FlexInt(f.salt.ID), Amount: 1},
		{ID: types.FlexInt(f.salt.ID), Amount: 2},
	}
	_, err := f.svc.CreateRecipe(ctx, f.author.ID, req)
	assert.Equal(t, "ingredients", validationField(t, err))

	for _, amount := range []types.FlexInt{0, -3} {
		req = f.request("bad amount")
		*req.Ingredients = []types.IngredientInput{{ID: types.FlexInt(f.salt.ID), Amount: amount}}
		_, err = f.svc.CreateRecipe(ctx, f.author.ID, req)
		assert.Equal(t, "amount", validationField(t, err))
	}

	req = f.request("no ingredients")
	*req.Ingredients = nil
	_, err = f.svc.CreateRecipe(ctx, f.author.ID, req)
	assert.Equal(t, "ingredients", validationField(t, err))

	req = f.request("unknown ingredient")
	*req.Ingredients = []types.IngredientInput{{ID: 9999, Amount: 1}}
	_, err = f.svc.CreateRecipe(ctx, f.author.ID, req)
	assert.ErrorIs(t, err, service.ErrIngredientNotFound)

	var count int64
	f.db.Model(&models.Recipe{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreateRecipeCookingTimeAndRequiredFields(t *testing.T) {
	f := setupRecipeService(t)
	ctx := context.Background()

	req := f.request("instant")
	zero := types.FlexInt(0)
	req.CookingTime = &zero
	_, err := f.svc.CreateRecipe(ctx, f.author.ID, req)
	assert.Equal(t, "cooking_time", validationField(t, err))

	req = f.request("no text")
	req.Text = nil
	_, err = f.svc.CreateRecipe(ctx, f.author.ID, req)
	assert.Equal(t, "text", validationField(t, err))

	req = f.request("  ")
	_, err = f.svc.CreateRecipe(ctx, f.author.ID, req)
	assert.Equal(t, "name", validationField(t, err))
}

func TestCreateRecipeDuplicateName(t *testing.T) {
	f := setupRecipeService(t)
	ctx := context.Background()
	other := testhelpers.CreateUser(t, f.db)

	_, err := f.svc.CreateRecipe(ctx, f.author.ID, f.request("pancakes"))
	require.NoError(t, err)

	_, err = f.svc.CreateRecipe(ctx, f.author.ID, f.request("pancakes"))
	assert.Equal(t, "name", validationField(t, err))

	_, err = f.svc.CreateRecipe(ctx, other.ID, f.request("pancakes"))
	assert.NoError(t, err)
}

func TestUpdateRecipeKeepsIngredientsWhenAbsent(t *testing.T) {
	f := setupRecipeService(t)
	ctx := context.Background()
	recipe, err := f.svc.CreateRecipe(ctx, f.author.ID, f.request("porridge"))
	require.NoError(t, err)

	cooking := types.FlexInt(25)
	updated, err := f.svc.UpdateRecipe(ctx, f.author.ID, recipe.ID, &types.RecipeRequest{
		Name:        strPtr("better porridge"),
		CookingTime: &cooking,
	})
	require.NoError(t, err)
	assert.Equal(t, "better porridge", updated.Name)
	assert.Equal(t, 25, updated.CookingTime)
	require.Len(t, updated.Ingredients, 2)
	assert.Equal(t, recipe.Ingredients[0].ID, updated.Ingredients[0].ID)
	assert.Equal(t, recipe.Ingredients[1].Amount, updated.Ingredients[1].Amount)
	assert.Len(t, updated.Tags, 2)
}

func TestUpdateRecipeReplacesIngredientsAndTags(t *testing.T) {
	f := setupRecipeService(t)
	ctx := context.Background()
	recipe, err := f.svc.CreateRecipe(ctx, f.author.ID, f.request("pie"))
	require.NoError(t, err)

	ingredients := []types.IngredientInput{{ID: types.FlexInt(f.flour.ID), Amount: 500}}
	tags := []types.FlexInt{types.FlexInt(f.tags[1].ID)}
	updated, err := f.svc.UpdateRecipe(ctx, f.author.ID, recipe.ID, &types.RecipeRequest{
		Ingredients: &ingredients,
		Tags:        &tags,
	})
	require.NoError(t, err)

	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, f.flour.ID, updated.Ingredients[0].IngredientID)
	assert.Equal(t, 500, updated.Ingredients[0].Amount)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, f.tags[1].ID, updated.Tags[0].ID)

	var count int64
	f.db.Model(&models.IngredientAmount{}).Where("recipe_id = ?", recipe.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	empty := []types.IngredientInput{}
	_, err = f.svc.UpdateRecipe(ctx, f.author.ID, recipe.ID, &types.RecipeRequest{Ingredients: &empty})
	assert.Equal(t, "ingredients", validationField(t, err))
}

func TestUpdateAndDeleteRequireAuthor(t *testing.T) {
	f := setupRecipeService(t)
	ctx := context.Background()
	stranger := testhelpers.CreateUser(t, f.db)
	recipe, err := f.svc.CreateRecipe(ctx, f.author.ID, f.request("tart"))
	require.NoError(t, err)

	_, err = f.svc.UpdateRecipe(ctx, stranger.ID, recipe.ID, &types.RecipeRequest{Name: strPtr("mine")})
	assert.ErrorIs(t, err, service.ErrNotRecipeAuthor)
	assert.ErrorIs(t, f.svc.DeleteRecipe(ctx, stranger.ID, recipe.ID), service.ErrNotRecipeAuthor)

	_, err = f.svc.UpdateRecipe(ctx, f.author.ID, 9999, &types.RecipeRequest{})
	assert.ErrorIs(t, err, service.ErrRecipeNotFound)
}

func TestDeleteRecipeRemovesRelations(t *testing.T) {
	f := setupRecipeService(t)
	ctx := context.Background()
	recipe, err := f.svc.CreateRecipe(ctx, f.author.ID, f.request("cake"))
	require.NoError(t, err)
	interactions := service.NewInteractionService(f.db)
	_, err = interactions.AddFavorite(ctx, f.author.ID, recipe.ID)
	require.NoError(t, err)
	_, err = interactions.AddToCart(ctx, f.author.ID, recipe.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteRecipe(ctx, f.author.ID, recipe.ID))

	_, err = f.svc.GetRecipe(ctx, recipe.ID)
	assert.ErrorIs(t, err, service.ErrRecipeNotFound)
	for _, model := range []interface{}{&models.IngredientAmount{}, &models.Favorite{}, &models.Cart{}} {
		var count int64
		f.db.Model(model).Count(&count)
		assert.Zero(t, count)
	}
	var links int64
	f.db.Table("recipe_tags").Count(&links)
	assert.Zero(t, links)
}

func TestListRecipesFilters(t *testing.T) {
	f := setupRecipeService(t)
	ctx := context.Background()
	other := testhelpers.CreateUser(t, f.db)

	breakfast := f.request("omelette")
	*breakfast.Tags = []types.FlexInt{types.FlexInt(f.tags[0].ID)}
	omelette, err := f.svc.CreateRecipe(ctx, f.author.ID, breakfast)
	require.NoError(t, err)

	dinner := f.request("steak")
	*dinner.Tags = []types.FlexInt{types.FlexInt(f.tags[1].ID)}
	steak, err := f.svc.CreateRecipe(ctx, other.ID, dinner)
	require.NoError(t, err)

	page := types.Page{Limit: 10}

	all, total, err := f.svc.ListRecipes(ctx, 0, types.RecipeFilter{}, page)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, steak.ID, all[0].ID)

	byAuthor, _, err := f.svc.ListRecipes(ctx, 0, types.RecipeFilter{AuthorID: f.author.ID}, page)
	require.NoError(t, err)
	require.Len(t, byAuthor, 1)
	assert.Equal(t, omelette.ID, byAuthor[0].ID)

	byTag, _, err := f.svc.ListRecipes(ctx, 0, types.RecipeFilter{TagSlugs: []string{f.tags[1].Slug}}, page)
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, steak.ID, byTag[0].ID)

	anyTag, _, err := f.svc.ListRecipes(ctx, 0, types.RecipeFilter{TagSlugs: []string{f.tags[0].Slug, f.tags[1].Slug}}, page)
	require.NoError(t, err)
	assert.Len(t, anyTag, 2)

	interactions := service.NewInteractionService(f.db)
	_, err = interactions.AddFavorite(ctx, f.author.ID, steak.ID)
	require.NoError(t, err)

	favorites, total, err := f.svc.ListRecipes(ctx, f.author.ID, types.RecipeFilter{IsFavorited: true}, page)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, steak.ID, favorites[0].ID)

	anonymous, _, err := f.svc.ListRecipes(ctx, 0, types.RecipeFilter{IsFavorited: true}, page)
	require.NoError(t, err)
	assert.Len(t, anonymous, 2)

	cart, _, err := f.svc.ListRecipes(ctx, f.author.ID, types.RecipeFilter{IsInShoppingCart: true}, page)
	require.NoError(t, err)
	assert.Empty(t, cart)
}

package api

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// presenter turns models into response bodies from the point of view of a viewer.
// A zero viewer is anonymous and sees every flag as false.
type presenter struct {
	users        service.IUserService
	interactions service.IInteractionService
}

func userResponse(u *models.User, subscribed bool) types.UserResponse {
	return types.UserResponse{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

func shortRecipe(r *models.Recipe) types.RecipeShortResponse {
	return types.RecipeShortResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

func (p *presenter) userList(ctx context.Context, viewerID uint, users []models.User) ([]types.UserResponse, error) {
	ids := make([]uint, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	subscribed, err := p.users.SubscribedTo(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}

	out := make([]types.UserResponse, len(users))
	for i := range users {
		out[i] = userResponse(&users[i], subscribed[users[i].ID])
	}
	return out, nil
}

func (p *presenter) user(ctx context.Context, viewerID uint, u *models.User) (types.UserResponse, error) {
	out, err := p.userList(ctx, viewerID, []models.User{*u})
	if err != nil {
		return types.UserResponse{}, err
	}
	return out[0], nil
}

func (p *presenter) recipes(ctx context.Context, viewerID uint, recipes []models.Recipe) ([]types.RecipeResponse, error) {
	recipeIDs := make([]uint, len(recipes))
	authorIDs := make([]uint, 0, len(recipes))
	seen := make(map[uint]bool)
	for i, r := range recipes {
		recipeIDs[i] = r.ID
		if !seen[r.AuthorID] {
			seen[r.AuthorID] = true
			authorIDs = append(authorIDs, r.AuthorID)
		}
	}

	favorited, inCart, err := p.interactions.Flags(ctx, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	subscribed, err := p.users.SubscribedTo(ctx, viewerID, authorIDs)
	if err != nil {
		return nil, err
	}

	out := make([]types.RecipeResponse, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		tags := r.Tags
		if tags == nil {
			tags = []models.Tag{}
		}
		ingredients := make([]types.RecipeIngredientResponse, len(r.Ingredients))
		for j, amount := range r.Ingredients {
			ingredients[j] = types.RecipeIngredientResponse{
				ID:              amount.IngredientID,
				Name:            amount.Ingredient.Name,
				MeasurementUnit: amount.Ingredient.MeasurementUnit,
				Amount:          amount.Amount,
			}
		}
		out[i] = types.RecipeResponse{
			ID:               r.ID,
			Tags:             tags,
			Author:           userResponse(&r.Author, subscribed[r.AuthorID]),
			Ingredients:      ingredients,
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            r.Image,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
		}
	}
	return out, nil
}

func (p *presenter) recipe(ctx context.Context, viewerID uint, r *models.Recipe) (types.RecipeResponse, error) {
	out, err := p.recipes(ctx, viewerID, []models.Recipe{*r})
	if err != nil {
		return types.RecipeResponse{}, err
	}
	return out[0], nil
}

// follows renders authors with their newest recipes. A negative recipesLimit embeds all of them.
func (p *presenter) follows(ctx context.Context, viewerID uint, authors []models.User, recipesLimit int) ([]types.FollowResponse, error) {
	ids := make([]uint, len(authors))
	for i := range authors {
		ids[i] = authors[i].ID
	}
	subscribed, err := p.users.SubscribedTo(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}
	counts, err := p.users.RecipeCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]types.FollowResponse, len(authors))
	for i := range authors {
		a := &authors[i]
		recipes, err := p.users.AuthorRecipes(ctx, a.ID, recipesLimit)
		if err != nil {
			return nil, err
		}
		short := make([]types.RecipeShortResponse, len(recipes))
		for j := range recipes {
			short[j] = shortRecipe(&recipes[j])
		}
		out[i] = types.FollowResponse{
			Email:        a.Email,
			ID:           a.ID,
			Username:     a.Username,
			FirstName:    a.FirstName,
			LastName:     a.LastName,
			IsSubscribed: subscribed[a.ID],
			Recipes:      short,
			RecipesCount: counts[a.ID],
		}
	}
	return out, nil
}

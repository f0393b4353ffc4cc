package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestListAndGetUsers(t *testing.T) {
	a := setupAPI(t)
	for i := 0; i < 7; i++ {
		testhelpers.CreateUser(t, a.db)
	}
	user, _ := a.userWithToken()

	w := a.do(http.MethodGet, "/api/users", "", nil)
	body := decode(t, w)
	assert.Equal(t, float64(8), body["count"])
	assert.Len(t, body["results"], 6)
	assert.NotNil(t, body["next"])

	assert.Len(t, results(t, a.do(http.MethodGet, "/api/users?limit=10", "", nil)), 8)

	w = a.do(http.MethodGet, fmt.Sprintf("/api/users/%d", user.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, user.Username, body["username"])
	assert.Equal(t, false, body["is_subscribed"])
	assert.NotContains(t, body, "password")

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/users/9999", "", nil).Code)
}

func TestSubscribe(t *testing.T) {
	a := setupAPI(t)
	reader, token := a.userWithToken()
	author := testhelpers.CreateUser(t, a.db)
	tag := testhelpers.CreateTag(t, a.db, "lunch")
	salt := testhelpers.CreateIngredient(t, a.db, "salt", "g")
	for i := 0; i < 3; i++ {
		testhelpers.CreateRecipe(t, a.db, author, fmt.Sprintf("Dish %d", i), []*models.Tag{tag}, map[*models.Ingredient]int{salt: 1})
	}
	path := fmt.Sprintf("/api/users/%d/subscribe", author.ID)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodPost, "/api/users/9999/subscribe", token, nil).Code)

	w := a.do(http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe", reader.ID), token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodPost, path+"?recipes_limit=2", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, float64(author.ID), body["id"])
	assert.Equal(t, true, body["is_subscribed"])
	assert.Equal(t, float64(3), body["recipes_count"])
	assert.Len(t, body["recipes"], 2)

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, path, token, nil).Code)

	w = a.do(http.MethodGet, fmt.Sprintf("/api/users/%d", author.ID), token, nil)
	assert.Equal(t, true, decode(t, w)["is_subscribed"])

	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"?recipes_limit=0", 0},
		{"?recipes_limit=1", 1},
		{"?recipes_limit=abc", 3},
		{"?recipes_limit=-2", 3},
	}
	for _, tt := range tests {
		list := results(t, a.do(http.MethodGet, "/api/users/subscriptions"+tt.query, token, nil))
		require.Len(t, list, 1)
		follow := list[0].(map[string]interface{})
		assert.Len(t, follow["recipes"], tt.want, tt.query)
		assert.Equal(t, float64(3), follow["recipes_count"], tt.query)
	}
}

func TestUnsubscribe(t *testing.T) {
	a := setupAPI(t)
	reader, token := a.userWithToken()
	author := testhelpers.CreateUser(t, a.db)
	path := fmt.Sprintf("/api/users/%d/subscribe", author.ID)

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodDelete, path, token, nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodDelete, fmt.Sprintf("/api/users/%d/subscribe", reader.ID), token, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodDelete, "/api/users/9999/subscribe", token, nil).Code)

	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, path, token, nil).Code)
	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, path, token, nil).Code)
}

func TestListSubscriptions(t *testing.T) {
	a := setupAPI(t)
	_, token := a.userWithToken()
	first := testhelpers.CreateUser(t, a.db)
	second := testhelpers.CreateUser(t, a.db)

	for _, author := range []*models.User{first, second} {
		require.Equal(t, http.StatusCreated, a.do(http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe", author.ID), token, nil).Code)
	}

	list := results(t, a.do(http.MethodGet, "/api/users/subscriptions", token, nil))
	require.Len(t, list, 2)
	newest := list[0].(map[string]interface{})
	assert.Equal(t, float64(second.ID), newest["id"])
	assert.Equal(t, true, newest["is_subscribed"])
	assert.Equal(t, float64(0), newest["recipes_count"])
	assert.Empty(t, newest["recipes"])
}

func TestHealthAndMetrics(t *testing.T) {
	a := setupAPI(t)

	w := a.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])

	a.do(http.MethodGet, "/api/tags", "", nil)
	w = a.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "foodgram_http_requests_total")

	w = a.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

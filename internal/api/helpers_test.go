package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/cache"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/router"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

// testAPI is a fully wired router over an in-memory database and miniredis.
type testAPI struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
	auth   *service.AuthService
	redis  *miniredis.Miniredis
}

func setupAPI(t *testing.T) *testAPI {
	return setupAPIWithLimit(t, 100)
}

func setupAPIWithLimit(t *testing.T, recipeLimit int) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDatabase(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := &config.Config{PageSize: 20, UserPageSize: 6, MaxPageSize: 100}
	auth := service.NewAuthService(db, "test-secret", time.Hour, service.NewRedisTokenStore(client))
	svc := api.Services{
		Auth:          auth,
		Users:         service.NewUserService(db),
		Catalog:       service.NewCatalogService(db, cache.New(client, time.Minute)),
		Recipes:       service.NewRecipeService(db),
		Interactions:  service.NewInteractionService(db),
		RecipeLimiter: middleware.NewRecipeCreationRateLimiter(client, recipeLimit, time.Hour),
	}

	return &testAPI{
		t:      t,
		router: router.SetupRouter(cfg, zerolog.Nop(), svc, api.NewHealthHandler(db, client)),
		db:     db,
		auth:   auth,
		redis:  mr,
	}
}

// userWithToken creates a user and signs a token for it.
func (a *testAPI) userWithToken(opts ...func(*models.User)) (*models.User, string) {
	a.t.Helper()
	user := testhelpers.CreateUser(a.t, a.db, opts...)
	token, err := a.auth.GenerateToken(user)
	require.NoError(a.t, err)
	return user, token
}

func (a *testAPI) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func results(t *testing.T, w *httptest.ResponseRecorder) []interface{} {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	list, ok := decode(t, w)["results"].([]interface{})
	require.True(t, ok, "missing results in %s", w.Body.String())
	return list
}

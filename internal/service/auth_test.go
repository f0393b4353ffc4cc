package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAuthService(t *testing.T) (*service.AuthService, *gorm.DB, *miniredis.Miniredis) {
	db := testhelpers.SetupTestDatabase(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return service.NewAuthService(db, "test-secret", time.Hour, service.NewRedisTokenStore(client)), db, mr
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := setupAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, &types.RegisterRequest{
		Email:     "Cook@Example.com",
		Username:  "cook",
		FirstName: "Ann",
		LastName:  "Cook",
		Password:  "long-password",
	})
	require.NoError(t, err)
	assert.Equal(t, "cook@example.com", user.Email)
	assert.NotEqual(t, "long-password", user.PasswordHash)

	token, err := svc.Login(ctx, "cook@example.com", "long-password")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.NotEmpty(t, claims.ID)

	_, err = svc.Login(ctx, "cook@example.com", "wrong-password")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@example.com", "long-password")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc, db, _ := setupAuthService(t)
	existing := testhelpers.CreateUser(t, db)

	_, err := svc.Register(context.Background(), &types.RegisterRequest{
		Email: existing.Email, Username: "fresh", FirstName: "a", LastName: "b", Password: "long-password",
	})
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Field)

	_, err = svc.Register(context.Background(), &types.RegisterRequest{
		Email: "fresh@example.com", Username: existing.Username, FirstName: "a", LastName: "b", Password: "long-password",
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "username", verr.Field)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, db, mr := setupAuthService(t)
	ctx := context.Background()
	user := testhelpers.CreateUser(t, db)

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)
	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims))
	assert.True(t, mr.Exists("revoked_token:"+claims.ID))

	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	svc, db, _ := setupAuthService(t)
	user := testhelpers.CreateUser(t, db)

	other := service.NewAuthService(db, "other-secret", time.Hour, nil)
	token, err := other.GenerateToken(user)
	require.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	_, err = svc.ValidateToken(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestSetPassword(t *testing.T) {
	svc, db, _ := setupAuthService(t)
	ctx := context.Background()
	user := testhelpers.CreateUser(t, db)

	err := svc.SetPassword(ctx, user.ID, "wrong", "new-password-1")
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "current_password", verr.Field)

	require.NoError(t, svc.SetPassword(ctx, user.ID, testhelpers.TestPassword, "new-password-1"))
	_, err = svc.Login(ctx, user.Email, "new-password-1")
	assert.NoError(t, err)
}

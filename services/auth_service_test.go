package services

import (
	"context"
	"testing"
	"time"

	"saif-gifts/models"
	"saif-gifts/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	users := NewMockUserStore()
	tokens := utils.NewTokenIssuer("test-secret", time.Hour)
	svc := NewAuthService(users, tokens, zap.NewNop())
	ctx := context.Background()

	resp, err := svc.Register(ctx, models.RegisterRequest{
		Email:    " Zainab@Example.com ",
		Password: "s3cret-pass",
		Name:     "Zainab",
	})
	require.NoError(t, err)
	assert.Equal(t, "zainab@example.com", resp.User.Email)
	assert.Equal(t, models.RoleCustomer, resp.User.Role)

	claims, err := tokens.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	stored, err := users.FindByID(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", stored.Password)

	login, err := svc.Login(ctx, models.LoginRequest{Email: "ZAINAB@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)

	profile, err := svc.GetProfile(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Zainab", profile.Name)
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	svc := NewAuthService(NewMockUserStore(), utils.NewTokenIssuer("k", time.Hour), zap.NewNop())
	ctx := context.Background()
	req := models.RegisterRequest{Email: "a@example.com", Password: "password", Name: "Ali"}

	_, err := svc.Register(ctx, req)
	require.NoError(t, err)
	_, err = svc.Register(ctx, req)
	assert.True(t, models.IsValidation(err))
}

func TestAuthService_LoginRejects(t *testing.T) {
	svc := NewAuthService(NewMockUserStore(), utils.NewTokenIssuer("k", time.Hour), zap.NewNop())
	ctx := context.Background()

	_, err := svc.Register(ctx, models.RegisterRequest{Email: "a@example.com", Password: "password", Name: "Ali"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, models.LoginRequest{Email: "a@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_UpdateRole(t *testing.T) {
	users := NewMockUserStore()
	svc := NewUserService(users, zap.NewNop())
	ctx := context.Background()

	admin := &models.User{Email: "admin@example.com", Name: "Admin", Role: models.RoleAdmin}
	customer := &models.User{Email: "c@example.com", Name: "Customer", Role: models.RoleCustomer}
	require.NoError(t, users.Create(ctx, admin))
	require.NoError(t, users.Create(ctx, customer))

	require.NoError(t, svc.UpdateRole(ctx, admin.ID, customer.ID, models.RoleAdmin))
	promoted, err := users.FindByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin())

	assert.True(t, models.IsValidation(svc.UpdateRole(ctx, admin.ID, admin.ID, models.RoleCustomer)))
	assert.True(t, models.IsValidation(svc.UpdateRole(ctx, admin.ID, customer.ID, "owner")))
	assert.True(t, models.IsNotFound(svc.UpdateRole(ctx, admin.ID, 999, models.RoleAdmin)))

	resp, err := svc.GetAllUsers(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Meta.TotalItems)
	assert.Equal(t, 10, resp.Meta.Limit)
}

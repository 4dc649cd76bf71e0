package controller

import (
	"context"
	"testing"

	"github.com/homemeal/homemeal-backend/internal/app/model"
	apperrors "github.com/homemeal/homemeal-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthController_Register(t *testing.T) {
	c := setupControllers(t)

	result := c.auth.Register(RegisterRequest{Name: "Asha Rao", Apartment: "B-204", Phone: "9876543210", Password: "Secret123"})
	assert.True(t, result.Success)
	assert.NotZero(t, result.ID)
	assert.Equal(t, "Registration successful", result.Message)

	result = c.auth.Register(RegisterRequest{Name: "Asha Rao", Apartment: "B-204", Phone: "12345", Password: "Secret123"})
	assert.False(t, result.Success)
	assert.Equal(t, apperrors.ValidationInvalidInput, result.Code)
	assert.Equal(t, []string{"Phone number must be exactly 10 digits"}, result.Messages)

	result = c.auth.Register(RegisterRequest{Name: "Vikram Shah", Apartment: "C-1", Phone: "9876543210", Password: "Secret123"})
	assert.False(t, result.Success)
	assert.Equal(t, apperrors.ResourceConflict, result.Code)
}

func TestAuthController_LoginLogout(t *testing.T) {
	c := setupControllers(t)
	ctx := context.Background()
	token := c.login(t, "9876543210")
	assert.Len(t, token, 64)

	result := c.auth.Login(ctx, LoginRequest{Phone: "9876543210", Password: "bad"})
	assert.False(t, result.Success)
	assert.Equal(t, []string{"Invalid phone number or password"}, result.Messages)

	result = c.auth.GetProfile(ctx, "Bearer "+token)
	require.True(t, result.Success)
	assert.Equal(t, "9876543210", result.Data.(*model.User).Phone)

	result = c.auth.Logout(ctx, token)
	assert.True(t, result.Success)

	result = c.auth.GetProfile(ctx, token)
	assert.False(t, result.Success)
	assert.Equal(t, apperrors.AuthSessionInvalid, result.Code)
	assert.NotEmpty(t, result.Messages)
}

func TestAuthController_ProfileAndPassword(t *testing.T) {
	c := setupControllers(t)
	ctx := context.Background()
	token := c.login(t, "9876543210")

	result := c.auth.UpdateProfile(ctx, token, UpdateProfileRequest{Name: "Asha R. Rao", Apartment: "D-7"})
	require.True(t, result.Success, result.Messages)
	assert.NotZero(t, result.ID)

	result = c.auth.ChangePassword(ctx, token, ChangePasswordRequest{CurrentPassword: "Secret123", NewPassword: "Newpass123"})
	require.True(t, result.Success, result.Messages)

	result = c.auth.Login(ctx, LoginRequest{Phone: "9876543210", Password: "Newpass123"})
	assert.True(t, result.Success)
}

func TestAuthController_DeleteAccount(t *testing.T) {
	c := setupControllers(t)
	ctx := context.Background()
	token := c.login(t, "9876543210")

	result := c.auth.DeleteAccount(ctx, token, "wrong")
	assert.False(t, result.Success)
	assert.Equal(t, []string{"Password is incorrect"}, result.Messages)

	result = c.auth.DeleteAccount(ctx, token, "Secret123")
	require.True(t, result.Success, result.Messages)

	result = c.auth.GetProfile(ctx, token)
	assert.Equal(t, apperrors.AuthSessionInvalid, result.Code)

	result = c.auth.Login(ctx, LoginRequest{Phone: "9876543210", Password: "Secret123"})
	assert.False(t, result.Success)
}

package controller

import (
	"context"

	"github.com/homemeal/homemeal-backend/internal/app/model"
	"github.com/homemeal/homemeal-backend/internal/app/service"
	apperrors "github.com/homemeal/homemeal-backend/internal/errors"
	"github.com/homemeal/homemeal-backend/internal/metrics"
	"github.com/homemeal/homemeal-backend/internal/middleware"
	"github.com/homemeal/homemeal-backend/internal/session"
	"github.com/homemeal/homemeal-backend/pkg/logger"
)

type AuthController struct {
	guard
	authService service.AuthService
}

func NewAuthController(authService service.AuthService, authMiddleware *middleware.AuthMiddleware, m *metrics.Metrics) *AuthController {
	return &AuthController{
		guard:       guard{auth: authMiddleware, metrics: m},
		authService: authService,
	}
}

type RegisterRequest struct {
	Name      string  `json:"name"`
	Apartment string  `json:"apartment"`
	Phone     string  `json:"phone"`
	Password  string  `json:"password"`
	Email     *string `json:"email"`
}

type LoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type UpdateProfileRequest struct {
	Name      string  `json:"name"`
	Apartment string  `json:"apartment"`
	Email     *string `json:"email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Register creates an account.
func (ctrl *AuthController) Register(req RegisterRequest) apperrors.Result {
	return ctrl.public("auth.register", map[string]interface{}{"name": req.Name}, func() apperrors.Result {
		user, err := ctrl.authService.Register(service.RegisterInput{
			Name:      req.Name,
			Apartment: req.Apartment,
			Phone:     req.Phone,
			Password:  req.Password,
			Email:     req.Email,
		})
		if err != nil {
			return apperrors.FromError(err)
		}
		return apperrors.Created(user.ID, "Registration successful")
	})
}

// Login verifies credentials and opens a session. Data carries the token.
func (ctrl *AuthController) Login(ctx context.Context, req LoginRequest) apperrors.Result {
	return ctrl.public("auth.login", nil, func() apperrors.Result {
		user, token, err := ctrl.authService.Login(ctx, req.Phone, req.Password)
		if err != nil {
			return apperrors.FromError(err)
		}
		return apperrors.OK("Login successful", LoginResponse{Token: token, User: user})
	})
}

func (ctrl *AuthController) Logout(ctx context.Context, token string) apperrors.Result {
	return ctrl.public("auth.logout", nil, func() apperrors.Result {
		if _, err := ctrl.authService.Logout(ctx, token); err != nil {
			return apperrors.FromError(err)
		}
		return apperrors.OK("Logged out successfully", nil)
	})
}

func (ctrl *AuthController) GetProfile(ctx context.Context, token string) apperrors.Result {
	return ctrl.authenticated(ctx, "auth.profile", token, nil, func(sess *session.Session) apperrors.Result {
		user, err := ctrl.authService.GetProfile(sess.UserID)
		if err != nil {
			return apperrors.FromError(err)
		}
		return apperrors.OK("Profile retrieved", user)
	})
}

func (ctrl *AuthController) UpdateProfile(ctx context.Context, token string, req UpdateProfileRequest) apperrors.Result {
	return ctrl.authenticated(ctx, "auth.update_profile", token, nil, func(sess *session.Session) apperrors.Result {
		user, err := ctrl.authService.UpdateProfile(sess.UserID, service.ProfileInput{
			Name:      req.Name,
			Apartment: req.Apartment,
			Email:     req.Email,
		})
		if err != nil {
			return apperrors.FromError(err)
		}
		return apperrors.Created(user.ID, "Profile updated successfully")
	})
}

func (ctrl *AuthController) ChangePassword(ctx context.Context, token string, req ChangePasswordRequest) apperrors.Result {
	return ctrl.authenticated(ctx, "auth.change_password", token, nil, func(sess *session.Session) apperrors.Result {
		if err := ctrl.authService.ChangePassword(sess.UserID, req.CurrentPassword, req.NewPassword); err != nil {
			return apperrors.FromError(err)
		}
		return apperrors.OK("Password changed successfully", nil)
	})
}

// DeleteAccount removes the account after re-checking the password, then ends the session.
func (ctrl *AuthController) DeleteAccount(ctx context.Context, token, password string) apperrors.Result {
	return ctrl.authenticated(ctx, "auth.delete_account", token, nil, func(sess *session.Session) apperrors.Result {
		if err := ctrl.authService.DeleteAccount(sess.UserID, password); err != nil {
			return apperrors.FromError(err)
		}
		if _, err := ctrl.authService.Logout(ctx, sess.Token); err != nil {
			logger.Warn("Failed to revoke session after account deletion", map[string]interface{}{
				"user_id": sess.UserID,
				"error":   err.Error(),
			})
		}
		return apperrors.OK("Account deleted successfully", nil)
	})
}

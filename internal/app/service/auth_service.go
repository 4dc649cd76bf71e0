package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/homemeal/homemeal-backend/internal/app/model"
	"github.com/homemeal/homemeal-backend/internal/app/repository"
	"github.com/homemeal/homemeal-backend/internal/app/validation"
	apperrors "github.com/homemeal/homemeal-backend/internal/errors"
	"github.com/homemeal/homemeal-backend/internal/metrics"
	"github.com/homemeal/homemeal-backend/internal/session"
	"github.com/homemeal/homemeal-backend/pkg/logger"
	"github.com/homemeal/homemeal-backend/pkg/util"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Name      string
	Apartment string
	Phone     string
	Password  string
	Email     *string
}

type ProfileInput struct {
	Name      string
	Apartment string
	Email     *string
}

type AuthService interface {
	Register(input RegisterInput) (*model.User, error)
	Verify(phone, password string) (*model.User, error)
	Login(ctx context.Context, phone, password string) (*model.User, string, error)
	Logout(ctx context.Context, token string) (bool, error)
	GetProfile(userID uint) (*model.User, error)
	UpdateProfile(userID uint, input ProfileInput) (*model.User, error)
	ChangePassword(userID uint, currentPassword, newPassword string) error
	DeleteAccount(userID uint, password string) error
}

type authService struct {
	db         *gorm.DB
	userRepo   repository.UserRepository
	cartRepo   repository.CartRepository
	registry   session.Registry
	validator  *validation.Validator
	bcryptCost int
	metrics    *metrics.Metrics

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	db *gorm.DB,
	userRepo repository.UserRepository,
	cartRepo repository.CartRepository,
	registry session.Registry,
	validator *validation.Validator,
	bcryptCost int,
	m *metrics.Metrics,
) AuthService {
	return &authService{
		db:         db,
		userRepo:   userRepo,
		cartRepo:   cartRepo,
		registry:   registry,
		validator:  validator,
		bcryptCost: bcryptCost,
		metrics:    m,
	}
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*email)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (s *authService) Register(input RegisterInput) (*model.User, error) {
	logger.Info("Attempting user registration", map[string]interface{}{
		"name": input.Name,
	})

	input.Phone = strings.TrimSpace(input.Phone)
	if err := s.validator.Registration(input.Name, input.Apartment, input.Phone, input.Password, input.Email); err != nil {
		logger.Warn("Registration failed: validation", map[string]interface{}{
			"errors": err.Error(),
		})
		return nil, err
	}

	// Check if phone already registered
	existing, err := s.userRepo.FindByPhone(input.Phone)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, classify(err, "user")
	}
	if existing != nil {
		logger.Warn("Registration failed: phone already registered", nil)
		return nil, apperrors.Conflict("Phone number already registered")
	}

	hash, err := util.HashPasswordWithCost(input.Password, s.bcryptCost)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return nil, err
	}

	user := &model.User{
		Name:         strings.TrimSpace(input.Name),
		Apartment:    strings.TrimSpace(input.Apartment),
		Phone:        input.Phone,
		PasswordHash: hash,
		Email:        normalizeEmail(input.Email),
	}
	if err := s.userRepo.Create(user); err != nil {
		// A concurrent registration can pass the pre-check; the unique index decides.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("Phone number already registered")
		}
		return nil, classify(err, "user")
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, nil
}

// Verify returns the user iff phone and password match. Every failure looks the same.
func (s *authService) Verify(phone, password string) (*model.User, error) {
	phone = strings.TrimSpace(phone)
	if s.validator.Phone(phone) != nil {
		util.VerifyPassword(s.placeholderHash(), password)
		return nil, apperrors.InvalidCredentials()
	}

	user, err := s.userRepo.FindByPhone(phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Spend the same bcrypt work as a real comparison.
			util.VerifyPassword(s.placeholderHash(), password)
			return nil, apperrors.InvalidCredentials()
		}
		return nil, classify(err, "user")
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		return nil, apperrors.InvalidCredentials()
	}
	return user, nil
}

func (s *authService) placeholderHash() string {
	s.dummyOnce.Do(func() {
		hash, err := util.HashPasswordWithCost("placeholder-password", s.bcryptCost)
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}

func (s *authService) Login(ctx context.Context, phone, password string) (*model.User, string, error) {
	logger.Info("Login attempt", nil)

	user, err := s.Verify(phone, password)
	if err != nil {
		s.metrics.RecordLogin(false)
		logger.Warn("Login failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, "", err
	}

	token, err := s.registry.Create(ctx, user.ID, session.UserData(user.Snapshot()))
	if err != nil {
		s.metrics.RecordLogin(false)
		logger.Error("Failed to create session", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, "", err
	}

	s.metrics.RecordLogin(true)
	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, token, nil
}

func (s *authService) Logout(ctx context.Context, token string) (bool, error) {
	removed, err := s.registry.Revoke(ctx, token)
	if err != nil {
		logger.Error("Failed to revoke session", err)
		return false, err
	}
	return removed, nil
}

func (s *authService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, classify(err, "user")
	}
	return user, nil
}

func (s *authService) UpdateProfile(userID uint, input ProfileInput) (*model.User, error) {
	if err := s.validator.Profile(input.Name, input.Apartment, input.Email); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, classify(err, "user")
	}

	user.Name = strings.TrimSpace(input.Name)
	user.Apartment = strings.TrimSpace(input.Apartment)
	user.Email = normalizeEmail(input.Email)
	if err := s.userRepo.Update(user); err != nil {
		return nil, classify(err, "user")
	}

	logger.Info("User profile updated", map[string]interface{}{
		"user_id": userID,
	})
	return user, nil
}

func (s *authService) ChangePassword(userID uint, currentPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return classify(err, "user")
	}
	if !util.VerifyPassword(user.PasswordHash, currentPassword) {
		logger.Warn("Password change rejected: current password mismatch", map[string]interface{}{
			"user_id": userID,
		})
		return apperrors.Validation("Current password is incorrect")
	}
	if err := s.validator.Password(newPassword); err != nil {
		return err
	}

	hash, err := util.HashPasswordWithCost(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(userID, hash); err != nil {
		return classify(err, "user")
	}

	logger.Info("User password changed", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}

// DeleteAccount re-verifies the password, then removes the cart and the user together.
// Orders are kept for history.
func (s *authService) DeleteAccount(userID uint, password string) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return classify(err, "user")
	}
	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Account deletion rejected: password mismatch", map[string]interface{}{
			"user_id": userID,
		})
		return apperrors.Validation("Password is incorrect")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.cartRepo.WithTx(tx).DeleteByUserID(userID); err != nil {
			return err
		}
		return s.userRepo.WithTx(tx).Delete(userID)
	})
	if err != nil {
		return classify(err, "user")
	}

	logger.Info("User account deleted", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}

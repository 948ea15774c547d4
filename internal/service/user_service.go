package service

import (
	"context"
	"errors"
	"strings"

	"chronicle/internal/models"
	"chronicle/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	userRepo repository.UserRepository
}

type SignupInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type UpdateProfileInput struct {
	UserID    uint
	Username  string
	FirstName string
	LastName  string
	Bio       string
	Email     string
}

type ChangePasswordInput struct {
	UserID      uint
	OldPassword string
	NewPassword string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

const (
	minPasswordLen = 8
	maxUsernameLen = 150
	maxBioLen      = 500
)

func validUsername(username string) bool {
	if username == "" || len(username) > maxUsernameLen {
		return false
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.' || r == '_' || r == '-' || r == '@' || r == '+':
		default:
			return false
		}
	}
	return true
}

func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	fields := map[string]string{}
	if !validUsername(in.Username) {
		fields["username"] = "Username is required and may contain only letters, digits and @/./+/-/_"
	}
	if !strings.Contains(in.Email, "@") {
		fields["email"] = "A valid email address is required"
	}
	if len(in.Password) < minPasswordLen {
		fields["password"] = "Password must be at least 8 characters"
	}
	if len(fields) > 0 {
		return nil, models.NewFieldValidationError("Signup failed", fields)
	}

	if existing, err := s.userRepo.GetByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewFieldValidationError("Signup failed",
			map[string]string{"email": "Email is already registered"})
	}
	if _, err := s.userRepo.GetByUsername(ctx, in.Username); err == nil {
		return nil, models.NewFieldValidationError("Signup failed",
			map[string]string{"username": "Username is already taken"})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  string(hash),
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials. It deliberately reports the same error
// for an unknown email and a wrong password.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid email or password")
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("User", id)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetProfile resolves a user by username for public profile pages.
func (s *UserService) GetProfile(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("User", username)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if len(in.Bio) > maxBioLen {
		return nil, models.NewValidationError("Bio too long (max 500 characters)")
	}
	if in.Username != "" && in.Username != user.Username {
		if !validUsername(in.Username) {
			return nil, models.NewFieldValidationError("Update failed",
				map[string]string{"username": "Username may contain only letters, digits and @/./+/-/_"})
		}
		if existing, err := s.userRepo.GetByUsername(ctx, in.Username); err == nil && existing.ID != user.ID {
			return nil, models.NewFieldValidationError("Update failed",
				map[string]string{"username": "Username is already taken"})
		}
		user.Username = in.Username
	}
	if in.Email != "" && in.Email != user.Email {
		if !strings.Contains(in.Email, "@") {
			return nil, models.NewFieldValidationError("Update failed",
				map[string]string{"email": "A valid email address is required"})
		}
		taken, err := s.userRepo.EmailTaken(ctx, in.Email, user.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, models.NewFieldValidationError("Update failed",
				map[string]string{"email": "Email is already registered"})
		}
		user.Email = in.Email
	}

	user.FirstName = in.FirstName
	user.LastName = in.LastName
	user.Bio = in.Bio

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, in ChangePasswordInput) error {
	user, err := s.GetByID(ctx, in.UserID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.OldPassword)); err != nil {
		return models.NewUnauthorizedError("Current password is incorrect")
	}
	if len(in.NewPassword) < minPasswordLen {
		return models.NewFieldValidationError("Password change failed",
			map[string]string{"new_password": "Password must be at least 8 characters"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.Password = string(hash)
	return s.userRepo.Update(ctx, user)
}

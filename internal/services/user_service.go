package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joshua-takyi/tripbay/internal/helpers"
	"github.com/joshua-takyi/tripbay/internal/models"
	"github.com/joshua-takyi/tripbay/internal/store"
)

type UserService struct {
	userRepo models.UserRepo
	otp      *store.OTPStore
	edge     EdgeInvoker
	logger   *slog.Logger
}

func NewUserService(userRepo models.UserRepo, otp *store.OTPStore, edge EdgeInvoker, logger *slog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		otp:      otp,
		edge:     edge,
		logger:   logger,
	}
}

// CreateUser signs the user up with the auth backend and mails a one-time
// verification code. The account exists either way; the profile stays
// unverified until the code is confirmed.
func (us *UserService) CreateUser(ctx context.Context, user *models.User) (interface{}, error) {
	if err := models.Validate.Struct(user); err != nil {
		return nil, err
	}

	if !helpers.IsPasswordStrong(user.Password) {
		return nil, fmt.Errorf("password is not strong enough")
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := us.userRepo.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := us.SendOTP(ctx, user.Email, user.FullName); err != nil {
		// account already exists; the user can request a resend
		us.logger.Warn("failed to send verification code", "email", user.Email, "error", err)
	}

	return res, nil
}

// SendOTP issues a fresh 6-digit code and mails it through the edge
// function. Any previously issued code is superseded.
func (us *UserService) SendOTP(ctx context.Context, email, name string) error {
	if err := models.Validate.Var(email, "required,email"); err != nil {
		return fmt.Errorf("invalid email format")
	}

	code, err := helpers.GenerateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %v", err)
	}
	if err := us.otp.Put(ctx, email, code); err != nil {
		return fmt.Errorf("failed to store verification code: %v", err)
	}

	if err := us.edge.Invoke(ctx, "send-otp-email", map[string]interface{}{
		"email": email,
		"name":  name,
		"code":  code,
	}, nil); err != nil {
		return fmt.Errorf("failed to send verification email: %v", err)
	}
	return nil
}

// VerifyOTP checks the submitted code and marks the profile verified.
func (us *UserService) VerifyOTP(ctx context.Context, email, code string) error {
	if email == "" || code == "" {
		return fmt.Errorf("email and code are required")
	}

	if err := us.otp.Verify(ctx, email, code); err != nil {
		return err
	}

	if err := us.userRepo.MarkVerified(ctx, email); err != nil {
		us.logger.Error("otp verified but profile flag update failed", "email", email, "error", err)
		return fmt.Errorf("verification could not be completed, try again")
	}
	return nil
}

func (us *UserService) AuthenticateUser(email, password string) (interface{}, error) {
	if err := models.Validate.Var(email, "required,email"); err != nil {
		return nil, fmt.Errorf("invalid email format: %v", err)
	}
	if err := models.Validate.Var(password, "required,min=8"); err != nil {
		return nil, fmt.Errorf("invalid password format: %v", err)
	}
	response, err := us.userRepo.AuthenticateUser(context.Background(), email, password)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %v", err)
	}

	return response, nil
}

func (us *UserService) RefreshToken(refreshToken string) (interface{}, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh token is required")
	}
	response, err := us.userRepo.RefreshToken(context.Background(), refreshToken)
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %v", err)
	}
	return response, nil
}

func (us *UserService) GetUser(id uuid.UUID, accessToken string) (*models.User, error) {
	res, err := us.userRepo.GetUser(context.Background(), id, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %v", err)
	}
	return res, nil
}

func (us *UserService) UpdateUser(ctx context.Context, fields map[string]interface{}, userID uuid.UUID, accessToken string) (*models.User, error) {
	fields["updated_at"] = time.Now()

	updatedUser, err := us.userRepo.UpdateUser(ctx, fields, userID, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %v", err)
	}

	return updatedUser, nil
}

package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"alkoholove.dev/Alkoholove/pkg/auth"
	"alkoholove.dev/Alkoholove/pkg/model"
	"alkoholove.dev/Alkoholove/pkg/repository"
)

type accountRepository interface {
	AddUser(ctx context.Context, username string, email string, passwordHash string, verificationCode string) (*model.User, error)
	GetUserByID(ctx context.Context, userID uint) (*model.User, error)
	GetUserByName(ctx context.Context, username string) (*model.User, error)
	GetUserFromEmail(ctx context.Context, email string) (*model.User, error)
	ConsumeVerificationCode(ctx context.Context, code string) (*model.User, error)
	SetResetPasswordCode(ctx context.Context, userID uint, code string) error
	ConsumeResetPasswordCode(ctx context.Context, code string, newPasswordHash string) (*model.User, error)
	SetDeleteAccountCode(ctx context.Context, userID uint, code string) error
	ConsumeDeleteAccountCode(ctx context.Context, code string) (*model.User, error)
	UpdateLastLogin(ctx context.Context, userID uint) error
	SetUserBanned(ctx context.Context, userID uint, banned bool) error
	DeleteUser(ctx context.Context, userID uint) error
}

const oneTimeCodeBytes = 16

// AccountService owns the identity lifecycle: registration, one-time
// codes, login and account removal. Codes exist only between issue and
// consumption; delivering them to the user is someone else's job.
type AccountService struct {
	repo   accountRepository
	auth   *auth.Manager
	logger *zap.Logger
}

func NewAccountService(repo accountRepository, authManager *auth.Manager, logger *zap.Logger) *AccountService {
	return &AccountService{repo: repo, auth: authManager, logger: logger}
}

// Register creates the account and returns the verification code to be
// delivered out of band.
func (s *AccountService) Register(ctx context.Context, username string, email string, password string) (*model.User, string, error) {
	if len(username) == 0 || len(email) == 0 {
		return nil, "", fmt.Errorf("%w: username and email are required", ErrValidation)
	}

	if len(password) < 8 {
		return nil, "", fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	code, err := oneTimeCode()
	if err != nil {
		return nil, "", err
	}

	user, err := s.repo.AddUser(ctx, username, email, string(hash), code)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", fmt.Errorf("%w: username or email already taken", ErrDuplicate)
		}

		return nil, "", err
	}

	s.logger.Info("user registered", zap.String("username", username))

	return user, code, nil
}

func (s *AccountService) Verify(ctx context.Context, code string) (*model.User, error) {
	user, err := s.repo.ConsumeVerificationCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: verification code", ErrNotFound)
		}

		return nil, err
	}

	return user, nil
}

// Authenticate checks the credentials and returns a signed access token.
func (s *AccountService) Authenticate(ctx context.Context, username string, password string) (string, *model.User, error) {
	user, err := s.repo.GetUserByName(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, fmt.Errorf("%w: invalid credentials", ErrForbidden)
		}

		return "", nil, err
	}

	if user.IsBanned {
		return "", nil, fmt.Errorf("%w: account is banned", ErrForbidden)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, fmt.Errorf("%w: invalid credentials", ErrForbidden)
	}

	token, err := s.auth.IssueToken(user)
	if err != nil {
		return "", nil, err
	}

	if err = s.repo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to record login time", zap.Uint("user", user.ID), zap.Error(err))
	}

	return token, user, nil
}

func (s *AccountService) Logout(ctx context.Context, token string) error {
	return s.auth.RevokeToken(ctx, token)
}

func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.repo.GetUserFromEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", fmt.Errorf("%w: email", ErrNotFound)
		}

		return "", err
	}

	code, err := oneTimeCode()
	if err != nil {
		return "", err
	}

	if err = s.repo.SetResetPasswordCode(ctx, user.ID, code); err != nil {
		return "", err
	}

	return code, nil
}

func (s *AccountService) ResetPassword(ctx context.Context, code string, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if _, err = s.repo.ConsumeResetPasswordCode(ctx, code, string(hash)); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fmt.Errorf("%w: reset code", ErrNotFound)
		}

		return err
	}

	return nil
}

func (s *AccountService) RequestAccountDeletion(ctx context.Context, userID uint) (string, error) {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}

		return "", err
	}

	code, err := oneTimeCode()
	if err != nil {
		return "", err
	}

	if err = s.repo.SetDeleteAccountCode(ctx, userID, code); err != nil {
		return "", err
	}

	return code, nil
}

// ConfirmAccountDeletion consumes the code and removes the user together
// with everything the user owns.
func (s *AccountService) ConfirmAccountDeletion(ctx context.Context, code string) error {
	user, err := s.repo.ConsumeDeleteAccountCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fmt.Errorf("%w: deletion code", ErrNotFound)
		}

		return err
	}

	if err = s.repo.DeleteUser(ctx, user.ID); err != nil {
		return err
	}

	s.logger.Info("account deleted", zap.Uint("user", user.ID))

	return nil
}

// SetBanned flips the account ban flag; admins only.
func (s *AccountService) SetBanned(ctx context.Context, adminID uint, userID uint, banned bool) error {
	admin, err := s.repo.GetUserByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fmt.Errorf("%w: user %d", ErrNotFound, adminID)
		}

		return err
	}

	if !admin.IsAdmin {
		return fmt.Errorf("%w: banning users requires admin rights", ErrForbidden)
	}

	err = s.repo.SetUserBanned(ctx, userID, banned)
	if errors.Is(err, repository.ErrUserNotFound) {
		return fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}

	return err
}

func oneTimeCode() (string, error) {
	buf := make([]byte, oneTimeCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(buf), nil
}

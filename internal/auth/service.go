package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"starpos-backend/internal/clock"
	"starpos-backend/internal/models"
	"starpos-backend/internal/profile"
	"starpos-backend/internal/storage"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAccountExists      = errors.New("an account already exists on this device")
	ErrNoAccount          = errors.New("no account has been created yet")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

const minPasswordLength = 6

type ProfileUpdater interface {
	Update(ctx context.Context, p profile.Patch) (models.UserInfo, error)
}

type SignUpInput struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Service manages the single operator account kept under the "account" key.
type Service struct {
	mu      sync.Mutex
	kv      storage.Store
	clock   clock.Clock
	profile ProfileUpdater
	secret  string
	log     *zap.Logger
	account *models.Account
}

// NewService builds the account service. profiles may be nil; when set,
// sign-up copies the operator's name and email into the business profile.
func NewService(kv storage.Store, clk clock.Clock, secret string, profiles ProfileUpdater, log *zap.Logger) *Service {
	return &Service{kv: kv, clock: clk, secret: secret, profile: profiles, log: log}
}

func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var acc models.Account
	found, err := storage.GetJSON(ctx, s.kv, storage.KeyAccount, &acc)
	if err != nil {
		return err
	}
	if found {
		s.account = &acc
	}
	return nil
}

func (s *Service) SignUp(ctx context.Context, in SignUpInput) (models.Account, error) {
	first := strings.TrimSpace(in.FirstName)
	last := strings.TrimSpace(in.LastName)
	email := normalizeEmail(in.Email)
	if first == "" || last == "" || email == "" || in.Password == "" || in.ConfirmPassword == "" {
		return models.Account{}, models.Invalid("", "please fill all fields")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return models.Account{}, models.Invalid("email", "please enter a valid email address")
	}
	if in.Password != in.ConfirmPassword {
		return models.Account{}, models.Invalid("confirmPassword", "passwords do not match")
	}
	if len(in.Password) < minPasswordLength {
		return models.Account{}, models.Invalid("password", fmt.Sprintf("should be at least %d characters", minPasswordLength))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.account != nil {
		return models.Account{}, ErrAccountExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.Account{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.clock.Now()
	acc := models.Account{
		FirstName:    first,
		LastName:     last,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := storage.PutJSON(ctx, s.kv, storage.KeyAccount, acc); err != nil {
		return models.Account{}, fmt.Errorf("save account: %w", err)
	}
	s.account = &acc

	if s.profile != nil {
		if _, err := s.profile.Update(ctx, profile.Patch{FirstName: &first, LastName: &last, Email: &email}); err != nil {
			s.log.Warn("profile not seeded from sign-up", zap.Error(err))
		}
	}
	s.log.Info("account created", zap.String("email", email))
	return acc, nil
}

// SignIn checks the credentials and returns a signed token.
func (s *Service) SignIn(email, password string) (string, error) {
	s.mu.Lock()
	acc := s.account
	s.mu.Unlock()

	if acc == nil {
		return "", ErrNoAccount
	}
	if normalizeEmail(email) != acc.Email {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := GenerateToken(s.secret, acc.Email)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (s *Service) ChangePassword(ctx context.Context, in ChangePasswordInput) error {
	if in.CurrentPassword == "" || in.NewPassword == "" || in.ConfirmPassword == "" {
		return models.Invalid("", "please fill in all fields")
	}
	if in.NewPassword != in.ConfirmPassword {
		return models.Invalid("confirmPassword", "new password and confirm password do not match")
	}
	if len(in.NewPassword) < minPasswordLength {
		return models.Invalid("newPassword", fmt.Sprintf("should be at least %d characters", minPasswordLength))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.account == nil {
		return ErrNoAccount
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.account.PasswordHash), []byte(in.CurrentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	next := *s.account
	next.PasswordHash = string(hash)
	next.UpdatedAt = s.clock.Now()
	if err := storage.PutJSON(ctx, s.kv, storage.KeyAccount, next); err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	s.account = &next
	s.log.Info("password changed", zap.String("email", next.Email))
	return nil
}

func (s *Service) Account() (models.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.account == nil {
		return models.Account{}, false
	}
	return *s.account, true
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"wallet-backend/internal/core/domain"
	"wallet-backend/internal/core/ports"
	"wallet-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// How many wallet numbers to try before giving up on a collision.
const maxWalletNumberAttempts = 5

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	userRepo   ports.UserRepository
	walletRepo ports.WalletRepository
	tokenSvc   ports.TokenService
	log        zerolog.Logger
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	userRepo ports.UserRepository,
	walletRepo ports.WalletRepository,
	tokenSvc ports.TokenService,
	log zerolog.Logger,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		userRepo:   userRepo,
		walletRepo: walletRepo,
		tokenSvc:   tokenSvc,
		log:        log,
	}
}

// LoginWithGoogle resolves a verified Google identity to a local user,
// creating the user and their wallet on first login, and returns a session
// token.
func (s *AuthServiceImpl) LoginWithGoogle(ctx context.Context, profile ports.GoogleProfile) (*ports.AuthResult, error) {
	if profile.GoogleID == "" || profile.Email == "" {
		return nil, apperror.Validation("incomplete identity profile")
	}

	user, err := s.userRepo.GetByGoogleID(ctx, profile.GoogleID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find user: %w", err))
	}

	if user == nil {
		user, err = s.onboard(ctx, profile)
		if err != nil {
			return nil, err
		}
	}

	token, expiresAt, err := s.tokenSvc.Generate(user.ID, user.Email)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	return &ports.AuthResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

// onboard creates the user and their single wallet.
func (s *AuthServiceImpl) onboard(ctx context.Context, profile ports.GoogleProfile) (*domain.User, error) {
	now := time.Now().UTC()
	user := &domain.User{
		ID:        uuid.New(),
		Email:     profile.Email,
		Name:      profile.Name,
		GoogleID:  profile.GoogleID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create user: %w", err))
	}

	walletNumber, err := s.freshWalletNumber(ctx)
	if err != nil {
		return nil, err
	}

	wallet := &domain.Wallet{
		ID:           uuid.New(),
		UserID:       user.ID,
		WalletNumber: walletNumber,
		Balance:      0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.walletRepo.Create(ctx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
	}

	s.log.Info().
		Str("user_id", user.ID.String()).
		Str("wallet_number", walletNumber).
		Msg("user onboarded with wallet")

	return user, nil
}

// freshWalletNumber generates a random wallet number not already in use.
func (s *AuthServiceImpl) freshWalletNumber(ctx context.Context) (string, error) {
	for i := 0; i < maxWalletNumberAttempts; i++ {
		number, err := generateWalletNumber()
		if err != nil {
			return "", apperror.InternalError(fmt.Errorf("generate wallet number: %w", err))
		}
		exists, err := s.walletRepo.WalletNumberExists(ctx, number)
		if err != nil {
			return "", apperror.InternalError(fmt.Errorf("check wallet number: %w", err))
		}
		if !exists {
			return number, nil
		}
	}
	return "", apperror.InternalError(fmt.Errorf("could not allocate a unique wallet number after %d attempts", maxWalletNumberAttempts))
}

// generateWalletNumber returns a random numeric string of the wallet number
// length, first digit non-zero.
func generateWalletNumber() (string, error) {
	digits := make([]byte, domain.WalletNumberLength)
	for i := range digits {
		max := int64(10)
		if i == 0 {
			max = 9
		}
		n, err := rand.Int(rand.Reader, big.NewInt(max))
		if err != nil {
			return "", err
		}
		d := n.Int64()
		if i == 0 {
			d++
		}
		digits[i] = byte('0' + d)
	}
	return string(digits), nil
}

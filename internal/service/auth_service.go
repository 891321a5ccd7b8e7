package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/riskids/riskids-betest/internal/domain"
	"github.com/riskids/riskids-betest/internal/repository"
	"github.com/riskids/riskids-betest/pkg/jwt"
	"github.com/riskids/riskids-betest/pkg/log"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// authServiceImpl implements AuthService.
type authServiceImpl struct {
	repo   repository.UserRepository
	tokens *jwt.Manager
}

// NewAuthService creates a new auth service.
func NewAuthService(repo repository.UserRepository, tokens *jwt.Manager) AuthService {
	return &authServiceImpl{
		repo:   repo,
		tokens: tokens,
	}
}

// Login authenticates by email and password, records the login time, and
// issues a bearer token.
func (s *authServiceImpl) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResult, error) {
	l := log.Ctx(ctx)

	user, err := s.repo.GetUserByEmail(ctx, req.EmailAddress)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		l.Error().Err(err).Msg("failed to get user by email")
		return nil, err
	}

	login, err := s.repo.GetLoginByUserID(ctx, user.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrLoginNotFound) {
			return nil, ErrInvalidCredentials
		}
		l.Error().Err(err).Str(log.FieldUserID, user.UserID).Msg("failed to get account login")
		return nil, err
	}

	// Stored hashes carry mixed bcrypt version markers; canonicalize before
	// comparing.
	hash := normalizeBcryptHash(login.Password)
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.repo.TouchLastLogin(ctx, login.AccountID, time.Now()); err != nil {
		l.Error().Err(err).Str(log.FieldAccountID, login.AccountID).Msg("failed to record login time")
		return nil, err
	}

	token, err := s.tokens.Generate(login.UserID, login.UserName, login.AccountID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, login.UserID).Msg("failed to issue token")
		return nil, err
	}

	return &domain.LoginResult{
		User:  user.ToPublic(),
		Token: token,
	}, nil
}

// Logout records logout activity for the login.
func (s *authServiceImpl) Logout(ctx context.Context, accountID string) error {
	if err := s.repo.TouchLastLogin(ctx, accountID, time.Now()); err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldAccountID, accountID).Msg("failed to record logout time")
		return err
	}
	return nil
}

// normalizeBcryptHash rewrites $2y$ and $2b$ version prefixes to $2a$ so
// hashes produced by other bcrypt implementations still compare.
func normalizeBcryptHash(hash string) string {
	for _, prefix := range []string{"$2y$", "$2b$"} {
		if strings.HasPrefix(hash, prefix) {
			return "$2a$" + hash[len(prefix):]
		}
	}
	return hash
}

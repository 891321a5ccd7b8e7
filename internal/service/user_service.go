package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"

	"github.com/riskids/riskids-betest/internal/cache"
	"github.com/riskids/riskids-betest/internal/domain"
	"github.com/riskids/riskids-betest/internal/repository"
	"github.com/riskids/riskids-betest/pkg/log"
)

var ErrUserNotFound = errors.New("user not found")

// inactiveAfter is how long a login may be idle before the inactivity report
// includes it.
const inactiveAfter = 3 * 24 * time.Hour

// populateTimeout bounds detached cache population so a fire-and-forget
// goroutine cannot outlive the outage it is waiting on.
const populateTimeout = 5 * time.Second

// userServiceImpl implements UserService.
type userServiceImpl struct {
	repo       repository.UserRepository
	cache      cache.UserCache
	bcryptCost int
	sf         singleflight.Group
}

// NewUserService creates a new user service.
func NewUserService(repo repository.UserRepository, userCache cache.UserCache, bcryptCost int) UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &userServiceImpl{
		repo:       repo,
		cache:      userCache,
		bcryptCost: bcryptCost,
	}
}

// CreateUser registers a user and its login, then populates the lookup cache
// in the background. The create response never waits on, or fails because
// of, cache population.
func (s *userServiceImpl) CreateUser(ctx context.Context, req *domain.CreateUserRequest) (*domain.UserResponse, error) {
	l := log.Ctx(ctx)

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		l.Error().Err(err).Msg("failed to hash password")
		return nil, err
	}

	user := &domain.User{
		UserID:             req.UserID,
		FullName:           req.FullName,
		AccountNumber:      req.AccountNumber,
		EmailAddress:       req.EmailAddress,
		RegistrationNumber: req.RegistrationNumber,
	}
	if user.UserID == "" {
		user.UserID = uuid.New().String()
	}

	userName := req.UserName
	if userName == "" {
		userName = emailLocalPart(req.EmailAddress)
	}

	login := &domain.AccountLogin{
		AccountID:         fmt.Sprintf("acc_%d", time.Now().UnixNano()),
		UserName:          userName,
		Password:          string(hashed),
		LastLoginDateTime: time.Now(),
		UserID:            user.UserID,
	}

	if err := s.repo.CreateUser(ctx, user, login); err != nil {
		return nil, err
	}

	s.populateAsync(user)

	resp := user.ToPublic()
	return &resp, nil
}

// GetUserByAccountNumber looks a user up by account number, cache first.
func (s *userServiceImpl) GetUserByAccountNumber(ctx context.Context, accountNumber string) (*domain.User, error) {
	return s.lookup(ctx, "account:"+accountNumber,
		func(ctx context.Context) (*domain.User, bool) {
			return s.cache.GetByAccountNumber(ctx, accountNumber)
		},
		func(ctx context.Context) (*domain.User, error) {
			return s.repo.GetUserByAccountNumber(ctx, accountNumber)
		})
}

// GetUserByRegistrationNumber looks a user up by registration number, cache first.
func (s *userServiceImpl) GetUserByRegistrationNumber(ctx context.Context, registrationNumber string) (*domain.User, error) {
	return s.lookup(ctx, "reg:"+registrationNumber,
		func(ctx context.Context) (*domain.User, bool) {
			return s.cache.GetByRegistrationNumber(ctx, registrationNumber)
		},
		func(ctx context.Context) (*domain.User, error) {
			return s.repo.GetUserByRegistrationNumber(ctx, registrationNumber)
		})
}

// lookup is the read-through path: a cache hit returns without touching the
// store; a miss falls back to the store and repopulates the cache in the
// background. A not-found result is never cached. Concurrent identical
// misses are collapsed through singleflight.
func (s *userServiceImpl) lookup(
	ctx context.Context,
	flightKey string,
	fromCache func(context.Context) (*domain.User, bool),
	fromStore func(context.Context) (*domain.User, error),
) (*domain.User, error) {
	v, err, _ := s.sf.Do(flightKey, func() (interface{}, error) {
		if user, ok := fromCache(ctx); ok {
			return user, nil
		}

		user, err := fromStore(ctx)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}

		s.populateAsync(user)
		return user, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.User), nil
}

// UpdateUser commits the partial update to the store, then overwrites the
// cache with the new snapshot. When the update changed an alternate key, the
// entries under the old values are left to expire via TTL.
func (s *userServiceImpl) UpdateUser(ctx context.Context, userID string, req *domain.UpdateUserRequest) (*domain.User, error) {
	user, err := s.repo.UpdateUser(ctx, userID, req)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	s.cache.CacheUser(ctx, user)

	return user, nil
}

// DeleteUser removes the user and its login from the store, then evicts both
// cache entries. A failed eviction leaves a stale entry that ages out within
// the TTL window.
func (s *userServiceImpl) DeleteUser(ctx context.Context, userID string) error {
	deleted, err := s.repo.DeleteUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.cache.ClearUserCache(ctx, deleted)

	return nil
}

// GetInactiveAccounts reports logins idle for more than three days, joined
// with their users. The scan reads the store directly; the per-key lookup
// cache has nothing to contribute here.
func (s *userServiceImpl) GetInactiveAccounts(ctx context.Context) ([]domain.InactiveAccount, error) {
	return s.repo.ListStaleLogins(ctx, time.Now().Add(-inactiveAfter))
}

// populateAsync writes the snapshot to the cache from a detached goroutine.
// The originating request never observes the outcome.
func (s *userServiceImpl) populateAsync(user *domain.User) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), populateTimeout)
		defer cancel()
		s.cache.CacheUser(ctx, user)
	}()
}

func emailLocalPart(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}

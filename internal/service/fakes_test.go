package service

import (
	"context"
	"sync"
	"time"

	"github.com/riskids/riskids-betest/internal/domain"
	"github.com/riskids/riskids-betest/internal/repository"
)

// journal records the order of store and cache operations so tests can
// assert that store commits precede cache mutations.
type journal struct {
	mu  sync.Mutex
	ops []string
}

func (j *journal) record(op string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ops = append(j.ops, op)
}

func (j *journal) entries() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.ops...)
}

// memoryRepo is an in-memory UserRepository.
type memoryRepo struct {
	mu      sync.Mutex
	users   map[string]domain.User         // by userId
	logins  map[string]domain.AccountLogin // by accountId
	journal *journal
	reads   int
}

func newMemoryRepo(j *journal) *memoryRepo {
	return &memoryRepo{
		users:   make(map[string]domain.User),
		logins:  make(map[string]domain.AccountLogin),
		journal: j,
	}
}

func (r *memoryRepo) storeReads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reads
}

func (r *memoryRepo) CreateUser(_ context.Context, user *domain.User, login *domain.AccountLogin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.EmailAddress == user.EmailAddress {
			return repository.ErrDuplicateEmail
		}
		if u.AccountNumber == user.AccountNumber {
			return repository.ErrDuplicateAccountNumber
		}
		if u.RegistrationNumber == user.RegistrationNumber {
			return repository.ErrDuplicateRegistrationNumber
		}
	}
	r.users[user.UserID] = *user
	r.logins[login.AccountID] = *login
	r.journal.record("store:create")
	return nil
}

func (r *memoryRepo) findUser(match func(domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	for _, u := range r.users {
		if match(u) {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *memoryRepo) GetUserByID(_ context.Context, userID string) (*domain.User, error) {
	return r.findUser(func(u domain.User) bool { return u.UserID == userID })
}

func (r *memoryRepo) GetUserByAccountNumber(_ context.Context, accountNumber string) (*domain.User, error) {
	return r.findUser(func(u domain.User) bool { return u.AccountNumber == accountNumber })
}

func (r *memoryRepo) GetUserByRegistrationNumber(_ context.Context, registrationNumber string) (*domain.User, error) {
	return r.findUser(func(u domain.User) bool { return u.RegistrationNumber == registrationNumber })
}

func (r *memoryRepo) GetUserByEmail(_ context.Context, emailAddress string) (*domain.User, error) {
	return r.findUser(func(u domain.User) bool { return u.EmailAddress == emailAddress })
}

func (r *memoryRepo) UpdateUser(_ context.Context, userID string, patch *domain.UpdateUserRequest) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	if patch.FullName != nil {
		u.FullName = *patch.FullName
	}
	if patch.AccountNumber != nil {
		u.AccountNumber = *patch.AccountNumber
	}
	if patch.EmailAddress != nil {
		u.EmailAddress = *patch.EmailAddress
	}
	if patch.RegistrationNumber != nil {
		u.RegistrationNumber = *patch.RegistrationNumber
	}
	r.users[userID] = u
	r.journal.record("store:update")
	return &u, nil
}

func (r *memoryRepo) DeleteUser(_ context.Context, userID string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	delete(r.users, userID)
	for id, l := range r.logins {
		if l.UserID == userID {
			delete(r.logins, id)
		}
	}
	r.journal.record("store:delete")
	return &u, nil
}

func (r *memoryRepo) GetLoginByUserID(_ context.Context, userID string) (*domain.AccountLogin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.logins {
		if l.UserID == userID {
			l := l
			return &l, nil
		}
	}
	return nil, repository.ErrLoginNotFound
}

func (r *memoryRepo) GetLoginByAccountID(_ context.Context, accountID string) (*domain.AccountLogin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.logins[accountID]; ok {
		return &l, nil
	}
	return nil, repository.ErrLoginNotFound
}

func (r *memoryRepo) TouchLastLogin(_ context.Context, accountID string, t time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.logins[accountID]
	if !ok {
		return repository.ErrLoginNotFound
	}
	l.LastLoginDateTime = t
	r.logins[accountID] = l
	return nil
}

func (r *memoryRepo) ListStaleLogins(_ context.Context, before time.Time) ([]domain.InactiveAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var accounts []domain.InactiveAccount
	for _, l := range r.logins {
		if l.LastLoginDateTime.Before(before) {
			accounts = append(accounts, domain.InactiveAccount{
				AccountID:         l.AccountID,
				UserName:          l.UserName,
				LastLoginDateTime: l.LastLoginDateTime,
				User:              r.users[l.UserID],
			})
		}
	}
	return accounts, nil
}

// memoryCache is an in-memory UserCache. With connected=false it mimics a
// permanently unreachable cache: every operation is a silent no-op.
type memoryCache struct {
	mu        sync.Mutex
	entries   map[string]domain.User
	connected bool
	journal   *journal
}

func newMemoryCache(j *journal) *memoryCache {
	return &memoryCache{
		entries:   make(map[string]domain.User),
		connected: true,
		journal:   j,
	}
}

func newDisconnectedCache(j *journal) *memoryCache {
	c := newMemoryCache(j)
	c.connected = false
	return c
}

func (c *memoryCache) snapshot(key string) (domain.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.entries[key]
	return u, ok
}

func (c *memoryCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *memoryCache) GetByAccountNumber(_ context.Context, accountNumber string) (*domain.User, bool) {
	if !c.connected {
		return nil, false
	}
	if u, ok := c.snapshot("account:" + accountNumber); ok {
		return &u, true
	}
	return nil, false
}

func (c *memoryCache) GetByRegistrationNumber(_ context.Context, registrationNumber string) (*domain.User, bool) {
	if !c.connected {
		return nil, false
	}
	if u, ok := c.snapshot("reg:" + registrationNumber); ok {
		return &u, true
	}
	return nil, false
}

func (c *memoryCache) CacheUser(_ context.Context, user *domain.User) {
	if !c.connected {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries["account:"+user.AccountNumber] = *user
	c.entries["reg:"+user.RegistrationNumber] = *user
	c.journal.record("cache:put")
}

func (c *memoryCache) ClearUserCache(_ context.Context, user *domain.User) {
	if !c.connected {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, "account:"+user.AccountNumber)
	delete(c.entries, "reg:"+user.RegistrationNumber)
	c.journal.record("cache:evict")
}

func (c *memoryCache) Close() error { return nil }

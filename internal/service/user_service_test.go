package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskids/riskids-betest/internal/domain"
)

func janeRequest() *domain.CreateUserRequest {
	return &domain.CreateUserRequest{
		FullName:           "Jane Smith",
		AccountNumber:      "654321",
		EmailAddress:       "jane@example.com",
		RegistrationNumber: "123456789",
		Password:           "password123",
	}
}

func TestCreateUser_PopulatesCacheAfterCommit(t *testing.T) {
	t.Parallel()

	j := &journal{}
	repo := newMemoryRepo(j)
	userCache := newMemoryCache(j)
	svc := NewUserService(repo, userCache, 4)

	resp, err := svc.CreateUser(context.Background(), janeRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.UserID)
	assert.Equal(t, "Jane Smith", resp.FullName)
	assert.Equal(t, "jane@example.com", resp.EmailAddress)

	// Population is fire-and-forget; wait for both keys to land.
	require.Eventually(t, func() bool {
		return userCache.size() == 2
	}, 2*time.Second, 10*time.Millisecond)

	cached, ok := userCache.snapshot("account:654321")
	require.True(t, ok)
	assert.Equal(t, resp.UserID, cached.UserID)
	assert.Equal(t, "Jane Smith", cached.FullName)

	_, ok = userCache.snapshot("reg:123456789")
	assert.True(t, ok)

	ops := j.entries()
	require.Equal(t, []string{"store:create", "cache:put"}, ops)
}

func TestCreateUser_PairedLoginCreated(t *testing.T) {
	t.Parallel()

	j := &journal{}
	repo := newMemoryRepo(j)
	svc := NewUserService(repo, newMemoryCache(j), 4)

	before := time.Now()
	resp, err := svc.CreateUser(context.Background(), janeRequest())
	require.NoError(t, err)

	login, err := repo.GetLoginByUserID(context.Background(), resp.UserID)
	require.NoError(t, err)
	assert.Equal(t, "jane", login.UserName, "user name defaults to the email local part")
	assert.NotEmpty(t, login.AccountID)
	assert.WithinRange(t, login.LastLoginDateTime, before, time.Now())
}

func TestCreateUser_CacheDownStillSucceeds(t *testing.T) {
	t.Parallel()

	j := &journal{}
	repo := newMemoryRepo(j)
	svc := NewUserService(repo, newDisconnectedCache(j), 4)

	resp, err := svc.CreateUser(context.Background(), janeRequest())
	require.NoError(t, err)

	user, err := svc.GetUserByAccountNumber(context.Background(), "654321")
	require.NoError(t, err)
	assert.Equal(t, resp.UserID, user.UserID)

	_, err = svc.UpdateUser(context.Background(), resp.UserID, &domain.UpdateUserRequest{FullName: strPtr("Jane S.")})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(context.Background(), resp.UserID))
}

func TestLookup_CacheHitSkipsStore(t *testing.T) {
	t.Parallel()

	j := &journal{}
	repo := newMemoryRepo(j)
	userCache := newMemoryCache(j)
	svc := NewUserService(repo, userCache, 4)

	userCache.CacheUser(context.Background(), &domain.User{
		UserID:             "user-1",
		FullName:           "Jane Smith",
		AccountNumber:      "654321",
		RegistrationNumber: "123456789",
	})

	user, err := svc.GetUserByAccountNumber(context.Background(), "654321")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.UserID)
	assert.Zero(t, repo.storeReads(), "cache hit must not touch the store")

	user, err = svc.GetUserByRegistrationNumber(context.Background(), "123456789")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.UserID)
	assert.Zero(t, repo.storeReads())
}

func TestLookup_MissFallsBackAndPopulates(t *testing.T) {
	t.Parallel()

	j := &journal{}
	repo := newMemoryRepo(j)
	userCache := newMemoryCache(j)
	svc := NewUserService(repo, userCache, 4)

	require.NoError(t, repo.CreateUser(context.Background(),
		&domain.User{UserID: "user-1", FullName: "Jane Smith", AccountNumber: "654321", EmailAddress: "jane@example.com", RegistrationNumber: "123456789"},
		&domain.AccountLogin{AccountID: "acc_1", UserID: "user-1"}))

	user, err := svc.GetUserByAccountNumber(context.Background(), "654321")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.UserID)

	require.Eventually(t, func() bool {
		return userCache.size() == 2
	}, 2*time.Second, 10*time.Millisecond)

	reads := repo.storeReads()
	_, err = svc.GetUserByAccountNumber(context.Background(), "654321")
	require.NoError(t, err)
	assert.Equal(t, reads, repo.storeReads(), "second lookup must be served from cache")
}

func TestLookup_NotFoundIsNotCached(t *testing.T) {
	t.Parallel()

	j := &journal{}
	repo := newMemoryRepo(j)
	userCache := newMemoryCache(j)
	svc := NewUserService(repo, userCache, 4)

	_, err := svc.GetUserByAccountNumber(context.Background(), "000000")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.GetUserByRegistrationNumber(context.Background(), "000000000")
	assert.ErrorIs(t, err, ErrUserNotFound)

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, userCache.size(), "negative results must not be cached")
}

func TestUpdateUser_RefreshesCurrentKeysLeavesOldEntries(t *testing.T) {
	t.Parallel()

	j := &journal{}
	repo := newMemoryRepo(j)
	userCache := newMemoryCache(j)
	svc := NewUserService(repo, userCache, 4)

	resp, err := svc.CreateUser(context.Background(), janeRequest())
	require.NoError(t, err)
	require.Eventually(t, func() bool { return userCache.size() == 2 }, 2*time.Second, 10*time.Millisecond)

	updated, err := svc.UpdateUser(context.Background(), resp.UserID, &domain.UpdateUserRequest{
		AccountNumber: strPtr("999999"),
	})
	require.NoError(t, err)
	assert.Equal(t, "999999", updated.AccountNumber)

	// New key serves the updated snapshot.
	cached, ok := userCache.snapshot("account:999999")
	require.True(t, ok)
	assert.Equal(t, "999999", cached.AccountNumber)

	// The entry under the old account number is orphaned, not evicted; it is
	// left to expire via TTL.
	stale, ok := userCache.snapshot("account:654321")
	require.True(t, ok)
	assert.Equal(t, "654321", stale.AccountNumber)

	// The registration key was rewritten with the fresh snapshot.
	cached, ok = userCache.snapshot("reg:123456789")
	require.True(t, ok)
	assert.Equal(t, "999999", cached.AccountNumber)
}

func TestUpdateUser_StoreFailureLeavesCacheUntouched(t *testing.T) {
	t.Parallel()

	j := &journal{}
	repo := newMemoryRepo(j)
	userCache := newMemoryCache(j)
	svc := NewUserService(repo, userCache, 4)

	_, err := svc.UpdateUser(context.Background(), "missing", &domain.UpdateUserRequest{FullName: strPtr("X")})
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Zero(t, userCache.size())
	assert.Empty(t, j.entries())
}

func TestDeleteUser_EvictsBothKeys(t *testing.T) {
	t.Parallel()

	j := &journal{}
	repo := newMemoryRepo(j)
	userCache := newMemoryCache(j)
	svc := NewUserService(repo, userCache, 4)

	resp, err := svc.CreateUser(context.Background(), janeRequest())
	require.NoError(t, err)
	require.Eventually(t, func() bool { return userCache.size() == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, svc.DeleteUser(context.Background(), resp.UserID))
	assert.Zero(t, userCache.size())

	// Store delete precedes eviction.
	ops := j.entries()
	require.Len(t, ops, 4)
	assert.Equal(t, "store:delete", ops[2])
	assert.Equal(t, "cache:evict", ops[3])

	// Evicting again changes nothing.
	userCache.ClearUserCache(context.Background(), &domain.User{AccountNumber: "654321", RegistrationNumber: "123456789"})
	assert.Zero(t, userCache.size())

	// The store is authoritative: the user is gone.
	_, err = svc.GetUserByAccountNumber(context.Background(), "654321")
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.ErrorIs(t, svc.DeleteUser(context.Background(), resp.UserID), ErrUserNotFound)
}

func TestGetInactiveAccounts(t *testing.T) {
	t.Parallel()

	j := &journal{}
	repo := newMemoryRepo(j)
	svc := NewUserService(repo, newMemoryCache(j), 4)

	require.NoError(t, repo.CreateUser(context.Background(),
		&domain.User{UserID: "user-1", FullName: "Old Timer", AccountNumber: "1", EmailAddress: "old@example.com", RegistrationNumber: "r1"},
		&domain.AccountLogin{AccountID: "acc_1", UserName: "old", UserID: "user-1", LastLoginDateTime: time.Now().Add(-96 * time.Hour)}))
	require.NoError(t, repo.CreateUser(context.Background(),
		&domain.User{UserID: "user-2", FullName: "Fresh", AccountNumber: "2", EmailAddress: "new@example.com", RegistrationNumber: "r2"},
		&domain.AccountLogin{AccountID: "acc_2", UserName: "fresh", UserID: "user-2", LastLoginDateTime: time.Now()}))

	accounts, err := svc.GetInactiveAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "acc_1", accounts[0].AccountID)
	assert.Equal(t, "Old Timer", accounts[0].User.FullName)
}

func strPtr(s string) *string { return &s }

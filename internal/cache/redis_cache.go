package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/riskids/riskids-betest/internal/config"
	"github.com/riskids/riskids-betest/internal/domain"
	"github.com/riskids/riskids-betest/pkg/log"
)

// ConnState tracks the cache connection lifecycle.
type ConnState int32

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
	StateError
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateError:
		return "error"
	default:
		return "disconnected"
	}
}

const (
	getTimeout   = 1 * time.Second
	writeTimeout = 2 * time.Second
	pingInterval = 5 * time.Second

	maxReconnectDelay = 5 * time.Second
)

// RedisUserCache implements UserCache backed by Redis. A background monitor
// owns the connection state; operations consult it before touching the wire
// so an unreachable server costs nothing on the request path.
type RedisUserCache struct {
	client *redis.Client
	ttl    time.Duration

	state     atomic.Int32
	done      chan struct{}
	closeOnce sync.Once
}

// NewRedisUserCache creates a user cache. It never blocks on an unreachable
// server: connectivity is established in the background and every operation
// no-ops until the monitor reports the connection healthy.
func NewRedisUserCache(cfg config.RedisConfig, ttl time.Duration) *RedisUserCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	c := &RedisUserCache{
		client: client,
		ttl:    ttl,
		done:   make(chan struct{}),
	}
	c.state.Store(int32(StateDisconnected))

	go c.monitor()

	return c
}

// State returns the current connection state.
func (c *RedisUserCache) State() ConnState {
	return ConnState(c.state.Load())
}

func (c *RedisUserCache) setState(s ConnState) {
	old := ConnState(c.state.Swap(int32(s)))
	if old != s {
		l := log.L()
		l.Info().
			Str(log.FieldCacheState, s.String()).
			Msg("redis connection state changed")
	}
}

func (c *RedisUserCache) connected() bool {
	return c.State() == StateConnected
}

// monitor is the sole writer of the connection state. It pings the server,
// promoting to connected on success; a failed ping demotes a healthy
// connection to error, otherwise the state stays disconnected while the
// monitor retries with backoff.
func (c *RedisUserCache) monitor() {
	retries := 0
	for {
		if !c.connected() {
			c.setState(StateConnecting)
		}

		ctx, cancel := context.WithTimeout(context.Background(), getTimeout)
		err := c.client.Ping(ctx).Err()
		cancel()

		switch {
		case err == nil:
			c.setState(StateConnected)
			retries = 0
		case c.connected():
			c.setState(StateError)
			retries++
			l := log.L()
			l.Warn().Err(err).Msg("redis connection lost")
		default:
			c.setState(StateDisconnected)
			retries++
		}

		delay := pingInterval
		if err != nil {
			delay = reconnectDelay(retries)
		}

		select {
		case <-c.done:
			return
		case <-time.After(delay):
		}
	}
}

// reconnectDelay grows linearly with the retry count, capped at
// maxReconnectDelay.
func reconnectDelay(retries int) time.Duration {
	d := time.Duration(retries) * 100 * time.Millisecond
	if d > maxReconnectDelay {
		return maxReconnectDelay
	}
	return d
}

func keyByAccountNumber(accountNumber string) string {
	return fmt.Sprintf("user:account:%s", accountNumber)
}

func keyByRegistrationNumber(registrationNumber string) string {
	return fmt.Sprintf("user:reg:%s", registrationNumber)
}

// GetByAccountNumber returns a cached snapshot for the account number.
func (c *RedisUserCache) GetByAccountNumber(ctx context.Context, accountNumber string) (*domain.User, bool) {
	return c.get(ctx, keyByAccountNumber(accountNumber))
}

// GetByRegistrationNumber returns a cached snapshot for the registration number.
func (c *RedisUserCache) GetByRegistrationNumber(ctx context.Context, registrationNumber string) (*domain.User, bool) {
	return c.get(ctx, keyByRegistrationNumber(registrationNumber))
}

// get reads one key. Timeouts and errors of any kind are reported as misses;
// the caller cannot distinguish an outage from an absent entry.
func (c *RedisUserCache) get(ctx context.Context, key string) (*domain.User, bool) {
	if !c.connected() {
		return nil, false
	}

	ctx, cancel := context.WithTimeout(ctx, getTimeout)
	defer cancel()

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			l := log.Ctx(ctx)
			l.Warn().Err(err).Str(log.FieldCacheKey, key).Msg("redis get failed")
		}
		return nil, false
	}

	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldCacheKey, key).Msg("corrupt cache entry")
		return nil, false
	}

	return &user, true
}

// CacheUser writes the snapshot under both alternate keys concurrently, each
// with its own TTL, inside a shared write timeout. One key failing does not
// roll back the other; partial population is an accepted outcome.
func (c *RedisUserCache) CacheUser(ctx context.Context, user *domain.User) {
	if !c.connected() {
		return
	}

	data, err := json.Marshal(user)
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldUserID, user.UserID).Msg("failed to marshal user for cache")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	var g errgroup.Group
	for _, key := range []string{
		keyByAccountNumber(user.AccountNumber),
		keyByRegistrationNumber(user.RegistrationNumber),
	} {
		key := key
		g.Go(func() error {
			if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
				l := log.Ctx(ctx)
				l.Warn().Err(err).Str(log.FieldCacheKey, key).Msg("redis set failed")
			}
			return nil
		})
	}
	g.Wait()

	l := log.Ctx(ctx)
	l.Debug().Str(log.FieldUserID, user.UserID).Msg("cached user")
}

// ClearUserCache deletes both alternate-key entries concurrently. Deleting an
// absent key is a no-op, so repeated eviction is harmless.
func (c *RedisUserCache) ClearUserCache(ctx context.Context, user *domain.User) {
	if !c.connected() {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	var g errgroup.Group
	for _, key := range []string{
		keyByAccountNumber(user.AccountNumber),
		keyByRegistrationNumber(user.RegistrationNumber),
	} {
		key := key
		g.Go(func() error {
			if err := c.client.Del(ctx, key).Err(); err != nil {
				l := log.Ctx(ctx)
				l.Warn().Err(err).Str(log.FieldCacheKey, key).Msg("redis del failed")
			}
			return nil
		})
	}
	g.Wait()

	l := log.Ctx(ctx)
	l.Debug().Str(log.FieldUserID, user.UserID).Msg("cleared user cache")
}

// Close stops the monitor and releases the client.
func (c *RedisUserCache) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		c.state.Store(int32(StateDisconnected))
		err = c.client.Close()
	})
	return err
}

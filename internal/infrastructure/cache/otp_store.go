package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	domainRepo "github.com/sangkips/tableorder-api/internal/domain/repository"
)

const otpKeyPrefix = "otp:"

// RedisOTPStore keeps OTP challenges in a redis hash that expires with the code
type RedisOTPStore struct {
	client *redis.Client
}

// NewRedisOTPStore creates a new Redis-based OTP store
func NewRedisOTPStore(client *redis.Client) *RedisOTPStore {
	return &RedisOTPStore{client: client}
}

func (s *RedisOTPStore) Save(ctx context.Context, phone string, challenge *domainRepo.OTPChallenge, ttl time.Duration) error {
	key := otpKeyPrefix + phone
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			"code_hash", challenge.CodeHash,
			"table_number", challenge.TableNumber,
			"attempts", challenge.Attempts,
			"expires_at", challenge.ExpiresAt.Unix(),
		)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	return err
}

func (s *RedisOTPStore) Get(ctx context.Context, phone string) (*domainRepo.OTPChallenge, error) {
	fields, err := s.client.HGetAll(ctx, otpKeyPrefix+phone).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, domainRepo.ErrCacheMiss
	}

	table, _ := strconv.Atoi(fields["table_number"])
	attempts, _ := strconv.Atoi(fields["attempts"])
	expires, _ := strconv.ParseInt(fields["expires_at"], 10, 64)

	return &domainRepo.OTPChallenge{
		CodeHash:    fields["code_hash"],
		TableNumber: table,
		Attempts:    attempts,
		ExpiresAt:   time.Unix(expires, 0),
	}, nil
}

// incrementAttempts only touches a live challenge. A plain HINCRBY on an
// expired key would recreate it without a TTL.
var incrementAttempts = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return -1
end
return redis.call("HINCRBY", KEYS[1], "attempts", 1)
`)

func (s *RedisOTPStore) IncrementAttempts(ctx context.Context, phone string) (int, error) {
	n, err := incrementAttempts.Run(ctx, s.client, []string{otpKeyPrefix + phone}).Int64()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, domainRepo.ErrCacheMiss
	}
	return int(n), nil
}

func (s *RedisOTPStore) Delete(ctx context.Context, phone string) error {
	return s.client.Del(ctx, otpKeyPrefix+phone).Err()
}

// MemoryOTPStore is an in-process OTP store for single instance deployments
// without redis and for tests.
type MemoryOTPStore struct {
	mu    sync.Mutex
	items map[string]domainRepo.OTPChallenge
	now   func() time.Time
}

// NewMemoryOTPStore creates an empty in-process OTP store
func NewMemoryOTPStore() *MemoryOTPStore {
	return &MemoryOTPStore{items: make(map[string]domainRepo.OTPChallenge), now: time.Now}
}

func (s *MemoryOTPStore) Save(_ context.Context, phone string, challenge *domainRepo.OTPChallenge, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *challenge
	if expiry := s.now().Add(ttl); c.ExpiresAt.IsZero() || expiry.Before(c.ExpiresAt) {
		c.ExpiresAt = expiry
	}
	s.items[phone] = c
	return nil
}

func (s *MemoryOTPStore) Get(_ context.Context, phone string) (*domainRepo.OTPChallenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[phone]
	if !ok || !s.now().Before(c.ExpiresAt) {
		delete(s.items, phone)
		return nil, domainRepo.ErrCacheMiss
	}
	return &c, nil
}

func (s *MemoryOTPStore) IncrementAttempts(_ context.Context, phone string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[phone]
	if !ok {
		return 0, domainRepo.ErrCacheMiss
	}
	c.Attempts++
	s.items[phone] = c
	return c.Attempts, nil
}

func (s *MemoryOTPStore) Delete(_ context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, phone)
	return nil
}

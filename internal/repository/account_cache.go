package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/support-portal/internal/domain"
)

const (
	accountCachePrefix      = "portal:account:"
	accountGenerationPrefix = "portal:account-gen:"
)

var errStaleLookup = errors.New("account changed during lookup")

// cachedAccount is the wire form stored in Redis. It never holds the password hash.
type cachedAccount struct {
	ID        int64  `cbor:"id"`
	Username  string `cbor:"u"`
	Role      string `cbor:"r"`
	CreatedAt int64  `cbor:"c"`
	UpdatedAt int64  `cbor:"m"`
}

// CachedAccountRepository caches the identity half of an account in Redis for
// the per-request session lookup. Its own GetByUsername always reads the
// backing store, because callers such as login need the password hash; the
// cached lookup is reached through Identities.
//
// Every mutation bumps a per-username generation counter and evicts the entry.
// A lookup only fills the cache if the generation it saw before reading the
// store is still current, so a fill racing a demotion is discarded.
type CachedAccountRepository struct {
	inner  AccountRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedAccountRepository wraps inner with a Redis cache.
func NewCachedAccountRepository(inner AccountRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedAccountRepository {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedAccountRepository{inner: inner, client: client, ttl: ttl, logger: logger}
}

// Identities returns a view whose GetByUsername is served from the cache.
// Accounts it returns carry no PasswordHash.
func (r *CachedAccountRepository) Identities() AccountRepository {
	return identityView{r}
}

type identityView struct {
	*CachedAccountRepository
}

func (v identityView) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return v.lookupIdentity(ctx, username)
}

func (r *CachedAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if err := r.inner.Create(ctx, account); err != nil {
		return err
	}
	r.invalidate(ctx, account.Username)
	return nil
}

func (r *CachedAccountRepository) Update(ctx context.Context, account *domain.Account) error {
	err := r.inner.Update(ctx, account)
	r.invalidate(ctx, account.Username)
	return err
}

func (r *CachedAccountRepository) Delete(ctx context.Context, id int64) error {
	existing, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return err
	}
	err = r.inner.Delete(ctx, id)
	r.invalidate(ctx, existing.Username)
	return err
}

func (r *CachedAccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	return r.inner.GetByID(ctx, id)
}

func (r *CachedAccountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.inner.GetByUsername(ctx, username)
}

func (r *CachedAccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	return r.inner.List(ctx)
}

func (r *CachedAccountRepository) lookupIdentity(ctx context.Context, username string) (*domain.Account, error) {
	raw, err := r.client.Get(ctx, accountCachePrefix+username).Bytes()
	switch {
	case err == nil:
		var cached cachedAccount
		if decodeErr := cbor.Unmarshal(raw, &cached); decodeErr == nil {
			return cached.toDomain(), nil
		}
		r.logger.Warn("discarding undecodable account cache entry", zap.String("username", username))
	case !errors.Is(err, redis.Nil):
		r.logger.Warn("account cache read failed", zap.Error(err))
	}

	generation, genErr := r.client.Get(ctx, accountGenerationPrefix+username).Result()
	cacheable := genErr == nil || errors.Is(genErr, redis.Nil)

	account, err := r.inner.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	entry := fromDomain(account)
	if cacheable {
		r.fill(ctx, username, generation, entry)
	}
	return entry.toDomain(), nil
}

// fill stores entry unless the generation moved since the lookup began.
func (r *CachedAccountRepository) fill(ctx context.Context, username, generation string, entry cachedAccount) {
	payload, err := cbor.Marshal(entry)
	if err != nil {
		r.logger.Warn("account cache encode failed", zap.Error(err))
		return
	}
	genKey := accountGenerationPrefix + username
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return errStaleLookup
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, accountCachePrefix+username, payload, r.ttl)
			return nil
		})
		return err
	}, genKey)
	switch {
	case err == nil:
	case errors.Is(err, errStaleLookup), errors.Is(err, redis.TxFailedErr):
		r.logger.Debug("skipping account cache fill after concurrent change", zap.String("username", username))
	default:
		r.logger.Warn("account cache write failed", zap.Error(err))
	}
}

func (r *CachedAccountRepository) invalidate(ctx context.Context, username string) {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, accountGenerationPrefix+username)
		pipe.Del(ctx, accountCachePrefix+username)
		return nil
	})
	if err != nil {
		r.logger.Warn("account cache invalidation failed", zap.String("username", username), zap.Error(err))
	}
}

func fromDomain(account *domain.Account) cachedAccount {
	return cachedAccount{
		ID:        account.ID,
		Username:  account.Username,
		Role:      string(account.Role),
		CreatedAt: account.CreatedAt.UnixNano(),
		UpdatedAt: account.UpdatedAt.UnixNano(),
	}
}

func (c cachedAccount) toDomain() *domain.Account {
	return &domain.Account{
		ID:        c.ID,
		Username:  c.Username,
		Role:      domain.Role(c.Role),
		CreatedAt: time.Unix(0, c.CreatedAt).UTC(),
		UpdatedAt: time.Unix(0, c.UpdatedAt).UTC(),
	}
}

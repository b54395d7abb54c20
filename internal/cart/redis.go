package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type cmdable interface {
	Get(context.Context, string) *redis.StringCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Publish(context.Context, string, any) *redis.IntCmd
}

// Change is published on the cart channel after every write.
type Change struct {
	Slot   string `json:"slot"`
	Origin string `json:"origin"`
}

// Reloader reloads the cart stored in a slot.
type Reloader interface {
	Reload(ctx context.Context, slot string) error
}

// RedisStorage stores carts as Redis strings and announces every write on
// a pub/sub channel so other instances can reload.
type RedisStorage struct {
	store   cmdable
	raw     *redis.Client
	channel string
	ttl     time.Duration
	origin  string
	logger  zerolog.Logger
}

// NewRedisClient connects to Redis and verifies connectivity.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return raw, nil
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL == "" && cfg.Address == "" {
		return nil, errors.New("redis url or address is required")
	}
	if cfg.URL != "" {
		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		if opts.DB == 0 {
			opts.DB = cfg.DB
		}
		return opts, nil
	}
	return &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	}, nil
}

// NewRedisStorage creates a cart storage on client. A zero ttl keeps carts
// until they are overwritten.
func NewRedisStorage(client *redis.Client, channel string, ttl time.Duration, logger zerolog.Logger) *RedisStorage {
	return &RedisStorage{
		store:   client,
		raw:     client,
		channel: channel,
		ttl:     ttl,
		origin:  uuid.NewString(),
		logger:  logger.With().Str("component", "cart_redis").Logger(),
	}
}

func (r *RedisStorage) Get(ctx context.Context, slot string) ([]byte, error) {
	data, err := r.store.Get(ctx, slot).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", slot, err)
	}
	return data, nil
}

func (r *RedisStorage) Set(ctx context.Context, slot string, data []byte) error {
	if err := r.store.Set(ctx, slot, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", slot, err)
	}

	msg, err := json.Marshal(Change{Slot: slot, Origin: r.origin})
	if err != nil {
		return fmt.Errorf("failed to encode cart change: %w", err)
	}
	// The write already succeeded; other instances catch up on their next mutation.
	if err := r.store.Publish(ctx, r.channel, msg).Err(); err != nil {
		r.logger.Warn().Err(err).Str("slot", slot).Msg("failed to publish cart change")
	}

	return nil
}

// Follow subscribes to the cart channel and reloads every slot written by
// another instance until ctx is cancelled.
func (r *RedisStorage) Follow(ctx context.Context, reloader Reloader) error {
	if r.raw == nil {
		return errors.New("redis client not initialized")
	}

	sub := r.raw.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}

	r.logger.Info().Str("channel", r.channel).Msg("following cart changes")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.handleMessage(ctx, msg.Payload, reloader)
		}
	}
}

func (r *RedisStorage) handleMessage(ctx context.Context, payload string, reloader Reloader) {
	var change Change
	if err := json.Unmarshal([]byte(payload), &change); err != nil {
		r.logger.Warn().Err(err).Msg("ignoring malformed cart change")
		return
	}
	if change.Origin == r.origin || change.Slot == "" {
		return
	}
	if err := reloader.Reload(ctx, change.Slot); err != nil {
		r.logger.Error().Err(err).Str("slot", change.Slot).Msg("failed to reload cart")
	}
}

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
	"github.com/viant/phoenixgrid/internal/e"
	"github.com/viant/phoenixgrid/spectrum"
)

// RedisOptions configures a Redis cache client.
type RedisOptions struct {
	Addr        string
	Username    string
	Password    string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
	Prefix      string
	TTL         time.Duration
}

// Redis is a Cache storing Marshal-encoded spectra under Prefix+key.
type Redis struct {
	client *r.Client
	prefix string
	ttl    time.Duration
}

// NewRedis creates a Redis cache with its own client.
func NewRedis(opts RedisOptions) *Redis {
	client := r.NewClient(&r.Options{
		Addr:         opts.Addr,
		Username:     opts.Username,
		Password:     opts.Password,
		DB:           opts.DB,
		MaxRetries:   opts.MaxRetries,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.Timeout,
		WriteTimeout: opts.Timeout,
	})
	return &Redis{client: client, prefix: opts.Prefix, ttl: opts.TTL}
}

// Ping checks connectivity.
func (c *Redis) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	return nil
}

// Close releases the client.
func (c *Redis) Close() error { return c.client.Close() }

// Get implements Cache.
func (c *Redis) Get(ctx context.Context, key string) (*spectrum.Spectrum, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, r.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, e.Wrap(whereami.WhereAmI(), err)
	}
	s, err := Unmarshal(data)
	if err != nil {
		// A value we cannot decode is dropped and reported as a miss.
		if delErr := c.client.Del(ctx, c.prefix+key).Err(); delErr != nil {
			return nil, false, e.Wrap(whereami.WhereAmI(), delErr)
		}
		return nil, false, nil
	}
	return s, true, nil
}

// Put implements Cache.
func (c *Redis) Put(ctx context.Context, key string, s *spectrum.Spectrum) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	return nil
}

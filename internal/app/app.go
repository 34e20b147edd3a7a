// Package app assembles the configured sources with their optional listing
// memo and spectrum cache.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/viant/phoenixgrid/cache"
	"github.com/viant/phoenixgrid/catalog"
	"github.com/viant/phoenixgrid/config"
	"github.com/viant/phoenixgrid/engine"
	"github.com/viant/phoenixgrid/source"
	"github.com/viant/phoenixgrid/source/hires"
	"github.com/viant/phoenixgrid/source/httpfetch"
	"github.com/viant/phoenixgrid/source/objstore"
	"github.com/viant/phoenixgrid/source/synphot"
)

// App holds the registry built from a configuration and the resources
// behind it.
type App struct {
	Config   *config.Config
	Registry *source.Registry
	Catalog  *catalog.Store
	// Listers holds the catalog-backed lister of every source by name when a
	// catalog is configured.
	Listers map[string]*catalog.CachedLister
	Logger  *slog.Logger

	closers []io.Closer
}

// New opens the configured storage and registers every source.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	a := &App{Config: cfg, Registry: source.NewRegistry(), Logger: logger}
	if err := a.init(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	var maxAge time.Duration
	if c := a.Config.Catalog; c != nil {
		db, err := a.openDB(c.Path)
		if err != nil {
			return fmt.Errorf("catalog: %w", err)
		}
		if a.Catalog, err = catalog.NewStore(db); err != nil {
			return fmt.Errorf("catalog: %w", err)
		}
		maxAge = c.MaxAgeDuration()
	}
	spectra, err := a.openCache(ctx)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	for _, sc := range a.Config.Sources {
		src, err := Build(sc, a.Logger)
		if err != nil {
			return fmt.Errorf("source %q: %w", sc.Name, err)
		}
		if a.Catalog != nil {
			cached := catalog.Cached(a.Catalog, src, maxAge, a.Logger)
			if a.Listers == nil {
				a.Listers = make(map[string]*catalog.CachedLister)
			}
			a.Listers[sc.Name] = cached
			src = source.WithLister(src, cached)
		}
		if spectra != nil {
			src = source.WithLoader(src, cache.Loader(src, spectra, sc.Name, a.Logger))
		}
		if err := a.Registry.Register(sc.Name, src); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) openDB(path string) (*sql.DB, error) {
	db, err := engine.OpenFile(path)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, db)
	return db, nil
}

func (a *App) openCache(ctx context.Context) (cache.Cache, error) {
	c := a.Config.Cache
	if c == nil {
		return nil, nil
	}
	switch c.Kind {
	case config.CacheSQLite:
		db, err := a.openDB(c.Path)
		if err != nil {
			return nil, err
		}
		sc, err := cache.NewSQLite(db)
		if err != nil {
			return nil, err
		}
		return sc, nil
	case config.CacheRedis:
		rc := cache.NewRedis(cache.RedisOptions{
			Addr:     c.Addr,
			Username: c.Username,
			Password: c.Password,
			DB:       c.DB,
			Prefix:   c.Prefix,
			TTL:      c.TTLDuration(),
		})
		a.closers = append(a.closers, rc)
		if err := rc.Ping(ctx); err != nil {
			a.Logger.Warn("redis cache unreachable, loads will bypass it", "addr", c.Addr, "error", err)
		}
		return rc, nil
	}
	return nil, fmt.Errorf("unknown kind %q", c.Kind)
}

// Build constructs the source described by sc.
func Build(sc *config.Source, logger *slog.Logger) (source.Source, error) {
	var bucket *objstore.Bucket
	if b := sc.Bucket; b != nil {
		var err error
		bucket, err = objstore.New(objstore.Options{
			Endpoint:  b.Endpoint,
			AccessKey: b.AccessKey,
			SecretKey: b.SecretKey,
			Secure:    b.Secure,
			Name:      b.Name,
			Prefix:    b.Prefix,
		})
		if err != nil {
			return nil, err
		}
	}
	switch sc.Kind {
	case config.KindHiRes:
		switch {
		case sc.Path != "":
			return hires.NewLocal(sc.Name, sc.Path, logger), nil
		case bucket != nil:
			return hires.NewBucket(sc.Name, bucket, logger), nil
		}
		return hires.NewHTTP(sc.Name, sc.BaseURL, sc.Model, sc.MaxDepth, httpfetch.New(sc.DownloadDir, logger), logger), nil
	case config.KindSynphot:
		switch {
		case sc.Path != "":
			return synphot.New(sc.Name, sc.Path, source.FileOpener{}, logger), nil
		case bucket != nil:
			return synphot.New(sc.Name, "", bucket, logger), nil
		}
		base := sc.BaseURL
		if base == "" {
			base = synphot.DefaultBaseURL
		}
		return synphot.New(sc.Name, base, httpfetch.New(sc.DownloadDir, logger), logger), nil
	}
	return nil, fmt.Errorf("unknown kind %q", sc.Kind)
}

// Close releases databases and cache clients.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/schema"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/storefront/internal/config"
)

// Tier identifies which credential a handle authenticates with.
type Tier string

const (
	// TierPrivileged uses the service credential and bypasses row security.
	TierPrivileged Tier = "privileged"
	// TierPublic uses the publishable credential.
	TierPublic Tier = "public"
)

var (
	// ErrMissingURL is returned when neither DB_URL nor PUBLIC_DB_URL is set.
	ErrMissingURL = errors.New("database url is not configured (DB_URL or PUBLIC_DB_URL)")
	// ErrMissingCredential is returned when the credential of the requested tier is not set.
	ErrMissingCredential = errors.New("database credential is not configured")
)

// Factory lazily builds one bun handle per credential tier and hands out the
// same handle to every caller afterwards.
type Factory struct {
	cfg    config.Database
	logger *zap.Logger

	mu         sync.Mutex
	privileged *bun.DB
	public     *bun.DB
}

// Module registers the client factory with Fx.
var Module = fx.Provide(New)

// New builds the factory and ties it to the Fx lifecycle. The privileged tier
// is opened and pinged on start so misconfiguration aborts startup.
func New(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) *Factory {
	f := NewFactory(cfg.Database, logger)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			db, err := f.Privileged()
			if err != nil {
				return err
			}
			if err := pingContext(ctx, db); err != nil {
				return fmt.Errorf("ping privileged: %w", err)
			}
			logger.Info("database connected", zap.String("driver", cfg.Database.Driver))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return f.Close()
		},
	})

	return f
}

// NewFactory constructs a factory without lifecycle hooks.
func NewFactory(cfg config.Database, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{cfg: cfg, logger: logger}
}

// Privileged returns the process-wide handle authenticated with the service credential.
func (f *Factory) Privileged() (*bun.DB, error) {
	return f.get(TierPrivileged)
}

// Public returns the process-wide handle authenticated with the publishable
// credential. It keeps no idle connections between calls.
func (f *Factory) Public() (*bun.DB, error) {
	return f.get(TierPublic)
}

// Close releases both handles if they were opened.
func (f *Factory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var closeErr error
	if f.privileged != nil {
		if err := f.privileged.Close(); err != nil {
			closeErr = fmt.Errorf("close privileged: %w", err)
		}
		f.privileged = nil
	}
	if f.public != nil {
		if err := f.public.Close(); err != nil {
			closeErr = errors.Join(closeErr, fmt.Errorf("close public: %w", err))
		}
		f.public = nil
	}
	return closeErr
}

func (f *Factory) get(tier Tier) (*bun.DB, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	slot := &f.privileged
	if tier == TierPublic {
		slot = &f.public
	}
	if *slot != nil {
		return *slot, nil
	}

	db, err := f.open(tier)
	if err != nil {
		return nil, err
	}
	*slot = db
	f.logger.Info("database client initialised", zap.String("tier", string(tier)), zap.String("driver", f.cfg.Driver))
	return db, nil
}

func (f *Factory) open(tier Tier) (*bun.DB, error) {
	if f.cfg.URL == "" {
		return nil, ErrMissingURL
	}

	role, credential := f.cfg.ServiceRole, f.cfg.ServiceCredential
	if tier == TierPublic {
		role, credential = f.cfg.PublicRole, f.cfg.PublishableCredential
	}
	if credential == "" && f.cfg.Driver != "sqlite" {
		return nil, fmt.Errorf("%w for %s tier", ErrMissingCredential, tier)
	}

	dial, err := selectDialect(f.cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn, err := buildDSN(f.cfg.Driver, f.cfg.URL, role, credential)
	if err != nil {
		return nil, fmt.Errorf("build %s dsn: %w", tier, err)
	}

	sqldb, err := openSQLDB(f.cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", tier, err)
	}

	applyPoolSettings(sqldb, f.cfg, tier)

	return bun.NewDB(sqldb, dial), nil
}

func selectDialect(driver string) (schema.Dialect, error) {
	switch driver {
	case "postgres":
		return pgdialect.New(), nil
	case "mysql":
		return mysqldialect.New(), nil
	case "sqlite":
		return sqlitedialect.New(), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// buildDSN injects the tier's role and credential into the configured URL.
func buildDSN(driver, rawURL, role, credential string) (string, error) {
	switch driver {
	case "postgres":
		u, err := url.Parse(rawURL)
		if err != nil {
			return "", err
		}
		if u.Scheme == "" || u.Host == "" {
			return "", fmt.Errorf("postgres url must include scheme and host")
		}
		u.User = url.UserPassword(role, credential)
		return u.String(), nil
	case "mysql":
		cfg, err := mysql.ParseDSN(rawURL)
		if err != nil {
			return "", err
		}
		cfg.User = role
		cfg.Passwd = credential
		cfg.ParseTime = true
		return cfg.FormatDSN(), nil
	case "sqlite":
		return rawURL, nil
	default:
		return "", fmt.Errorf("unsupported driver: %s", driver)
	}
}

func openSQLDB(driver, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("empty DSN")
	}

	switch driver {
	case "postgres":
		connector := pgdriver.NewConnector(pgdriver.WithDSN(dsn))
		return sql.OpenDB(connector), nil
	case "mysql":
		return sql.Open("mysql", dsn)
	case "sqlite":
		return sql.Open("sqlite3", dsn)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}
}

func applyPoolSettings(db *sql.DB, cfg config.Database, tier Tier) {
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if tier == TierPublic {
		db.SetMaxIdleConns(0)
		if cfg.PublicConnLifetime > 0 {
			db.SetConnMaxLifetime(cfg.PublicConnLifetime)
		}
		return
	}

	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxConnLifetime > 0 {
		db.SetConnMaxLifetime(cfg.MaxConnLifetime)
	}
}

func pingContext(ctx context.Context, db *bun.DB) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.DB.PingContext(pingCtx)
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"reelscribe/internal/config"
	"reelscribe/internal/logging"
	"reelscribe/internal/services"
)

// Store is the relational persistence layer shared by the pipeline, the
// read API, and maintenance commands.
type Store struct {
	db      *sql.DB
	dialect dialect
	sb      sq.StatementBuilderType
	logger  *slog.Logger
	now     func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for ids and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open connects to the configured backend, waits for it to accept
// connections, and applies pending migrations.
func Open(ctx context.Context, cfg config.Store, opts ...Option) (*Store, error) {
	d, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "store", "open", "select dialect", err)
	}
	dsn, err := d.dataSource(cfg)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "store", "open", "build dsn", err)
	}

	db, err := sql.Open(d.sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", d.name, err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	s := newStore(db, d, opts...)
	if err := s.waitReady(ctx); err != nil {
		_ = db.Close()
		return nil, services.Wrap(services.ErrTransient, "store", "open", "ping", err)
	}
	if err := migrate(db, d, s.logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.logger.Debug("store ready",
		logging.String("driver", d.name),
		logging.String(logging.FieldEventType, "store_open"),
	)
	return s, nil
}

// New wraps an existing connection without running migrations.
func New(db *sql.DB, driver string, opts ...Option) (*Store, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	return newStore(db, d, opts...), nil
}

func newStore(db *sql.DB, d dialect, opts ...Option) *Store {
	s := &Store{
		db:      db,
		dialect: d,
		sb:      sq.StatementBuilder.PlaceholderFormat(d.placeholder),
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "store")
	return s
}

// waitReady pings with backoff; a freshly started Postgres may refuse the
// first few connections.
func (s *Store) waitReady(ctx context.Context) error {
	policy := retrypolicy.NewBuilder[any]().
		WithBackoff(250*time.Millisecond, 3*time.Second).
		WithMaxRetries(4).
		WithJitterFactor(0.1).
		Build()
	return failsafe.With[any](policy).WithContext(ctx).Run(func() error {
		return s.db.PingContext(ctx)
	})
}

// Driver returns the configured backend name.
func (s *Store) Driver() string { return s.dialect.name }

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"reelscribe/internal/config"
)

type dialect struct {
	name        string // config driver and migrations directory
	sqlDriver   string // database/sql driver name
	goose       string
	placeholder sq.PlaceholderFormat
	// lockSuffix is appended to the agent row select inside SavePost.
	lockSuffix string
}

var (
	sqliteDialect = dialect{
		name:        config.DriverSQLite,
		sqlDriver:   "sqlite",
		goose:       "sqlite3",
		placeholder: sq.Question,
	}
	postgresDialect = dialect{
		name:        config.DriverPostgres,
		sqlDriver:   "postgres",
		goose:       "postgres",
		placeholder: sq.Dollar,
		lockSuffix:  "FOR UPDATE",
	}
)

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case config.DriverSQLite:
		return sqliteDialect, nil
	case config.DriverPostgres:
		return postgresDialect, nil
	default:
		return dialect{}, fmt.Errorf("unsupported store driver %q", driver)
	}
}

// dataSource builds the driver DSN. SQLite writes begin IMMEDIATE so the
// write lock is taken before SavePost reads the post count.
func (d dialect) dataSource(cfg config.Store) (string, error) {
	if d.name == config.DriverPostgres {
		if strings.TrimSpace(cfg.DSN) == "" {
			return "", errors.New("postgres store requires a dsn")
		}
		return cfg.DSN, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return "", fmt.Errorf("ensure store dir: %w", err)
	}
	params := []string{
		"_txlock=immediate",
		"_pragma=busy_timeout(5000)",
		"_pragma=foreign_keys(1)",
		"_pragma=journal_mode(WAL)",
	}
	return "file:" + cfg.Path + "?" + strings.Join(params, "&"), nil
}

const sqliteBusyCode = 5

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code()&0xff == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// isUniqueViolation reports a unique constraint failure and whether it was
// the (agent, shortcode) key.
func isUniqueViolation(err error) (violation bool, shortcode bool) {
	if err == nil {
		return false, false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code != "23505" {
			return false, false
		}
		return true, strings.Contains(pqErr.Constraint, "shortcode")
	}
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return false, false
	}
	return true, strings.Contains(msg, ".shortcode")
}

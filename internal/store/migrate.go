package store

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"

	"reelscribe/internal/logging"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationFS embed.FS

// goose keeps its dialect, filesystem, and logger in package globals.
var gooseMu sync.Mutex

func migrate(db *sql.DB, d dialect, logger *slog.Logger) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationFS)
	goose.SetLogger(gooseLogger{logger: logger})
	if err := goose.SetDialect(d.goose); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.Up(db, "migrations/"+d.name); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// gooseLogger routes goose output through slog at debug level.
type gooseLogger struct {
	logger *slog.Logger
}

func (l gooseLogger) Print(v ...any) { l.debug(fmt.Sprint(v...)) }

func (l gooseLogger) Println(v ...any) { l.debug(fmt.Sprintln(v...)) }

func (l gooseLogger) Printf(format string, v ...any) { l.debug(fmt.Sprintf(format, v...)) }

func (l gooseLogger) Fatal(v ...any) { l.fatal(fmt.Sprint(v...)) }

func (l gooseLogger) Fatalf(format string, v ...any) { l.fatal(fmt.Sprintf(format, v...)) }

func (l gooseLogger) debug(msg string) {
	if l.logger == nil {
		return
	}
	l.logger.Debug(strings.TrimSpace(msg), logging.String(logging.FieldEventType, "store_migration"))
}

func (l gooseLogger) fatal(msg string) {
	msg = strings.TrimSpace(msg)
	if l.logger != nil {
		l.logger.Error("migration aborted",
			logging.String("detail", msg),
			logging.String(logging.FieldEventType, "store_migration_failed"),
			logging.String(logging.FieldErrorHint, "inspect the goose_db_version table"),
			logging.String(logging.FieldImpact, "store unusable until migrations apply"),
		)
	}
	panic("goose: " + msg)
}

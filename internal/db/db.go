package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the database selected by the DSN. Postgres DSNs are the
// production path; "file:" and ".db" DSNs open an embedded SQLite database
// for tests and local development.
func Open(dsn string) (*gorm.DB, error) {
	dialector, errDialect := dialectorFor(dsn)
	if errDialect != nil {
		return nil, errDialect
	}
	conn, errOpen := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if errOpen != nil {
		return nil, fmt.Errorf("db: open: %w", errOpen)
	}
	return conn, nil
}

// dialectorFor picks a gorm dialector based on the DSN shape.
func dialectorFor(dsn string) (gorm.Dialector, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return nil, errors.New("db: empty dsn")
	}
	switch {
	case strings.HasPrefix(trimmed, "file:"),
		strings.HasSuffix(trimmed, ".db"),
		trimmed == ":memory:":
		return sqlite.Open(trimmed), nil
	default:
		return postgres.Open(trimmed), nil
	}
}

package database

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/tintura/internal/models"
	"github.com/example/tintura/internal/platform/logger"
)

// Connect opens the Postgres connection. With autoMigrate set the schema
// is brought up to date through gorm; otherwise cmd/migrator owns it.
func Connect(dsn string, autoMigrate bool, log *logger.Logger) (*gorm.DB, error) {
	if err := ensureDatabase(dsn); err != nil {
		return nil, fmt.Errorf("ensure database: %w", err)
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if !autoMigrate {
		return conn, nil
	}

	if err := conn.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		log.Warn("failed to ensure uuid-ossp extension", "error", err)
	}
	if err := migrate(conn); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	log.Info("schema migrated")
	return conn, nil
}

// Models lists every table the service owns, in creation order.
func Models() []interface{} {
	return []interface{}{
		&models.Product{},
		&models.PasscodeChallenge{},
		&models.AdminSession{},
	}
}

func migrate(conn *gorm.DB) error {
	for _, m := range Models() {
		if err := conn.AutoMigrate(m); err != nil {
			return err
		}
	}
	return nil
}

// adminDSN points dsn at the maintenance database and returns the name of
// the database it originally targeted. ok is false for non-URL DSNs.
func adminDSN(dsn string) (master, name string, ok bool, err error) {
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return "", "", false, nil
	}

	parsed, err := url.Parse(dsn)
	if err != nil {
		return "", "", false, err
	}

	name = strings.TrimPrefix(parsed.Path, "/")
	if name == "" {
		return "", "", false, nil
	}

	parsed.Path = "/postgres"
	return parsed.String(), name, true, nil
}

func ensureDatabase(dsn string) error {
	masterDSN, dbName, ok, err := adminDSN(dsn)
	if err != nil || !ok {
		return err
	}

	sqlDB, err := sql.Open("postgres", masterDSN)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return err
	}

	var exists bool
	if err := sqlDB.QueryRow("SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", dbName).Scan(&exists); err != nil {
		return err
	}

	if exists {
		return nil
	}

	_, err = sqlDB.Exec("CREATE DATABASE " + pq.QuoteIdentifier(dbName))
	return err
}

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/example/tintura/internal/platform/logger"
)

const (
	databaseURLFlag    = "database-url"
	migrationsPathFlag = "migrations-path"
	downFlag           = "down"
)

// migrationLogger adapts the service logger to migrate.Logger.
type migrationLogger struct {
	log     *logger.Logger
	verbose bool
}

func (ml *migrationLogger) Printf(format string, v ...any) {
	ml.log.Info(fmt.Sprintf(format, v...))
}

func (ml *migrationLogger) Verbose() bool {
	return ml.verbose
}

func main() {
	_ = godotenv.Load()

	log, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		fmt.Printf("failed to build logger: %v\n", err)
		os.Exit(2)
	}
	defer log.Sync()

	databaseURL := pflag.StringP(databaseURLFlag, "d", os.Getenv("DATABASE_URL"), "postgres URL, defaults to DATABASE_URL")
	migrationsPath := pflag.StringP(migrationsPathFlag, "m", "migrations", "directory holding *.sql migrations")
	down := pflag.Bool(downFlag, false, "roll back one migration instead of applying all")
	pflag.Parse()

	if err := validateFlags(*databaseURL, *migrationsPath); err != nil {
		log.Error("too few args", "error", err)
		os.Exit(2)
	}

	if err := makeMigrations(*databaseURL, *migrationsPath, *down, log); err != nil {
		log.Error("failed to migrate", "error", err)
		os.Exit(2)
	}
}

func validateFlags(databaseURL, migrationsPath string) error {
	var errs []error
	if databaseURL == "" {
		errs = append(errs, fmt.Errorf("--%s flag: required", databaseURLFlag))
	}
	if migrationsPath == "" {
		errs = append(errs, fmt.Errorf("--%s flag: required", migrationsPathFlag))
	}
	return errors.Join(errs...)
}

// pgx5URL rewrites a postgres:// URL to the scheme the pgx/v5 driver
// registers under.
func pgx5URL(databaseURL string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if len(databaseURL) > len(prefix) && databaseURL[:len(prefix)] == prefix {
			return "pgx5://" + databaseURL[len(prefix):]
		}
	}
	return databaseURL
}

func makeMigrations(databaseURL, migrationsPath string, down bool, log *logger.Logger) error {
	m, err := migrate.New(fmt.Sprintf("file://%s", migrationsPath), pgx5URL(databaseURL))
	if err != nil {
		return err
	}
	defer m.Close()

	m.Log = &migrationLogger{log: log, verbose: true}

	if down {
		err = m.Steps(-1)
	} else {
		err = m.Up()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		m.Log.Printf("no migrations to apply")
		return nil
	}
	if err != nil {
		return err
	}
	m.Log.Printf("migration applied")
	return nil
}

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/pflag"
)

const (
	databaseFlag   = "database"
	migrationsFlag = "migrations-path"

	defaultMigrations = "migrations"
)

func main() {
	database, migrationsPath := getFlagsValues()
	validateFlags(database)
	makeMigrations(database, migrationsPath)
}

type MigrationLogger struct {
	logger  *slog.Logger
	verbose bool
}

func NewMigrationLogger() *MigrationLogger {
	return &MigrationLogger{
		logger:  slog.Default(),
		verbose: true,
	}
}

func (ml *MigrationLogger) Printf(format string, v ...any) {
	ml.logger.Info(fmt.Sprintf(format, v...))
}

func (ml *MigrationLogger) Verbose() bool {
	return ml.verbose
}

func getFlagsValues() (database, migrations string) {
	dbValue := pflag.StringP(databaseFlag, "d", "", "user:pass@host:port/dbname")
	migrationsValue := pflag.StringP(migrationsFlag, "m", defaultMigrations, "")
	pflag.Parse()
	return *dbValue, *migrationsValue
}

func validateFlags(database string) {
	if database == "" {
		slog.Error("too few args",
			"err", fmt.Errorf("--%s flag: required", databaseFlag))
		fallDown()
	}
}

func makeMigrations(database, migrationsPath string) {
	m, err := migrate.New(
		fmt.Sprintf("file://%s", migrationsPath),
		fmt.Sprintf("pgx5://%s", database),
	)
	if err != nil {
		slog.Error("failed to migrate", "err", err)
		fallDown()
	}

	m.Log = NewMigrationLogger()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.Log.Printf("no migrations to apply")
			return
		}
		slog.Error("failed to migrate", "err", err)
		fallDown()
	}
	m.Log.Printf("migrations applied\n")
}

func fallDown() {
	os.Exit(2)
}

package main

import (
	"database/sql"
	"fmt"

	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/pkg/database"
)

// mockable
var (
	migrateUpFunc      = database.RunMigrations
	migrateDownFunc    = database.RollbackMigration
	migrateVersionFunc = database.MigrationVersion
)

func (cli *commandLine) migrate(command string) error {
	switch command {
	case "up":
		return migrateUpFunc(cli.sqlDB, cli.logger)
	case "down":
		if err := migrateDownFunc(cli.sqlDB); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "已回滚最近一次迁移")
		return nil
	case "version":
		return cli.printMigrationVersion(cli.sqlDB)
	default:
		return fmt.Errorf("%q: no such command", command)
	}
}

func (cli *commandLine) printMigrationVersion(db *sql.DB) error {
	version, dirty, err := migrateVersionFunc(db)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "version=%d dirty=%v\n", version, dirty)
	return nil
}

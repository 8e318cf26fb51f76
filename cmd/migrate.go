package cmd

import (
	"fmt"
	"io/fs"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/jmehdipour/paynotify/internal/config"
	"github.com/jmehdipour/paynotify/internal/db"
	"github.com/jmehdipour/paynotify/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations (dev: DROP & CREATE MySQL tables, create ClickHouse view)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		sqlDB, err := db.NewMySQL(cfg.MySQL)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer sqlDB.Close()

		if err := applyDir(sqlDB, "mysql"); err != nil {
			return err
		}

		if cfg.ClickHouse.DSN != "" {
			chDB, err := db.NewClickHouse(cfg.ClickHouse)
			if err != nil {
				return fmt.Errorf("open clickhouse: %w", err)
			}
			defer chDB.Close()

			if err := applyDir(chDB, "clickhouse"); err != nil {
				return err
			}
		}

		log.Println(">> Migration complete")
		return nil
	},
}

func applyDir(dbx *sqlx.DB, dir string) error {
	files, err := fs.Glob(migrations.FS, dir+"/*.sql")
	if err != nil {
		return err
	}
	for _, f := range files {
		b, err := fs.ReadFile(migrations.FS, f)
		if err != nil {
			return fmt.Errorf("read migration file %s: %w", f, err)
		}
		for _, stmt := range migrations.Statements(string(b)) {
			if _, err := dbx.Exec(stmt); err != nil {
				return fmt.Errorf("exec %s: %w", f, err)
			}
		}
		log.Printf(">> applied %s", f)
	}
	return nil
}

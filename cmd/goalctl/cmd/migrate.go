package cmd

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/SNU-Hackathon/Doany-sub000/internal/db"
)

type dbFlags struct {
	driver     string
	connection string
}

func (f *dbFlags) register(c *cobra.Command) {
	_ = godotenv.Load()
	c.PersistentFlags().StringVar(&f.driver, "driver", envOr("DB_DRIVER", "sqlite"), "database driver: sqlite or pgx")
	c.PersistentFlags().StringVar(&f.connection, "db", envOr("DB_CONNECTION", "./data/doany.db"), "database connection string")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func MigrateCmd() *cobra.Command {
	var flags dbFlags

	c := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	flags.register(c)

	c.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.Init(flags.driver, flags.connection)
			if err != nil {
				return err
			}
			defer db.Close(database)

			err = db.RunMigrations(database.DB, flags.driver)
			if err != nil {
				return err
			}
			return printVersion(cmd, &flags, database.DB)
		},
	})

	c.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.Init(flags.driver, flags.connection)
			if err != nil {
				return err
			}
			defer db.Close(database)

			err = db.MigrateDown(database.DB, flags.driver)
			if err != nil {
				return err
			}
			return printVersion(cmd, &flags, database.DB)
		},
	})

	c.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.Init(flags.driver, flags.connection)
			if err != nil {
				return err
			}
			defer db.Close(database)

			return printVersion(cmd, &flags, database.DB)
		},
	})

	return c
}

func printVersion(cmd *cobra.Command, flags *dbFlags, sqlDB *sql.DB) error {
	version, err := db.Version(sqlDB, flags.driver)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
	return nil
}

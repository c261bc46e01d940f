package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/sampleapp/config"
	"github.com/shashiranjanraj/sampleapp/database/seeders"
)

// sampleapp migrate: create or update the schema.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		log, flush := setupLogger(cmd.Context())
		defer flush()

		set, err := openRepositories(cmd.Context())
		if err != nil {
			return err
		}
		defer set.Close()
		log.Info("migrations complete", "driver", config.DatabaseDriver())
		return nil
	},
}

// sampleapp seed: migrate, then load demo data.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with demo data",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		log, flush := setupLogger(cmd.Context())
		defer flush()

		set, err := openRepositories(cmd.Context())
		if err != nil {
			return err
		}
		defer set.Close()
		return seeders.RunAll(cmd.Context(), set, log)
	},
}

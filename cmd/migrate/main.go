package main

import (
	"freelance_market/internal/config"     // Custom import path (Config)
	"freelance_market/internal/db"         // Custom import path (Database)
	"freelance_market/internal/repository" // Gorm repositories for seeding
	"os"                                   // Exit codes

	"github.com/sirupsen/logrus" // Logging library
	"github.com/spf13/cobra"     // Command line interface
)

// Main entry point for migration
func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if err := newRootCmd().Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Create or update the marketplace database schema",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.LoadConfig() // Load configuration
			gdb, err := db.Open(cfg)
			if err != nil {
				return err
			}
			return db.Migrate(gdb)
		},
	}
	root.AddCommand(newSeedCmd())
	return root
}

func newSeedCmd() *cobra.Command {
	var migrateFirst bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Delete all users and jobs and load the sample accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.LoadConfig()
			gdb, err := db.Open(cfg)
			if err != nil {
				return err
			}
			if migrateFirst {
				if err := db.Migrate(gdb); err != nil {
					return err
				}
			}
			return db.Seed(cmd.Context(), repository.NewGormJobRepository(gdb), repository.NewGormUserRepository(gdb))
		},
	}
	cmd.Flags().BoolVar(&migrateFirst, "migrate", true, "run the schema migration before seeding")
	return cmd
}

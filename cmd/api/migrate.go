package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"loansyncro/internal/adapter/repository/gormrepo"
	"loansyncro/internal/config"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the users, loans and repayments tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			gdb, err := openDB(cfg)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			if sqlDB, err := gdb.DB(); err == nil {
				defer sqlDB.Close()
			}
			if err := gormrepo.Migrate(gdb); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			for _, m := range gormrepo.Models() {
				fmt.Fprintf(cmd.OutOrStdout(), "ok  %T\n", m)
			}
			return nil
		},
	}
}

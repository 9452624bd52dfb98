package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/ecom/internal/storage"
	"github.com/vladislavdragonenkov/ecom/internal/storage/relational"
)

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the relational schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return c.withFactory(ctx, func(f *storage.Factory) error {
				session, err := f.Session(ctx)
				if err != nil {
					return err
				}
				if err := relational.AutoMigrate(ctx, session); err != nil {
					return err
				}
				c.logger.WithField("driver", c.cfg.RelationalDriver).Info("schema migrated")
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "migrated")
				return err
			})
		},
	}
}

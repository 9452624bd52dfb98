package main

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/ecom/internal/app"
	"github.com/vladislavdragonenkov/ecom/internal/storage"
	"github.com/vladislavdragonenkov/ecom/internal/version"
)

// cli хранит общие для команд флаги и разобранную конфигурацию.
type cli struct {
	configPath string
	verbose    bool

	cfg    app.Config
	logger *log.Entry
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "ecomctl",
		Short:         "Administrative tool for the ecom stores",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.LoadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg

			logger := log.New()
			logger.SetOutput(cmd.ErrOrStderr())
			logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
			logger.SetLevel(cfg.Level())
			if c.verbose {
				logger.SetLevel(log.DebugLevel)
			}
			c.logger = logger.WithField("component", "ecomctl")
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to YAML config (defaults to $ECOM_CONFIG_FILE)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		newMigrateCmd(c),
		newCatalogCmd(c),
		newOrdersCmd(c),
		newVersionCmd(),
	)
	return root
}

// withFactory открывает фабрику хранилищ на время одной команды.
func (c *cli) withFactory(ctx context.Context, fn func(f *storage.Factory) error) (err error) {
	f := storage.NewFactory(c.cfg.StorageConfig(), storage.WithLogger(c.logger))
	defer func() {
		if closeErr := f.Close(context.WithoutCancel(ctx)); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(f)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		},
	}
}

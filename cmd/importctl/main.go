package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"mapa-service/internal/config"
	"mapa-service/internal/store"
)

type dbOptions struct {
	driver string
	dsn    string
}

func (o *dbOptions) bind(cmd *cobra.Command, cfg config.Config) {
	cmd.Flags().StringVar(&o.driver, "driver", cfg.DBDriver, "Database driver: postgres, mysql or sqlite")
	cmd.Flags().StringVar(&o.dsn, "dsn", cfg.DBDSN, "Database DSN")
}

func (o *dbOptions) open(ctx context.Context) (*store.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	return store.Open(ctx, o.driver, o.dsn)
}

func newRootCmd(cfg config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "importctl",
		Short:         "Preview, import and template tool for municipal data spreadsheets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newPreviewCmd(cfg),
		newImportCmd(cfg),
		newTemplateCmd(),
		newMigrateCmd(cfg),
	)
	return root
}

func cliLogger(cfg config.Config) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(lvl).With().Timestamp().Logger()
}

func main() {
	cfg := config.Load()
	if err := newRootCmd(cfg).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "erro:", err)
		os.Exit(1)
	}
}

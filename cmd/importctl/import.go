package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mapa-service/internal/config"
	"mapa-service/internal/events"
	"mapa-service/internal/importer/service"
)

type importOptions struct {
	flow   string
	city   string
	dryRun bool
	db     dbOptions
}

func newImportCmd(cfg config.Config) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Preview a spreadsheet and write it to the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, cfg, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.flow, "flow", "", "Import flow: "+flowNames())
	cmd.Flags().StringVar(&opts.city, "city", "", "City used for rows that leave it empty")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Stop after the preview")
	opts.db.bind(cmd, cfg)
	_ = cmd.MarkFlagRequired("flow")

	return cmd
}

func runImport(cmd *cobra.Command, cfg config.Config, opts importOptions, path string) error {
	ctx := cmd.Context()
	log := cliLogger(cfg)

	flow, err := service.FlowByName(opts.flow)
	if err != nil {
		return err
	}
	tbl, err := readFile(path)
	if err != nil {
		return err
	}
	st, err := opts.db.open(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	var pub events.Publisher = events.NewLogPublisher(log)
	if cfg.AMQPURL != "" {
		if pub, err = events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange); err != nil {
			return err
		}
	}
	defer pub.Close()

	imp := service.NewImporter(st, pub, log)
	p, err := imp.Preview(ctx, flow, tbl, defaults(opts.city))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	printPreview(out, p)

	if opts.dryRun {
		return nil
	}
	if len(service.Confirmable(flow, p.Results)) == 0 {
		return errors.New("nenhum registro para gravar")
	}
	res, err := imp.Commit(context.WithoutCancel(ctx), uuid.NewString(), flow, p)
	if err != nil {
		return fmt.Errorf("falha ao gravar importação: %w", err)
	}
	fmt.Fprintf(out, "gravados: %d (inseridos %d, atualizados %d, upserts %d)\n",
		res.Total(), res.Inserted, res.Updated, res.Upserted)
	return nil
}

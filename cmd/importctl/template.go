package main

import (
	"os"

	"github.com/spf13/cobra"

	"mapa-service/internal/importer/service"
)

func newTemplateCmd() *cobra.Command {
	var (
		flowName string
		xlsx     bool
		output   string
	)

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write the import template of a flow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flow, err := service.FlowByName(flowName)
			if err != nil {
				return err
			}
			b := service.Template(flow)
			if xlsx {
				if b, err = service.TemplateXLSX(flow); err != nil {
					return err
				}
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(b)
				return err
			}
			return os.WriteFile(output, b, 0o644)
		},
	}

	cmd.Flags().StringVar(&flowName, "flow", "", "Import flow: "+flowNames())
	cmd.Flags().BoolVar(&xlsx, "xlsx", false, "Write an .xlsx workbook instead of CSV")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	_ = cmd.MarkFlagRequired("flow")

	return cmd
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mapa-service/internal/config"
	"mapa-service/internal/fileio"
	"mapa-service/internal/importer/model"
	"mapa-service/internal/importer/service"
)

type previewOptions struct {
	flow   string
	city   string
	useDB  bool
	asJSON bool
	db     dbOptions
}

func newPreviewCmd(cfg config.Config) *cobra.Command {
	var opts previewOptions

	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Parse a spreadsheet and report what an import would do",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flow, err := service.FlowByName(opts.flow)
			if err != nil {
				return err
			}
			tbl, err := readFile(args[0])
			if err != nil {
				return err
			}

			refs := service.NewReferences()
			if opts.useDB {
				st, err := opts.db.open(cmd.Context())
				if err != nil {
					return err
				}
				defer st.Close()
				cities, err := st.CityReferences(cmd.Context())
				if err != nil {
					return err
				}
				refs = service.BuildReferences(flow, cities)
			}

			p, err := service.Parse(flow, tbl, refs, defaults(opts.city))
			if err != nil {
				return err
			}
			if opts.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(p)
			}
			printPreview(cmd.OutOrStdout(), p)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.flow, "flow", "", "Import flow: "+flowNames())
	cmd.Flags().StringVar(&opts.city, "city", "", "City used for rows that leave it empty")
	cmd.Flags().BoolVar(&opts.useDB, "db", false, "Match names against the database")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the full preview as JSON")
	opts.db.bind(cmd, cfg)
	_ = cmd.MarkFlagRequired("flow")

	return cmd
}

func readFile(path string) (fileio.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return fileio.Table{}, err
	}
	defer f.Close()
	return fileio.ReadTable(f, filepath.Base(path))
}

func defaults(city string) map[model.Field]string {
	if strings.TrimSpace(city) == "" {
		return nil
	}
	return map[model.Field]string{model.FieldCity: strings.TrimSpace(city)}
}

func flowNames() string {
	var names []string
	for _, f := range service.Flows() {
		names = append(names, string(f.Name))
	}
	return strings.Join(names, ", ")
}

func printPreview(w io.Writer, p model.Preview) {
	fmt.Fprintf(w, "fluxo: %s  formato: %s", p.Flow, p.Format)
	if p.Delimiter != "" {
		fmt.Fprintf(w, "  separador: %q", p.Delimiter)
	}
	fmt.Fprintln(w)

	s := p.Summary
	fmt.Fprintf(w, "registros: %d  encontrados: %d  não encontrados: %d  linhas com erro: %d\n",
		s.Total, s.Matched, s.Unmatched, len(p.RowErrors))
	if len(s.UnmatchedNames) > 0 {
		fmt.Fprintf(w, "não encontrados: %s\n", strings.Join(s.UnmatchedNames, ", "))
	}
	for _, sg := range p.Suggestions {
		fmt.Fprintf(w, "  %s -> %s? (%.2f)\n", sg.Name, sg.Candidate, sg.Score)
	}
	for _, m := range p.Messages {
		fmt.Fprintln(w, m)
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mapa-service/internal/config"
	"mapa-service/internal/store"
)

func newMigrateCmd(cfg config.Config) *cobra.Command {
	var db dbOptions

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the tables the importer writes to and report their row counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := db.open(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Migrate(cmd.Context()); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "schema ok (%s)\n", db.driver)
			for _, table := range []string{store.TableCities, store.TableCouncil, store.TablePress, store.TableContacts} {
				n, err := st.CountRows(cmd.Context(), table)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "  %-18s %d\n", table+":", n)
			}
			return nil
		},
	}
	db.bind(cmd, cfg)

	return cmd
}

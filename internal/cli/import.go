package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/memquery/memory"
	"github.com/hupe1980/memquery/memory/sqlite"
)

func (a *app) newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <snapshot.yaml>",
		Short: "Import a YAML snapshot into the SQLite store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := a.cfg.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			snap, err := memory.LoadSnapshotFile(args[0])
			if err != nil {
				return err
			}

			db, err := sqlite.New(a.cfg.StorePath, func(o *sqlite.Options) { o.Logger = logger.WithComponent("store") })
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Import(cmd.Context(), snap); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d entities and %d tasks into %s\n", len(snap.Entities), len(snap.Tasks), a.cfg.StorePath)

			return err
		},
	}
}

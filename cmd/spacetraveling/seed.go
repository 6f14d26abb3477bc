package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pejamp/spacetraveling"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file.json>",
	Short: "Load documents into the local repository",
	Long: `seed upserts a JSON array of documents, in the document API's format,
into the SQLite repository at LOCAL_DATABASE_PATH.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := spacetraveling.ConfigFromEnv()
		if err != nil {
			return err
		}

		docs, err := spacetraveling.LoadSeedFile(args[0])
		if err != nil {
			return err
		}
		store, err := spacetraveling.NewStore(cfg.LocalDatabasePath, cfg.URL)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Seed(cmd.Context(), docs); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d documents into %s\n", len(docs), cfg.LocalDatabasePath)
		return nil
	},
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/grantsheet/internal/config"
	"github.com/JonMunkholm/grantsheet/internal/database"
	"github.com/JonMunkholm/grantsheet/internal/grants"
	"github.com/JonMunkholm/grantsheet/internal/logging"
)

type importOptions struct {
	file   string
	actor  string
	dryRun bool
	asJSON bool
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import one .xlsx, .xls or .csv workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "Workbook to import (required)")
	cmd.Flags().StringVar(&opts.actor, "actor", grants.DefaultActor, "Recorded as created_by on new grants and items")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Import into memory only and report what would happen")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the result as JSON")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runImport(ctx context.Context, out io.Writer, opts importOptions) error {
	f, err := os.Open(opts.file)
	if err != nil {
		return err
	}
	defer f.Close()

	var store grants.Store
	if opts.dryRun {
		logging.Setup("warn", "text")
		store = grants.NewMemStore()
	} else {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()

		if cfg.Database.AutoMigrate {
			if err := database.Migrate(ctx, pool); err != nil {
				return err
			}
		}
		store = database.NewStore(pool)
	}

	svc := grants.NewService(store, grants.Options{MaxConcurrent: 1})
	res, err := svc.ImportFile(ctx, f, filepath.Base(opts.file), opts.actor)
	if err != nil {
		return fmt.Errorf("%s: %w", grants.FormatUserError(err), err)
	}
	return printResult(out, res, opts)
}

func printResult(out io.Writer, res grants.ImportResult, opts importOptions) error {
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	mode := "committed"
	if opts.dryRun {
		mode = "dry run, nothing written"
	}
	fmt.Fprintf(out, "import %s (%s)\n", res.ImportID, mode)
	for _, s := range res.Sheets {
		fmt.Fprintf(out, "  %-24s %-24s %-12s %d items\n", s.Sheet, s.State, s.GrantCode, s.Inserted)
	}
	fmt.Fprintf(out, "processed grants: %d, inserted items: %d\n", res.ProcessedGrants, res.InsertedItems)
	if len(res.Warnings) > 0 {
		fmt.Fprintf(out, "warnings (%d):\n", len(res.Warnings))
		for _, w := range res.Warnings {
			fmt.Fprintf(out, "  - %s\n", w)
		}
	}
	return nil
}

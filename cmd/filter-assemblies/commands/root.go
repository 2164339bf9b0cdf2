package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"rodent-genomes/internal/assembly"
	"rodent-genomes/internal/cmdutil"
	"rodent-genomes/internal/db"
	"rodent-genomes/internal/redundancy"
	"rodent-genomes/pkg/migrations"

	"github.com/spf13/cobra"
)

type options struct {
	infile string
	level  string
	out    string
	dbPath string
}

func newRootCmd() *cobra.Command {
	var globals cmdutil.Globals
	var opts options

	cmd := &cobra.Command{
		Use:   "filter-assemblies --infile <assemblies.tsv|.db> --level <Family|Genus> --out <representatives.tsv>",
		Short: "Prints coverage statistics of an assembly table and keeps the best assemblies of every family or genus.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := globals.Setup(cmd.Context(), "filter-assemblies")
			if err != nil {
				return err
			}
			defer env.Close(cmd.Context())
			return run(cmd.Context(), env, opts, cmd.OutOrStdout())
		},
	}
	globals.Register(cmd)

	flags := cmd.Flags()
	flags.StringVar(&opts.infile, "infile", "", "Assembly table written by get-assemblies, a .db or .sqlite file is read as a database.")
	flags.StringVar(&opts.level, "level", "", "Column to group assemblies by, \"Family\" or \"Genus\".")
	flags.StringVar(&opts.out, "out", "", "Path of the tab-separated output table.")
	flags.StringVar(&opts.dbPath, "db", "", "Also store the kept assemblies in this sqlite database.")
	cmd.MarkFlagRequired("infile")
	cmd.MarkFlagRequired("level")
	cmd.MarkFlagRequired("out")

	return cmd
}

func isDatabase(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite":
		return true
	}
	return false
}

func run(ctx context.Context, env cmdutil.Env, opts options, stdout io.Writer) error {
	level, err := assembly.ParseLevel(opts.level)
	if err != nil {
		return err
	}

	dbPath := opts.dbPath
	var records []assembly.Record
	if isDatabase(opts.infile) {
		if dbPath == "" {
			dbPath = opts.infile
		}
		records, err = readDatabase(ctx, env, opts.infile)
	} else {
		records, err = assembly.ReadFile(opts.infile)
	}
	if err != nil {
		return err
	}

	summary := redundancy.Summarize(records)
	summary.Render(stdout)
	for _, c := range summary {
		slog.Debug(
			"coverage",
			"tier", c.Tier,
			"assemblies", c.Assemblies,
			"families", c.Families,
			"genera", c.Genera,
			"species", c.Species,
		)
	}

	kept := redundancy.Reduce(records, level)
	slog.Info("filtered assemblies", "level", level, "in", len(records), "kept", len(kept))

	err = assembly.WriteFile(opts.out, kept)
	if err != nil {
		return err
	}

	if dbPath != "" {
		sqlite, err := migrations.OpenAndMigrateDB(db.Schema, dbPath)
		if err != nil {
			return err
		}
		defer sqlite.Close()
		err = db.NewStore(sqlite, env.Tel).ReplaceRepresentatives(ctx, level, kept)
		if err != nil {
			return err
		}
	}
	return nil
}

func readDatabase(ctx context.Context, env cmdutil.Env, path string) ([]assembly.Record, error) {
	_, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	sqlite, err := migrations.OpenAndMigrateDB(db.Schema, path)
	if err != nil {
		return nil, err
	}
	defer sqlite.Close()
	return db.NewStore(sqlite, env.Tel).ListAssemblies(ctx)
}

// Execute runs filter-assemblies with args and returns the exit code.
func Execute(ctx context.Context, args []string) int {
	return cmdutil.Execute(ctx, newRootCmd(), args)
}

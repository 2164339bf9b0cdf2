package commands

import (
	"context"
	"log/slog"

	"rodent-genomes/internal/assembly"
	"rodent-genomes/internal/cmdutil"
	"rodent-genomes/internal/db"
	"rodent-genomes/internal/ncbi"
	"rodent-genomes/internal/tolid"
	"rodent-genomes/pkg/migrations"

	"github.com/spf13/cobra"
)

type options struct {
	email  string
	term   string
	out    string
	dbPath string
}

func newRootCmd() *cobra.Command {
	var globals cmdutil.Globals
	var opts options

	cmd := &cobra.Command{
		Use:   "get-assemblies --email <email> --term <term> --out <assemblies.tsv>",
		Short: "Fetches the genome assemblies matching a search term from ncbi, with their family, genus and ToLID prefix.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := globals.Setup(cmd.Context(), "get-assemblies")
			if err != nil {
				return err
			}
			defer env.Close(cmd.Context())
			return run(cmd.Context(), env, opts)
		},
	}
	globals.Register(cmd)

	flags := cmd.Flags()
	flags.StringVar(&opts.email, "email", "", "Contact email sent to ncbi, required by their usage policy.")
	flags.StringVar(&opts.term, "term", "", "Entrez search term, ex. \"rodentia[orgn]\".")
	flags.StringVar(&opts.out, "out", "", "Path of the tab-separated output table.")
	flags.StringVar(&opts.dbPath, "db", "", "Also store the table in this sqlite database.")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("term")
	cmd.MarkFlagRequired("out")

	return cmd
}

func run(ctx context.Context, env cmdutil.Env, opts options) error {
	cfg := env.Config
	summaries := ncbi.NewClient(
		env.Client("ncbi", cfg.Ncbi.BaseUrl, cfg.Ncbi.Rate()),
		ncbi.ClientOptions{
			Email:      opts.email,
			Tool:       cfg.Ncbi.Tool,
			ApiKey:     cfg.Ncbi.ApiKey,
			MaxResults: cfg.Ncbi.MaxResults,
		},
		env.Tel,
	)
	species := tolid.NewClient(env.Client("tolid", cfg.Tolid.BaseUrl, 0), env.Tel)

	records, report, err := assembly.NewFetcher(summaries, species, env.Tel).Fetch(ctx, opts.term)
	if err != nil {
		return err
	}
	slog.Info("fetched assemblies", "found", report.Found, "kept", report.Kept, "skipped", len(report.Skipped))

	err = assembly.WriteFile(opts.out, records)
	if err != nil {
		return err
	}

	if opts.dbPath != "" {
		sqlite, err := migrations.OpenAndMigrateDB(db.Schema, opts.dbPath)
		if err != nil {
			return err
		}
		defer sqlite.Close()
		err = db.NewStore(sqlite, env.Tel).ReplaceAssemblies(ctx, records)
		if err != nil {
			return err
		}
	}
	return nil
}

// Execute runs get-assemblies with args and returns the exit code.
func Execute(ctx context.Context, args []string) int {
	return cmdutil.Execute(ctx, newRootCmd(), args)
}

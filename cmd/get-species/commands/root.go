package commands

import (
	"context"

	"rodent-genomes/internal/cmdutil"
	"rodent-genomes/internal/iucn"
	"rodent-genomes/internal/redlist"

	"github.com/spf13/cobra"
)

type options struct {
	cladeLevel string
	clade      string
	token      string
	out        string
	keepGoing  bool
}

func newRootCmd() *cobra.Command {
	var globals cmdutil.Globals
	var opts options

	cmd := &cobra.Command{
		Use:   "get-species --clade_lvl <order|family|...> --clade <name> --token <token> --out <species.json>",
		Short: "Fetches the species of a clade from the IUCN red list with their countries and habitats.",
		Long: `Fetches the species of a clade from the IUCN red list and writes three snapshots:
<out> with the species, <out>.country with their countries and <out>.country.hab
with their countries and habitats.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := globals.Setup(cmd.Context(), "get-species")
			if err != nil {
				return err
			}
			defer env.Close(cmd.Context())
			return run(cmd.Context(), env, opts)
		},
	}
	globals.Register(cmd)

	flags := cmd.Flags()
	flags.StringVar(&opts.cladeLevel, "clade_lvl", "", "Rank of the clade, ex. \"order\" or \"family\".")
	flags.StringVar(&opts.clade, "clade", "", "Name of the clade as the red list spells it, ex. \"RODENTIA\".")
	flags.StringVar(&opts.token, "token", "", "IUCN red list api token.")
	flags.StringVar(&opts.out, "out", "", "Base path of the output snapshots.")
	flags.BoolVar(&opts.keepGoing, "keep-going", false, "Drop species whose country or habitat lookup failed instead of aborting.")
	cmd.MarkFlagRequired("clade_lvl")
	cmd.MarkFlagRequired("clade")
	cmd.MarkFlagRequired("token")
	cmd.MarkFlagRequired("out")

	return cmd
}

func run(ctx context.Context, env cmdutil.Env, opts options) error {
	client := iucn.NewClient(env.Client("iucn", env.Config.Iucn.BaseUrl, 0), opts.token, env.Tel)
	pipeline := redlist.NewPipeline(client, redlist.Options{KeepGoing: opts.keepGoing}, env.Tel)
	return pipeline.Run(ctx, opts.cladeLevel, opts.clade, opts.out)
}

// Execute runs get-species with args and returns the exit code.
func Execute(ctx context.Context, args []string) int {
	return cmdutil.Execute(ctx, newRootCmd(), args)
}

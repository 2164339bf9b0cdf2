// Package cmdutil holds the flags and setup shared by every command line tool.
package cmdutil

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"rodent-genomes/internal/components/telemetry"
	"rodent-genomes/internal/config"
	"rodent-genomes/internal/fetch"
	"rodent-genomes/lib/restyutil"
	libtelemetry "rodent-genomes/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

// Globals are the flags every tool accepts.
type Globals struct {
	Verbose  bool
	HttpDump string
	Config   string
}

func (g *Globals) Register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.BoolVarP(&g.Verbose, "verbose", "v", false, "Log debug information.")
	flags.StringVar(&g.HttpDump, "http-dump", "", "Write every http request and response to this directory.")
	flags.StringVar(&g.Config, "config", "", fmt.Sprintf("Config file to use instead of the closest %s.", config.FileName))
}

// Env is what a tool needs to run, created from Globals.
type Env struct {
	Config config.Config
	Tel    telemetry.API
	dump   restyutil.InstrumentOutput
	otel   libtelemetry.Telemetry
}

// Setup configures logging and telemetry and loads the config.
func (g Globals) Setup(ctx context.Context, name string) (Env, error) {
	libtelemetry.InitSlog(g.Verbose)

	cfg, err := config.Load(g.Config)
	if err != nil {
		return Env{}, fmt.Errorf("load config: %w", err)
	}

	env := Env{
		Config: cfg,
		Tel:    telemetry.NewSlogAPI(nil),
	}
	if g.HttpDump != "" {
		output, err := restyutil.NewFilesystemOutput(filepath.Join(g.HttpDump, name))
		if err != nil {
			return Env{}, fmt.Errorf("http dump: %w", err)
		}
		env.dump = output
	}

	env.otel, err = libtelemetry.SetupFromEnv(ctx, name)
	if err != nil {
		// export is optional
		slog.Warn("failed to setup telemetry", "err", err)
	}
	return env, nil
}

// Client creates the http client of an upstream API.
func (e Env) Client(name, baseUrl string, requestsPerSecond float64) *resty.Client {
	opts := e.Config.ClientOptions(name, baseUrl, e.dump)
	opts.RequestsPerSecond = requestsPerSecond
	return fetch.NewClient(opts, e.Tel)
}

// Close flushes telemetry.
func (e Env) Close(ctx context.Context) {
	err := e.otel.Shutdown(context.WithoutCancel(ctx))
	if err != nil {
		slog.Warn("failed to shutdown telemetry", "err", err)
	}
}

// Execute runs cmd with args and returns the process exit code.
func Execute(ctx context.Context, cmd *cobra.Command, args []string) int {
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
		return 1
	}
	return 0
}

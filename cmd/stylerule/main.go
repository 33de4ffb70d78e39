package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/recera/vango-styled/pkg/styletest"
)

var (
	version = "0.1.0-preview"
	commit  = "dev"
	date    = "unknown"
)

// globalFlags are shared by every subcommand
type globalFlags struct {
	configPath string
	debug      bool
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "stylerule",
		Short: "Inspect the CSS generated for styled components",
		Long: `stylerule reads a captured stylesheet or server-rendered page and shows
the declarations that apply to a component's class names, optionally scoped
to a pseudo selector or a media query.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file (defaults to "+styletest.DefaultConfigFile+")")
	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Log pipeline details to stderr")

	// Add commands
	rootCmd.AddCommand(newInspectCommand(flags))

	return rootCmd
}

// load reads the config and builds the logger the flags ask for
func (f *globalFlags) load() (*styletest.Config, *zap.Logger, error) {
	cfg, err := styletest.LoadConfig(f.configPath)
	if err != nil {
		return nil, nil, err
	}
	if !f.debug {
		return cfg, cfg.Logger(), nil
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, log, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

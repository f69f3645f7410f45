package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/manojSRawat/sunbird-resource-library/internal/config"
	"github.com/manojSRawat/sunbird-resource-library/internal/infra/logx"
)

type rootOptions struct {
	configPath   string
	collectionID string
	debug        bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "collectionctl",
		Short:         "Pick library resources for a collection and import hierarchies from CSV",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath(), "config file")
	cmd.PersistentFlags().StringVar(&opts.collectionID, "collection", "", "collection id (overrides collection_id)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "debug logging (debug.log for the picker, stderr otherwise)")

	cmd.AddCommand(newLibraryCmd(opts))
	cmd.AddCommand(newTreeCmd(opts))
	cmd.AddCommand(newSearchCmd(opts))
	cmd.AddCommand(newImportCmd(opts))
	cmd.AddCommand(newSampleCmd(opts))
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

// load reads the configuration and applies the flag overrides. Headless
// commands need a complete configuration; the picker can ask for the token.
func (o *rootOptions) load(headless bool) (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, withCode(exitUsage, err)
	}
	if o.collectionID != "" {
		cfg.CollectionID = o.collectionID
	}
	if headless {
		if err := cfg.Validate(); err != nil {
			return config.Config{}, withCode(exitUsage, err)
		}
	}
	return cfg, nil
}

// setupLogging configures logx for a command. The returned func releases the
// debug log file, if one was opened.
func (o *rootOptions) setupLogging(cfg config.Config, stderr io.Writer, tui bool) (func(), error) {
	logx.RegisterSecrets([]string{cfg.Token, cfg.UserToken})
	logx.SetMinLevel(logx.ParseLevel(cfg.LogLevel))
	debug := o.debug || os.Getenv("DEBUG") != ""
	if debug {
		logx.SetMinLevel(logx.LevelDebug)
		logx.SetVerbose(true)
	}

	if !tui {
		logx.SetConsole(stderr)
		return func() {}, nil
	}
	if !debug {
		// the alt screen owns the terminal
		return func() {}, nil
	}
	f, err := os.OpenFile("debug.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, err
	}
	logx.SetOutput(f)
	log.SetOutput(logx.StdlogWriter(logx.LevelDebug, f))
	fmt.Fprintln(stderr, "Debug logging enabled. Run 'tail -f debug.log' to view logs.")
	return func() { _ = f.Close() }, nil
}

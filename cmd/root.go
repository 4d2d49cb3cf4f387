package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/citrus-hotelmate/ibe-v2-sub001/config"
	"github.com/citrus-hotelmate/ibe-v2-sub001/config/server"
)

var (
	Version   = "dev"
	CommitSHA = "none"
)

func NewRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "ibe",
		Short:         "Internet booking engine core: PMS session, payment signing and promo codes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to the YAML config (default $CONFIG_PATH or "+config.DefaultPath+")")

	load := func(cmd *cobra.Command) (*server.App, error) {
		return loadApp(cmd, configPath)
	}

	root.AddCommand(newServeCmd(load))
	root.AddCommand(newSessionCmd(load))
	root.AddCommand(newSignCmd(load))
	root.AddCommand(newCheckoutCmd(load))
	root.AddCommand(newPromoCmd(load))
	root.AddCommand(newFetchCmd(load))
	root.AddCommand(newVersionCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type appLoader func(cmd *cobra.Command) (*server.App, error)

func loadApp(cmd *cobra.Command, configPath string) (*server.App, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := server.SetupLogger(cfg)
	return server.SetupApp(cmd.Context(), cfg, logger)
}

func printJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ibe %s (commit=%s)\n", Version, CommitSHA)
		},
	}
}

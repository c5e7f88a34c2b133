package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/paysheet/paysheet/go/config"
)

var Version = "dev"

type globalFlags struct {
	configPath string
	debug      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "paysheet",
		Short:         "Prepare payment sheet sessions from Stripe PaymentIntents",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable development logging")

	rootCmd.AddCommand(initCmd(flags))
	rootCmd.AddCommand(serveCmd(flags))

	return rootCmd
}

// load reads configuration and builds the logger shared by every command
func (f *globalFlags) load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, nil, err
	}

	var logger *zap.Logger
	if f.debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return cfg, logger, nil
}

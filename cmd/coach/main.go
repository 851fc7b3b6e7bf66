package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("coach exited with error: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "coach",
		Short:         "DSA coach gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
	root.PersistentFlags().String("config", "", "YAML config file (env CONFIG_FILE)")
	root.PersistentFlags().String("log-level", "", "log level (env LOG_LEVEL)")

	root.AddCommand(newServeCmd(), newDatasetCmd())
	return root
}

// flagOrEnv copies a non-empty flag into the environment so config.Load sees
// one source of truth.
func flagOrEnv(cmd *cobra.Command, flagName, envName string) {
	if v, _ := cmd.Flags().GetString(flagName); v != "" {
		_ = os.Setenv(envName, v)
	}
}

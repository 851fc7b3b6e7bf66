package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dsacoach-gateway/internal/cache"
	"dsacoach-gateway/internal/config"
	"dsacoach-gateway/internal/dataset"
	"dsacoach-gateway/pkg/logging/logging"
)

// newDatasetCmd exposes the catalog queries offline, without the server or
// a model key.
func newDatasetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Query the problem catalog",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "topics <slug>...",
			Short: "Topic mastery for a list of solved slugs",
			RunE: func(cmd *cobra.Command, args []string) error {
				engine, err := loadEngine(cmd)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), engine.Summarize(args))
			},
		},
		&cobra.Command{
			Use:   "related <slug>",
			Short: "Related problems for one slug",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				engine, err := loadEngine(cmd)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), engine.FindRelated(args[0]))
			},
		},
		&cobra.Command{
			Use:   "list-topics",
			Short: "Every topic in the catalog",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				engine, err := loadEngine(cmd)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), engine.AllTopics())
			},
		},
	)
	return cmd
}

func loadEngine(cmd *cobra.Command) (*dataset.Engine, error) {
	flagOrEnv(cmd, "config", "CONFIG_FILE")
	flagOrEnv(cmd, "log-level", "LOG_LEVEL")

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := logging.Init(logging.Options{Env: cfg.Env, Level: cfg.LogLevel})

	d := cfg.Cache.Dataset.CacheConfig()
	store := cache.NewExpiringCache(cache.DomainDataset, d.MaxSize, d.TTL)
	engine := dataset.NewEngine(dataset.SourceFor(cfg.DatasetPath), store, logger.With(zap.String("cmd", cmd.Name())))
	engine.Load()
	return engine, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

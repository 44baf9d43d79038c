package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/CP-Team-DBS/anxiety-model-1/internal/config"
	"github.com/CP-Team-DBS/anxiety-model-1/pkg/logger"
)

type rootOptions struct {
	configPath  string
	modelPath   string
	encoderPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "anxiety",
		Short:         "GAD-7 anxiety level prediction service",
		Long:          "Scores GAD-7 questionnaire responses and predicts an anxiety level with a pre-trained classifier.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file (overrides "+config.EnvConfig+")")
	root.PersistentFlags().StringVar(&opts.modelPath, "model", "", "Classifier artifact path (overrides model_path)")
	root.PersistentFlags().StringVar(&opts.encoderPath, "encoder", "", "Label encoder artifact path (overrides encoder_path)")

	root.AddCommand(
		newServeCmd(opts),
		newPredictCmd(opts),
		newCheckCmd(opts),
		newBatchCmd(opts),
	)
	return root
}

// loadConfig layers defaults, the config file, env and command-line overrides.
func loadConfig(ctx context.Context, opts *rootOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFile(ctx, opts.configPath)
	} else {
		cfg, err = config.Load(ctx)
	}
	if err != nil {
		return nil, err
	}

	if opts.modelPath != "" {
		cfg.ModelPath = opts.modelPath
		cfg.ClassifierURL = ""
	}
	if opts.encoderPath != "" {
		cfg.EncoderPath = opts.encoderPath
	}
	return cfg, nil
}

// initLogging initializes the global logger on w with the configured format
// and level, falling back to info on an invalid level.
func initLogging(ctx context.Context, w io.Writer, cfg *config.Config) (logger.Logger, error) {
	if err := logger.InitWriter(w, cfg.LogFormat); err != nil {
		return nil, err
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return log, nil
}

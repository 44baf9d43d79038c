package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CP-Team-DBS/anxiety-model-1/internal/app"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load and cross-validate the model artifacts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(ctx, opts)
			if err != nil {
				return err
			}
			log, err := initLogging(ctx, cmd.ErrOrStderr(), cfg)
			if err != nil {
				return err
			}

			svc, err := app.Bootstrap(ctx, cfg, log)
			if err != nil {
				return err
			}

			stats := svc.GetStats()
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, "artifacts OK")
			for _, key := range []string{"classifier", "decoder"} {
				d, ok := stats[key].(map[string]any)
				if !ok {
					continue
				}
				_, _ = fmt.Fprintf(out, "%s:\n", key)
				for _, field := range []string{"kind", "path", "url", "trees", "nodes", "classes", "labels"} {
					if v, ok := d[field]; ok {
						_, _ = fmt.Fprintf(out, "  %-8s %v\n", field, v)
					}
				}
			}
			return nil
		},
	}
}

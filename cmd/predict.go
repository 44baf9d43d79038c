package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/CP-Team-DBS/anxiety-model-1/internal/app"
	"github.com/CP-Team-DBS/anxiety-model-1/internal/domain/questionnaire"
)

var errNoAnswers = errors.New("one of --answers or --file is required")

type predictOutput struct {
	app.Result
	Severity string `json:"severity"`
}

func newPredictCmd(opts *rootOptions) *cobra.Command {
	var (
		answers []string
		file    string
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the anxiety level for one response",
		Long: "Runs the prediction pipeline offline. Answers are given in question order " +
			"with --answers, or as a JSON object keyed by field id with --file.",
		Example: `  anxiety predict --answers "Tidak Pernah,Beberapa Hari,Tidak Pernah,Tidak Pernah,Tidak Pernah,Tidak Pernah,Tidak Pernah"
  anxiety predict --file response.json`,
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

			raw, err := readResponse(svc.Schema(), answers, file)
			if err != nil {
				return err
			}

			res, err := svc.Predict(ctx, raw)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(predictOutput{
				Result:   res,
				Severity: questionnaire.Severity(res.TotalScore),
			})
		},
	}

	cmd.Flags().StringSliceVar(&answers, "answers", nil, "Comma-separated answers in question order")
	cmd.Flags().StringVar(&file, "file", "", "JSON file with one string per field id")
	cmd.MarkFlagsMutuallyExclusive("answers", "file")
	return cmd
}

// readResponse builds the raw input from positional answers or a JSON file.
func readResponse(schema *questionnaire.Schema, answers []string, file string) (questionnaire.RawInput, error) {
	switch {
	case len(answers) > 0:
		if len(answers) != questionnaire.ItemCount {
			return nil, fmt.Errorf("expected %d answers, got %d", questionnaire.ItemCount, len(answers))
		}
		return schema.InputFromAnswers(answers), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		var raw questionnaire.RawInput
		if err := json.Unmarshal(b, &raw); err != nil {
			return nil, fmt.Errorf("%s: every answer must be a string: %w", file, err)
		}
		return raw, nil
	default:
		return nil, errNoAnswers
	}
}

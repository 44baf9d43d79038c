package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CP-Team-DBS/anxiety-model-1/internal/adapters/mq/queue"
	"github.com/CP-Team-DBS/anxiety-model-1/internal/adapters/mq/worker"
	"github.com/CP-Team-DBS/anxiety-model-1/internal/app"
	"github.com/CP-Team-DBS/anxiety-model-1/internal/domain/questionnaire"
	"github.com/CP-Team-DBS/anxiety-model-1/pkg/logger"
)

const (
	kindMalformed  = "malformed_line"
	maxLineBytes   = 1 << 20
	queuePerWorker = 4
)

type batchError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type batchLine struct {
	Line int `json:"line"`
	*app.Result
	Error *batchError `json:"error,omitempty"`
}

func newBatchCmd(opts *rootOptions) *cobra.Command {
	var (
		in      string
		out     string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Score a JSON Lines file of responses",
		Long: "Reads one JSON object per line, keyed by field id, scores them on a worker pool " +
			"and writes one JSON line per response in input order. Failed lines carry an error.",
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

			r := cmd.InOrStdin()
			if in != "" && in != "-" {
				f, err := os.Open(in)
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				r = f
			}

			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				w = f
			}

			outcomes, err := runBatch(ctx, svc, r, workers, log)
			if err != nil {
				return err
			}

			failed := 0
			enc := json.NewEncoder(w)
			for _, o := range outcomes {
				line := batchLine{Line: o.Line}
				if o.Err != nil {
					failed++
					line.Error = &batchError{Code: outcomeKind(o.Err), Message: o.Err.Error()}
				} else {
					res := o.Result
					line.Result = &res
				}
				if err := enc.Encode(line); err != nil {
					return err
				}
			}

			log.Info(ctx, "batch finished",
				logger.Int("responses", len(outcomes)),
				logger.Int("failed", failed),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "-", "JSON Lines input file (- for stdin)")
	cmd.Flags().StringVar(&out, "out", "-", "JSON Lines output file (- for stdout)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker count (0 uses the number of CPUs)")
	return cmd
}

// runBatch feeds every non-blank line of r through a worker pool and
// returns the outcomes sorted by line number.
func runBatch(ctx context.Context, svc worker.Predictor, r io.Reader, workers int, log logger.Logger) ([]worker.Outcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan worker.Outcome, queuePerWorker)
	q := queue.NewInMemoryQueue(queue.WithCapacity(queuePerWorker * max(workers, 1)))
	pool := worker.NewPool(workers, q, svc, results, worker.WithLogger(log))
	pool.Start(ctx)
	log.Debug(ctx, "batch started", logger.Int("workers", pool.Size()))

	produced := make(chan error, 1)
	go func() {
		defer func() { _ = q.Close() }()
		produced <- produce(ctx, r, q, results)
	}()

	go func() {
		pool.Wait()
		close(results)
	}()

	var outcomes []worker.Outcome
	for o := range results {
		outcomes = append(outcomes, o)
	}
	if err := <-produced; err != nil {
		return nil, err
	}

	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Line < outcomes[j].Line })
	return outcomes, nil
}

// produce enqueues each line. Lines that are not a JSON object of strings
// are reported directly as failed outcomes.
func produce(ctx context.Context, r io.Reader, q queue.Queue, results chan<- worker.Outcome) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLineBytes)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		var raw questionnaire.RawInput
		if err := json.Unmarshal([]byte(text), &raw); err != nil {
			select {
			case results <- worker.Outcome{Line: line, Err: fmt.Errorf("%s: %w", kindMalformed, err)}:
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		if err := q.EnqueueWait(ctx, queue.Job{Line: line, Input: raw}); err != nil {
			return err
		}
	}
	return sc.Err()
}

func outcomeKind(err error) string {
	if kind := app.Kind(err); kind != app.KindUnknown {
		return kind
	}
	return kindMalformed
}

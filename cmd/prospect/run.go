package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lk2023060901/prospect-finder/internal/pkg/injector"
	"github.com/lk2023060901/prospect-finder/internal/prospect/biz"
)

type runOptions struct {
	location string
	postcode string
	dryRun   bool
}

// runOutput mirrors the HTTP response body plus per-stage counts.
type runOutput struct {
	Status          string                `json:"status"`
	ExecutionTime   float64               `json:"execution_time"`
	Data            []*biz.BusinessRecord `json:"data"`
	PersistFailures int                   `json:"persist_failures,omitempty"`
	Stats           biz.Stats             `json:"stats"`
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the discovery pipeline once and print the records as JSON",
		Example: `  prospect run --location Sydney --postcode 2000
  prospect run --location "Wagga Wagga" --postcode 2650 --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.location == "" || opts.postcode == "" {
				return errors.New("--location and --postcode are required")
			}

			config, log, err := root.setup()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if opts.dryRun {
				config.Sink.Driver = "log"
				config.Sink.Drivers = nil
			}
			if err := config.Validate(); err != nil {
				return err
			}

			pipeline, cleanup, err := injector.InitializePipeline(config, log)
			if err != nil {
				return err
			}
			defer cleanup()

			start := time.Now()
			result, err := pipeline.Process(cmd.Context(), opts.location, opts.postcode)
			if err != nil {
				log.Error("pipeline failed", zap.Error(err))
				return err
			}

			return writeResult(cmd.OutOrStdout(), result, time.Since(start))
		},
	}

	cmd.Flags().StringVarP(&opts.location, "location", "l", "", "suburb or city to search")
	cmd.Flags().StringVarP(&opts.postcode, "postcode", "p", "", "four digit postcode")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "log records instead of writing to the configured sink")
	return cmd
}

func writeResult(w io.Writer, result *biz.ProcessResult, elapsed time.Duration) error {
	out := runOutput{
		Status:          "success",
		ExecutionTime:   elapsed.Seconds(),
		Data:            result.Records,
		PersistFailures: result.PersistFailures,
		Stats:           result.Stats,
	}
	if out.Data == nil {
		out.Data = []*biz.BusinessRecord{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

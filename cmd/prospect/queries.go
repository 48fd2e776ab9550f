package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lk2023060901/prospect-finder/internal/pkg/injector"
)

func newQueriesCmd(root *rootOptions) *cobra.Command {
	var location, postcode string

	cmd := &cobra.Command{
		Use:   "queries",
		Short: "Print the search queries generated for a location",
		RunE: func(cmd *cobra.Command, args []string) error {
			if location == "" || postcode == "" {
				return errors.New("--location and --postcode are required")
			}

			config, log, err := root.setup()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if config.LLM.APIKey == "" {
				return errors.New("llm.api_key is required (or set ANTHROPIC)")
			}

			generator, cleanup, err := injector.InitializeQueryGenerator(config, log)
			if err != nil {
				return err
			}
			defer cleanup()

			queries, err := generator.Generate(cmd.Context(), location, postcode)
			if err != nil {
				return err
			}
			for _, q := range queries {
				fmt.Fprintln(cmd.OutOrStdout(), q)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&location, "location", "l", "", "suburb or city to search")
	cmd.Flags().StringVarP(&postcode, "postcode", "p", "", "four digit postcode")
	return cmd
}

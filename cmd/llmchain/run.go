package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/casualjim/llmchain/pkg/slogx"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the prompt chain from the config file.",
	Long: `Builds every provider listed in the config, then runs the steps in
order. Each step's template may reference earlier step outputs with
{{step_id}} placeholders. Prints step outputs as they complete.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configFile)
		if err != nil {
			return err
		}
		if len(cfg.Steps) == 0 {
			return fmt.Errorf("config %s declares no steps", configFile)
		}

		registry, err := buildRegistry(cfg)
		if err != nil {
			return err
		}
		chain, err := buildChain(cfg)
		if err != nil {
			return err
		}

		results, err := chain.Run(cmd.Context(), registry)
		if err != nil {
			slog.Error("chain failed", slogx.Error(err))
			return err
		}

		for pair := results.Oldest(); pair != nil; pair = pair.Next() {
			fmt.Fprintf(os.Stdout, "=== %s ===\n%s\n\n", pair.Key, pair.Value)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

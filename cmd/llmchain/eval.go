package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/casualjim/llmchain"
	"github.com/casualjim/llmchain/pkg/slogx"
	"github.com/casualjim/llmchain/provider"
	"github.com/spf13/cobra"
)

var scoring string

var evalCmd = &cobra.Command{
	Use:   "eval [prompt]",
	Short: "Send one prompt to every configured provider and compare answers.",
	Long: `Sends the same prompt to every provider in the config, in order, and
prints each answer. The prompt comes from the command line or from the
config file's prompt field.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configFile)
		if err != nil {
			return err
		}
		if len(cfg.Providers) == 0 {
			return fmt.Errorf("config %s declares no providers", configFile)
		}

		prompt := cfg.Prompt
		if len(args) == 1 {
			prompt = args[0]
		}
		if prompt == "" {
			return fmt.Errorf("no prompt given; pass one as an argument or set prompt in %s", configFile)
		}

		providers := make([]provider.Provider, 0, len(cfg.Providers))
		for _, pc := range cfg.Providers {
			p, err := buildProvider(pc)
			if err != nil {
				return err
			}
			providers = append(providers, p)
		}

		evaluator := llmchain.NewEvaluator(providers...)
		if scoring == "length" {
			evaluator = evaluator.Scoring(func(text string) float64 {
				return float64(len(strings.TrimSpace(text)))
			})
		}

		results, err := evaluator.Evaluate(cmd.Context(), []provider.Message{provider.User(prompt)})
		if err != nil {
			slog.Error("evaluation failed", slogx.Error(err))
			return err
		}

		if scoring != "" && scoring != "none" {
			sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
		}
		for _, r := range results {
			fmt.Fprintf(os.Stdout, "=== %s (score %.1f) ===\n%s\n\n", r.Backend, r.Score, r.Text)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringVar(&scoring, "scoring", "none", "Scoring strategy for ranking answers (none, length)")
}

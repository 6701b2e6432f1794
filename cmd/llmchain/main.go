// Command llmchain runs prompt chains and evaluations described in a config
// file against configured LLM backends.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/phsym/zeroslog"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	configFile string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "llmchain",
	Short: "Run prompt chains across LLM backends.",
	Long: `llmchain executes sequential prompt chains and side-by-side
evaluations against OpenAI, Anthropic, Ollama and X.AI backends.
Chains are described in a YAML config file; credentials come from the
environment (OPENAI_API_KEY, ANTHROPIC_API_KEY, XAI_API_KEY).`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Stamp}
		log := zerolog.New(output).With().Timestamp().Logger()
		slog.SetDefault(slog.New(
			zeroslog.NewHandler(log, &zeroslog.HandlerOptions{Level: level}),
		))
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "llmchain.yaml", "Path to the chain config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

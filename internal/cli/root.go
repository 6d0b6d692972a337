package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	port       string
	configPath string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reading-hero",
		Short: "Reading comprehension quizzes for kids over WebSocket",
		Long: `reading-hero serves Hebrew reading quizzes to a browser client over a
WebSocket at /ws. Each connection picks a player with ?profile=<name>; points,
achievements and shop unlocks are kept per profile in the configured backend
(memory, redis, postgres or sqlite).

Quizzes come from Gemini when GEMINI_API_KEY is set, otherwise from a built-in
sample quiz.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&port, "port", envOr("PORT", "8080"), "port to listen on")
	cmd.PersistentFlags().StringVar(&configPath, "config", envOr("CONFIG_PATH", "config/config.yaml"), "path to YAML config")
	cmd.AddCommand(NewStartCmd(&configPath, &port))
	cmd.AddCommand(NewMigrateCmd(&configPath))
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

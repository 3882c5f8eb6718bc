// Command leaguectl is the league administration CLI.
//
// Usage:
//
//	leaguectl seed --year 2025
//	leaguectl seed --config pyramid.json --year 2025
//	leaguectl simulate --seed 42
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jarruego/tiktok-league/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	appLogger, err := logger.New()
	if err != nil {
		os.Exit(1)
	}
	defer func() {
		_ = appLogger.Sync()
	}()

	root := &cobra.Command{
		Use:           "leaguectl",
		Short:         "League administration CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(seedCmd(appLogger))
	root.AddCommand(simulateCmd(appLogger))

	if err := root.Execute(); err != nil {
		appLogger.Errorw("command failed", "error", err)
		os.Exit(1)
	}
}

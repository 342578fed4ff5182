package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/bnema/wgate/internal/adapters/in/cli"
	"github.com/bnema/wgate/pkg/logger"
)

// ExecuteCLI runs wgate with the process arguments and exits with its status.
// SIGINT and SIGTERM cancel the running operation.
func ExecuteCLI(version, commit, date string) {
	logger.GetLogger().ConfigureFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, cli.BuildInfo{Version: version, Commit: commit, Date: date}, os.Args[1:])
	stop()

	os.Exit(code)
}

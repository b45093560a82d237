// Command walletsync-converge runs one status convergence and prints its outcome
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"walletsync/internal/platform/logger"
)

func main() {
	logger.Init(logger.FromEnv("walletsync-converge"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := newRoot(openService)
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, errExhausted) {
			stop()
			os.Exit(2)
		}
		_, _ = os.Stderr.WriteString(errorMsg("%v", err) + "\n")
		logger.Get().Debug().Err(err).Msg("converge failed")
		stop()
		os.Exit(1)
	}
}

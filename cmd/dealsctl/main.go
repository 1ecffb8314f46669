package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/angelmondragon/buzdealz-backend/internal/cli"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	root := cli.NewRootCommand()
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		cli.PrintError(root.ErrOrStderr(), err)
		os.Exit(cli.GetExitCode(err))
	}
}

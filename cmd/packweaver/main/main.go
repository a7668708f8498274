package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthur-debert/packweaver/cmd/packweaver"
	"github.com/joho/godotenv"
)

func main() {
	// A .env in the working directory may carry PACKWEAVER_* settings
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := packweaver.NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, packweaver.RenderError(err))
		stop()
		os.Exit(1)
	}
}

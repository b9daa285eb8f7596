package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/teralogger/internal/app"
	"github.com/dmitrijs2005/teralogger/internal/buildinfo"
	"github.com/dmitrijs2005/teralogger/internal/common"
	"github.com/dmitrijs2005/teralogger/internal/config"
)

const (
	exitOK           = 0
	exitWriteFailure = 1
	exitPrecondition = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return exitPrecondition
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := app.NewApp(cfg, os.Stderr).Run(ctx)
	if summary != nil {
		summary.Print(os.Stdout)
	}

	switch {
	case err == nil:
		return exitOK
	case common.IsFatal(err):
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitPrecondition
	default:
		fmt.Fprintf(os.Stderr, "completed with errors: %v\n", err)
		return exitWriteFailure
	}
}

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	historycmd "github.com/cleka/colossus-titan-sub015/internal/cmd/history"
	"github.com/cleka/colossus-titan-sub015/internal/platform/config"
	apperrors "github.com/cleka/colossus-titan-sub015/internal/platform/errors"
)

func main() {
	cfg, err := historycmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	log.SetPrefix("[HISTORY] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := historycmd.Run(ctx, cfg, os.Stdout); err != nil {
		log.Fatalf("history audit (%s): %v", apperrors.CodeOf(err), err)
	}
}

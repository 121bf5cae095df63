package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	congresscmd "github.com/ilus66/Cnol-2025-2/internal/cmd/congress"
	"github.com/ilus66/Cnol-2025-2/internal/platform/config"
)

func main() {
	// Best-effort local .env; absence is fine outside development.
	_ = godotenv.Load()

	cfg, err := congresscmd.ParseConfig(flag.CommandLine, os.Args[1:], func(key string) (string, bool) {
		value, ok := os.LookupEnv(key)
		return value, ok
	})
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	log.SetPrefix("[CONGRESS] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := congresscmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}

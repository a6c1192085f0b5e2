package main

import (
	"log"
	"strings"

	"pagethread/internal/app"
	"pagethread/pkg/config"
	"pagethread/pkg/shutdown"
)

// build metadata - set via ldflags during build/release
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	flags := config.ParseFlags()

	cfg, envUsed, err := config.LoadEffective(flags.Config)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Explicit flags win over env and config file.
	addr := cfg.Addr()
	if flags.Set["addr"] {
		addr = flags.Addr
	}
	dbPath := cfg.Server.DBPath
	if dbPath == "" || flags.Set["db"] {
		dbPath = flags.DB
	}

	// Config sources summary for the startup banner.
	srcs := []string{}
	if len(flags.Set) > 0 {
		srcs = append(srcs, "flags")
	}
	if envUsed {
		srcs = append(srcs, "env")
	}
	if _, err := config.Load(flags.Config); err == nil {
		srcs = append(srcs, "config")
	}

	a, err := app.New(cfg, addr, dbPath, strings.Join(srcs, ", "), version, commit, buildDate)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}

	ctx, stop := shutdown.Context()
	defer stop()

	runErr := a.Run(ctx)
	if err := a.Close(); err != nil {
		log.Printf("close: %v", err)
	}
	if runErr != nil {
		log.Fatalf("server error: %v", runErr)
	}
}

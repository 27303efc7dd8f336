package main

import (
	"context"
	"flag"
	"log"

	"github.com/intelfuse-ai/intelfuse/internal/auth"
	"github.com/intelfuse-ai/intelfuse/internal/config"
	"github.com/intelfuse-ai/intelfuse/internal/export"
	"github.com/intelfuse-ai/intelfuse/internal/extract"
	"github.com/intelfuse-ai/intelfuse/internal/fetch"
	"github.com/intelfuse-ai/intelfuse/internal/pipeline"
	"github.com/intelfuse-ai/intelfuse/internal/server"
	"github.com/intelfuse-ai/intelfuse/internal/telemetry"
)

func main() {
	addrFlag := flag.String("addr", "", "HTTP listen address (overrides config)")
	configPath := flag.String("config", "intelfuse.yaml", "Path to Intelfuse config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	addr := cfg.Server.Addr
	if *addrFlag != "" {
		addr = *addrFlag
	}

	ctx := context.Background()

	tel, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:  cfg.Telemetry.Enabled,
		Endpoint: cfg.Telemetry.Endpoint,
		Protocol: cfg.Telemetry.Protocol,
		Service:  cfg.Telemetry.Service,
	})
	if err != nil {
		log.Fatalf("failed to set up telemetry: %v", err)
	}
	defer tel.Shutdown(ctx)

	exporter, err := export.NewFromConfig(cfg.Export)
	if err != nil {
		log.Fatalf("failed to set up export sinks: %v", err)
	}
	if exporter != nil {
		defer exporter.Close(ctx)
	}

	authz, err := auth.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("failed to set up auth: %v", err)
	}
	if authz.Enabled() {
		log.Printf("API key auth enabled (%d keys)", len(cfg.Auth.APIKeys))
	}

	fetcher := fetch.NewHTTPFetcher(fetch.Config{
		Timeout:    cfg.Fetch.Timeout.Std(),
		UserAgent:  cfg.Fetch.UserAgent,
		MaxExcerpt: cfg.Fetch.MaxExcerpt,
	})
	pl := pipeline.New(extract.NewPDFExtractor(), fetcher, cfg.Extract.Workers, cfg.Fetch.Workers, tel)

	srv := server.New(cfg, authz, pl, exporter, tel)

	log.Printf("Starting Intelfuse on %s...", addr)
	if err := srv.Start(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

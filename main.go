package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/speedrun-hq/swapper/pkg/alert"
	"github.com/speedrun-hq/swapper/pkg/chainclient"
	"github.com/speedrun-hq/swapper/pkg/config"
	"github.com/speedrun-hq/swapper/pkg/health"
	"github.com/speedrun-hq/swapper/pkg/logger"
	"github.com/speedrun-hq/swapper/pkg/store"
	"github.com/speedrun-hq/swapper/pkg/swapper"
	"github.com/speedrun-hq/swapper/pkg/wallet"
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	lg := logger.NewStdLogger(cfg.LoggerConfig.Coloring, cfg.LoggerConfig.Level)

	// Cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	counters, err := store.Open(ctx, cfg.StoreURL, cfg.StoreKeyPrefix)
	if err != nil {
		log.Fatalf("Failed to open counter store: %v", err)
	}
	defer counters.Close()
	if _, ok := counters.(*store.MemoryStore); ok {
		lg.Named(logger.Store).Notice("Using the in-memory counter store, the last acted height is lost on restart")
	} else {
		lg.Named(logger.Store).Info("Counter store connected, key prefix %q", cfg.StoreKeyPrefix)
	}

	chain := chainclient.New(cfg.Chain.NodeURL, cfg.Chain.HTTPTimeout, cfg.Chain.RateLimit, lg.Named(logger.Chain))

	key, err := wallet.LoadKey(cfg.Account.Mnemonic, cfg.Account.PrivateKey, cfg.Account.DerivationPath, cfg.Account.Prefix)
	if err != nil {
		log.Fatalf("Failed to load account key: %v", err)
	}
	signer := wallet.New(key, cfg.Chain.ChainID, wallet.Fee{
		GasLimit: cfg.Fee.GasLimit,
		GasPrice: cfg.Fee.GasPrice,
		Denom:    cfg.Fee.GasDenom,
	}, cfg.Fee.Memo, chain, lg.Named(logger.Submit))

	sink := alert.New(cfg.AlertURL, cfg.Timing.AlertTimeout, lg.Named(logger.Alert))

	service := swapper.NewService(cfg, chain, counters, signer, sink, lg)
	healthServer := health.NewServer(cfg.MetricsPort, service, cfg.MetricsAPIKey, lg.Named(logger.Health))

	lg.Info("Starting the swapper for %s on %s (%s)", signer.Address(), cfg.Chain.ChainID, cfg.Chain.NodeURL)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return healthServer.Start(gctx)
	})
	g.Go(func() error {
		service.Run(gctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		lg.Error("Swapper stopped with error: %v", err)
		_ = counters.Close()
		stop()
		os.Exit(1)
	}
	lg.Info("Swapper stopped")
}

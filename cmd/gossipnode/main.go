// Command gossipnode boots a single causal-gossip replication node:
// it loads configuration, derives or restores the node's peer
// identity, binds the overlay transport and RPC ingress, then runs
// the replication engine until an external shutdown signal arrives.
// The boot sequence is grounded on original_source/src/main.rs
// (config load -> keypair -> RPC server spawn -> bootstrap dial ->
// tokio::select! shutdown) and on the flag-driven cmd/gossipd/main.go
// gossip node this package descends from, for the overall cmd/ shape.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hetu-project/causal-gossip/internal/config"
	"github.com/hetu-project/causal-gossip/internal/rpcserver"
	"github.com/hetu-project/causal-gossip/pkg/engine"
	"github.com/hetu-project/causal-gossip/pkg/logging"
	"github.com/hetu-project/causal-gossip/pkg/metrics"
	"github.com/hetu-project/causal-gossip/pkg/peerid"
	"github.com/hetu-project/causal-gossip/pkg/pubsub"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to node configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "gossipnode: fatal:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("boot: %w", err)
	}

	logger, err := logging.New(logging.Config{
		ServiceName: "gossipnode",
		Level:       "info",
		OutputPaths: []string{"stdout"},
	})
	if err != nil {
		return fmt.Errorf("boot: %w", err)
	}
	defer logger.Sync()

	keypair, err := loadOrGenerateKeypair(cfg.NodePrivateKey, logger)
	if err != nil {
		return fmt.Errorf("boot: %w", err)
	}
	self := peerid.FromPublicKey(keypair.Public)
	logger.Info("using peer identity", zap.String("peer_id", self.String()))

	bind := fmt.Sprintf("0.0.0.0:%d", cfg.NetworkP2PPort)
	adapter, err := pubsub.NewUDPAdapter(bind, cfg.NodeBootstrapPeers)
	if err != nil {
		return fmt.Errorf("boot: %w", err)
	}
	defer adapter.Close()

	logger.Info("listening for peers",
		zap.String("bind", bind),
		zap.String("external_ip", cfg.NetworkExternalIP),
		zap.Strings("bootstrap_peers", cfg.NodeBootstrapPeers))

	ingress := make(chan string, 100)

	rpc := rpcserver.New(ingress, logger)
	rpcAddr := fmt.Sprintf("127.0.0.1:%d", cfg.NetworkRPCPort)
	go func() {
		if err := rpc.Run(rpcAddr); err != nil {
			logger.Error("rpc server stopped", zap.Error(err))
		}
	}()

	metricsAddr := fmt.Sprintf("0.0.0.0:%d", cfg.NetworkP2PPort+1)
	go serveMetrics(metricsAddr, logger)

	eng := engine.New(self, adapter, logger)

	serverID := self.String()
	go sampleSystemMetricsPeriodically(serverID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	logger.Info("starting replication engine")
	if err := eng.Run(ctx, ingress); err != nil && ctx.Err() == nil {
		logger.Error("engine stopped unexpectedly", zap.Error(err))
		return err
	}
	logger.Info("shutting down")
	return nil
}

func loadOrGenerateKeypair(encoded string, logger *zap.Logger) (peerid.Keypair, error) {
	if encoded == "" {
		kp, err := peerid.Generate()
		if err != nil {
			return peerid.Keypair{}, err
		}
		logger.Info("generated new private key; add this to your config to reuse the same peer id",
			zap.String("private_key", kp.EncodeBase64()))
		return kp, nil
	}
	return peerid.DecodeKeypair(encoded)
}

func serveMetrics(addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", zap.Error(err))
	}
}

func sampleSystemMetricsPeriodically(serverID string) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		metrics.SampleSystem(context.Background(), serverID)
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"

	"github.com/danielpatrickdp/nova/internal/config"
	"github.com/danielpatrickdp/nova/internal/federation"
	"github.com/danielpatrickdp/nova/internal/identity"
	"github.com/danielpatrickdp/nova/internal/metrics"
	"github.com/danielpatrickdp/nova/internal/node"
	"github.com/danielpatrickdp/nova/internal/store"
)

// #region main
func main() {
	cfgPath := flag.String("config", envOr("NOVA_CONFIG", ""), "path to config YAML (optional)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	id, err := identity.Load(cfg.IDPath)
	if err != nil {
		log.Fatalf("identity: %v", err)
	}

	st, err := store.NewStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	reg := prometheus.NewRegistry()
	mc := metrics.NewCollector("nova", reg)

	n := node.New(cfg, id, st, mc)

	lis, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		log.Fatalf("listen %s: %v", cfg.ListenAddr, err)
	}
	grpcServer := grpc.NewServer()
	federation.NewServer(n).Register(grpcServer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatalf("grpc serve: %v", err)
		}
	}()

	n.Start(ctx)

	fmt.Printf("nova node %s (%s) ready.\n", cfg.NodeName, id.Fingerprint)
	fmt.Printf("  DB: %s | Listen: %s | Peers: %d\n", cfg.DBPath, cfg.ListenAddr, len(cfg.Peers))

	<-ctx.Done()
	log.Println("shutting down...")
	grpcServer.GracefulStop()
	n.Stop()
}

// #endregion main

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers

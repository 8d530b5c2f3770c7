package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hbkwon/voucherd/internal/config"
	"github.com/hbkwon/voucherd/internal/core/engine"
	"github.com/hbkwon/voucherd/internal/core/state"
	grpcserver "github.com/hbkwon/voucherd/internal/grpc"
	"github.com/hbkwon/voucherd/internal/metrics"
	"github.com/hbkwon/voucherd/internal/rpc"
	"github.com/hbkwon/voucherd/internal/storage/auditdb"
	"github.com/hbkwon/voucherd/internal/storage/kv"
	_ "github.com/hbkwon/voucherd/internal/storage/kv/openers"
)

// serverCmd starts the daemon. It is also the default command.
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the voucherd daemon",
	Long: `Start the voucherd daemon, which serves:
- HTTP JSON-RPC for administration, submissions and queries
- gRPC for queries and signed submissions
- Prometheus metrics and a health check endpoint`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runServer(cmd, args)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ledgerID, err := cfg.Node.ParseLedgerID()
	if err != nil {
		return err
	}
	rootOwner, err := cfg.Node.ParseRootOwner()
	if err != nil {
		return err
	}
	feeRecipient, err := cfg.Node.ParseFeeRecipient()
	if err != nil {
		return err
	}

	db, err := kv.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	store := state.NewStore(db)
	defer store.Close()

	registry := prometheus.NewRegistry()
	set := metrics.NewSet(registry)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, err := engine.New(ctx, store, engine.Config{
		LedgerID:     ledgerID,
		RootOwner:    rootOwner,
		FeeRecipient: feeRecipient,
		FeeRateBps:   uint32(cfg.Node.FeeRateBps),
	}, engine.WithMetrics(set))
	if err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}

	journal, err := auditdb.Open(ctx, cfg.Audit)
	if err != nil {
		return fmt.Errorf("failed to open audit journal: %w", err)
	}
	defer journal.Close()
	eng.Publisher().Subscribe(journal)

	rpcServer := rpc.NewServer(eng, Version)

	grpcServer, err := grpcserver.NewServer(&grpcserver.ServerConfig{
		Address:        cfg.Server.GRPCAddress,
		MaxRecvMsgSize: 4 * 1024 * 1024,
		MaxSendMsgSize: 4 * 1024 * 1024,
	}, eng)
	if err != nil {
		return fmt.Errorf("failed to initialize gRPC server: %w", err)
	}

	metricsServer := &http.Server{
		Addr:    cfg.Server.MetricsAddress,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}

	if !quiet {
		fmt.Println("voucherd starting")
		fmt.Printf("  - JSON-RPC:  http://%s/\n", cfg.Server.RPCAddress)
		fmt.Printf("  - gRPC:      %s\n", cfg.Server.GRPCAddress)
		fmt.Printf("  - Metrics:   http://%s/metrics\n", cfg.Server.MetricsAddress)
		fmt.Printf("  - State:     %s (%s)\n", cfg.Storage.Path, cfg.Storage.Backend)
		fmt.Printf("  - Audit:     %s\n", cfg.Audit.Driver)
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return rpcServer.Start(cfg.Server.RPCAddress, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
	})
	group.Go(func() error {
		return grpcServer.Start()
	})
	group.Go(func() error {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := rpcServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("JSON-RPC shutdown: %v", err)
		}
		grpcServer.Stop()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("metrics shutdown: %v", err)
		}
		return nil
	})

	if err := group.Wait(); err != nil && err != context.Canceled {
		return err
	}
	if !quiet {
		fmt.Println("voucherd stopped")
	}
	return nil
}

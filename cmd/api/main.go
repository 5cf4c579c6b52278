package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/collinsville22/pingmart/internal/app"
	"github.com/collinsville22/pingmart/internal/clock"
	"github.com/collinsville22/pingmart/internal/config"
	"github.com/collinsville22/pingmart/internal/custody"
	"github.com/collinsville22/pingmart/internal/domain"
	"github.com/collinsville22/pingmart/internal/naming"
	"github.com/collinsville22/pingmart/internal/nearrpc"
	"github.com/collinsville22/pingmart/internal/payment"
	"github.com/collinsville22/pingmart/internal/registration"
	"github.com/collinsville22/pingmart/internal/registry"
	"github.com/collinsville22/pingmart/internal/storage/postgres"
	"github.com/collinsville22/pingmart/internal/swap"
	transporthttp "github.com/collinsville22/pingmart/internal/transport/http"
	"github.com/collinsville22/pingmart/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "api",
		Short:         "Name purchase API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	cmd.AddCommand(newServeCommand(&configPath))
	cmd.AddCommand(newMigrateCommand(&configPath))

	return cmd
}

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func newMigrateCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			pool, err := pgxpool.New(ctx, cfg.Database.URL)
			if err != nil {
				return fmt.Errorf("connect to db: %w", err)
			}
			defer pool.Close()

			return migrations.Apply(ctx, pool)
		},
	}
}

func serve(cfg config.Config) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connect to db: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	clk := clock.NewSystem()
	runner := app.NewAsyncRunner()

	pingpay := payment.NewClient(cfg.PingPay.BaseURL, cfg.PingPay.AppURL, cfg.PingPay.APIKey, cfg.PingPay.PublishableKey)
	reconciler := payment.NewReconciler(pingpay)

	nearClient := nearrpc.NewClient(cfg.Chains.NearRPC)

	signer := custody.NewClient(cfg.Custody.SignerURL, cfg.Custody.SignerAPIKey)
	nearSigner := custody.NewNearSigner(signer)
	solanaSigner, err := custody.NewSolanaSigner(signer, cfg.Custody.Solana)
	if err != nil {
		return err
	}

	bridge := swap.NewBridgeClient(cfg.Bridge.BaseURL)
	executor := swap.NewExecutor(bridge, nearSigner, clk, cfg.Bridge.RefundAddress,
		swap.WithPollTiming(cfg.Bridge.PollInterval, cfg.Bridge.PollTimeout))
	funds := swap.NewSettlementFunds(nearClient, cfg.Custody.Near)

	drivers := registration.Registry{
		domain.ChainEthereum: registration.NewENSDriver(custody.NewENSRegistrar(signer, registration.ENSControllerAddr), clk),
		domain.ChainArbitrum: registration.NewARBDriver(custody.NewARBRegistrar(signer, registration.ARBControllerAddr), clk),
		domain.ChainBase:     registration.NewBaseDriver(custody.NewBaseRegistrar(signer, registration.BaseControllerAddr)),
		domain.ChainSolana:   registration.NewSNSDriver(cfg.Chains.BonfidaURL, solanaSigner),
		domain.ChainNear:     registration.NewNearDriver(nearClient, nearSigner),
	}

	checker := naming.NewChecker(map[domain.Chain]naming.RegistryReader{
		domain.ChainEthereum: registry.NewENSReader(cfg.Chains.EthereumRPC),
		domain.ChainBase:     registry.NewBasenamesReader(cfg.Chains.BaseRPC),
		domain.ChainArbitrum: registry.NewAvailableReader(cfg.Chains.ArbitrumRPC, registration.ARBControllerAddr),
		domain.ChainSolana:   registry.NewSNSReader(cfg.Chains.BonfidaURL),
		domain.ChainNear:     registry.NewNearReader(nearClient),
	})

	custodyAddresses := make(map[domain.Chain]string)
	for chain, address := range cfg.Custody.Map() {
		if address != "" {
			custodyAddresses[domain.Chain(chain)] = address
		}
	}

	orchestrator := app.NewOrchestrator(app.Deps{
		Repo:             postgres.NewOrderRepository(pool),
		Payments:         pingpay,
		Reconciler:       reconciler,
		Swapper:          executor,
		Funds:            funds,
		Drivers:          drivers,
		Checker:          checker,
		CustodyAddresses: custodyAddresses,
		Clock:            clk,
		Runner:           runner,
		Logger:           logger,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/health", transporthttp.HealthHandler)
	mux.Handle("/names/check", transporthttp.HandleCheckNames(checker))
	mux.Handle("/orders", transporthttp.HandleCreateOrder(orchestrator))
	mux.Handle("/orders/", orderRouter(orchestrator))
	mux.Handle("/webhooks/pingpay", transporthttp.HandlePingPayWebhook(orchestrator, reconciler, cfg.PingPay.WebhookSecret, logger))
	mux.Handle("/", transporthttp.NotFoundHandler())

	handler := transporthttp.RequestLogger(transporthttp.CORS(cfg.Server.CORSOrigins, mux), logger)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: handler,
	}

	logger.Info("api listening", zap.Int("port", cfg.Server.Port))

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("server shutdown error", zap.Error(err))
	}

	// In-flight fulfillment work outlives the request that launched it.
	runner.Wait()
	logger.Info("server stopped")
	return nil
}

// orderRouter dispatches /orders/{id} and /orders/{id}/retry.
func orderRouter(orchestrator *app.Orchestrator) http.Handler {
	getOrder := transporthttp.HandleGetOrder(orchestrator)
	retry := transporthttp.HandleRetry(orchestrator)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/retry") {
			retry.ServeHTTP(w, r)
			return
		}
		getOrder.ServeHTTP(w, r)
	})
}

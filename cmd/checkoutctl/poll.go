package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kevin07696/checkout-kit/internal/adapters/checkoutapi"
	"github.com/kevin07696/checkout-kit/internal/adapters/database"
	"github.com/kevin07696/checkout-kit/internal/adapters/ports"
	"github.com/kevin07696/checkout-kit/internal/adapters/postgres"
	"github.com/kevin07696/checkout-kit/internal/adapters/secrets"
	"github.com/kevin07696/checkout-kit/internal/await"
	"github.com/kevin07696/checkout-kit/internal/config"
	"github.com/kevin07696/checkout-kit/internal/domain"
	"github.com/kevin07696/checkout-kit/internal/polling"
	pkghttp "github.com/kevin07696/checkout-kit/pkg/http"
	"github.com/kevin07696/checkout-kit/pkg/logging"
	"github.com/kevin07696/checkout-kit/pkg/observability"
	"github.com/kevin07696/checkout-kit/pkg/shutdown"
)

const shutdownTimeout = 10 * time.Second

type pollOptions struct {
	paymentData string
	methodType  string
	name        string
	resume      bool
}

type pollReport struct {
	Result  string                      `json:"result" yaml:"result"`
	Details *domain.ActionComponentData `json:"details,omitempty" yaml:"details,omitempty"`
	Error   string                      `json:"error,omitempty" yaml:"error,omitempty"`
	Code    string                      `json:"code,omitempty" yaml:"code,omitempty"`
}

func pollCmd() *cobra.Command {
	opts := &pollOptions{}

	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Poll the status of an await action until it completes",
		Long: `Poll the payment status of an await action, where the shopper confirms
the payment out of band. Configuration is read from the environment
(CHECKOUT_*, POLL_*, SECRETS_*, SESSION_STORE, METRICS_PORT, LOG_*).

With --resume a session stored by an interrupted run is picked up again,
keeping its original start time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPoll(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.paymentData, "payment-data", "", "Payment data of the await action")
	cmd.Flags().StringVar(&opts.methodType, "type", "", "Payment method type of the await action, e.g. blik")
	cmd.Flags().StringVar(&opts.name, "session", polling.DefaultName, "Name the polling session is stored under")
	cmd.Flags().BoolVar(&opts.resume, "resume", false, "Resume the stored polling session")

	return cmd
}

func runPoll(cmd *cobra.Command, opts *pollOptions) (err error) {
	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}

	zapLogger, err := logging.New(cfg.Logger.Level, cfg.Logger.Development)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = zapLogger.Sync() }()
	logger := logging.NewZapLogger(zapLogger)

	ctx, stop := shutdown.NotifyContext(cmd.Context())
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	manager := shutdown.NewManager(zapLogger, shutdownTimeout, reg)
	defer func() {
		err = errors.Join(err, manager.Shutdown())
	}()

	provider, err := secrets.New(ctx, cfg.SecretsSettings(), zapLogger)
	if err != nil {
		return fmt.Errorf("failed to create secrets provider: %w", err)
	}
	clientKey, err := cfg.ResolveClientKey(ctx, provider)
	if err != nil {
		return err
	}

	statusCfg := checkoutapi.DefaultStatusClientConfig(cfg.API.BaseURL)
	statusCfg.RequestsPerSec = cfg.API.RateLimit
	client, err := checkoutapi.NewStatusClient(statusCfg, pkghttp.NewHTTPClient(pkghttp.StatusClientConfig(), cfg.API.Timeout), logger)
	if err != nil {
		return err
	}

	health := observability.NewHealthChecker(nil)
	health.RegisterBreaker("status_api", client.Breaker())

	pollerOpts := []polling.Option{
		polling.WithSchedule(cfg.PollingSchedule()),
		polling.WithMetrics(observability.NewPollerMetrics(reg)),
		polling.WithName(opts.name),
	}

	store, err := openSessionStore(ctx, cfg, zapLogger, manager, health)
	if err != nil {
		return err
	}
	if store != nil {
		pollerOpts = append(pollerOpts, polling.WithSessionStore(store))
	}

	poller := polling.NewStatusPoller(client, logger, pollerOpts...)
	handler := await.NewHandler(poller, clientKey, logger)

	// Shutdown runs in reverse: the poller closes first and keeps its
	// stored session, so an interrupted run can be resumed.
	manager.Register("await_handler", func(ctx context.Context) error {
		if err := handler.Close(ctx); err != nil && !errors.Is(err, polling.ErrPollerClosed) {
			return err
		}
		return nil
	})
	manager.RegisterNoErr("poller", poller.Close)

	if cfg.Metrics.Port > 0 {
		server := observability.NewServer(cfg.Metrics.Port, reg, health, zapLogger)
		if err := server.Start(); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		manager.Register("metrics_server", server.Shutdown)
	}

	action, err := pollAction(ctx, poller, opts)
	if err != nil {
		return err
	}

	statusCh, unsubscribe := poller.Status().Subscribe()
	defer unsubscribe()

	if err := handler.Handle(ctx, action); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("Polling interrupted, session kept for --resume",
				ports.String("session", opts.name))
			return nil

		case u, ok := <-statusCh:
			if !ok {
				statusCh = nil
				continue
			}
			if u.Present {
				fmt.Fprintf(cmd.ErrOrStderr(), "status: %s\n", u.Value.ResultCode)
			}

		case ev, ok := <-handler.Events():
			if !ok {
				return nil
			}
			// Completed actions drop their stored session
			if err := handler.Close(context.Background()); err != nil {
				logger.Warn("Failed to stop polling", ports.Err(err))
			}
			return printPollEvent(p, ev)
		}
	}
}

// pollAction builds the action to poll, taking the payment data from the
// stored session when resuming.
func pollAction(ctx context.Context, poller *polling.StatusPoller, opts *pollOptions) (domain.AwaitAction, error) {
	action := domain.AwaitAction{
		Type:              domain.ActionTypeAwait,
		PaymentMethodType: opts.methodType,
		PaymentData:       opts.paymentData,
	}

	if opts.resume {
		resumed, err := poller.Resume(ctx)
		if err != nil {
			return action, err
		}
		if resumed {
			session, err := poller.Session(ctx)
			if err != nil {
				return action, err
			}
			if session != nil {
				action.PaymentData = session.PaymentData
			}
		}
	}

	if action.PaymentData == "" {
		return action, errors.New("nothing to poll: pass --payment-data, or --resume with a stored session")
	}
	return action, nil
}

func printPollEvent(p *printer, ev await.Event) error {
	report := pollReport{Result: "details", Details: ev.Details}

	if ev.Err != nil {
		report = pollReport{Result: "error", Error: ev.Err.Error()}
		var domainErr *domain.DomainError
		if errors.As(ev.Err, &domainErr) {
			report.Code = string(domainErr.Code)
		}
	}

	if err := p.print(report, func(w io.Writer) {
		if report.Details != nil {
			for key, value := range report.Details.Details {
				fmt.Fprintf(w, "%s: %s\n", key, value)
			}
			return
		}
		fmt.Fprintf(w, "error: %s\n", report.Error)
	}); err != nil {
		return err
	}

	if ev.Err != nil {
		return errNotValid
	}
	return nil
}

// openSessionStore returns nil for the in-memory store, which the poller
// uses by default.
func openSessionStore(ctx context.Context, cfg *config.Config, logger *zap.Logger, manager *shutdown.Manager, health *observability.HealthChecker) (ports.SessionStore, error) {
	if cfg.SessionStore.Backend != config.SessionStorePostgres {
		return nil, nil
	}

	dbCfg := database.DefaultPostgreSQLConfig(cfg.SessionStore.Database.ConnectionString())
	dbCfg.MaxConns = cfg.SessionStore.Database.MaxConns
	dbCfg.MinConns = cfg.SessionStore.Database.MinConns

	db, err := database.NewPostgreSQLAdapter(ctx, dbCfg, logger)
	if err != nil {
		return nil, err
	}
	manager.RegisterNoErr("database", db.Close)
	health.RegisterPinger("database", db)

	store := postgres.NewSessionStore(db.Pool())
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to migrate session store: %w", err)
	}
	return store, nil
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appbasket "github.com/Denis-77/megano-store/internal/application/basket"
	appcatalog "github.com/Denis-77/megano-store/internal/application/catalog"
	apporder "github.com/Denis-77/megano-store/internal/application/order"
	appreview "github.com/Denis-77/megano-store/internal/application/review"
	"github.com/Denis-77/megano-store/internal/config"
	basketdomain "github.com/Denis-77/megano-store/internal/domain/basket"
	orderdomain "github.com/Denis-77/megano-store/internal/domain/order"
	domoutbox "github.com/Denis-77/megano-store/internal/domain/outbox"
	amqppub "github.com/Denis-77/megano-store/internal/infrastructure/amqp"
	catalogworker "github.com/Denis-77/megano-store/internal/infrastructure/catalog/worker"
	httptransport "github.com/Denis-77/megano-store/internal/infrastructure/http"
	"github.com/Denis-77/megano-store/internal/infrastructure/id"
	"github.com/Denis-77/megano-store/internal/infrastructure/memory"
	obsinfra "github.com/Denis-77/megano-store/internal/infrastructure/observability"
	"github.com/Denis-77/megano-store/internal/infrastructure/observability/oteltrace"
	"github.com/Denis-77/megano-store/internal/infrastructure/observability/prometrics"
	"github.com/Denis-77/megano-store/internal/infrastructure/observability/zaplogger"
	"github.com/Denis-77/megano-store/internal/infrastructure/outbox"
	"github.com/Denis-77/megano-store/internal/infrastructure/sqlite"
	"github.com/Denis-77/megano-store/internal/observability"
	"github.com/Denis-77/megano-store/internal/pkg/logging"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	baseLogger := logging.MustNewLogger(cfg.ServiceName, cfg.Env)
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)
	systemLogger := baseLogger.With(zap.String("component", "main"))

	registry := prometrics.New("", "")
	counters := map[observability.MetricKey]observability.Counter{
		observability.MUsecaseRequests: registry.Counter(
			observability.MUsecaseRequests, "Total number of use case invocations.",
			"use_case", "outcome"),
		observability.MHTTPRequests: registry.Counter(
			observability.MHTTPRequests, "Total number of HTTP requests.",
			"method", "route", "status"),
		observability.MBasketLinesWritten: registry.Counter(
			observability.MBasketLinesWritten, "Basket line writes by owner kind.",
			"owner_kind"),
		observability.MOrderEventPublishes: registry.Counter(
			observability.MOrderEventPublishes, "Order event publish attempts.",
			"peer", "outcome"),
	}
	histograms := map[observability.MetricKey]observability.Histogram{
		observability.MUsecaseDuration: registry.Histogram(
			observability.MUsecaseDuration, "Duration of use case execution in seconds.",
			prometheus.DefBuckets, "use_case"),
		observability.MHTTPRequestDuration: registry.Histogram(
			observability.MHTTPRequestDuration, "Duration of HTTP requests in seconds.",
			prometheus.DefBuckets, "method", "route", "status"),
	}
	tel := obsinfra.New(
		oteltrace.New(cfg.ServiceName),
		zaplogger.Wrap(baseLogger),
		counters,
		histograms,
	)

	productRepo := memory.NewProductRepository()
	sessionStore := memory.NewSessionStore()

	var (
		lineStore basketdomain.LineStore
		orderRepo orderdomain.Repository
	)
	if cfg.DBPath != "" {
		db, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			systemLogger.Fatal("db_open_failed", zap.Error(err))
		}
		defer func() { _ = db.Close() }()
		if err := sqlite.Migrate(context.Background(), db); err != nil {
			systemLogger.Fatal("db_migrate_failed", zap.Error(err))
		}
		lineStore = sqlite.NewLineStore(db)
		orderRepo = sqlite.NewOrderStore(db)
	} else {
		lineStore = memory.NewLineStore()
		orderRepo = memory.NewOrderRepository()
	}

	bus := outbox.NewBus(tel)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	if cfg.RabbitURL != "" {
		pub, err := amqppub.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			systemLogger.Fatal("amqp_connect_failed", zap.Error(err))
		}
		defer pub.Close()
		// Bridge bus events out to the broker.
		bus.Subscribe(orderdomain.EventOrderCreated, func(ctx context.Context, e domoutbox.Event) error {
			return pub.Publish(ctx, e)
		})
	}

	linesWritten := tel.Metrics().Counter(observability.MBasketLinesWritten)
	lineWriteHook := func(ctx context.Context, line basketdomain.Line) {
		linesWritten.Add(1, observability.L("owner_kind", string(line.Owner.Kind)))
	}

	ledger := appbasket.NewLedger(lineStore, productRepo, tel, lineWriteHook)
	orderService := apporder.NewService(orderRepo, productRepo, lineStore, id.NewUUIDGenerator(), bus, tel)
	catalogService := appcatalog.NewService(productRepo, lineStore, tel)
	reviewService := appreview.NewService(productRepo, productRepo.Reviews(), tel)

	soldWorker := catalogworker.New(bus, productRepo, tel)
	soldWorker.Start()

	handler := httptransport.NewHandler(
		ledger, orderService, catalogService, reviewService,
		func(sessionID string) basketdomain.SessionStore { return sessionStore.Handle(sessionID) },
	)

	observe := httptransport.ObservabilityMiddleware(tel.Logger(), tel)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", observe(handler.Router()))

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: cors.AllowAll().Handler(mux),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		systemLogger.Info("http_server_start",
			zap.String("addr", server.Addr),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			systemLogger.Error("http_server_error",
				zap.Error(err),
			)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		systemLogger.Error("http_server_shutdown_error",
			zap.Error(err),
		)
	} else {
		systemLogger.Info("http_server_stopped")
	}
}

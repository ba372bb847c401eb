// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"sftgate/internal/access"
	"sftgate/internal/activity"
	filehandler "sftgate/internal/files/handler"
	filesmetrics "sftgate/internal/files/metrics"
	fileservice "sftgate/internal/files/service"
	"sftgate/internal/files/validation"
	jwttoken "sftgate/internal/jwt_token"
	"sftgate/internal/platform/config"
	"sftgate/internal/platform/database"
	"sftgate/internal/platform/health"
	"sftgate/internal/platform/logger"
	"sftgate/internal/platform/tablestore"
	"sftgate/internal/provisioning"
	registryhandler "sftgate/internal/registry/handler"
	registrymetrics "sftgate/internal/registry/metrics"
	registryservice "sftgate/internal/registry/service"
	registrystore "sftgate/internal/registry/store"
	"sftgate/internal/storage"
	httptransport "sftgate/internal/transport/http"
	"sftgate/pkg/platform/audit"
	"sftgate/pkg/platform/audit/publisher"
	"sftgate/pkg/platform/middleware/request"
	strutil "sftgate/pkg/platform/strings"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	log.Info("initializing sftgate",
		"addr", cfg.Addr,
		"container_prefix", cfg.ContainerPrefix,
		"postgres", cfg.PostgresURL != "",
	)

	// Registry store: postgres when configured, in-memory table store
	// otherwise.
	var regStore registrystore.Store
	var activityStore activity.Store
	pool, err := database.New(database.Config{
		URL:             cfg.PostgresURL,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: database.DefaultConfig().ConnMaxLifetime,
	})
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close()
		if err := database.Migrate(context.Background(), pool.DB()); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}
		regStore = registrystore.NewPostgres(pool.DB())
		activityStore = activity.NewPostgresStore(pool.DB())
	} else {
		regStore = registrystore.NewTable(tablestore.NewMemory())
		activityStore = activity.NewTableStore(tablestore.NewMemory())
	}

	blobs := storage.NewMemory()
	queue := provisioning.NewMemoryQueue()

	auditStore := audit.NewInMemoryStore()
	auditPub := publisher.New(auditStore, publisher.WithAsyncBuffer(cfg.AuditBufferSize), publisher.WithLogger(log))
	defer auditPub.Close()

	registry := registryservice.New(regStore, queue, cfg.ContainerPrefix,
		registryservice.WithLogger(log),
		registryservice.WithMetrics(registrymetrics.New()),
	)
	guard := access.NewGuard(registry, log, auditPub)

	activitySvc := activity.NewService(activityStore, log,
		activity.WithMetrics(activity.NewMetrics()))

	admission := validation.DefaultOptions()
	if cfg.MaxUploadSizeBytes > 0 {
		admission.MaxSizeBytes = cfg.MaxUploadSizeBytes
	}
	if len(cfg.AllowedExtensions) > 0 {
		admission.AllowedExtensions = strutil.DedupeAndTrimLower(cfg.AllowedExtensions)
	}
	files := fileservice.New(blobs, guard, activitySvc, admission,
		fileservice.WithLogger(log),
		fileservice.WithMetrics(filesmetrics.New()),
	)

	tokens := jwttoken.NewService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.TokenTTL)

	healthHandler := health.New(os.Getenv("SFTGATE_ENV"))
	if pool != nil {
		healthHandler.RegisterCheck("postgres", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
			defer cancel()
			return pool.Health(ctx)
		})
	}

	router := httptransport.NewRouter(httptransport.Config{
		Logger:         log,
		TokenValidator: jwttoken.NewAdapter(tokens),
		Files:          filehandler.New(files, guard, activitySvc, registry, log),
		Registry:       registryhandler.New(registry, log),
		Health:         healthHandler,
		Metrics:        request.NewMetrics(),
		RequestTimeout: cfg.RequestTimeout,
		// Multipart framing overhead on top of the upload limit.
		MaxBodyBytes: cfg.MaxUploadSizeBytes + (1 << 20),
	})

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	worker := provisioning.NewWorker(queue, regStore, blobs, auditPub, log,
		provisioning.WithPollInterval(cfg.ProvisionerDelay))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		err := worker.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/matiasleandrokruk/wccmcp/internal/api"
	"github.com/matiasleandrokruk/wccmcp/internal/domain/audit"
	"github.com/matiasleandrokruk/wccmcp/internal/domain/content"
	"github.com/matiasleandrokruk/wccmcp/internal/domain/resource"
	"github.com/matiasleandrokruk/wccmcp/internal/domain/tool"
	"github.com/matiasleandrokruk/wccmcp/internal/infra/config"
	"github.com/matiasleandrokruk/wccmcp/internal/infra/eventbus"
	"github.com/matiasleandrokruk/wccmcp/internal/infra/metrics"
	"github.com/matiasleandrokruk/wccmcp/internal/infra/sqlite"
	"github.com/matiasleandrokruk/wccmcp/internal/infra/wcc"
	"github.com/matiasleandrokruk/wccmcp/internal/server"
	"github.com/matiasleandrokruk/wccmcp/internal/stdio"
	"github.com/matiasleandrokruk/wccmcp/internal/version"
)

const shutdownTimeout = 10 * time.Second

// app is everything both front ends share.
type app struct {
	dispatcher *tool.Dispatcher
	resources  *resource.Catalog
	gatherer   prometheus.Gatherer
	logger     zerolog.Logger

	bus       *eventbus.Bus
	db        *sql.DB
	auditDone chan struct{}
}

func newApp(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*app, error) {
	client, err := wcc.NewClient(wcc.Options{
		BaseURL:  cfg.BaseURL,
		APIPath:  cfg.APIPath,
		Username: cfg.Username,
		Password: cfg.Password,
		Timeout:  cfg.Timeout,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	svc := content.NewService(client)

	registry, err := tool.NewCatalogRegistry(svc)
	if err != nil {
		return nil, fmt.Errorf("build tool catalog: %w", err)
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a := &app{gatherer: promReg, logger: logger, bus: eventbus.New()}

	var resOpts []resource.Option
	if cfg.AuditDBPath != "" {
		auditSvc, err := a.startAudit(ctx, cfg.AuditDBPath)
		if err != nil {
			a.close()
			return nil, err
		}
		resOpts = append(resOpts, resource.WithAudit(auditSvc))
	}

	a.dispatcher = tool.NewDispatcher(registry,
		tool.WithLogger(logger),
		tool.WithMetrics(metrics.NewToolMetrics(promReg)),
		tool.WithEventBus(a.bus),
	)
	a.resources = resource.NewCatalog(resource.ServerInfo{
		BaseURL:  cfg.BaseURL,
		APIPath:  cfg.APIPath,
		Username: cfg.Username,
		Timeout:  cfg.Timeout,
		Version:  version.Version,
	}, registry, svc, resOpts...)

	logger.Info().
		Str("endpoint", client.Endpoint()).
		Int("tools", registry.Len()).
		Bool("audit", cfg.AuditDBPath != "").
		Msg("adapter ready")
	return a, nil
}

// startAudit opens the audit database and subscribes the writer to invocation events.
func (a *app) startAudit(ctx context.Context, path string) (*audit.Service, error) {
	db, err := sqlite.NewDB(path)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	applied, err := sqlite.MigrateUp(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate audit db: %w", err)
	}
	schema, err := sqlite.SchemaVersion(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	a.db = db
	a.logger.Info().
		Str("path", path).
		Int("schema_version", schema).
		Ints("migrations_applied", applied).
		Msg("audit db ready")

	svc := audit.NewService(db, a.logger)
	events := a.bus.Subscribe(eventbus.TopicToolInvoked)
	a.auditDone = make(chan struct{})
	go func() {
		defer close(a.auditDone)
		svc.Consume(ctx, events)
	}()
	return svc, nil
}

// close stops event delivery, waits for pending audit writes and closes the database.
func (a *app) close() {
	a.bus.Close()
	if a.auditDone != nil {
		<-a.auditDone
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error().Err(err).Msg("close audit db")
		}
	}
	if n := a.bus.Dropped(); n > 0 {
		a.logger.Warn().Uint64("dropped", n).Msg("invocation events dropped")
	}
}

func serve(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	if cfg.HTTPMode {
		return a.serveHTTP(ctx, cfg)
	}
	return stdio.NewServer(a.dispatcher, a.resources, logger).Serve(ctx)
}

func (a *app) serveHTTP(ctx context.Context, cfg config.Config) error {
	router := api.NewRouter(api.RouterConfig{
		Path:       cfg.HTTPPath,
		JWTSecret:  cfg.JWTSecret,
		Dispatcher: a.dispatcher,
		Resources:  a.resources,
		Gatherer:   a.gatherer,
		Logger:     a.logger,
	})

	srvCfg := server.DefaultConfig()
	srvCfg.Addr = cfg.ListenAddr()
	if cfg.Timeout > 0 && cfg.Timeout+30*time.Second > srvCfg.WriteTimeout {
		srvCfg.WriteTimeout = cfg.Timeout + 30*time.Second
	}
	srv := server.NewServer(router, srvCfg, a.logger)
	if err := srv.Listen(); err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		a.logger.Warn().Msg("bearer auth disabled; set MCP_HTTP_JWT_SECRET to require tokens")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

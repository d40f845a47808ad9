package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jwalitptl/hospital-dashboard/internal/config"
	apptHandler "github.com/jwalitptl/hospital-dashboard/internal/handler/appointment"
	cityHandler "github.com/jwalitptl/hospital-dashboard/internal/handler/city"
	"github.com/jwalitptl/hospital-dashboard/internal/handler/dashboard"
	"github.com/jwalitptl/hospital-dashboard/internal/handler/health"
	userHandler "github.com/jwalitptl/hospital-dashboard/internal/handler/user"
	"github.com/jwalitptl/hospital-dashboard/internal/middleware"
	"github.com/jwalitptl/hospital-dashboard/internal/repository"
	"github.com/jwalitptl/hospital-dashboard/internal/repository/rest"
	"github.com/jwalitptl/hospital-dashboard/internal/router"
	"github.com/jwalitptl/hospital-dashboard/internal/service/appointment"
	"github.com/jwalitptl/hospital-dashboard/internal/service/auth"
	"github.com/jwalitptl/hospital-dashboard/internal/service/city"
	"github.com/jwalitptl/hospital-dashboard/internal/service/rbac"
	"github.com/jwalitptl/hospital-dashboard/internal/session"
	"github.com/jwalitptl/hospital-dashboard/pkg/logger"
	"github.com/jwalitptl/hospital-dashboard/pkg/messaging"
	"github.com/jwalitptl/hospital-dashboard/pkg/messaging/redis"
	"github.com/jwalitptl/hospital-dashboard/pkg/metrics"
)

func runServer(parent context.Context, configPath string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.NewLogger(&logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Output: os.Stdout,
		JSON:   cfg.Log.JSON,
	})
	log.SetGlobal()
	if log.ZL.GetLevel() > logger.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New("dashboard", reg)

	// Initialize backend clients
	backend := rest.NewClient(cfg.Backend.ToClientConfig(), m, log)
	var cityRepo repository.CityRepository
	if cfg.Cities.SourceURL != "" {
		cityClient := rest.NewClient(rest.Config{Name: "city-source", Timeout: 5 * time.Second}, m, log)
		cityRepo = rest.NewCityRepository(cityClient, cfg.Cities.SourceURL)
	}

	// Session store and invalidation broker
	var (
		store  session.Store
		broker messaging.Broker
		deps   = map[string]health.Pinger{}
	)
	if cfg.UsesRedis() {
		client, err := redis.NewClient(ctx, cfg.Redis.ToBrokerConfig())
		if err != nil {
			return err
		}
		defer client.Close()
		store = session.NewRedisStore(client, cfg.Session.TTL)
		broker = redis.NewRedisBroker(client, log)
		deps["redis"] = health.PingFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() })
	} else {
		store = session.NewMemoryStore(cfg.Session.TTL)
		broker = messaging.NewMemoryBroker()
	}
	defer broker.Close()

	// Initialize services
	authSvc := auth.NewService(rest.NewUserRepository(backend), store, rbac.NewProjector(log), m, log)
	apptSvc := appointment.NewService(
		rest.NewAppointmentRepository(backend),
		rest.NewDoctorRepository(backend),
		broker,
		authSvc,
		m,
		log,
		appointment.Config{
			FirstHour:       cfg.Calendar.FirstHour,
			LastHour:        cfg.Calendar.LastHour,
			Location:        cfg.Calendar.Location(),
			ReloadAfterBulk: cfg.Calendar.ReloadAfterBulk,
			SearchDelay:     cfg.Search.Debounce,
			ViewTTL:         cfg.Session.TTL,
		},
	)
	authSvc.OnTeardown(apptSvc.Forget)
	citySvc := city.NewService(cityRepo, log, city.Config{
		MaxResults:  cfg.Cities.MaxResults,
		Delay:       cfg.Cities.Debounce,
		FallbackTTL: cfg.Cities.FallbackTTL,
	})

	go func() {
		if err := apptSvc.Listen(ctx); err != nil {
			log.Error(err, "invalidation listener stopped")
		}
	}()
	go citySvc.Load(ctx)

	// Setup router
	authMiddleware := middleware.NewAuthMiddleware(authSvc)
	cors := middleware.DefaultCORSConfig()
	if len(cfg.Server.AllowedOrigins) > 0 {
		cors.AllowOrigins = cfg.Server.AllowedOrigins
	}
	r := router.NewRouter(authMiddleware, router.Handlers{
		Health:      health.NewHandler(deps),
		City:        cityHandler.NewHandler(citySvc),
		Dashboard:   dashboard.NewHandler(),
		Appointment: apptHandler.NewHandler(apptSvc, authMiddleware),
		User:        userHandler.NewHandler(authSvc),
	}, router.RouterConfig{
		RateEnabled:    cfg.RateLimit.Enabled,
		RateLimit:      cfg.RateLimit.RPS,
		RateBurst:      cfg.RateLimit.Burst,
		RequestTimeout: cfg.Server.RequestTimeout,
		CORSConfig:     cors,
		MetricsPrefix:  "dashboard_http",
		Registry:       reg,
	})
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", srv.Addr, "session_driver", cfg.Session.Driver, "timezone", cfg.Calendar.Timezone)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exited properly")
	return nil
}

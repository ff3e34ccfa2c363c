package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"google.golang.org/grpc"

	"leadscout/config"
	_ "leadscout/docs"
	"leadscout/handlers"
	"leadscout/internal/app"
	"leadscout/internal/health"
	"leadscout/internal/worker"
	"leadscout/middleware"
)

const (
	healthInterval  = 15 * time.Second
	shutdownTimeout = 30 * time.Second
)

// @title LeadScout API
// @version 1.0
// @description Finds local businesses with communication problems in their reviews and prepares outreach.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log := config.InitLogger(cfg.Logging.Level, cfg.Logging.Format)
	if cfg.EnvFile != "" {
		log.WithField("file", cfg.EnvFile).Debug("Loaded environment file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	components, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize components")
	}

	// Searches outlive the request that started them, so jobs run on a
	// context that is only cancelled after the dispatcher drains.
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()
	dispatcher := worker.NewDispatcher(cfg.Worker.Count, cfg.Worker.QueueSize, log.WithField("component", "dispatcher"))
	dispatcher.Run(jobCtx)

	checker := health.New(components.Store, log.WithField("component", "health"))
	go checker.Watch(ctx, healthInterval)

	var grpcServer *grpc.Server
	if cfg.GRPC.Port != 0 {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPC.Port))
		if err != nil {
			log.WithError(err).Fatal("Failed to listen for gRPC health")
		}
		grpcServer = grpc.NewServer()
		checker.Register(grpcServer)
		go func() {
			log.WithField("port", cfg.GRPC.Port).Info("Starting gRPC health server")
			if err := grpcServer.Serve(lis); err != nil {
				log.WithError(err).Error("gRPC health server stopped")
			}
		}()
	}

	h := handlers.NewApplicationHandler(
		components.Live,
		components.Analyzer,
		components.Scripts,
		components.Pipeline,
		dispatcher,
		components.Store,
		log,
	)

	fiberApp := fiber.New(fiber.Config{
		AppName:               "leadscout",
		ErrorHandler:          handlers.ErrorHandler,
		DisableStartupMessage: true,
	})

	// Middleware
	fiberApp.Use(recover.New())
	fiberApp.Use(cors.New(cors.Config{
		// The function endpoints carry their own CORS policy.
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), handlers.FunctionsPrefix)
		},
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	fiberApp.Use(middleware.RequestLogger(log))
	fiberApp.Use(middleware.Metrics())

	fiberApp.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	fiberApp.Get("/swagger/*", fiberSwagger.WrapHandler)
	h.RegisterRoutes(fiberApp)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		log.WithField("addr", addr).Info("Starting LeadScout API")
		if err := fiberApp.Listen(addr); err != nil {
			log.WithError(err).Error("HTTP server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")
	checker.Shutdown()

	if err := fiberApp.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.WithError(err).Warn("HTTP shutdown did not complete cleanly")
	}
	dispatcher.Stop()
	cancelJobs()
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	if err := components.Close(); err != nil {
		log.WithError(err).Warn("Error closing components")
	}
	log.Info("Shutdown complete")
}

package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/shutterbin/image-service/internal/api"
	handlers "github.com/shutterbin/image-service/internal/api/handlers/image"
	"github.com/shutterbin/image-service/internal/api/middleware"
	"github.com/shutterbin/image-service/internal/configuration"
	"github.com/shutterbin/image-service/internal/events"
	"github.com/shutterbin/image-service/internal/provider"
	"github.com/shutterbin/image-service/internal/scan"
	"github.com/shutterbin/image-service/internal/store"
)

func main() {
	cfg := configuration.Load()

	p := buildProvider(cfg)
	st := buildStore(cfg)

	// NATS is optional; without a URL the service runs, it just stays quiet.
	if cfg.NATSURL != "" {
		if err := events.Connect(cfg.NATSURL); err != nil {
			log.Printf("Warning: Failed to connect to NATS: %v", err)
			log.Println("Continuing without event publishing...")
		}
	}

	var scanner *scan.Scanner
	if cfg.CLAMAVURL != "" {
		scanner = scan.New(cfg.CLAMAVURL, st, p)
		log.Println("Virus scanning enabled via", cfg.CLAMAVURL)
	}

	if cfg.Tracing.Enabled {
		tracer.Start(tracer.WithService(cfg.Tracing.Service))
		defer tracer.Stop()
	}

	setupGracefulShutdown(st)

	r := gin.Default()
	if cfg.Tracing.Enabled {
		r.Use(gintrace.Middleware(cfg.Tracing.Service))
	}

	h := handlers.New(st, p, scanner)
	limiter := middleware.NewFixedWindowLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	api.RegisterRoutes(r, h, limiter)

	// Local files are also reachable directly, matching the raw URLs the
	// local provider hands out.
	if local, ok := p.(*provider.LocalProvider); ok {
		r.Static("/uploads", local.Dir())
	}

	addr := ":" + cfg.Server.Port
	log.Println("Server starting on", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func buildProvider(cfg *configuration.Config) provider.Provider {
	switch cfg.Provider.Variant {
	case "remote":
		p, err := provider.NewRemote(provider.RemoteConfig{
			Endpoint:  cfg.Provider.MinIO.Endpoint,
			AccessKey: cfg.Provider.MinIO.AccessKey,
			SecretKey: cfg.Provider.MinIO.SecretKey,
			Bucket:    cfg.Provider.MinIO.Bucket,
			UseSSL:    cfg.Provider.MinIO.UseSSL,
		})
		if err != nil {
			log.Fatalf("Failed to initialize remote storage: %v", err)
		}
		log.Println("Using remote storage at", cfg.Provider.MinIO.Endpoint)
		return p
	case "local":
		p, err := provider.NewLocal(cfg.Provider.UploadDir)
		if err != nil {
			log.Fatalf("Failed to initialize local storage: %v", err)
		}
		log.Println("Using local storage in", cfg.Provider.UploadDir)
		return p
	default:
		log.Fatalf("Unknown storage provider: %s", cfg.Provider.Variant)
		return nil
	}
}

func buildStore(cfg *configuration.Config) store.Store {
	switch cfg.Store.Driver {
	case "postgres":
		st, err := store.NewPostgres(cfg.Store.Database.ConnectionString())
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		log.Println("Using postgres metadata store")
		return st
	case "memory":
		log.Println("Using in-memory metadata store")
		return store.NewMemory()
	default:
		log.Fatalf("Unknown store driver: %s", cfg.Store.Driver)
		return nil
	}
}

func setupGracefulShutdown(st store.Store) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Shutting down gracefully...")
		if closer, ok := st.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				log.Printf("Warning: Failed to close store: %v", err)
			}
		}
		events.Close()
		os.Exit(0)
	}()
}

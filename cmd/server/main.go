package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"hopmap/internal/codec"
	"hopmap/internal/config"
	"hopmap/internal/handler"
	"hopmap/internal/hub"
	"hopmap/internal/repository/sqlite"
	"hopmap/internal/service"
	"hopmap/internal/watcher"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Config file path (default: search HOPMAP_CONFIG and standard locations)")
	addr := flag.String("addr", "", "HTTP listen address (overrides server.addr)")
	dbPath := flag.String("db", "", "SQLite database path (overrides server.db_path)")
	topologyPath := flag.String("topology", "", "JSON or YAML topology file (overrides the config's topology)")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting hopmap server...")

	cfg, path, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if path != "" {
		log.Printf("Config loaded: %s", path)
	} else {
		log.Println("No config file found, using the reference topology")
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Server.DBPath = *dbPath
	}
	if *topologyPath != "" {
		spec, err := codec.LoadFile(*topologyPath)
		if err != nil {
			log.Fatalf("Failed to load topology: %v", err)
		}
		cfg.Topology = *spec
		log.Printf("Topology loaded: %s", *topologyPath)
	}

	topo, err := config.NewTopology(cfg.Topology)
	if err != nil {
		log.Fatalf("Invalid topology: %v", err)
	}
	log.Print(cfg.Summary())

	// Initialize SQLite repository
	repo, err := sqlite.New(cfg.Server.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer repo.Close()
	log.Printf("Database opened: %s", cfg.Server.DBPath)

	eventBus := service.NewEventBus()
	sseHub := hub.New()
	stateSvc := service.NewStateService(repo, topo, eventBus, cfg.Server.MinLoad, cfg.Server.MaxLoad)

	// Setup routes
	mux := http.NewServeMux()
	handler.NewSyncHandler(stateSvc).Register(mux)
	mux.Handle("GET /events", sseHub)
	mux.Handle("GET /metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler.Chain(mux, handler.Recover, handler.CORS, handler.Logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // SSE streams stay open
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return sseHub.Run(ctx) })
	g.Go(func() error { return sseHub.Forward(ctx, eventBus) })

	if cfg.Server.Watch {
		// watch whichever file the topology came from
		watchPath, reloader := path, watcher.NewTopologyReloader(path, stateSvc)
		if *topologyPath != "" {
			watchPath, reloader = *topologyPath, watcher.NewTopologyFileReloader(*topologyPath, stateSvc)
		}
		if watchPath != "" {
			g.Go(func() error { return watcher.New(watchPath, reloader.OnChange).Watch(ctx) })
		}
	}

	g.Go(func() error {
		log.Printf("Server listening on %s (submissions on POST %s)", cfg.Server.Addr, topo.EndpointPath())
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Println("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Printf("Server error: %v", err)
		repo.Close()
		os.Exit(1)
	}
	log.Println("Server stopped")
}

// loadConfig reads the config at path, or searches the standard locations
// when path is empty
func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

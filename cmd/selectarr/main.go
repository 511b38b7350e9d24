package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/selectarr/selectarr/internal/config"
	"github.com/selectarr/selectarr/internal/database"
	"github.com/selectarr/selectarr/internal/logging"
	"github.com/selectarr/selectarr/internal/maintenance"
	"github.com/selectarr/selectarr/internal/sidecar"
	"github.com/selectarr/selectarr/internal/subtitles"
	"github.com/selectarr/selectarr/internal/web"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// CLI flags
var (
	port        int
	bind        string
	allowSubnet string
	dbPath      string
	verbosity   int

	// Timeout flags (advanced)
	httpTimeout      time.Duration
	websocketPing    time.Duration
	selectionTimeout time.Duration
)

func main() {
	// Optional .env for container/dev setups; absence is not an error.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "selectarr",
		Short: "Selectarr - Playback track selection server",
		Long:  `Selectarr is a playback companion server that picks audio tracks and subtitles for player devices based on per-user language policies.`,
		RunE:  run,
	}

	rootCmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP server port (required, or set PORT env var)")
	rootCmd.Flags().StringVarP(&bind, "bind", "b", "", "IP address to bind to (e.g., 127.0.0.1, 0.0.0.0)")
	rootCmd.Flags().StringVarP(&allowSubnet, "allow-subnet", "a", "", "CIDR subnet allowed to connect (e.g., 192.168.1.0/24)")
	rootCmd.Flags().StringVarP(&dbPath, "db", "d", "./selectarr.db", "SQLite database path (or set DB_PATH env var)")
	rootCmd.Flags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v debug, -vv trace)")

	rootCmd.Flags().DurationVar(&httpTimeout, "http-timeout", 15*time.Second, "Timeout for HTTP client requests to subtitle providers")
	rootCmd.Flags().DurationVar(&websocketPing, "websocket-ping", 30*time.Second, "Interval between WebSocket keepalive pings")
	rootCmd.Flags().DurationVar(&selectionTimeout, "selection-timeout", 20*time.Second, "Timeout for a single selection run including provider lookups")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("selectarr %s (commit: %s, built: %s)\n", version, commit, date)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// Check for PORT env var if flag not set
	if port == 0 {
		if envPort := os.Getenv("PORT"); envPort != "" {
			if _, err := fmt.Sscanf(envPort, "%d", &port); err != nil {
				return fmt.Errorf("invalid PORT environment variable %q: %w", envPort, err)
			}
		}
	}

	// Check for DB_PATH env var if using default
	if dbPath == "./selectarr.db" {
		if envDB := os.Getenv("DB_PATH"); envDB != "" {
			dbPath = envDB
		}
	}

	if port == 0 {
		return fmt.Errorf("--port flag or PORT environment variable is required")
	}

	if bind != "" {
		if ip := net.ParseIP(bind); ip == nil {
			return fmt.Errorf("invalid bind address: %s", bind)
		}
	}

	var allowedNet *net.IPNet
	if allowSubnet != "" {
		_, parsedNet, err := net.ParseCIDR(allowSubnet)
		if err != nil {
			return fmt.Errorf("invalid allow-subnet CIDR: %s", allowSubnet)
		}
		allowedNet = parsedNet
	}

	config.SetGlobalTimeouts(&config.TimeoutConfig{
		HTTPClient:    httpTimeout,
		WebSocketPing: websocketPing,
		Selection:     selectionTimeout,
	})

	// Warn if binding to all interfaces without an allow list
	if (bind == "" || bind == "0.0.0.0" || bind == "::") && allowSubnet == "" {
		log.Warn().Msg("Server is accessible from all interfaces without subnet restrictions. Consider using --bind or --allow-subnet for security.")
	}

	// Initialize database
	db, err := database.New(dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}
	if err := db.InitializeDefaults(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize default settings")
	}

	// Logging: level from verbosity flags, rotation settings from the DB.
	loader := config.NewLoader(db)
	logging.Apply(levelForVerbosity(verbosity), loader, logging.FilePathForDB(dbPath))

	log.Info().
		Str("version", version).
		Int("port", port).
		Str("bind", bind).
		Str("allow_subnet", allowSubnet).
		Str("database", dbPath).
		Msg("Starting Selectarr")

	// Subtitle provider (optional, configured in settings)
	var provider *subtitles.Provider
	providerURL := loader.String("provider.base_url", "")
	if providerURL != "" {
		provider = subtitles.NewProvider(
			providerURL,
			loader.String("provider.api_key", ""),
			loader.Int("provider.max_results", subtitles.DefaultMaxResults),
		)
		log.Info().Str("url", providerURL).Msg("Subtitle provider configured")
	}

	// Sidecar watcher (optional, configured in settings)
	var sidecarWatcher *sidecar.Watcher
	if loader.Bool("sidecar.enabled", false) {
		sidecarPath := loader.String("sidecar.path", "")
		if sidecarPath == "" {
			log.Warn().Msg("Sidecar watching enabled but sidecar.path is not set")
		} else if sidecarWatcher, err = sidecar.NewWatcher(sidecarPath); err != nil {
			log.Warn().Err(err).Msg("Failed to initialize sidecar watcher")
			sidecarWatcher = nil
		} else if err := sidecarWatcher.Start(); err != nil {
			log.Warn().Err(err).Str("path", sidecarPath).Msg("Failed to start sidecar watcher")
			sidecarWatcher = nil
		} else {
			defer sidecarWatcher.Stop()
		}
	}

	// NewServer takes interfaces; hand it typed nils only when configured.
	var server *web.Server
	switch {
	case provider != nil && sidecarWatcher != nil:
		server = web.NewServer(db, port, bind, allowedNet, provider, sidecarWatcher)
	case provider != nil:
		server = web.NewServer(db, port, bind, allowedNet, provider, nil)
	case sidecarWatcher != nil:
		server = web.NewServer(db, port, bind, allowedNet, nil, sidecarWatcher)
	default:
		server = web.NewServer(db, port, bind, allowedNet, nil, nil)
	}

	// Scheduled history pruning
	maintenanceMgr := maintenance.NewManager(db)
	if err := maintenanceMgr.Start(); err != nil {
		log.Warn().Err(err).Msg("Failed to start maintenance scheduler")
	} else {
		defer maintenanceMgr.Stop()
	}

	// Graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}

	log.Info().Msg("Selectarr stopped")
	return nil
}

func levelForVerbosity(verbosity int) string {
	switch verbosity {
	case 0:
		return "info"
	case 1:
		return "debug"
	default: // 2+
		return "trace"
	}
}

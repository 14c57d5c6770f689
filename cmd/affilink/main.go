package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/affilink/internal/app"
	"github.com/ternarybob/affilink/internal/common"
	"github.com/ternarybob/affilink/internal/server"
)

var (
	configFile   = flag.String("config", "", "Configuration file path")
	configFileC  = flag.String("c", "", "Configuration file path (shorthand)")
	serverPort   = flag.Int("port", 0, "Server port (overrides config)")
	serverHost   = flag.String("host", "", "Server host (overrides config)")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Affilink version %s\n", common.GetVersion())
		os.Exit(0)
	}

	// Startup sequence: load config, apply CLI overrides, init logger, banner
	configPath := *configFile
	if configPath == "" {
		configPath = *configFileC
	}
	if configPath == "" {
		if _, err := os.Stat("affilink.toml"); err == nil {
			configPath = "affilink.toml"
		}
	}

	config, err := common.LoadFromFile(configPath)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		os.Exit(1)
	}

	if *serverPort != 0 {
		config.Server.Port = *serverPort
	}
	if *serverHost != "" {
		config.Server.Host = *serverHost
	}

	common.InstallCrashHandler("")
	defer common.RecoverWithCrashFile()

	logger := common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	logger.Info().
		Str("version", common.GetFullVersion()).
		Str("environment", config.Environment).
		Msg("Starting Affilink")

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}

	if err := application.MaintenanceService.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start maintenance scheduler")
		os.Exit(1)
	}

	httpServer := server.New(application)

	errChan := make(chan error, 1)
	common.SafeGo(logger, "http-server", func() {
		errChan <- httpServer.Start()
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logger.Error().Err(err).Msg("Server error")
		}
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown error")
	}
	if err := application.Close(); err != nil {
		logger.Error().Err(err).Msg("Failed to close application resources")
	}

	logger.Info().Msg("Affilink stopped")
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/pizza-dough/internal/application"
	"github.com/eugenenazirov/pizza-dough/internal/config"
	"github.com/eugenenazirov/pizza-dough/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("dough", "Pizza Dough Calculator - turns a head count into a dough recipe")

	serveCmd := kingpinApp.Command("serve", "Run the HTTP API and web UI").Default()
	configFile := serveCmd.Flag("config", "Path to YAML configuration file").String()
	port := serveCmd.Flag("port", "HTTP port exposed by the service").String()
	profileFile := serveCmd.Flag("profile", "Profile document (JSON or YAML) loaded at startup").String()
	logLevel := serveCmd.Flag("log-level", "Minimum log level (debug, info, warn, error)").String()
	rateLimitRPSFlag := serveCmd.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := serveCmd.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	computeCmd := kingpinApp.Command("compute", "Print the dough quantities for a head count")
	computeProfile := computeCmd.Flag("profile", "Profile document (JSON or YAML) with recipe and eater types").String()
	computeEaters := computeCmd.Flag("eater", "Eater count as NAME=COUNT, repeatable").Strings()
	computeHydration := computeCmd.Flag("hydration", "Water as a percentage of flour weight").Default("60").Int()
	computeNoLeftovers := computeCmd.Flag("no-leftovers", "Report zero leftover pizzas").Bool()
	computeLang := computeCmd.Flag("lang", "Language tag used to format numbers (defaults to the profile language)").String()
	computeJSON := computeCmd.Flag("json", "Print the result as JSON").Bool()

	switch kingpin.MustParse(kingpinApp.Parse(os.Args[1:])) {
	case computeCmd.FullCommand():
		logger, err := logging.New(logging.WithConsole())
		if err != nil {
			kingpinApp.Fatalf("failed to initialize logger: %v", err)
		}
		defer func() {
			_ = logger.Sync()
		}()

		err = runCompute(os.Stdout, computeOptions{
			ProfileFile: *computeProfile,
			Eaters:      *computeEaters,
			Hydration:   *computeHydration,
			NoLeftovers: *computeNoLeftovers,
			Lang:        *computeLang,
			JSON:        *computeJSON,
		}, logger)
		kingpinApp.FatalIfError(err, "compute")

	case serveCmd.FullCommand():
		overrides := &config.CLIOverrides{
			ConfigFile: *configFile,
		}
		if *port != "" {
			overrides.Port = port
		}
		if *profileFile != "" {
			overrides.ProfileFile = profileFile
		}
		if *logLevel != "" {
			overrides.LogLevel = logLevel
		}
		if *rateLimitRPSFlag >= 0 {
			overrides.RateLimitRPS = rateLimitRPSFlag
		}
		if *rateLimitBurstFlag >= 0 {
			overrides.RateLimitBurst = rateLimitBurstFlag
		}
		serve(overrides)
	}
}

func serve(overrides *config.CLIOverrides) {
	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("invalid log level: %v", err))
	}

	logger, err := logging.New(logging.WithLevel(level))
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}

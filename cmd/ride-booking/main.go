package main

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/hamza-safwan/mini-ride-booking/config"
	"github.com/hamza-safwan/mini-ride-booking/internal/app"
	"github.com/hamza-safwan/mini-ride-booking/pkg/logger"
)

var (
	helpFlag     = pflag.Bool("help", false, "Show help message")
	configPath   = pflag.String("config-path", "config.yaml", "Path to the config yaml file")
	logLevelFlag = pflag.String("log-level", "", "Overrides LOG_LEVEL (DEBUG, INFO, WARN, ERROR)")
)

func main() {
	pflag.Parse()
	if *helpFlag {
		config.PrintHelp()
		return
	}

	ctx := context.Background()
	log := logger.InitLogger("", logger.LevelDebug)

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		log.Error(ctx, "failed to configure application", err)
		config.PrintHelp()
		os.Exit(1)
	}

	if *logLevelFlag != "" {
		cfg.LogLevel = strings.ToUpper(*logLevelFlag)
	}
	if !logger.ValidateLogLevel(cfg.LogLevel) {
		log.Warn(ctx, "unknown log level, using DEBUG", "level", cfg.LogLevel)
	}

	// Printing configuration
	config.PrintConfig(cfg)

	log = logger.InitLogger(cfg.ServiceName, cfg.LogLevel)

	// Creating application
	application, err := app.NewApplication(ctx, *cfg, log)
	if err != nil {
		log.Error(ctx, "failed to init application", err)
		os.Exit(1)
	}

	// Running the application
	if err = application.Run(ctx); err != nil {
		log.Error(ctx, "failed to run application", err)
		os.Exit(1)
	}
}

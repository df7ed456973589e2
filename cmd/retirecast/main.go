package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/planwise/retirecast/internal/config"
	"github.com/planwise/retirecast/internal/projection"
	"github.com/planwise/retirecast/internal/server"
	"github.com/planwise/retirecast/pkg/constants"
	"github.com/planwise/retirecast/pkg/output"
	"github.com/planwise/retirecast/pkg/quotes"
	"github.com/planwise/retirecast/pkg/validation"
)

var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

// fetchPrices refreshes quotes for the profile's symbols, caching them in
// the local quote database. Failures degrade to stored prices.
func fetchPrices(logger *zap.Logger, profile *config.Profile, quoteURL, quoteAPIKey, cachePath string) quotes.PriceMap {
	symbols := profile.Symbols()
	if len(symbols) == 0 {
		return nil
	}

	var cache *quotes.Cache
	if cachePath != "" {
		var err error
		cache, err = quotes.OpenCache(cachePath)
		if err != nil {
			logger.Warn("failed to open quote cache",
				zap.String("op", "main"),
				zap.Error(err),
			)
		} else {
			defer func() { _ = cache.Close() }()
		}
	}

	client := quotes.NewClient(quoteURL, quoteAPIKey, cache, logger)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	prices, err := client.Fetch(ctx, symbols)
	if err != nil {
		logger.Warn("failed to fetch quotes, using stored prices",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return nil
	}
	return prices
}

func defaultCachePath() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(cacheDir, "retirecast", "quotes.db")
}

func main() {
	// Process command line flags first to get profile location
	profileLocation := flag.String("profile", constants.DefaultProfileFile, "path to profile file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	refreshPrices := flag.Bool("refresh-prices", false, "fetch current prices from the quote service before projecting")
	quoteURL := flag.String("quote-url", "", "base URL of the quote service")
	quoteAPIKey := flag.String("quote-api-key", "", "quote service API key; falls back to "+constants.QuoteAPIKeyEnv)
	serve := flag.Bool("serve", false, "run the HTTP API instead of a one-shot projection")
	serverConfig := flag.String("server-config", "", "path to server configuration file")
	flag.Parse()

	// Load the profile to get logging configuration
	profile, err := config.LoadProfile(*profileLocation)
	if err != nil && !*serve {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load profile at %s\", \"error\": \"%v\"}\n", *profileLocation, err)
		return
	}

	var loggingConfig config.LoggingConfig
	if profile != nil {
		loggingConfig = profile.Logging
	}

	if *serve {
		serveCfg, err := server.LoadConfig(*serverConfig)
		if err != nil {
			fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration\", \"error\": \"%v\"}\n", err)
			return
		}

		logger, err := initializeLogger(serveCfg.Logging, *logLevel)
		if err != nil {
			fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
			return
		}
		defer func() {
			_ = logger.Sync()
		}()

		handler := server.NewHandler(logger, serveCfg.UploadSizeBytes(), version, nil)
		logger.Info("listening",
			zap.String("op", "main"),
			zap.String("address", serveCfg.Address),
		)
		if err := http.ListenAndServe(serveCfg.Address, handler); err != nil {
			logger.Fatal("server exited",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		return
	}

	// Initialize logging based on profile and CLI override
	logger, err := initializeLogger(loggingConfig, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over profile)
	outputFormat := profile.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	// Validate the profile and display any warnings
	warnings := profile.ValidateProfile(time.Now().Year())
	for _, warning := range warnings {
		logger.Warn("Profile warning: "+warning,
			zap.String("op", "main"),
		)
	}

	var prices quotes.PriceMap
	if *refreshPrices {
		prices = fetchPrices(logger, profile, *quoteURL, *quoteAPIKey, defaultCachePath())
	}

	// Run the simulation to get the projection.
	snapshots, err := projection.Project(logger, *profile, prices)
	if err != nil {
		logger.Fatal("failed to compute projection",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// Handle output.
	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(snapshots)
	case constants.OutputFormatCSV:
		output.CsvFormat(snapshots)
	}
}

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lenderkit/covsim/internal/deal"
	"github.com/lenderkit/covsim/internal/engine"
	"github.com/lenderkit/covsim/pkg/constants"
	"github.com/lenderkit/covsim/pkg/report"
	"github.com/lenderkit/covsim/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// initializeLogger creates a zap logger based on deal-file configuration and CLI override
func initializeLogger(loggingConfig deal.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info" // Default to info level
	}

	// Parse log level
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

	// Determine output format
	format := loggingConfig.Format
	if format == "" {
		format = "json" // Default to JSON for production
	}

	// Configure encoder
	var config zap.Config
	switch format {
	case "console":
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	// Configure output file if specified
	if loggingConfig.OutputFile != "" {
		// Ensure the directory exists
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		// Test if we can create/write to the file
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		config.OutputPaths = []string{loggingConfig.OutputFile}
		config.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return config.Build()
}

func main() {
	// Process command line flags first to get the deal location
	dealLocation := flag.String("deal", constants.DefaultDealFile, "path to deal file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, summary")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	// Load the deal file to get logging configuration
	d, err := deal.LoadDeal(*dealLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load deal at %s\", \"error\": \"%v\"}\n", *dealLocation, err)
		return
	}

	// Initialize logging based on deal file and CLI override
	logger, err := initializeLogger(d.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over deal file)
	outputFormat := d.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty // Default to pretty format
	}

	err = validation.ValidateOutputFormat(outputFormat)
	if err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	// Apply deal-file defaults and convert percentages into fractions.
	err = d.Normalize()
	if err != nil {
		logger.Fatal("failed to normalize deal",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// Validate the deal and display any warnings
	result := d.Validate()
	for _, warning := range result.Warnings {
		logger.Warn("Deal warning: "+warning,
			zap.String("op", "main"),
		)
	}
	if !result.Valid() {
		for _, fieldError := range result.Errors {
			logger.Error(fieldError.Field+": "+fieldError.Message,
				zap.String("op", "main"),
			)
		}
		logger.Fatal(fmt.Sprintf("deal failed validation with %d errors", len(result.Errors)),
			zap.String("op", "main"),
		)
	}

	// Run the full credit analysis.
	results, err := engine.New(logger).Run(d)
	if err != nil {
		logger.Fatal("failed to run credit analysis",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// Handle output.
	switch outputFormat {
	case constants.OutputFormatPretty:
		report.PrettyFormat(results)
	case constants.OutputFormatSummary:
		report.SummaryFormat(results)
	}

}

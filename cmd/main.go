package main

import (
	"flag"
	"os"

	"github.com/richard-senior/knockouts/internal/logger"
	"github.com/richard-senior/knockouts/pkg/cache"
	"github.com/richard-senior/knockouts/pkg/dixoncoles"
	"github.com/richard-senior/knockouts/pkg/posterior"
	"github.com/richard-senior/knockouts/pkg/server"
	"github.com/richard-senior/knockouts/pkg/tools"
	"github.com/richard-senior/knockouts/pkg/transport"
)

func main() {
	posteriorLocation := flag.String("posterior", os.Getenv("KNOCKOUTS_POSTERIOR"), "Posterior samples file or http(s) URL")
	configPath := flag.String("config", "", "YAML configuration file")
	cachePath := flag.String("cache", "", "SQLite file caching posterior samples (default: in memory)")
	refresh := flag.Bool("refresh", false, "Ignore the cached posterior and reload it from its source")
	logPath := flag.String("log", "", "Log file (default: knockouts.log in the temp directory)")
	logLevel := flag.String("log-level", "info", "Minimum log level")
	flag.Parse()

	// stdout carries the protocol, so logs go to file before anything is logged
	logger.SetShowDateTime(true)
	if *logPath != "" {
		logger.SetLogFile(*logPath)
	}
	if err := logger.SetLogOutput('f'); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	level, err := logger.ParseLevel(*logLevel)
	if err != nil {
		logger.Fatal("Invalid log level", err)
	}
	logger.SetLevel(level)

	logger.Info("Starting knockouts MCP server")

	config := dixoncoles.DefaultConfig()
	if *configPath != "" {
		if config, err = dixoncoles.LoadConfig(*configPath); err != nil {
			logger.Fatal("Failed to load configuration", err)
		}
	}
	predictor, err := dixoncoles.NewPredictor(config)
	if err != nil {
		logger.Fatal("Invalid configuration", err)
	}

	var source posterior.Source
	if *posteriorLocation != "" {
		var samplesCache cache.Cache = cache.NewMemoryCache()
		if *cachePath != "" {
			sqliteCache, err := cache.OpenSQLite(*cachePath)
			if err != nil {
				logger.Fatal("Failed to open posterior cache", err)
			}
			defer sqliteCache.Close()
			samplesCache = sqliteCache
		}
		source = cache.NewCachedSource(posterior.NewSource(*posteriorLocation), samplesCache).WithRefresh(*refresh)
	} else {
		logger.Warn("No posterior configured, only rate based tools will work")
	}

	s := server.InitInstance(transport.NewStdioTransport())
	s.RegisterToolbox(tools.NewToolbox(predictor, source))

	if err := s.Start(); err != nil {
		logger.Error("Server error:", err)
		os.Exit(1)
	}

	logger.Info("MCP server shutting down")
}

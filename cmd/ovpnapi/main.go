package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"ovpnapi/internal/config"
	"ovpnapi/internal/country"
	"ovpnapi/internal/generator"
	"ovpnapi/internal/metrics"
	"ovpnapi/internal/monitor"
	"ovpnapi/internal/ovpn"
	"ovpnapi/internal/pipeline"
	"ovpnapi/pkg/logger"
	"ovpnapi/pkg/utils"
)

const (
	configFile = "ovpnapi.ini"
)

var (
	sha1ver   string
	buildTime string
	repoName  string
)

func main() {
	// Load configuration
	var warnings []error
	cfg, err := config.New(configFile, func(err error) { warnings = append(warnings, err) })
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg.LogLevel, cfg.LogFormat)
	appLogger.WithFields(logrus.Fields{
		"repo":  repoName,
		"build": sha1ver,
		"time":  buildTime,
	}).Info("Starting")
	for _, w := range warnings {
		appLogger.WithError(w).Warn("Using default configuration")
	}

	defer func() {
		if r := recover(); r != nil {
			appLogger.WithField("panic", r).Error("Unexpected failure")
			os.Exit(1)
		}
	}()

	m := metrics.New()
	runners := buildRunners(cfg, m, appLogger)
	convert := func() { runAll(runners, cfg, m, appLogger) }

	if !cfg.Watch {
		convert()
		return
	}

	mon := monitor.New(cfg.InputDir, cfg.WatchDelay, convert, appLogger)
	mon.RunNow()
	utils.CheckFatal(appLogger, mon.Start(), "Failed to start monitor")
	defer mon.Stop()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	appLogger.Info("Shutting down...")
}

// buildRunners wires the pipelines selected by cfg.Mode
func buildRunners(cfg *config.Config, m *metrics.Metrics, log *logrus.Logger) []pipeline.Runner {
	fs := afero.NewOsFs()
	dirs := pipeline.Dirs{
		Input:   cfg.InputDir,
		Extract: cfg.ExtractDir,
		API:     cfg.APIDir,
	}
	conv := pipeline.NewConverter(
		ovpn.NewParser(ovpn.DefaultValues()),
		country.NewTable(cfg.DefaultCountry),
		generator.New(generator.Global()),
	)

	var runners []pipeline.Runner
	if cfg.Mode == config.ModeArchive || cfg.Mode == config.ModeBoth {
		runners = append(runners, pipeline.NewArchivePipeline(fs, dirs, conv, m, log))
	}
	if cfg.Mode == config.ModeFlat || cfg.Mode == config.ModeBoth {
		runners = append(runners, pipeline.NewFlatPipeline(fs, dirs, conv, cfg.VendorMarker, m, log))
	}
	return runners
}

// runAll runs every pipeline in turn and exports metrics when configured
func runAll(runners []pipeline.Runner, cfg *config.Config, m *metrics.Metrics, log *logrus.Logger) {
	for _, r := range runners {
		report, err := r.Run()
		if err != nil {
			log.WithError(err).WithField("pipeline", r.Name()).Error("Pipeline failed")
			continue
		}

		entry := log.WithFields(report.Fields())
		if rerr := report.Err(); rerr != nil {
			entry = entry.WithField("errors", rerr.Error())
		}
		entry.Info("Pipeline finished")
	}

	if cfg.MetricsFile != "" {
		utils.CheckWarn(log, m.WriteTextfile(cfg.MetricsFile), "Failed to write metrics file")
	}
}

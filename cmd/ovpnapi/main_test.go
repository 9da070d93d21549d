package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ovpnapi/internal/config"
	"ovpnapi/internal/metrics"
	"ovpnapi/internal/pipeline"
)

func testConfig(t *testing.T, mode string) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Mode = mode
	cfg.InputDir = filepath.Join(root, "input")
	cfg.ExtractDir = filepath.Join(root, "extract")
	cfg.APIDir = filepath.Join(root, "api")
	cfg.MetricsFile = filepath.Join(root, "ovpnapi.prom")
	return cfg
}

func runnerNames(runners []pipeline.Runner) []string {
	var names []string
	for _, r := range runners {
		names = append(names, r.Name())
	}
	return names
}

func TestBuildRunners(t *testing.T) {
	log, _ := test.NewNullLogger()

	tests := map[string][]string{
		config.ModeArchive: {pipeline.NameArchive},
		config.ModeFlat:    {pipeline.NameFlat},
		config.ModeBoth:    {pipeline.NameArchive, pipeline.NameFlat},
	}

	for mode, want := range tests {
		t.Run(mode, func(t *testing.T) {
			runners := buildRunners(testConfig(t, mode), metrics.New(), log)
			assert.Equal(t, want, runnerNames(runners))
		})
	}
}

func TestRunAll_Flat(t *testing.T) {
	log, _ := test.NewNullLogger()
	cfg := testConfig(t, config.ModeFlat)
	require.NoError(t, os.MkdirAll(cfg.InputDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.InputDir, "a.ovpn"), []byte("remote 10.0.0.5 1194\n"), 0o644))

	m := metrics.New()
	runAll(buildRunners(cfg, m, log), cfg, m, log)

	_, err := os.Stat(filepath.Join(cfg.APIDir, "index.json"))
	assert.NoError(t, err)

	body, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(body), `ovpnapi_files_converted_total{pipeline="flat"} 1`)
}

func TestRunAll_MissingInputIsLogged(t *testing.T) {
	log, hook := test.NewNullLogger()
	cfg := testConfig(t, config.ModeArchive)

	m := metrics.New()
	runAll(buildRunners(cfg, m, log), cfg, m, log)

	require.NotNil(t, hook.LastEntry())
	found := false
	for _, e := range hook.AllEntries() {
		if e.Message == "Pipeline failed" {
			found = true
		}
	}
	assert.True(t, found)
}

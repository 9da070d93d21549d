package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"ovpnapi/internal/metrics"
	"ovpnapi/internal/scan"
	"ovpnapi/pkg/models"
)

// RandomName is the display name given to undeclared vendor profiles
const RandomName = "Random"

// FlatPipeline converts the profiles lying directly in the input
// directory into a single listing
type FlatPipeline struct {
	fs           afero.Fs
	dirs         Dirs
	conv         *Converter
	vendorMarker string
	metrics      *metrics.Metrics
	log          logrus.FieldLogger
}

// NewFlatPipeline creates a flat-file pipeline. Profiles whose file
// name contains vendorMarker and that declare no server get RandomName.
func NewFlatPipeline(fs afero.Fs, dirs Dirs, conv *Converter, vendorMarker string, m *metrics.Metrics, log logrus.FieldLogger) *FlatPipeline {
	return &FlatPipeline{
		fs:           fs,
		dirs:         dirs,
		conv:         conv,
		vendorMarker: strings.ToLower(vendorMarker),
		metrics:      m,
		log:          log.WithField("pipeline", NameFlat),
	}
}

// Name returns the pipeline name
func (p *FlatPipeline) Name() string {
	return NameFlat
}

// OutputFile is the aggregated listing path
func (p *FlatPipeline) OutputFile() string {
	return filepath.Join(p.dirs.API, IndexFile)
}

// Run converts every profile and overwrites the aggregated listing.
// Nothing is written when the input directory holds no profiles.
func (p *FlatPipeline) Run() (*Report, error) {
	started := time.Now()
	report := newReport(NameFlat)
	defer p.metrics.ObserveRun(NameFlat, started)

	names, err := scan.ListConfigs(p.fs, p.dirs.Input)
	if err != nil {
		return report, err
	}

	if len(names) == 0 {
		p.log.WithField("dir", p.dirs.Input).Info("No .ovpn files found in input directory")
		return report, nil
	}

	servers := make([]models.Wrapper, 0, len(names))
	for _, name := range names {
		content, err := afero.ReadFile(p.fs, filepath.Join(p.dirs.Input, name))
		if err != nil {
			report.FilesSkipped++
			report.absorb(fmt.Errorf("%s: %w", name, err))
			p.metrics.FilesSkipped.WithLabelValues(NameFlat).Inc()
			p.log.WithError(err).WithField("file", name).Error("Error processing file")
			continue
		}

		record := p.conv.Convert(content, p.fallbackName(name))
		servers = append(servers, models.Wrap(record))
		report.FilesConverted++
		p.metrics.FilesConverted.WithLabelValues(NameFlat).Inc()

		p.log.WithFields(logrus.Fields{
			"file":    name,
			"country": record.CountryLong,
			"ip":      record.IP,
		}).Info("Processed profile")
	}

	output := p.OutputFile()
	if err := WriteJSON(p.fs, output, servers); err != nil {
		return report, err
	}
	report.Outputs = append(report.Outputs, output)
	p.metrics.OutputsWritten.WithLabelValues(NameFlat).Inc()
	p.log.WithFields(logrus.Fields{
		"output":  output,
		"servers": len(servers),
	}).Info("Generated listing")

	return report, nil
}

// fallbackName picks the display name for a profile without a
// declared server
func (p *FlatPipeline) fallbackName(filename string) string {
	if p.vendorMarker != "" && strings.Contains(strings.ToLower(filename), p.vendorMarker) {
		return RandomName
	}
	return ""
}

package pipeline

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"ovpnapi/internal/archive"
	"ovpnapi/internal/metrics"
	"ovpnapi/internal/scan"
	"ovpnapi/pkg/models"
	"ovpnapi/pkg/utils"
)

// Dirs is the directory layout a pipeline works in
type Dirs struct {
	Input   string
	Extract string
	API     string
}

// ArchivePipeline converts every profile bundled in the archives of
// the input directory, writing one listing per archive
type ArchivePipeline struct {
	fs        afero.Fs
	dirs      Dirs
	extractor *archive.Extractor
	conv      *Converter
	metrics   *metrics.Metrics
	log       logrus.FieldLogger
}

// NewArchivePipeline creates an archive pipeline
func NewArchivePipeline(fs afero.Fs, dirs Dirs, conv *Converter, m *metrics.Metrics, log logrus.FieldLogger) *ArchivePipeline {
	return &ArchivePipeline{
		fs:        fs,
		dirs:      dirs,
		extractor: archive.NewExtractor(fs),
		conv:      conv,
		metrics:   m,
		log:       log.WithField("pipeline", NameArchive),
	}
}

// Name returns the pipeline name
func (p *ArchivePipeline) Name() string {
	return NameArchive
}

// Run processes the archives one at a time. Failures of a single
// archive or profile are logged and recorded in the report; only an
// unusable directory layout is returned as an error.
func (p *ArchivePipeline) Run() (*Report, error) {
	started := time.Now()
	report := newReport(NameArchive)
	defer p.metrics.ObserveRun(NameArchive, started)

	for _, dir := range []string{p.dirs.API, p.dirs.Extract} {
		if err := p.fs.MkdirAll(dir, 0o755); err != nil {
			return report, utils.WrapErrorf(err, "failed to create %s", dir)
		}
	}

	files, err := p.listArchives()
	if err != nil {
		return report, err
	}

	if len(files) == 0 {
		p.log.WithField("dir", p.dirs.Input).Info("No archives found in input directory")
		return report, nil
	}

	for _, file := range files {
		report.Archives++
		if err := p.processArchive(file, report); err != nil {
			report.ArchivesFailed++
			report.absorb(err)
			p.metrics.ArchivesFailed.Inc()
			p.log.WithError(err).WithField("archive", file).Error("Error processing archive")
		}
	}

	return report, nil
}

// listArchives returns the archive file names in the input directory
func (p *ArchivePipeline) listArchives() ([]string, error) {
	entries, err := afero.ReadDir(p.fs, p.dirs.Input)
	if err != nil {
		return nil, utils.WrapErrorf(err, "failed to read %s", p.dirs.Input)
	}

	var files []string
	for _, entry := range entries {
		if !entry.Mode().IsRegular() {
			continue
		}
		if _, ok := archive.Name(entry.Name()); ok {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}

// processArchive runs extract, discover, convert, persist and cleanup
// for one archive
func (p *ArchivePipeline) processArchive(file string, report *Report) error {
	name, _ := archive.Name(file)
	archivePath := filepath.Join(p.dirs.Input, file)
	extractPath := filepath.Join(p.dirs.Extract, name)
	outputFile := filepath.Join(p.dirs.API, name, IndexFile)
	log := p.log.WithField("archive", file)

	if err := p.extractor.Extract(archivePath, extractPath); err != nil {
		return utils.WrapErrorf(err, "failed to extract %s", file)
	}
	log.WithField("dest", extractPath).Info("Extracted archive")

	configs, err := scan.FindConfigs(p.fs, extractPath)
	if err != nil {
		return err
	}

	if len(configs) == 0 {
		report.ArchivesEmpty++
		p.metrics.ArchivesEmpty.Inc()
		log.Info("No .ovpn files found in archive")
		p.removeIfEmpty(extractPath, log)
		return nil
	}

	servers := make([]models.Wrapper, 0, len(configs))
	for _, rel := range configs {
		content, err := afero.ReadFile(p.fs, filepath.Join(extractPath, rel))
		if err != nil {
			report.FilesSkipped++
			report.absorb(fmt.Errorf("%s/%s: %w", file, rel, err))
			p.metrics.FilesSkipped.WithLabelValues(NameArchive).Inc()
			log.WithError(err).WithField("file", rel).Error("Error processing file")
			continue
		}

		record := p.conv.Convert(content, "")
		servers = append(servers, models.Wrap(record))
		report.FilesConverted++
		p.metrics.FilesConverted.WithLabelValues(NameArchive).Inc()

		log.WithFields(logrus.Fields{
			"file":    rel,
			"country": record.CountryLong,
			"ip":      record.IP,
		}).Info("Processed profile")
	}

	if err := WriteJSON(p.fs, outputFile, servers); err != nil {
		return err
	}
	report.Outputs = append(report.Outputs, outputFile)
	p.metrics.OutputsWritten.WithLabelValues(NameArchive).Inc()
	log.WithFields(logrus.Fields{
		"output":  outputFile,
		"servers": len(servers),
	}).Info("Generated listing")

	removed, err := scan.RemoveConfigs(p.fs, extractPath)
	if err != nil {
		return utils.WrapError(err, "failed to clean up extracted profiles")
	}
	log.WithFields(logrus.Fields{
		"dir":     extractPath,
		"removed": removed,
	}).Info("Removed extracted profiles")

	return nil
}

// removeIfEmpty drops a scratch directory that holds nothing
func (p *ArchivePipeline) removeIfEmpty(dir string, log logrus.FieldLogger) {
	empty, err := afero.IsEmpty(p.fs, dir)
	if utils.CheckWarn(log, err, "Failed to inspect scratch directory") || !empty {
		return
	}
	utils.CheckWarn(log, p.fs.Remove(dir), "Failed to remove scratch directory")
}

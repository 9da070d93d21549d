package pipeline

import (
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
)

// Pipeline names, also used as metric labels
const (
	NameArchive = "archive"
	NameFlat    = "flat"
)

// Runner is a conversion pipeline
type Runner interface {
	Name() string
	Run() (*Report, error)
}

// Report summarises one pipeline run. Failures absorbed during the
// run are collected rather than returned.
type Report struct {
	Pipeline       string
	Archives       int
	ArchivesFailed int
	ArchivesEmpty  int
	FilesConverted int
	FilesSkipped   int
	Outputs        []string

	errs *multierror.Error
}

func newReport(pipeline string) *Report {
	return &Report{Pipeline: pipeline}
}

func (r *Report) absorb(err error) {
	r.errs = multierror.Append(r.errs, err)
}

// Err returns every absorbed failure, or nil
func (r *Report) Err() error {
	return r.errs.ErrorOrNil()
}

// Fields returns the report as log fields
func (r *Report) Fields() logrus.Fields {
	fields := logrus.Fields{
		"pipeline":  r.Pipeline,
		"converted": r.FilesConverted,
		"skipped":   r.FilesSkipped,
		"outputs":   len(r.Outputs),
	}
	if r.Pipeline == NameArchive {
		fields["archives"] = r.Archives
		fields["archives_failed"] = r.ArchivesFailed
		fields["archives_empty"] = r.ArchivesEmpty
	}
	return fields
}

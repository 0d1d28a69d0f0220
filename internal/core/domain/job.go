package domain

import (
	"sync"

	"github.com/google/uuid"
)

type JobKind string

const (
	KindExport   JobKind = "export"
	KindSplitZip JobKind = "split_zip"
)

// Job is one unit of export work. The data fields are not modified after
// creation; the completion slot is fulfilled exactly once.
type Job struct {
	ID       string
	Kind     JobKind
	OrgID    string
	Config   ExportConfig
	SplitZip SplitZipConfig
	Headers  []string
	Rows     []Row

	once   sync.Once
	done   chan struct{}
	result Result
	err    error
}

func NewExportJob(cfg ExportConfig, headers []string, rows []Row) *Job {
	return &Job{
		ID:      uuid.New().String(),
		Kind:    KindExport,
		Config:  cfg.Normalize(),
		Headers: headers,
		Rows:    rows,
		done:    make(chan struct{}),
	}
}

func NewSplitZipJob(cfg SplitZipConfig, headers []string, rows []Row) *Job {
	normalized := cfg.Normalize()
	return &Job{
		ID:       uuid.New().String(),
		Kind:     KindSplitZip,
		Config:   normalized.ExportConfig,
		SplitZip: normalized,
		Headers:  headers,
		Rows:     rows,
		done:     make(chan struct{}),
	}
}

// Validate checks the configuration that applies to the job's kind.
func (j *Job) Validate() error {
	switch j.Kind {
	case KindExport:
		return j.Config.Validate()
	case KindSplitZip:
		return j.SplitZip.Validate()
	default:
		return ErrInvalidJobKind
	}
}

// Complete fulfils the completion slot. Only the first call has an effect;
// it reports whether this call was the one that completed the job.
func (j *Job) Complete(result Result, err error) bool {
	completed := false
	j.once.Do(func() {
		j.result = result
		j.err = err
		completed = true
		close(j.done)
	})
	return completed
}

// Done is closed once the job has been completed.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job is completed and returns its outcome.
func (j *Job) Wait() (Result, error) {
	<-j.done
	return j.result, j.err
}

package domain

// ExportNotification describes a finished export run for completion notifiers.
type ExportNotification struct {
	RunID      string
	JobID      string
	OrgID      string
	Kind       JobKind
	Status     ExportRunStatus
	OutputPath string
	RowCount   int
	PartCount  int
	ErrorMsg   string
}

func NewExportNotification(run ExportRun) *ExportNotification {
	n := &ExportNotification{
		RunID:      run.ID,
		JobID:      run.JobID,
		OrgID:      run.OrgID,
		Kind:       run.Kind,
		Status:     run.Status,
		OutputPath: run.OutputPath,
		RowCount:   run.RowCount,
		PartCount:  run.PartCount,
	}
	if run.ErrorMessage != nil {
		n.ErrorMsg = *run.ErrorMessage
	}
	return n
}

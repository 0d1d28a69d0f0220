package domain

type ExportResult struct {
	OutputPath string `json:"output_path"`
	RowCount   int    `json:"row_count"`
}

type SplitZipResult struct {
	OutputPath string   `json:"output_path"`
	TotalParts int      `json:"total_parts"`
	TotalRows  int      `json:"total_rows"`
	PartFiles  []string `json:"part_files"`
}

// PartResult is one encoded part of a split export, addressed by Index.
type PartResult struct {
	Index    int
	Name     string
	Data     []byte
	RowCount int
}

// Result holds exactly one of Export or SplitZip.
type Result struct {
	Export   *ExportResult   `json:"export,omitempty"`
	SplitZip *SplitZipResult `json:"split_zip,omitempty"`
}

func (r Result) OutputPath() string {
	switch {
	case r.Export != nil:
		return r.Export.OutputPath
	case r.SplitZip != nil:
		return r.SplitZip.OutputPath
	}
	return ""
}

func (r Result) RowCount() int {
	switch {
	case r.Export != nil:
		return r.Export.RowCount
	case r.SplitZip != nil:
		return r.SplitZip.TotalRows
	}
	return 0
}

func (r Result) PartCount() int {
	if r.SplitZip != nil {
		return r.SplitZip.TotalParts
	}
	return 0
}

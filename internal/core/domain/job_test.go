package domain

import (
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"
)

func TestCellText(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		expected string
	}{
		{name: "nil renders as <nil>", value: nil, expected: "<nil>"},
		{name: "string", value: "Alice", expected: "Alice"},
		{name: "empty string", value: "", expected: ""},
		{name: "bool true", value: true, expected: "true"},
		{name: "bool false", value: false, expected: "false"},
		{name: "int", value: 42, expected: "42"},
		{name: "negative int64", value: int64(-7), expected: "-7"},
		{name: "uint8", value: uint8(255), expected: "255"},
		{name: "integral float", value: 30.0, expected: "30"},
		{name: "fractional float", value: 1.5, expected: "1.5"},
		{name: "large float uses exponent", value: 1e6, expected: "1e+06"},
		{name: "huge float", value: 1e21, expected: "1e+21"},
		{name: "tiny float", value: 1e-7, expected: "1e-07"},
		{name: "float32 keeps its own precision", value: float32(0.1), expected: "0.1"},
		{name: "float32", value: float32(0.25), expected: "0.25"},
		{name: "json number kept verbatim", value: json.Number("3.10"), expected: "3.10"},
		{name: "max int64", value: int64(math.MaxInt64), expected: "9223372036854775807"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CellText(tt.value)
			if got != tt.expected {
				t.Errorf("CellText(%v) = %q; expected %q", tt.value, got, tt.expected)
			}
		})
	}
}

func TestExportConfigNormalize(t *testing.T) {
	cfg := ExportConfig{Workers: 0, ChunkSize: -3, OutputPath: "out.csv"}.Normalize()

	if cfg.Workers != DefaultWorkers {
		t.Errorf("Expected workers %d, got %d", DefaultWorkers, cfg.Workers)
	}
	if cfg.ChunkSize != DefaultChunkSize {
		t.Errorf("Expected chunk size %d, got %d", DefaultChunkSize, cfg.ChunkSize)
	}
	if cfg.Mode != ModeSync {
		t.Errorf("Expected mode %s, got %s", ModeSync, cfg.Mode)
	}
	if cfg.Format != FormatCSV {
		t.Errorf("Expected format %s, got %s", FormatCSV, cfg.Format)
	}

	explicit := ExportConfig{Mode: ModeParallel, Format: FormatXLSX, Workers: 8, ChunkSize: 2}.Normalize()
	if explicit.Workers != 8 || explicit.ChunkSize != 2 {
		t.Errorf("Positive values should be kept, got workers=%d chunk_size=%d", explicit.Workers, explicit.ChunkSize)
	}
}

func TestExportConfigValidate(t *testing.T) {
	tests := []struct {
		name     string
		config   ExportConfig
		expected error
	}{
		{
			name:     "Valid defaults",
			config:   NewExportConfig("out.csv"),
			expected: nil,
		},
		{
			name:     "Unsupported format",
			config:   ExportConfig{Mode: ModeSync, Format: "json", OutputPath: "out.json"},
			expected: ErrUnsupportedFormat,
		},
		{
			name:     "Unsupported mode",
			config:   ExportConfig{Mode: "turbo", Format: FormatCSV, OutputPath: "out.csv"},
			expected: ErrUnsupportedMode,
		},
		{
			name:     "Missing output path",
			config:   ExportConfig{Mode: ModeSync, Format: FormatCSV},
			expected: ErrMissingOutputPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expected == nil {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.expected) {
				t.Errorf("Expected error %v, got %v", tt.expected, err)
			}
			if !IsConfigError(err) {
				t.Errorf("Expected %v to be classified as a config error", err)
			}
		})
	}
}

func TestSplitZipConfigValidate(t *testing.T) {
	cfg := NewSplitZipConfig("out.zip")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected default split-zip config to be valid, got %v", err)
	}
	if !cfg.IncludeHeaders {
		t.Error("Expected headers to be included by default")
	}

	cfg.Zip = false
	if err := cfg.Validate(); !errors.Is(err, ErrSplitZipDisabled) {
		t.Errorf("Expected %v, got %v", ErrSplitZipDisabled, err)
	}

	cfg = NewSplitZipConfig("out.zip")
	cfg.Split = false
	if err := cfg.Validate(); !errors.Is(err, ErrSplitZipDisabled) {
		t.Errorf("Expected %v, got %v", ErrSplitZipDisabled, err)
	}
}

func TestNewExportJob(t *testing.T) {
	job := NewExportJob(ExportConfig{OutputPath: "out.csv"}, []string{"a"}, []Row{{1}})

	if job.ID == "" {
		t.Error("Job ID should not be empty")
	}
	if job.Kind != KindExport {
		t.Errorf("Expected kind %s, got %s", KindExport, job.Kind)
	}
	if job.Config.Workers != DefaultWorkers {
		t.Errorf("Expected config to be normalized, got workers=%d", job.Config.Workers)
	}
	if err := job.Validate(); err != nil {
		t.Errorf("Expected job to be valid, got %v", err)
	}
}

func TestNewSplitZipJobCarriesExportConfig(t *testing.T) {
	cfg := NewSplitZipConfig("out.zip")
	cfg.Mode = ModeParallel
	cfg.ChunkSize = 3

	job := NewSplitZipJob(cfg, nil, nil)

	if job.Kind != KindSplitZip {
		t.Errorf("Expected kind %s, got %s", KindSplitZip, job.Kind)
	}
	if job.Config.Mode != ModeParallel || job.Config.ChunkSize != 3 {
		t.Errorf("Expected dispatch config to mirror split-zip config, got %+v", job.Config)
	}
}

func TestJobCompleteOnce(t *testing.T) {
	job := NewExportJob(NewExportConfig("out.csv"), nil, nil)

	first := Result{Export: &ExportResult{OutputPath: "out.csv", RowCount: 1}}
	if !job.Complete(first, nil) {
		t.Fatal("Expected first Complete to fulfil the slot")
	}
	if job.Complete(Result{}, errors.New("late")) {
		t.Error("Expected second Complete to be ignored")
	}

	result, err := job.Wait()
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if result.RowCount() != 1 {
		t.Errorf("Expected row count 1, got %d", result.RowCount())
	}
}

func TestJobCompleteConcurrent(t *testing.T) {
	job := NewExportJob(NewExportConfig("out.csv"), nil, nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if job.Complete(Result{}, nil) {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if winners != 1 {
		t.Errorf("Expected exactly one winner, got %d", winners)
	}
	select {
	case <-job.Done():
	default:
		t.Error("Expected Done to be closed")
	}
}

func TestExportRunTransitions(t *testing.T) {
	job := NewSplitZipJob(NewSplitZipConfig("out.zip"), nil, nil)
	job.OrgID = "org-123"

	run := NewExportRun(job)
	if run.Status != RunStatusRunning {
		t.Errorf("Expected status %s, got %s", RunStatusRunning, run.Status)
	}
	if run.OrgID != "org-123" || run.JobID != job.ID {
		t.Errorf("Expected run to reference job and org, got %+v", run)
	}

	completed := run.WithCompleted(Result{SplitZip: &SplitZipResult{OutputPath: "out.zip", TotalParts: 3, TotalRows: 7}})
	if completed.Status != RunStatusCompleted || completed.EndTime == nil {
		t.Errorf("Expected completed run with end time, got %+v", completed)
	}
	if completed.RowCount != 7 || completed.PartCount != 3 {
		t.Errorf("Expected 7 rows in 3 parts, got %d rows in %d parts", completed.RowCount, completed.PartCount)
	}
	if completed.ID != run.ID {
		t.Error("Run ID must be preserved across transitions")
	}

	failed := run.WithFailed("boom")
	if failed.Status != RunStatusFailed || failed.ErrorMessage == nil || *failed.ErrorMessage != "boom" {
		t.Errorf("Expected failed run with message, got %+v", failed)
	}
}

func TestIsValidSchedule(t *testing.T) {
	tests := []struct {
		schedule string
		expected bool
	}{
		{"@daily", true},
		{"0 3 * * *", true},
		{"*/10 * * * *", true},
		{"0 0 12 * * *", false},
		{"invalid cron", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsValidSchedule(tt.schedule); got != tt.expected {
			t.Errorf("IsValidSchedule(%q) = %v; expected %v", tt.schedule, got, tt.expected)
		}
	}
}

func TestExportDefaultsApply(t *testing.T) {
	off := false
	defaults := ExportDefaults{Mode: ModeParallel, Format: FormatXLSX, Workers: 2, ChunkSize: 50, IncludeHeaders: &off}

	applied := defaults.Apply(ExportConfig{OutputPath: "out.xlsx"})
	if applied.Mode != ModeParallel || applied.Format != FormatXLSX {
		t.Errorf("Expected defaults for mode and format, got %s/%s", applied.Mode, applied.Format)
	}
	if applied.Workers != 2 || applied.ChunkSize != 50 {
		t.Errorf("Expected workers=2 chunk_size=50, got workers=%d chunk_size=%d", applied.Workers, applied.ChunkSize)
	}

	explicit := defaults.Apply(ExportConfig{Mode: ModeSync, Workers: 8, OutputPath: "out.csv"})
	if explicit.Mode != ModeSync || explicit.Workers != 8 {
		t.Errorf("Expected explicit values to win, got mode=%s workers=%d", explicit.Mode, explicit.Workers)
	}

	if defaults.HeadersIncluded(nil) {
		t.Error("Expected configured include_headers=false to apply")
	}
	on := true
	if !defaults.HeadersIncluded(&on) {
		t.Error("Expected explicit include_headers=true to win")
	}
	if !(ExportDefaults{}).HeadersIncluded(nil) {
		t.Error("Expected headers to be included when nothing is configured")
	}
}

func TestExportDefaultsValidate(t *testing.T) {
	if err := (ExportDefaults{}).Validate(); err != nil {
		t.Errorf("Expected empty defaults to be valid, got %v", err)
	}
	if err := (ExportDefaults{Format: "pdf"}).Validate(); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected %v, got %v", ErrUnsupportedFormat, err)
	}
	if err := (ExportDefaults{Mode: "turbo"}).Validate(); !errors.Is(err, ErrUnsupportedMode) {
		t.Errorf("Expected %v, got %v", ErrUnsupportedMode, err)
	}
}

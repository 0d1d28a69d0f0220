package domain

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

type ExportMode string

const (
	ModeSync       ExportMode = "sync"
	ModeParallel   ExportMode = "parallel"
	ModeGlobalPool ExportMode = "global_pool"
)

type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)

const (
	DefaultWorkers   = 4
	DefaultChunkSize = 10000
)

// Extension returns the file extension used for parts and default output names.
func (f ExportFormat) Extension() string {
	return string(f)
}

// Row is one ordered data record. Cells are scalars: string, number, bool or nil.
type Row []interface{}

// ExportConfig describes one export: execution strategy, parallelism and target.
type ExportConfig struct {
	Mode       ExportMode   `json:"mode" yaml:"mode"`
	Format     ExportFormat `json:"format" yaml:"format"`
	Workers    int          `json:"workers" yaml:"workers"`
	ChunkSize  int          `json:"chunk_size" yaml:"chunk_size"`
	OutputPath string       `json:"output_path" yaml:"output_path"`
}

func NewExportConfig(outputPath string) ExportConfig {
	return ExportConfig{
		Mode:       ModeSync,
		Format:     FormatCSV,
		Workers:    DefaultWorkers,
		ChunkSize:  DefaultChunkSize,
		OutputPath: outputPath,
	}
}

// Normalize replaces non-positive sizes and empty enums with their defaults.
func (c ExportConfig) Normalize() ExportConfig {
	normalized := c
	if normalized.Mode == "" {
		normalized.Mode = ModeSync
	}
	if normalized.Format == "" {
		normalized.Format = FormatCSV
	}
	if normalized.Workers <= 0 {
		normalized.Workers = DefaultWorkers
	}
	if normalized.ChunkSize <= 0 {
		normalized.ChunkSize = DefaultChunkSize
	}
	return normalized
}

func (c ExportConfig) Validate() error {
	if !IsValidMode(string(c.Mode)) {
		return fmt.Errorf("%w: %q", ErrUnsupportedMode, c.Mode)
	}
	if !IsValidFormat(string(c.Format)) {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, c.Format)
	}
	if c.OutputPath == "" {
		return ErrMissingOutputPath
	}
	return nil
}

// SplitZipConfig extends ExportConfig for partitioned output. Part size is ChunkSize.
type SplitZipConfig struct {
	ExportConfig   `yaml:",inline"`
	Split          bool `json:"split" yaml:"split"`
	Zip            bool `json:"zip" yaml:"zip"`
	IncludeHeaders bool `json:"include_headers" yaml:"include_headers"`
}

func NewSplitZipConfig(outputPath string) SplitZipConfig {
	return SplitZipConfig{
		ExportConfig:   NewExportConfig(outputPath),
		Split:          true,
		Zip:            true,
		IncludeHeaders: true,
	}
}

func (c SplitZipConfig) Normalize() SplitZipConfig {
	normalized := c
	normalized.ExportConfig = c.ExportConfig.Normalize()
	return normalized
}

func (c SplitZipConfig) Validate() error {
	if !c.Split || !c.Zip {
		return ErrSplitZipDisabled
	}
	return c.ExportConfig.Validate()
}

func IsValidMode(m string) bool {
	switch ExportMode(m) {
	case ModeSync, ModeParallel, ModeGlobalPool:
		return true
	default:
		return false
	}
}

func IsValidFormat(f string) bool {
	switch ExportFormat(f) {
	case FormatCSV, FormatXLSX:
		return true
	default:
		return false
	}
}

// IsValidSchedule accepts standard 5-field cron expressions and descriptors such as @daily.
func IsValidSchedule(s string) bool {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	_, err := parser.Parse(s)
	return err == nil
}

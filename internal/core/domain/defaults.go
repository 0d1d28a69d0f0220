package domain

// ExportDefaults fill in request fields the caller left unset.
type ExportDefaults struct {
	Mode           ExportMode   `json:"mode" yaml:"mode"`
	Format         ExportFormat `json:"format" yaml:"format"`
	Workers        int          `json:"workers" yaml:"workers"`
	ChunkSize      int          `json:"chunk_size" yaml:"chunk_size"`
	IncludeHeaders *bool        `json:"include_headers" yaml:"include_headers"`
}

// Apply copies each non-zero default into the matching zero field of cfg.
func (d ExportDefaults) Apply(cfg ExportConfig) ExportConfig {
	applied := cfg
	if applied.Mode == "" {
		applied.Mode = d.Mode
	}
	if applied.Format == "" {
		applied.Format = d.Format
	}
	if applied.Workers <= 0 {
		applied.Workers = d.Workers
	}
	if applied.ChunkSize <= 0 {
		applied.ChunkSize = d.ChunkSize
	}
	return applied
}

// HeadersIncluded resolves an optional include_headers flag: explicit value,
// then the configured default, then true.
func (d ExportDefaults) HeadersIncluded(explicit *bool) bool {
	if explicit != nil {
		return *explicit
	}
	if d.IncludeHeaders != nil {
		return *d.IncludeHeaders
	}
	return true
}

// Validate rejects defaults that name an unknown mode or format.
func (d ExportDefaults) Validate() error {
	if d.Mode != "" && !IsValidMode(string(d.Mode)) {
		return ErrUnsupportedMode
	}
	if d.Format != "" && !IsValidFormat(string(d.Format)) {
		return ErrUnsupportedFormat
	}
	return nil
}

package domain

import "errors"

var (
	ErrUnsupportedMode   = errors.New("unsupported export mode")
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrMissingOutputPath = errors.New("output path is required")
	ErrSplitZipDisabled  = errors.New("split and zip must both be enabled")
	ErrInvalidJobKind    = errors.New("invalid job kind")
	ErrPoolClosed        = errors.New("worker pool is shut down")
	ErrExportRunNotFound = errors.New("export run not found")
	ErrInvalidRunStatus  = errors.New("invalid export run status")
)

// IsConfigError reports whether err was caused by an invalid export configuration.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrUnsupportedMode) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrMissingOutputPath) ||
		errors.Is(err, ErrSplitZipDisabled) ||
		errors.Is(err, ErrInvalidJobKind)
}

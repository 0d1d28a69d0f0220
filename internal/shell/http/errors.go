package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"turbo-export/internal/core/domain"
)

// ErrorObject is one entry of a JSON:API error document.
type ErrorObject struct {
	Status string `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

type ErrorResponse struct {
	Errors []ErrorObject `json:"errors"`
}

// configErrorFields names the request field behind each configuration error.
var configErrorFields = []struct {
	err   error
	field string
}{
	{domain.ErrUnsupportedMode, "config.mode"},
	{domain.ErrUnsupportedFormat, "config.format"},
	{domain.ErrMissingOutputPath, "config.output_path"},
	{domain.ErrSplitZipDisabled, "config.split"},
	{domain.ErrInvalidJobKind, "kind"},
}

func respondWithErrors(w http.ResponseWriter, statusCode int, errs ...ErrorObject) {
	for i := range errs {
		if errs[i].Status == "" {
			errs[i].Status = strconv.Itoa(statusCode)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Errors: errs}); err != nil {
		log.Printf("[DEBUG] HTTP - failed to encode error response: %v", err)
	}
}

// respondWithExportError maps a failed export to a status code: invalid
// configuration is the caller's fault, a closed pool means the service is
// shutting down, and anything else happened while writing output.
func respondWithExportError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsConfigError(err):
		log.Printf("[DEBUG] HTTP export failed - invalid configuration: %v", err)
		respondWithErrors(w, http.StatusBadRequest, errorInvalidConfig(err))
	case errors.Is(err, domain.ErrPoolClosed):
		log.Printf("[DEBUG] HTTP export failed - shared pool closed")
		respondWithErrors(w, http.StatusServiceUnavailable, ErrorObject{
			Title:  "Export Pool Unavailable",
			Detail: "The shared worker pool is shutting down; retry against another instance",
		})
	default:
		log.Printf("[DEBUG] HTTP export failed - internal error: %v", err)
		respondWithErrors(w, http.StatusInternalServerError, ErrorObject{
			Title:  "Export Failed",
			Detail: err.Error(),
		})
	}
}

func errorInvalidConfig(err error) ErrorObject {
	field := "config"
	for _, candidate := range configErrorFields {
		if errors.Is(err, candidate.err) {
			field = candidate.field
			break
		}
	}
	return ErrorObject{
		Title:  "Invalid Field",
		Detail: "The field '" + field + "' is invalid: " + err.Error(),
	}
}

func errorRunNotFound(id string) ErrorObject {
	return ErrorObject{
		Title:  "Export Run Not Found",
		Detail: "The export run with ID '" + id + "' could not be found",
	}
}

func errorInvalidIdentity() ErrorObject {
	return ErrorObject{
		Title:  "Invalid Identity",
		Detail: "The X-Rh-Identity header is missing or has no org_id",
	}
}

func errorInvalidJSON(err error) ErrorObject {
	return ErrorObject{
		Title:  "Invalid JSON",
		Detail: "Invalid JSON: " + err.Error(),
	}
}

func errorInternalServer() ErrorObject {
	return ErrorObject{
		Title:  "Internal Server Error",
		Detail: "An unexpected error occurred while processing your request",
	}
}

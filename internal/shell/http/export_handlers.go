package http

import (
	"encoding/json"
	"log"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/redhatinsights/platform-go-middlewares/v2/identity"

	"turbo-export/internal/core/domain"
	"turbo-export/internal/core/ports"
)

type ExportHandler struct {
	exportService ports.ExportService
	outputDir     string
	defaults      domain.ExportDefaults
}

func NewExportHandler(exportService ports.ExportService, outputDir string, defaults domain.ExportDefaults) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
		outputDir:     outputDir,
		defaults:      defaults,
	}
}

func (h *ExportHandler) CreateExport(w http.ResponseWriter, r *http.Request) {
	log.Printf("[DEBUG] HTTP CreateExport called - method: %s, path: %s", r.Method, r.URL.Path)

	req, orgID, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	cfg := h.exportConfig(req.Config, "")
	log.Printf("[DEBUG] HTTP CreateExport - org_id=%s, mode=%s, format=%s, rows=%d", orgID, cfg.Mode, cfg.Format, len(req.Rows))

	run, result, err := h.exportService.Export(r.Context(), orgID, cfg, req.Headers, req.domainRows())
	if err != nil {
		respondWithExportError(w, err)
		return
	}

	respondCreated(w, ExportResponse{RunID: run.ID, JobID: run.JobID, Result: result.Export})
}

func (h *ExportHandler) CreateSplitZip(w http.ResponseWriter, r *http.Request) {
	log.Printf("[DEBUG] HTTP CreateSplitZip called - method: %s, path: %s", r.Method, r.URL.Path)

	req, orgID, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	cfg := domain.SplitZipConfig{
		ExportConfig:   h.exportConfig(req.Config, "zip"),
		Split:          boolOrDefault(req.Config.Split, true),
		Zip:            boolOrDefault(req.Config.Zip, true),
		IncludeHeaders: h.defaults.HeadersIncluded(req.Config.IncludeHeaders),
	}
	log.Printf("[DEBUG] HTTP CreateSplitZip - org_id=%s, mode=%s, format=%s, rows=%d", orgID, cfg.Mode, cfg.Format, len(req.Rows))

	run, result, err := h.exportService.SplitZip(r.Context(), orgID, cfg, req.Headers, req.domainRows())
	if err != nil {
		respondWithExportError(w, err)
		return
	}

	respondCreated(w, ExportResponse{RunID: run.ID, JobID: run.JobID, Result: result.SplitZip})
}

func (h *ExportHandler) decodeRequest(w http.ResponseWriter, r *http.Request) (exportRequest, string, bool) {
	var req exportRequest

	// Numbers are kept as json.Number so that cells render exactly as sent.
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&req); err != nil {
		log.Printf("[DEBUG] HTTP export request failed - JSON decode error: %v", err)
		respondWithErrors(w, http.StatusBadRequest, errorInvalidJSON(err))
		return exportRequest{}, "", false
	}

	ident := identity.Get(r.Context())
	if !isValidIdentity(ident) {
		log.Printf("[DEBUG] HTTP export request failed - invalid identity")
		respondWithErrors(w, http.StatusBadRequest, errorInvalidIdentity())
		return exportRequest{}, "", false
	}

	return req, ident.Identity.OrgID, true
}

// exportConfig applies configured defaults and confines the output path to
// the output directory. archiveExt overrides the format extension for the
// generated name of split-zip archives.
func (h *ExportHandler) exportConfig(req exportConfigRequest, archiveExt string) domain.ExportConfig {
	cfg := h.defaults.Apply(domain.ExportConfig{
		Mode:      req.Mode,
		Format:    req.Format,
		Workers:   req.Workers,
		ChunkSize: req.ChunkSize,
	}).Normalize()

	ext := archiveExt
	if ext == "" {
		ext = cfg.Format.Extension()
	}
	cfg.OutputPath = h.resolveOutputPath(req.OutputPath, ext)
	return cfg
}

func (h *ExportHandler) resolveOutputPath(requested, ext string) string {
	name := filepath.Base(requested)
	if requested == "" || name == "." || name == string(filepath.Separator) || name == ".." {
		name = uuid.New().String() + "." + ext
	}
	return filepath.Join(h.outputDir, name)
}

func respondCreated(w http.ResponseWriter, response ExportResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Location", "/api/v1/runs/"+response.RunID)
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("[DEBUG] HTTP export - warning: failed to encode response: %v", err)
	}
}

func boolOrDefault(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

func isValidIdentity(ident identity.XRHID) bool {
	return ident.Identity.OrgID != ""
}

package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/redhatinsights/platform-go-middlewares/v2/identity"

	"turbo-export/internal/core/domain"
	"turbo-export/internal/core/ports"
)

type ExportRunHandler struct {
	runService ports.ExportRunService
}

func NewExportRunHandler(runService ports.ExportRunService) *ExportRunHandler {
	return &ExportRunHandler{
		runService: runService,
	}
}

// GetRuns lists the runs of the caller's organization, newest first
func (h *ExportRunHandler) GetRuns(w http.ResponseWriter, r *http.Request) {
	ident := identity.Get(r.Context())
	if !isValidIdentity(ident) {
		log.Printf("[DEBUG] GetRuns failed - invalid identity")
		respondWithErrors(w, http.StatusBadRequest, errorInvalidIdentity())
		return
	}

	offset, limit := parsePaginationParams(r.URL)

	runs, total, err := h.runService.ListRuns(r.Context(), ident.Identity.OrgID, offset, limit)
	if err != nil {
		log.Printf("[DEBUG] HTTP GetRuns failed - error: %v", err)
		respondWithErrors(w, http.StatusInternalServerError, errorInternalServer())
		return
	}

	log.Printf("[DEBUG] HTTP GetRuns success - returned %d of %d runs for org_id=%s", len(runs), total, ident.Identity.OrgID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(buildPaginatedResponse(r.URL, offset, limit, total, ToRunResponseList(runs)))
}

// GetRun retrieves a specific run by ID
func (h *ExportRunHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	runID := vars["id"]

	ident := identity.Get(r.Context())
	if !isValidIdentity(ident) {
		log.Printf("[DEBUG] GetRun failed - invalid identity")
		respondWithErrors(w, http.StatusBadRequest, errorInvalidIdentity())
		return
	}

	log.Printf("[DEBUG] HTTP GetRun called - run_id=%s, org_id=%s", runID, ident.Identity.OrgID)

	// Only get run if it belongs to the caller's organization
	run, err := h.runService.GetRunWithOrgCheck(r.Context(), runID, ident.Identity.OrgID)
	if err != nil {
		if errors.Is(err, domain.ErrExportRunNotFound) {
			respondWithErrors(w, http.StatusNotFound, errorRunNotFound(runID))
			return
		}
		log.Printf("[DEBUG] HTTP GetRun failed - error: %v", err)
		respondWithErrors(w, http.StatusInternalServerError, errorInternalServer())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ToRunResponse(run))
}

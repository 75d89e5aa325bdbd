package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/clusslin/exdicom/internal/models"
	"github.com/clusslin/exdicom/pipeline"
	"github.com/clusslin/exdicom/storage/ledger"
)

// transmissionTimeLayout mirrors the ledger's creation-time column.
const transmissionTimeLayout = "2006-01-02 15:04:05"

// UploadHandler exposes the completion pipeline and the polling fallback of
// the downstream relay over HTTP.
type UploadHandler struct {
	orch   *pipeline.Orchestrator
	ledger ledger.Ledger
	logger *log.Logger
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(orch *pipeline.Orchestrator, led ledger.Ledger, logger *log.Logger) *UploadHandler {
	return &UploadHandler{orch: orch, ledger: led, logger: logger}
}

// Register wires the handler's routes onto the mux.
func (h *UploadHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/uploads/complete", h.CompleteUpload)
	mux.HandleFunc("/v1/uploads/pending", h.PendingUploads)
	mux.HandleFunc("/v1/uploads/transmitted", h.MarkTransmitted)
	mux.HandleFunc("/health", h.HealthCheck)
}

// CompleteUpload handles POST /v1/uploads/complete requests. The pipeline
// runs synchronously; the response carries the full outcome.
func (h *UploadHandler) CompleteUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.respondError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.Header.Get("Content-Type") != "application/json" {
		h.respondError(w, "Content-Type must be application/json", http.StatusBadRequest)
		return
	}
	if r.ContentLength > 1<<20 { // completion requests are metadata only
		h.respondError(w, "Request body too large", http.StatusRequestEntityTooLarge)
		return
	}

	var sub models.UploadSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		h.logger.Printf("HTTP Handler: Failed to parse JSON request: %v", err)
		h.respondError(w, "Bad Request: Invalid JSON format", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if sub.ArtifactRef == "" {
		h.respondError(w, "artifact_ref is required", http.StatusBadRequest)
		return
	}

	requestID := uuid.NewString()
	h.logger.Printf("HTTP Handler: Completion request %s for '%s'", requestID, sub.Filename)

	outcome := h.orch.Complete(r.Context(), &sub)

	resp := struct {
		RequestID string `json:"request_id"`
		*models.PipelineOutcome
	}{RequestID: requestID, PipelineOutcome: outcome}

	status := http.StatusOK
	if !outcome.Success {
		status = http.StatusInternalServerError
	}
	h.respondJSON(w, resp, status)
}

// PendingUploads handles GET /v1/uploads/pending requests, the out-of-band
// fallback the downstream relay polls when it missed webhook events.
func (h *UploadHandler) PendingUploads(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.respondError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	pending, err := h.ledger.Pending(r.Context())
	if err != nil {
		h.logger.Printf("HTTP Handler: Failed to read pending uploads: %v", err)
		h.respondError(w, "ledger unavailable", http.StatusServiceUnavailable)
		return
	}
	if pending == nil {
		pending = []models.LedgerEntry{}
	}
	h.respondJSON(w, map[string]interface{}{
		"pending": pending,
		"count":   len(pending),
	}, http.StatusOK)
}

// MarkTransmitted handles POST /v1/uploads/transmitted requests: the
// downstream relay reports a forwarded bundle and the ledger row gets its
// transmission timestamp.
func (h *UploadHandler) MarkTransmitted(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.respondError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		RowNumber        int64  `json:"row_number"`
		TransmissionTime string `json:"transmission_time,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, "Bad Request: Invalid JSON format", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.RowNumber <= 0 {
		h.respondError(w, "row_number is required", http.StatusBadRequest)
		return
	}
	if req.TransmissionTime == "" {
		req.TransmissionTime = time.Now().Format(transmissionTimeLayout)
	}

	if err := h.ledger.MarkTransmitted(r.Context(), req.RowNumber, req.TransmissionTime); err != nil {
		if errors.Is(err, ledger.ErrNoSuchRow) {
			h.respondError(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Printf("HTTP Handler: Failed to mark row %d transmitted: %v", req.RowNumber, err)
		h.respondError(w, "ledger unavailable", http.StatusServiceUnavailable)
		return
	}

	h.respondJSON(w, map[string]interface{}{
		"status":            "ok",
		"row_number":        req.RowNumber,
		"transmission_time": req.TransmissionTime,
	}, http.StatusOK)
}

// HealthCheck handles GET /health requests
func (h *UploadHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.respondError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	h.respondJSON(w, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339Nano),
		"service":   "upload-gateway",
	}, http.StatusOK)
}

// respondJSON sends JSON response
func (h *UploadHandler) respondJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Printf("HTTP Handler: Failed to encode JSON response: %v", err)
	}
}

// respondError sends error response
func (h *UploadHandler) respondError(w http.ResponseWriter, message string, statusCode int) {
	h.respondJSON(w, map[string]interface{}{
		"error":   message,
		"status":  statusCode,
		"message": http.StatusText(statusCode),
	}, statusCode)
}

package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clusslin/exdicom/config"
	"github.com/clusslin/exdicom/dispatch"
	"github.com/clusslin/exdicom/notify"
	"github.com/clusslin/exdicom/pipeline"
	"github.com/clusslin/exdicom/storage/blob"
	"github.com/clusslin/exdicom/storage/ledger"
)

func newTestMux(t *testing.T) (*http.ServeMux, *ledger.MockLedger) {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	blobs := blob.NewMockStore(map[string]string{"file-1": "scan.zip"})
	led := ledger.NewMockLedger(2)
	orch := pipeline.New(config.PipelineConfig{MaxIdentifierAttempts: 5},
		blobs, led, notify.NewMockNotifier(), dispatch.NewMockDispatcher(), logger)

	mux := http.NewServeMux()
	NewUploadHandler(orch, led, logger).Register(mux)
	return mux, led
}

func postJSON(mux *http.ServeMux, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestCompleteUpload(t *testing.T) {
	mux, led := newTestMux(t)

	rec := postJSON(mux, "/v1/uploads/complete", `{
		"artifact_ref": "file-1",
		"hospital_name": "General Hospital",
		"exam_type": "CT",
		"uploader_email": "a@b.com",
		"filename": "scan.zip",
		"consent": true
	}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		RequestID  string `json:"request_id"`
		Success    bool   `json:"success"`
		Message    string `json:"message"`
		Identifier string `json:"identifier"`
		RowNumber  int64  `json:"row_number"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.RequestID)
	assert.Len(t, resp.Identifier, 8)
	assert.Contains(t, resp.Message, resp.Identifier)
	assert.Equal(t, int64(2), resp.RowNumber)

	require.Len(t, led.Rows(), 1)
	assert.Equal(t, resp.Identifier, led.Rows()[0].Identifier)
}

func TestCompleteUploadRequiresArtifactRef(t *testing.T) {
	mux, _ := newTestMux(t)
	rec := postJSON(mux, "/v1/uploads/complete", `{"filename": "scan.zip"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompleteUploadRejectsBadJSON(t *testing.T) {
	mux, _ := newTestMux(t)
	rec := postJSON(mux, "/v1/uploads/complete", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompleteUploadRequiresJSONContentType(t *testing.T) {
	mux, _ := newTestMux(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/uploads/complete", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompleteUploadMethodNotAllowed(t *testing.T) {
	mux, _ := newTestMux(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/uploads/complete", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPendingAndTransmittedRoundtrip(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := postJSON(mux, "/v1/uploads/complete", `{"artifact_ref": "file-1", "filename": "scan.zip"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// One pending row
	req := httptest.NewRequest(http.MethodGet, "/v1/uploads/pending", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var pendingResp struct {
		Count   int `json:"count"`
		Pending []struct {
			RowNumber  int64  `json:"row_number"`
			Identifier string `json:"identifier"`
		} `json:"pending"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pendingResp))
	require.Equal(t, 1, pendingResp.Count)
	assert.Equal(t, int64(2), pendingResp.Pending[0].RowNumber)

	// Mark it transmitted
	rec = postJSON(mux, "/v1/uploads/transmitted", `{"row_number": 2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Nothing is pending anymore
	req = httptest.NewRequest(http.MethodGet, "/v1/uploads/pending", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pendingResp))
	assert.Zero(t, pendingResp.Count)
}

func TestMarkTransmittedUnknownRow(t *testing.T) {
	mux, _ := newTestMux(t)
	rec := postJSON(mux, "/v1/uploads/transmitted", `{"row_number": 99}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMarkTransmittedRequiresRowNumber(t *testing.T) {
	mux, _ := newTestMux(t)
	rec := postJSON(mux, "/v1/uploads/transmitted", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthCheck(t *testing.T) {
	mux, _ := newTestMux(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

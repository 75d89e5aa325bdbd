package dispatch

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clusslin/exdicom/config"
	"github.com/clusslin/exdicom/internal/models"
	"github.com/clusslin/exdicom/internal/signature"
)

func testEvent() *models.WebhookEvent {
	return &models.WebhookEvent{
		Identifier:    "6D7CBQQK",
		Filename:      "scan.zip",
		RowNumber:     42,
		CreationTime:  "2026-09-01 10:00:00",
		HospitalName:  "General Hospital",
		ExamType:      "CT",
		UploaderName:  "A. Chen",
		UploaderPhone: "555-0101",
		UploaderEmail: "a@b.com",
		Timestamp:     "2026-09-01T02:00:05Z",
	}
}

func newTestDispatcher(t *testing.T, endpoint, secret string) *WebhookDispatcher {
	t.Helper()
	d, err := NewWebhookDispatcher(config.WebhookConfig{
		Endpoint: endpoint,
		Secret:   secret,
		Timeout:  "5s",
	}, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("failed to create dispatcher: %v", err)
	}
	return d
}

func TestDispatchSignsExactBody(t *testing.T) {
	const secret = "shared-secret"
	var gotBody []byte
	var gotSig, gotCT, gotUA string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotSig = r.Header.Get(SignatureHeader)
		gotCT = r.Header.Get("Content-Type")
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	d := newTestDispatcher(t, srv.URL, secret)
	if err := d.Dispatch(context.Background(), testEvent()); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	if gotCT != "application/json" {
		t.Errorf("Content-Type = %q", gotCT)
	}
	if gotUA != clientName {
		t.Errorf("User-Agent = %q, want %q", gotUA, clientName)
	}
	if !signature.Verify(gotBody, secret, gotSig) {
		t.Errorf("signature %q does not verify against the received body", gotSig)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(gotBody, &decoded); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	if decoded["identifier"] != "6D7CBQQK" {
		t.Errorf(`identifier = %v, want "6D7CBQQK"`, decoded["identifier"])
	}
	if rn, ok := decoded["row_number"].(float64); !ok || int64(rn) != 42 {
		t.Errorf(`row_number = %v, want 42`, decoded["row_number"])
	}
	for _, field := range []string{"filename", "creation_time", "hospital_name", "exam_type",
		"uploader_name", "uploader_phone", "uploader_email", "timestamp"} {
		if _, ok := decoded[field]; !ok {
			t.Errorf("body missing field %q", field)
		}
	}
}

func TestDispatchAccepts200And202(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusAccepted} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		d := newTestDispatcher(t, srv.URL, "s")
		if err := d.Dispatch(context.Background(), testEvent()); err != nil {
			t.Errorf("status %d should count as delivered, got error: %v", status, err)
		}
		srv.Close()
	}
}

func TestDispatchRejectsOtherStatuses(t *testing.T) {
	for _, status := range []int{http.StatusNoContent, http.StatusMovedPermanently, http.StatusUnauthorized, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		d := newTestDispatcher(t, srv.URL, "s")
		if err := d.Dispatch(context.Background(), testEvent()); err == nil {
			t.Errorf("status %d should count as delivery failure", status)
		}
		srv.Close()
	}
}

func TestDispatchRefusesUnsigned(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	d := newTestDispatcher(t, srv.URL, "")
	if err := d.Dispatch(context.Background(), testEvent()); err == nil {
		t.Fatal("dispatch without a secret should fail")
	}
	if called {
		t.Fatal("unsigned event must not reach the endpoint")
	}
}

func TestDispatchNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // dead endpoint

	d := newTestDispatcher(t, srv.URL, "s")
	if err := d.Dispatch(context.Background(), testEvent()); err == nil {
		t.Fatal("dispatch to a dead endpoint should fail")
	}
}

func TestEncodeEventFieldOrder(t *testing.T) {
	payload, err := EncodeEvent(testEvent())
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	want := `{"identifier":"6D7CBQQK","filename":"scan.zip","row_number":42,` +
		`"creation_time":"2026-09-01 10:00:00","hospital_name":"General Hospital",` +
		`"exam_type":"CT","uploader_name":"A. Chen","uploader_phone":"555-0101",` +
		`"uploader_email":"a@b.com","timestamp":"2026-09-01T02:00:05Z"}`
	if string(payload) != want {
		t.Errorf("canonical form drifted:\n got %s\nwant %s", payload, want)
	}
}

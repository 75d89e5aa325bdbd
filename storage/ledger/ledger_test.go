package ledger

import (
	"context"
	"testing"

	"github.com/clusslin/exdicom/internal/models"
)

func TestColumnsLayout(t *testing.T) {
	sub := &models.UploadSubmission{
		ArtifactRef:   "file-1",
		HospitalName:  "General Hospital",
		ExamType:      "CT",
		UploaderName:  "A. Chen",
		UploaderPhone: "555-0101",
		UploaderEmail: "a@b.com",
		Filename:      "scan.zip",
	}
	row := Columns(sub, "6D7CBQQK", "2026-09-01 10:00:00")

	if len(row) != ColumnCount {
		t.Fatalf("expected %d columns, got %d", ColumnCount, len(row))
	}
	want := []string{
		"2026-09-01 10:00:00", "General Hospital", "CT", "A. Chen",
		"555-0101", "a@b.com", "scan.zip", "6D7CBQQK", "",
	}
	for i, w := range want {
		if row[i] != w {
			t.Errorf("column %d = %q, want %q", i, row[i], w)
		}
	}
}

func TestParseRowOrdinal(t *testing.T) {
	cases := []struct {
		rng     string
		want    int64
		wantErr bool
	}{
		{"Uploads!A42:I42", 42, false},
		{"Uploads!A2:I2", 2, false},
		{"'Upload Log'!AB1234:AJ1234", 1234, false},
		{"garbage", 0, true},
		{"", 0, true},
	}
	for _, c := range cases {
		got, err := parseRowOrdinal(c.rng)
		if c.wantErr {
			if err == nil {
				t.Errorf("parseRowOrdinal(%q): expected error, got %d", c.rng, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseRowOrdinal(%q): unexpected error: %v", c.rng, err)
			continue
		}
		if got != c.want {
			t.Errorf("parseRowOrdinal(%q) = %d, want %d", c.rng, got, c.want)
		}
	}
}

func TestMockLedgerRoundtrip(t *testing.T) {
	ctx := context.Background()
	m := NewMockLedger(2)
	sub := &models.UploadSubmission{ArtifactRef: "f", Filename: "a.zip", UploaderEmail: "x@y.z"}

	row, err := m.AppendRow(ctx, Columns(sub, "AAAA1111", "2026-09-01 10:00:00"))
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if row != 2 {
		t.Fatalf("first row ordinal = %d, want 2", row)
	}

	if ok, _ := m.HasIdentifier(ctx, "AAAA1111"); !ok {
		t.Error("HasIdentifier missed an appended identifier")
	}
	if ok, _ := m.HasIdentifier(ctx, "BBBB2222"); ok {
		t.Error("HasIdentifier reported a never-appended identifier")
	}

	pending, err := m.Pending(ctx)
	if err != nil || len(pending) != 1 {
		t.Fatalf("expected 1 pending row, got %d (err=%v)", len(pending), err)
	}

	if err := m.MarkTransmitted(ctx, row, "2026-09-01 10:05:00"); err != nil {
		t.Fatalf("MarkTransmitted failed: %v", err)
	}
	pending, _ = m.Pending(ctx)
	if len(pending) != 0 {
		t.Fatalf("expected no pending rows after transmission, got %d", len(pending))
	}

	if err := m.MarkTransmitted(ctx, 99, "t"); err == nil {
		t.Error("MarkTransmitted on a missing row should fail")
	}
}

package notify

import (
	"strings"
	"testing"
)

func TestSubmitterMessage(t *testing.T) {
	subject, body := submitterMessage("6D7CBQQK", "General Hospital")
	if !strings.Contains(subject, "6D7CBQQK") {
		t.Errorf("subject %q does not carry the identifier", subject)
	}
	if !strings.Contains(body, "Reference ID: 6D7CBQQK") {
		t.Errorf("body does not carry the reference line:\n%s", body)
	}
	if !strings.Contains(body, "General Hospital") {
		t.Errorf("body does not mention the institution:\n%s", body)
	}
}

func TestSubmitterMessageWithoutHospital(t *testing.T) {
	_, body := submitterMessage("AAAA1111", "")
	if strings.Contains(body, "Institution:") {
		t.Errorf("body should omit the institution line when empty:\n%s", body)
	}
}

func TestOperatorMessage(t *testing.T) {
	subject, body := operatorMessage("ledger append failed", "permission denied", map[string]string{
		"identifier": "AAAA1111",
		"filename":   "scan.zip",
	})
	if !strings.Contains(subject, "ledger append failed") {
		t.Errorf("subject %q does not carry the failure kind", subject)
	}
	if !strings.Contains(body, "permission denied") {
		t.Errorf("body does not carry the failure message:\n%s", body)
	}
	// Detail keys render in sorted order
	fi := strings.Index(body, "filename:")
	id := strings.Index(body, "identifier:")
	if fi == -1 || id == -1 || fi > id {
		t.Errorf("details not rendered in sorted key order:\n%s", body)
	}
}

func TestFormatMessageCRLF(t *testing.T) {
	msg := formatMessage("gw@example.com", "a@b.com", "Subject line", "line one\nline two\n")
	if !strings.HasPrefix(msg, "From: gw@example.com\r\n") {
		t.Errorf("missing From header:\n%s", msg)
	}
	if strings.Contains(strings.ReplaceAll(msg, "\r\n", ""), "\n") {
		t.Errorf("bare LF left in message:\n%q", msg)
	}
	if !strings.Contains(msg, "\r\n\r\nline one\r\nline two\r\n") {
		t.Errorf("body not separated from headers:\n%q", msg)
	}
}

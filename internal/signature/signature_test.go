package signature

import (
	"regexp"
	"testing"
)

func TestSignKnownVectors(t *testing.T) {
	cases := []struct {
		payload string
		key     string
		want    string
	}{
		{`{"identifier":"6D7CBQQK"}`, "secret-key", "7c72ca0a329feb6a62eceaadc44222df745e80286b751a7a1cb38ae3916f8777"},
		{`{"identifier":"6D7CBQQL"}`, "secret-key", "c80537af1798ab915643d1539795228a3e9104d040148f0211ec291a575d6c68"},
		{"hello webhook", "shared", "52ab8a022d83c491f298f2bdb0c17bfc61f8d109816d867d21bf9e55cbabe840"},
		{"", "shared", "53d804bbed467ef8ba889c37a3167e2f64427ad8289cf4cfcd4daeb683e6907f"},
	}
	for _, c := range cases {
		got := Sign([]byte(c.payload), c.key)
		if got != c.want {
			t.Errorf("Sign(%q, %q) = %s, want %s", c.payload, c.key, got, c.want)
		}
	}
}

func TestSignDeterministic(t *testing.T) {
	payload := []byte("the same bytes twice")
	a := Sign(payload, "k1")
	b := Sign(payload, "k1")
	if a != b {
		t.Fatalf("identical inputs produced different signatures: %s vs %s", a, b)
	}
	if ok, _ := regexp.MatchString(`^[0-9a-f]{64}$`, a); !ok {
		t.Fatalf("signature %q is not 64 lowercase hex characters", a)
	}
}

func TestSignAdjacentPayloadsDiverge(t *testing.T) {
	a := Sign([]byte(`{"row_number":42}`), "k")
	b := Sign([]byte(`{"row_number":43}`), "k")
	if a == b {
		t.Fatal("one-byte payload change did not change the signature")
	}
}

func TestSignEmptyKey(t *testing.T) {
	if got := Sign([]byte("payload"), ""); got != "" {
		t.Fatalf("Sign with empty key = %q, want empty string", got)
	}
}

func TestVerify(t *testing.T) {
	payload := []byte(`{"identifier":"AB12CD34"}`)
	sig := Sign(payload, "shared")
	if !Verify(payload, "shared", sig) {
		t.Fatal("Verify rejected a valid signature")
	}
	if Verify(payload, "shared", sig[:63]+"0") && sig[63] != '0' {
		t.Fatal("Verify accepted a corrupted signature")
	}
	if Verify(payload, "other", sig) {
		t.Fatal("Verify accepted a signature under the wrong key")
	}
	if Verify(payload, "", "") {
		t.Fatal("Verify accepted an unsigned payload")
	}
}

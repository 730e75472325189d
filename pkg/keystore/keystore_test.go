package keystore

import (
	"bytes"
	"testing"
)

func TestPutGetRoundTrip(t *testing.T) {
	store, err := Open(OpenOptions{Path: t.TempDir()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	raw := []byte("owner-keypair-bytes")
	if err := store.PutKeypair("owner", raw); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := store.GetKeypair("owner")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || !bytes.Equal(got, raw) {
		t.Fatalf("round trip got=(%q,%v)", got, ok)
	}
}

func TestGetMissingKeypair(t *testing.T) {
	store, err := Open(OpenOptions{Path: t.TempDir()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	_, ok, err := store.GetKeypair("nope")
	if err != nil {
		t.Fatalf("missing key must not error: %v", err)
	}
	if ok {
		t.Fatalf("missing key reported as found")
	}
}

func TestOpenValidation(t *testing.T) {
	if _, err := Open(OpenOptions{}); err == nil {
		t.Fatalf("empty path should error")
	}
}

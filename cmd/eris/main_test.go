package main

import (
	"bytes"
	"encoding/hex"
	"path/filepath"
	"testing"

	"github.com/erisproto/eris"
	"github.com/erisproto/eris/store/boltstore"
	"github.com/erisproto/eris/store/dirstore"
)

func TestParseSecret_Empty(t *testing.T) {
	secret, err := parseSecret("")
	if err != nil {
		t.Fatalf("parseSecret(\"\"): %v", err)
	}
	if secret != (eris.Secret{}) {
		t.Errorf("parseSecret(\"\") = %v, want the zero secret", secret)
	}
}

func TestParseSecret_Valid(t *testing.T) {
	want := bytes.Repeat([]byte{0xAB}, eris.ConvergenceSecretSize)
	secret, err := parseSecret(hex.EncodeToString(want))
	if err != nil {
		t.Fatalf("parseSecret: %v", err)
	}
	if !bytes.Equal(secret[:], want) {
		t.Errorf("parseSecret result = %x, want %x", secret, want)
	}
}

func TestParseSecret_InvalidHex(t *testing.T) {
	if _, err := parseSecret("not-hex"); err == nil {
		t.Fatal("parseSecret with invalid hex: expected error, got nil")
	}
}

func TestParseSecret_WrongLength(t *testing.T) {
	if _, err := parseSecret("ab"); err == nil {
		t.Fatal("parseSecret with too-short secret: expected error, got nil")
	}
}

func TestOpenStore_Bolt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eris.bolt")
	store, err := openStore(path, "bolt")
	if err != nil {
		t.Fatalf("openStore(bolt): %v", err)
	}
	defer store.Close()

	if _, ok := store.(*boltstore.Store); !ok {
		t.Errorf("openStore(bolt) returned %T, want *boltstore.Store", store)
	}
}

func TestOpenStore_Dir(t *testing.T) {
	store, err := openStore(t.TempDir(), "dir")
	if err != nil {
		t.Fatalf("openStore(dir): %v", err)
	}
	defer store.Close()

	if _, ok := store.(*dirstore.Store); !ok {
		t.Errorf("openStore(dir) returned %T, want *dirstore.Store", store)
	}
}

func TestOpenStore_UnknownBackend(t *testing.T) {
	if _, err := openStore(t.TempDir(), "nope"); err == nil {
		t.Fatal("openStore with an unknown backend: expected error, got nil")
	}
}

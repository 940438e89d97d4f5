package filestore

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

type payload struct {
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

func newKeystore(t *testing.T) (*Keystore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keystore.json")
	ks, err := New(path)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return ks, path
}

func TestKeystore_roundTrip(t *testing.T) {
	ks, path := newKeystore(t)

	want := payload{Name: "Jo", Roles: []string{"teacher", "accountant"}}
	if err := ks.Set("user", want); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	// a fresh handle on the same file must read back a deep-equal value
	ks2, err := New(path)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	var got payload
	ok, err := ks2.Get("user", &got)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if !ok {
		t.Fatal("Get() found = false for a stored key")
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
}

func TestKeystore_absentKey(t *testing.T) {
	ks, _ := newKeystore(t)

	var v payload
	ok, err := ks.Get("missing", &v)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if ok {
		t.Error("Get() found = true for an absent key")
	}
}

func TestKeystore_delete(t *testing.T) {
	ks, _ := newKeystore(t)

	if err := ks.Set("token", "abc"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := ks.Delete("token"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	var s string
	if ok, _ := ks.Get("token", &s); ok {
		t.Error("Get() found = true after delete")
	}

	// deleting an absent key is a no-op
	if err := ks.Delete("token"); err != nil {
		t.Errorf("Delete(absent) = %v, want nil", err)
	}
}

func TestKeystore_corruptFile(t *testing.T) {
	ks, path := newKeystore(t)
	if err := os.WriteFile(path, []byte("{{{ not json"), 0o600); err != nil {
		t.Fatalf("writing corrupt file: %v", err)
	}

	var v payload
	ok, err := ks.Get("user", &v)
	if err != nil {
		t.Fatalf("Get() on a corrupt file failed: %v", err)
	}
	if ok {
		t.Error("Get() found = true on a corrupt file")
	}

	// the store recovers: the next write starts a fresh table
	if err = ks.Set("token", "abc"); err != nil {
		t.Fatalf("Set() after corruption failed: %v", err)
	}
	var s string
	if ok, _ = ks.Get("token", &s); !ok || s != "abc" {
		t.Errorf("Get() = %q, %t after recovery, want abc, true", s, ok)
	}
}

func TestKeystore_corruptValue(t *testing.T) {
	ks, path := newKeystore(t)
	if err := os.WriteFile(path, []byte(`{"user":{"name":123}}`), 0o600); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	// the table parses but the value does not fit the target type
	var s string
	ok, err := ks.Get("user", &s)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if ok {
		t.Error("Get() found = true for a value of the wrong shape")
	}
}

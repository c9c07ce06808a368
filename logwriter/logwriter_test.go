package logwriter

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDisabledLoggingDiscards(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, false, false)
	if err := w.Create(); err != nil {
		t.Fatal(err)
	}
	defer w.Cleanup()
	w.Logger("test: ").Println("hidden")
	if buf.Len() != 0 {
		t.Errorf("disabled logging: wrote %q, expects nothing", buf.String())
	}
}

func TestLoggerPrefix(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, true, false)
	if err := w.Create(); err != nil {
		t.Fatal(err)
	}
	defer w.Cleanup()
	w.Logger("diners: ").Printf("%s eats", Role("philosopher", 3))
	if !strings.HasPrefix(buf.String(), "diners: ") {
		t.Errorf("prefix: got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "philosopher 3 eats") {
		t.Errorf("no colour: got %q, expects plain role", buf.String())
	}
}

func TestLogFileFlushedOnCleanup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	w := NewFile(path, true, false)
	if err := w.Create(); err != nil {
		t.Fatal(err)
	}
	w.Logger("").Println("hello")
	w.Cleanup()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "hello") {
		t.Errorf("log file: got %q, expects hello", string(b))
	}
}

func TestRoleUnknown(t *testing.T) {
	if got := Role("janitor", 1); got != "janitor 1" {
		t.Errorf("unknown role: got %q, expects %q", got, "janitor 1")
	}
}

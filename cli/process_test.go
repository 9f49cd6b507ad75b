package cli

import (
	"io"
	"os/exec"
	"testing"
)

func TestCommandReaderReadsStdout(t *testing.T) {
	cmd := exec.Command("sh", "-c", "printf 'hello world'")
	r, err := NewCommandReader(cmd)
	if err != nil {
		t.Fatalf("NewCommandReader: %v", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(out) != "hello world" {
		t.Fatalf("got %q, want %q", out, "hello world")
	}
}

func TestCommandReaderNonZeroExitSurfacesStderr(t *testing.T) {
	cmd := exec.Command("sh", "-c", "echo boom 1>&2; exit 1")
	r, err := NewCommandReader(cmd)
	if err != nil {
		t.Fatalf("NewCommandReader: %v", err)
	}
	_, readErr := io.ReadAll(r)
	if readErr == nil {
		t.Fatalf("expected an error reading from a failing command")
	}
}

func TestCommandReaderSyncStderr(t *testing.T) {
	cmd := exec.Command("sh", "-c", "printf data")
	r, err := NewCommandReaderBuilder().AsyncStderr(false).Build(cmd)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(out) != "data" {
		t.Fatalf("got %q, want %q", out, "data")
	}
}

func TestCommandReaderCloseIdempotent(t *testing.T) {
	cmd := exec.Command("sh", "-c", "printf x")
	r, err := NewCommandReader(cmd)
	if err != nil {
		t.Fatalf("NewCommandReader: %v", err)
	}
	if _, err := io.ReadAll(r); err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("second Close should be a no-op, got %v", err)
	}
}

func TestCommandErrorEmptyStderr(t *testing.T) {
	err := stderrCommandError(nil)
	if !err.IsEmpty() {
		t.Fatalf("expected empty stderr error")
	}
	if err.Error() != "<stderr is empty>" {
		t.Fatalf("got %q", err.Error())
	}
}

func TestCommandErrorNonEmptyStderr(t *testing.T) {
	err := stderrCommandError([]byte("disk on fire\n"))
	if err.IsEmpty() {
		t.Fatalf("expected non-empty stderr error")
	}
	if err.Error() == "<stderr is empty>" {
		t.Fatalf("expected the captured message to be rendered")
	}
}

package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestDecompressionMatcherDefaults(t *testing.T) {
	m := NewDecompressionMatcher()
	if !m.HasCommand("archive.tar.gz") {
		t.Fatalf("expected a command for .gz files")
	}
	if !m.HasCommand("data.zst") {
		t.Fatalf("expected a command for .zst files")
	}
	if m.HasCommand("plain.txt") {
		t.Fatalf("expected no command for .txt files")
	}
}

func TestDecompressionMatcherLastAssociationWins(t *testing.T) {
	b := NewDecompressionMatcherBuilder()
	if err := b.TryAssociate("*.gz", "cat"); err != nil {
		t.Fatalf("TryAssociate: %v", err)
	}
	m, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	cmd := m.Command("data.gz")
	if cmd == nil {
		t.Fatalf("expected a command for data.gz")
	}
	if filepath.Base(cmd.Path) != "cat" {
		t.Fatalf("expected the custom association to take precedence, got %s", cmd.Path)
	}
}

func TestDecompressionMatcherTryAssociateMissingBinary(t *testing.T) {
	b := NewDecompressionMatcherBuilder()
	err := b.TryAssociate("*.weird", "this-binary-should-not-exist-anywhere")
	if err == nil {
		t.Fatalf("expected an error for an unresolvable binary")
	}
}

func TestDecompressionReaderPassthru(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(path, []byte("no compression here"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	r, err := NewDecompressionReader(path)
	if err != nil {
		t.Fatalf("NewDecompressionReader: %v", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(out) != "no compression here" {
		t.Fatalf("got %q", out)
	}
}

func TestDecompressionReaderMissingBinaryFallsBackToPassthru(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.gz")
	raw := []byte("not actually gzip, but should come back verbatim")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	matcherBuilder := NewDecompressionMatcherBuilder().Defaults(false)
	if err := matcherBuilder.TryAssociate("*.gz", "this-binary-should-not-exist-anywhere"); err == nil {
		t.Fatalf("expected TryAssociate to fail to resolve the binary")
	}
	matcher, err := matcherBuilder.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	r, err := NewDecompressionReaderBuilder().Matcher(matcher).Build(path)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(out) != string(raw) {
		t.Fatalf("got %q, want the raw file bytes read back verbatim", out)
	}
}

func TestDecompressionReaderNativeFallbackOptIn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.gz")
	if err := os.WriteFile(path, []byte("not gzip data"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	matcherBuilder := NewDecompressionMatcherBuilder().Defaults(false)
	matcherBuilder.TryAssociate("*.gz", "this-binary-should-not-exist-anywhere")
	matcher, err := matcherBuilder.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	r, err := NewDecompressionReaderBuilder().Matcher(matcher).NativeFallback(true).Build(path)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer r.Close()

	// The file isn't valid gzip, so even with NativeFallback enabled the
	// native decoder construction fails and Build still lands on passthru.
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(out) != "not gzip data" {
		t.Fatalf("got %q", out)
	}
}

func TestDecompressionReaderCustomCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.gz")
	if err := os.WriteFile(path, []byte("fake payload"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	matcherBuilder := NewDecompressionMatcherBuilder().Defaults(false)
	if err := matcherBuilder.TryAssociate("*.gz", "cat"); err != nil {
		t.Fatalf("TryAssociate: %v", err)
	}
	matcher, err := matcherBuilder.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	r, err := NewDecompressionReaderBuilder().Matcher(matcher).Build(path)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(out) != "fake payload" {
		t.Fatalf("got %q, want the file contents echoed back by cat", out)
	}
}

package cli

import (
	"bytes"
	"io"
	"os/exec"
	"runtime"

	"github.com/rs/zerolog/log"
)

// CommandReaderBuilder configures and builds a CommandReader for the
// output of a child process.
type CommandReaderBuilder struct {
	asyncStderr bool
}

// NewCommandReaderBuilder returns a builder with asynchronous stderr
// reading enabled, matching the default most callers want.
func NewCommandReaderBuilder() *CommandReaderBuilder {
	return &CommandReaderBuilder{asyncStderr: true}
}

// AsyncStderr controls whether stderr is drained on a background
// goroutine while stdout is read. When disabled, stderr is only read once
// stdout is exhausted or the process exits with an error, which risks
// deadlock against a noisy child that fills its stderr pipe buffer.
func (b *CommandReaderBuilder) AsyncStderr(yes bool) *CommandReaderBuilder {
	b.asyncStderr = yes
	return b
}

// Build starts cmd and returns a reader over its stdout. The caller should
// have configured everything about cmd (args, env, dir) except its
// stdout/stderr pipes, which Build takes ownership of.
func (b *CommandReaderBuilder) Build(cmd *exec.Cmd) (*CommandReader, error) {
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, ioCommandError(err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, ioCommandError(err)
	}
	if err := cmd.Start(); err != nil {
		return nil, ioCommandError(err)
	}

	var sr stderrReader
	if b.asyncStderr {
		sr = newAsyncStderrReader(stderr)
	} else {
		sr = newSyncStderrReader(stderr)
	}
	r := &CommandReader{cmd: cmd, stdout: stdout, stderr: sr}
	// Last-resort cleanup, mirroring the reference implementation's
	// close-on-drop: if a caller never calls Close, the finalizer still
	// reaps the child and surfaces any error as a warning log.
	runtime.SetFinalizer(r, func(r *CommandReader) {
		warnOnCloseError(r.Close())
	})
	return r, nil
}

// CommandReader streams a child process's stdout, while capturing its
// stderr so that a non-zero exit produces a useful error.
type CommandReader struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr stderrReader
	eof    bool
	closed bool
}

// NewCommandReader builds a CommandReader with default configuration.
func NewCommandReader(cmd *exec.Cmd) (*CommandReader, error) {
	return NewCommandReaderBuilder().Build(cmd)
}

func (r *CommandReader) Read(p []byte) (int, error) {
	n, err := r.stdout.Read(p)
	if n == 0 && err == io.EOF {
		r.eof = true
		if cerr := r.Close(); cerr != nil {
			return 0, cerr
		}
		return 0, io.EOF
	}
	return n, err
}

// Close releases the resources held by the underlying child process. If
// the child exited with a non-zero status, the returned error includes its
// captured stderr. Close is idempotent.
func (r *CommandReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	// Closing stdout signals a well-behaved child to exit: it either
	// notices the broken pipe or was already done writing.
	r.stdout.Close()

	err := r.cmd.Wait()
	if err == nil {
		return nil
	}
	if _, ok := err.(*exec.ExitError); !ok {
		return ioCommandError(err)
	}

	cmdErr := r.stderr.readToEnd()
	// If we already reached EOF on stdout (so a broken-pipe style error
	// from closing it early isn't in play) and stderr is empty, treat
	// this as success rather than surfacing a spurious error.
	if !r.eof && cmdErr.IsEmpty() {
		return nil
	}
	return cmdErr
}

type stderrReader interface {
	readToEnd() *CommandError
}

type syncStderrReader struct {
	r io.Reader
}

func newSyncStderrReader(r io.Reader) stderrReader {
	return &syncStderrReader{r: r}
}

func (s *syncStderrReader) readToEnd() *CommandError {
	return stderrToCommandError(s.r)
}

type asyncStderrReader struct {
	result *CommandError
	done   chan struct{}
}

func newAsyncStderrReader(r io.Reader) stderrReader {
	a := &asyncStderrReader{done: make(chan struct{})}
	go func() {
		a.result = stderrToCommandError(r)
		close(a.done)
	}()
	return a
}

func (a *asyncStderrReader) readToEnd() *CommandError {
	<-a.done
	return a.result
}

func stderrToCommandError(r io.Reader) *CommandError {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return ioCommandError(err)
	}
	return stderrCommandError(buf.Bytes())
}

// warnOnCloseError logs a close failure the way the original's Drop-time
// last resort does, for callers that can't otherwise observe it.
func warnOnCloseError(err error) {
	if err != nil {
		log.Warn().Err(err).Msg("command reader close failed")
	}
}

package cli

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/coregx/rg/glob"
	"github.com/rs/zerolog/log"
)

type decompressionCommand struct {
	glob string
	bin  string
	args []string
}

// DecompressionMatcherBuilder configures a DecompressionMatcher, which
// associates file-path globs with the command used to decompress them.
type DecompressionMatcherBuilder struct {
	commands []decompressionCommand
	defaults bool
}

// NewDecompressionMatcherBuilder returns a builder seeded with the
// built-in rules for the common compression formats.
func NewDecompressionMatcherBuilder() *DecompressionMatcherBuilder {
	return &DecompressionMatcherBuilder{defaults: true}
}

// Defaults controls whether the built-in rules are compiled into the
// matcher ahead of any explicitly added associations. Enabled by default.
func (b *DecompressionMatcherBuilder) Defaults(yes bool) *DecompressionMatcherBuilder {
	b.defaults = yes
	return b
}

// Associate binds a glob pattern to a decompression command, silently
// dropping the association if program cannot be resolved on PATH. Prefer
// TryAssociate to observe that failure.
func (b *DecompressionMatcherBuilder) Associate(pattern, program string, args ...string) *DecompressionMatcherBuilder {
	_ = b.TryAssociate(pattern, program, args...)
	return b
}

// TryAssociate binds a glob pattern to a decompression command. If
// multiple patterns match the same path, the most recently added
// association takes precedence.
func (b *DecompressionMatcherBuilder) TryAssociate(pattern, program string, args ...string) error {
	bin, err := tryResolveBinary(program)
	if err != nil {
		return err
	}
	b.commands = append(b.commands, decompressionCommand{glob: pattern, bin: bin, args: args})
	return nil
}

// Build compiles the accumulated associations into a DecompressionMatcher.
func (b *DecompressionMatcherBuilder) Build() (*DecompressionMatcher, error) {
	var all []decompressionCommand
	if b.defaults {
		all = append(all, defaultDecompressionCommands()...)
	}
	all = append(all, b.commands...)

	setBuilder := glob.NewGlobSetBuilder()
	cmds := make([]decompressionCommand, 0, len(all))
	for _, c := range all {
		g, err := glob.New(c.glob)
		if err != nil {
			return nil, ioCommandError(err)
		}
		setBuilder.Add(g)
		cmds = append(cmds, c)
	}
	set, err := setBuilder.Build()
	if err != nil {
		return nil, ioCommandError(err)
	}
	return &DecompressionMatcher{globs: set, commands: cmds}, nil
}

// DecompressionMatcher maps a file path to the command that decompresses
// it, if any.
type DecompressionMatcher struct {
	globs    *glob.GlobSet
	commands []decompressionCommand
}

// NewDecompressionMatcher returns a matcher with only the built-in rules.
func NewDecompressionMatcher() *DecompressionMatcher {
	m, err := NewDecompressionMatcherBuilder().Build()
	if err != nil {
		panic("built-in decompression rules must always compile: " + err.Error())
	}
	return m
}

// Command returns a pre-built command for decompressing path, or nil if no
// rule matches. If multiple rules match, the last-added one wins.
func (m *DecompressionMatcher) Command(path string) *exec.Cmd {
	idxs := m.globs.Matches(path)
	if len(idxs) == 0 {
		return nil
	}
	c := m.commands[idxs[len(idxs)-1]]
	return exec.Command(c.bin, c.args...)
}

// HasCommand reports whether path has at least one matching decompression
// rule.
func (m *DecompressionMatcher) HasCommand(path string) bool {
	return m.globs.IsMatch(path)
}

// DecompressionReaderBuilder configures and builds a DecompressionReader.
type DecompressionReaderBuilder struct {
	matcher        *DecompressionMatcher
	commandBuilder *CommandReaderBuilder
	nativeFallback bool
}

// NewDecompressionReaderBuilder returns a builder using the built-in
// decompression rules and asynchronous stderr draining. By default, a
// command that fails to spawn falls back to a raw passthrough reader,
// matching spec.md §4.6; see NativeFallback to opt into the in-process
// decoder instead.
func NewDecompressionReaderBuilder() *DecompressionReaderBuilder {
	return &DecompressionReaderBuilder{
		matcher:        NewDecompressionMatcher(),
		commandBuilder: NewCommandReaderBuilder(),
	}
}

// NativeFallback controls what happens when the matched decompression
// command can't be resolved or spawned. Disabled by default, which means
// the reader falls back to a raw passthrough of the file's original bytes
// (matching the original rg's "prefer shelling out" design and spec.md
// §4.6). When enabled, gzip and zstd paths instead fall back to an
// in-process klauspost/compress decoder before passthrough is tried.
func (b *DecompressionReaderBuilder) NativeFallback(yes bool) *DecompressionReaderBuilder {
	b.nativeFallback = yes
	return b
}

// Matcher replaces the rules used to pick a decompression command.
func (b *DecompressionReaderBuilder) Matcher(m *DecompressionMatcher) *DecompressionReaderBuilder {
	b.matcher = m
	return b
}

// GetMatcher returns the matcher currently configured on this builder.
func (b *DecompressionReaderBuilder) GetMatcher() *DecompressionMatcher { return b.matcher }

// AsyncStderr controls whether the decompression command's stderr is
// drained on a background goroutine. Enabled by default.
func (b *DecompressionReaderBuilder) AsyncStderr(yes bool) *DecompressionReaderBuilder {
	b.commandBuilder.AsyncStderr(yes)
	return b
}

// Build returns a reader over path's decompressed contents. If path
// matches no decompression rule, or if the matched rule's command can't be
// run in the current environment, the returned reader passes the file
// through unmodified, unless NativeFallback is enabled, in which case gzip
// and zstd paths try an in-process decoder first (those two formats have a
// pure-Go decoder available).
func (b *DecompressionReaderBuilder) Build(path string) (*DecompressionReader, error) {
	cmd := b.matcher.Command(path)
	if cmd == nil {
		return newPassthruReader(path)
	}
	if cmd.Err != nil {
		log.Debug().Str("path", path).Err(cmd.Err).
			Msg("decompression command not found, falling back to uncompressed reader")
		return b.fallback(path)
	}
	cmd.Args = append(cmd.Args, path)

	cmdReader, err := b.commandBuilder.Build(cmd)
	if err != nil {
		log.Debug().Str("path", path).Interface("cmd", cmd.Args).Err(err).
			Msg("error spawning decompression command, falling back to uncompressed reader")
		return b.fallback(path)
	}
	return &DecompressionReader{cmdRdr: cmdReader}, nil
}

// fallback is what Build reaches for once the matched external command
// can't be resolved or spawned. It always honors spec.md §4.6 ("fall back
// to a direct file reader") unless the caller explicitly opted into the
// native in-process decoder via NativeFallback.
func (b *DecompressionReaderBuilder) fallback(path string) (*DecompressionReader, error) {
	if b.nativeFallback {
		if r, ok := newNativeDecompressReader(path); ok {
			return r, nil
		}
	}
	return newPassthruReader(path)
}

// DecompressionReader streams a file's decompressed contents, using
// whichever of an external command, an in-process fallback decoder, or a
// raw passthrough is appropriate for the path it was built from.
type DecompressionReader struct {
	cmdRdr *CommandReader
	native *nativeCloser
	file   *os.File
}

// NewDecompressionReader builds a reader for path using the default
// decompression rules.
func NewDecompressionReader(path string) (*DecompressionReader, error) {
	return NewDecompressionReaderBuilder().Build(path)
}

func newPassthruReader(path string) (*DecompressionReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ioCommandError(err)
	}
	return &DecompressionReader{file: f}, nil
}

func (r *DecompressionReader) Read(p []byte) (int, error) {
	switch {
	case r.cmdRdr != nil:
		return r.cmdRdr.Read(p)
	case r.native != nil:
		return r.native.Read(p)
	default:
		return r.file.Read(p)
	}
}

// Close releases any resources used by the reader's underlying child
// process, native decoder, or open file. Close is idempotent for the
// command-backed and passthrough cases.
func (r *DecompressionReader) Close() error {
	switch {
	case r.cmdRdr != nil:
		return r.cmdRdr.Close()
	case r.native != nil:
		return r.native.Close()
	default:
		return r.file.Close()
	}
}

// ResolveBinary resolves prog to a path by searching PATH. The purpose of
// this, versus handing the program name directly to exec.Command, is
// platform parity with callers who need to guarantee PATH resolution
// happens the same way regardless of OS; it is a no-op here.
func ResolveBinary(prog string) (string, error) {
	return resolveBinary(prog)
}

func resolveBinary(prog string) (string, error) {
	return prog, nil
}

func tryResolveBinary(prog string) (string, error) {
	if filepath.IsAbs(prog) {
		return prog, nil
	}
	path, err := exec.LookPath(prog)
	if err != nil {
		return "", ioCommandError(&execNotFoundError{prog: prog})
	}
	return path, nil
}

type execNotFoundError struct{ prog string }

func (e *execNotFoundError) Error() string {
	return e.prog + ": could not find executable in PATH"
}

func defaultDecompressionCommands() []decompressionCommand {
	var cmds []decompressionCommand
	add := func(pattern string, argv []string) {
		bin, err := resolveBinary(argv[0])
		if err != nil {
			log.Debug().Err(err).Str("program", argv[0]).Msg("decompression command unavailable")
			return
		}
		args := make([]string, len(argv)-1)
		copy(args, argv[1:])
		cmds = append(cmds, decompressionCommand{glob: pattern, bin: bin, args: args})
	}
	add("*.gz", []string{"gzip", "-d", "-c"})
	add("*.tgz", []string{"gzip", "-d", "-c"})
	add("*.bz2", []string{"bzip2", "-d", "-c"})
	add("*.tbz2", []string{"bzip2", "-d", "-c"})
	add("*.xz", []string{"xz", "-d", "-c"})
	add("*.txz", []string{"xz", "-d", "-c"})
	add("*.lz4", []string{"lz4", "-d", "-c"})
	add("*.lzma", []string{"xz", "--format=lzma", "-d", "-c"})
	add("*.br", []string{"brotli", "-d", "-c"})
	add("*.zst", []string{"zstd", "-q", "-d", "-c"})
	add("*.zstd", []string{"zstd", "-q", "-d", "-c"})
	add("*.Z", []string{"uncompress", "-c"})
	return cmds
}

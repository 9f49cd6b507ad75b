// Command rg is the thin CLI entry point wiring pattern/path/flag parsing
// to worker.Worker. Arg lowering, config-file loading, and shell
// completion generation are out of scope for the core (spec.md §1); this
// is only enough plumbing to drive it end to end.
package main

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/coregx/rg/ignore"
	"github.com/coregx/rg/internal/logging"
	"github.com/coregx/rg/internal/walk"
	"github.com/coregx/rg/printer"
	"github.com/coregx/rg/regex/meta"
	"github.com/coregx/rg/search"
	"github.com/coregx/rg/worker"
)

type options struct {
	ignoreCase     bool
	invertMatch    bool
	lineNumber     bool
	count          bool
	countMatches   bool
	filesWithMatch bool
	filesWithout   bool
	quiet          bool
	before         int
	after          int
	context        int
	maxCount       int
	jsonOutput     bool
	noColor        bool
	hidden         bool
	noIgnore       bool
	searchZip      bool
	byteOffset     bool
	column         bool
	heading        bool
	multiline      bool
	verbose        bool
	glob           []string
	preprocessor   string
	replace        string
	threads        int
	sort           bool
	sortr          bool
}

func main() {
	os.Exit(run())
}

func run() int {
	var opts options

	cmd := &cobra.Command{
		Use:   "rg PATTERN [PATH...]",
		Short: "recursively search the current directory for a regex pattern",
		Args:  cobra.MinimumNArgs(1),
	}
	flags := cmd.Flags()
	flags.BoolVarP(&opts.ignoreCase, "ignore-case", "i", false, "case-insensitive matching")
	flags.BoolVarP(&opts.invertMatch, "invert-match", "v", false, "select non-matching lines")
	flags.BoolVarP(&opts.lineNumber, "line-number", "n", false, "print line numbers")
	flags.BoolVarP(&opts.count, "count", "c", false, "print only a count of matching lines per file")
	flags.BoolVar(&opts.countMatches, "count-matches", false, "print only a count of matches per file")
	flags.BoolVarP(&opts.filesWithMatch, "files-with-matches", "l", false, "print only file names with matches")
	flags.BoolVar(&opts.filesWithout, "files-without-match", false, "print only file names with no matches")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress normal output")
	flags.IntVarP(&opts.before, "before-context", "B", 0, "lines of leading context")
	flags.IntVarP(&opts.after, "after-context", "A", 0, "lines of trailing context")
	flags.IntVarP(&opts.context, "context", "C", 0, "lines of leading and trailing context")
	flags.IntVarP(&opts.maxCount, "max-count", "m", 0, "stop after NUM matches")
	flags.BoolVar(&opts.jsonOutput, "json", false, "emit JSON Lines output")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colour output")
	flags.BoolVar(&opts.hidden, "hidden", false, "search hidden files and directories")
	flags.BoolVar(&opts.noIgnore, "no-ignore", false, "don't respect .gitignore files")
	flags.BoolVarP(&opts.searchZip, "search-zip", "z", false, "search inside compressed files")
	flags.BoolVarP(&opts.byteOffset, "byte-offset", "b", false, "print the byte offset with output lines")
	flags.BoolVar(&opts.column, "column", false, "print the column number of the first match")
	flags.BoolVar(&opts.heading, "heading", false, "print the file path once above matches instead of per line")
	flags.BoolVarP(&opts.multiline, "multiline", "U", false, "allow matches to span multiple lines")
	flags.BoolVar(&opts.verbose, "verbose", false, "show debug messages")
	flags.StringArrayVarP(&opts.glob, "glob", "g", nil, "include or exclude files matching GLOB")
	flags.StringVar(&opts.preprocessor, "pre", "", "run a preprocessor command on each file before searching it")
	flags.StringVarP(&opts.replace, "replace", "r", "", "replace every match with REPLACEMENT")
	flags.IntVarP(&opts.threads, "threads", "j", 0, "number of search threads (0 = one per CPU)")
	flags.BoolVar(&opts.sort, "sort", false, "visit files in lexical path order, disabling parallelism")
	flags.BoolVar(&opts.sortr, "sortr", false, "like --sort, but in reverse lexical path order")

	var exitCode int
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		logging.SetVerbose(opts.verbose)
		pattern := args[0]
		paths := args[1:]
		if len(paths) == 0 {
			paths = []string{"."}
		}
		code, err := execute(opts, pattern, paths)
		exitCode = code
		return err
	}

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rg:", err)
		return 2
	}
	return exitCode
}

func execute(opts options, pattern string, paths []string) (int, error) {
	compiled := pattern
	if opts.ignoreCase {
		compiled = "(?i)" + pattern
	}
	engine, err := meta.Compile(compiled)
	if err != nil {
		fmt.Fprintln(os.Stderr, "rg:", err)
		return 2, nil
	}
	matcher := search.NewRegexMatcher(engine)

	before, after := opts.before, opts.after
	if opts.context > 0 {
		before, after = opts.context, opts.context
	}

	sb := search.NewSearcherBuilder().
		InvertMatch(opts.invertMatch).
		LineNumber(opts.lineNumber || opts.byteOffset).
		MultiLine(opts.multiline).
		BeforeContext(before).
		AfterContext(after)
	if opts.maxCount > 0 {
		sb.MaxMatches(uint64(opts.maxCount))
	}
	searcher, err := sb.Build()
	if err != nil {
		return 2, err
	}

	overrides, err := buildOverrides(opts.glob)
	if err != nil {
		return 2, err
	}

	p := buildPrinter(opts)

	cfg := worker.Config{
		Preprocessor:   opts.preprocessor,
		SearchZip:      opts.searchZip,
		BinaryImplicit: search.BinaryDetectionQuit(0x00),
		BinaryExplicit: search.BinaryDetectionNone(),
	}
	w := worker.New(cfg, matcher, searcher, p)

	// Sort modes disable parallelism entirely (spec.md §5): a pool of size
	// 1 degenerates worker.Pool.Run to sequential dispatch on this
	// goroutine, which also keeps the sorted-order guarantee honest.
	poolSize := opts.threads
	if poolSize <= 0 {
		poolSize = runtime.NumCPU()
	}
	if opts.sort || opts.sortr {
		poolSize = 1
	}
	pool := worker.NewPool(poolSize)

	var mu sync.Mutex
	hasMatch := false
	onResult := func(h worker.Haystack, result worker.Result, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			fmt.Fprintln(os.Stderr, "rg:", h.Path()+":", err)
			logging.MarkErrored()
			return
		}
		if result.HasMatch {
			hasMatch = true
		}
	}

	for _, root := range paths {
		stat, err := os.Stat(root)
		if err != nil {
			fmt.Fprintln(os.Stderr, "rg:", err)
			logging.MarkErrored()
			continue
		}
		var haystacks []worker.Haystack
		if stat.IsDir() {
			haystacks, err = walk.Walk(root, walk.Options{
				Hidden:    opts.hidden,
				Gitignore: !opts.noIgnore,
				Overrides: overrides,
				Sort:      opts.sort || opts.sortr,
				Reverse:   opts.sortr,
			})
			if err != nil {
				fmt.Fprintln(os.Stderr, "rg:", err)
				logging.MarkErrored()
				continue
			}
		} else {
			haystacks = []worker.Haystack{worker.NewExplicitHaystack(root)}
		}

		pool.Run(w, haystacks, onResult)
	}

	switch {
	case logging.HasErrored():
		return 2, nil
	case hasMatch:
		return 0, nil
	default:
		return 1, nil
	}
}

func buildOverrides(globs []string) (*ignore.Override, error) {
	if len(globs) == 0 {
		return nil, nil
	}
	b := ignore.NewOverrideBuilder(".")
	for _, g := range globs {
		if err := b.Add(g); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

func buildPrinter(opts options) *worker.Printer {
	w := os.Stdout
	useColor := !opts.noColor && isatty.IsTerminal(w.Fd())

	switch {
	case opts.jsonOutput:
		return &worker.Printer{
			Kind: worker.PrinterJSON,
			W:    w,
			JSON: printer.JSONConfig{AlwaysBeginEnd: false},
		}
	case opts.count || opts.countMatches || opts.filesWithMatch || opts.filesWithout || opts.quiet:
		kind := printer.SummaryCount
		switch {
		case opts.countMatches:
			kind = printer.SummaryCountMatches
		case opts.filesWithMatch:
			kind = printer.SummaryPathWithMatch
		case opts.filesWithout:
			kind = printer.SummaryPathWithoutMatch
		case opts.quiet:
			kind = printer.SummaryQuietWithMatch
		}
		return &worker.Printer{
			Kind:    worker.PrinterSummary,
			W:       w,
			Summary: printer.SummaryConfig{Kind: kind, TrackStats: opts.countMatches},
		}
	default:
		cfg := printer.DefaultStandardConfig()
		cfg.Colors = useColor
		cfg.LineNumber = opts.lineNumber
		cfg.Column = opts.column
		cfg.ByteOffset = opts.byteOffset
		cfg.Heading = opts.heading
		cfg.Path = true
		if opts.replace != "" {
			cfg.Replacement = []byte(opts.replace)
		}
		return &worker.Printer{Kind: worker.PrinterStandard, W: w, Standard: cfg}
	}
}

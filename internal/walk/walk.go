// Package walk implements the minimal directory traverser the search core
// depends on: it walks a tree, applies the ignore/override rule chain
// documented in spec.md §4.4/§4.5, and produces worker.Haystack values in
// the order the search worker should visit them.
//
// This is not part of the distilled spec's own budget (spec.md §1 calls
// directory traversal out of scope), but the worker needs something to
// hand it haystacks to drive the core end to end.
package walk

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/coregx/rg/ignore"
	"github.com/coregx/rg/worker"
)

// Options configures a Walk.
type Options struct {
	// Hidden, when false (the default), skips dot-files and dot-directories.
	Hidden bool

	// Gitignore, when true (the default), honors .gitignore/.ignore files
	// found at and below each root, plus the global excludes file.
	Gitignore bool

	// IgnoreFileNames lists the ignore-file names consulted per directory,
	// in priority order (later entries win ties the way a later rule line
	// would, since each file's rules are appended to the same chain).
	// Defaults to [".ignore", ".gitignore"].
	IgnoreFileNames []string

	// Overrides, if non-nil, is consulted before any Gitignore chain and
	// takes precedence over it (the -g/--glob command-line rules).
	Overrides *ignore.Override

	// Sort, when true, yields haystacks in lexical path order within each
	// directory; this disables any parallel traversal the caller might
	// otherwise perform; see spec.md §5.
	Sort bool

	// Reverse, when combined with Sort, yields haystacks in descending
	// lexical path order instead of ascending. Ignored if Sort is false.
	Reverse bool
}

func (o Options) ignoreFileNames() []string {
	if len(o.IgnoreFileNames) > 0 {
		return o.IgnoreFileNames
	}
	return []string{".ignore", ".gitignore"}
}

// frame is one level of the directory-ignore stack: the accumulated
// Gitignore rules in effect for everything under dir, inherited from its
// parent plus whatever ignore files live directly in dir.
type frame struct {
	dir     string
	chain   []*ignore.Gitignore
}

func (f *frame) matched(path string, isDir bool) ignore.Match {
	// Last-added (innermost) file wins ties, so walk the chain in reverse.
	for i := len(f.chain) - 1; i >= 0; i-- {
		if m := f.chain[i].MatchedPathOrAnyParents(path, isDir); !m.IsNone() {
			return m
		}
	}
	return ignore.Match{}
}

// Walk walks root and returns every regular file found, in traversal
// order (or sorted order, if opts.Sort is set), after applying opts'
// ignore/override rules. Paths named explicitly are the caller's
// responsibility (use worker.NewExplicitHaystack directly); Walk only
// ever produces non-explicit haystacks.
func Walk(root string, opts Options) ([]worker.Haystack, error) {
	var out []worker.Haystack

	global, _ := ignore.Global()
	rootFrame := &frame{dir: root}
	if global != nil && !global.IsEmpty() {
		rootFrame.chain = append(rootFrame.chain, global)
	}
	if opts.Gitignore {
		rootFrame.chain = append(rootFrame.chain, loadIgnoreFiles(root, opts)...)
	}

	frames := map[string]*frame{root: rootFrame}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		parentDir := filepath.Dir(path)
		parent := frames[parentDir]
		if parent == nil {
			parent = rootFrame
		}

		if !opts.Hidden && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// Overrides take precedence over the gitignore chain: an explicit
		// include bypasses it entirely, and an explicit exclude skips
		// without ever consulting it.
		includedByOverride := false
		if opts.Overrides != nil && !opts.Overrides.IsEmpty() {
			m := opts.Overrides.Matched(path, d.IsDir())
			if m.IsIgnore() {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			includedByOverride = m.IsWhitelist()
		}

		if !includedByOverride {
			if m := parent.matched(path, d.IsDir()); m.IsIgnore() {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if d.IsDir() {
			f := &frame{dir: path, chain: append([]*ignore.Gitignore{}, parent.chain...)}
			if opts.Gitignore {
				f.chain = append(f.chain, loadIgnoreFiles(path, opts)...)
			}
			frames[path] = f
			return nil
		}

		out = append(out, worker.NewHaystack(path))
		return nil
	})
	if err != nil {
		return nil, err
	}

	if opts.Sort {
		sort.Slice(out, func(i, j int) bool {
			if opts.Reverse {
				return out[i].Path() > out[j].Path()
			}
			return out[i].Path() < out[j].Path()
		})
	}
	return out, nil
}

func loadIgnoreFiles(dir string, opts Options) []*ignore.Gitignore {
	var gis []*ignore.Gitignore
	for _, name := range opts.ignoreFileNames() {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		b := ignore.NewGitignoreBuilder(dir)
		if err := b.Add(p); err != nil {
			continue
		}
		gi, err := b.Build()
		if err != nil || gi.IsEmpty() {
			continue
		}
		gis = append(gis, gi)
	}
	return gis
}

func isHidden(name string) bool {
	return len(name) > 1 && name[0] == '.'
}

package locale

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/makeitchaccha/fluent-locale-checker/checker/resource"
)

const DefaultConcurrency = 8

var (
	ErrLocaleDirectoryMissing = errors.New("locale directory missing")
)

type DirectoryMissingError struct {
	Locale string
	Path   string
}

func (e *DirectoryMissingError) Error() string {
	return fmt.Sprintf("could not find locale %s: directory %s does not exist", e.Locale, e.Path)
}

func (e *DirectoryMissingError) Is(target error) bool {
	return target == ErrLocaleDirectoryMissing
}

// Locale holds every resource file of one locale, keyed by its slash
// separated path relative to the locale directory. Files that could not be
// read or parsed are kept in Errors instead of Resources.
type Locale struct {
	Name      string
	Resources map[string]*resource.Resource
	Errors    map[string]error
}

func NewLocale(name string) *Locale {
	return &Locale{
		Name:      name,
		Resources: make(map[string]*resource.Resource),
		Errors:    make(map[string]error),
	}
}

// Files returns the sorted paths of all files, parsed or failed.
func (l *Locale) Files() []string {
	files := append(lo.Keys(l.Resources), lo.Keys(l.Errors)...)
	files = lo.Uniq(files)
	sort.Strings(files)
	return files
}

func (l *Locale) Has(file string) bool {
	if _, ok := l.Resources[file]; ok {
		return true
	}
	_, ok := l.Errors[file]
	return ok
}

// Discover returns the sorted names of the locale directories under root.
func Discover(fs afero.Fs, root string) ([]string, error) {
	entries, err := afero.ReadDir(fs, root)
	if err != nil {
		return nil, fmt.Errorf("failed to read locales directory %s: %w", root, err)
	}

	var locales []string
	for _, entry := range entries {
		if entry.IsDir() {
			locales = append(locales, entry.Name())
		}
	}
	sort.Strings(locales)
	return locales, nil
}

type Loader struct {
	fs          afero.Fs
	root        string
	registry    *resource.Registry
	recursive   bool
	concurrency int
}

type Option func(*Loader)

// WithRecursive makes the loader descend into subdirectories of a locale.
// One loader serves every locale of a run, so the policy is always shared.
func WithRecursive(recursive bool) Option {
	return func(l *Loader) {
		l.recursive = recursive
	}
}

// WithConcurrency bounds the number of files read at the same time.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

func NewLoader(fs afero.Fs, root string, registry *resource.Registry, opts ...Option) *Loader {
	loader := &Loader{
		fs:          fs,
		root:        root,
		registry:    registry,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(loader)
	}
	return loader
}

func (l *Loader) Root() string {
	return l.root
}

func (l *Loader) Dir(name string) string {
	return filepath.Join(l.root, name)
}

type fileResult struct {
	resource *resource.Resource
	err      error
}

// Load reads and parses every resource file of the locale. A file that fails
// is recorded in Locale.Errors and the remaining files are still loaded.
func (l *Loader) Load(ctx context.Context, name string) (*Locale, error) {
	dir := l.Dir(name)
	exists, err := afero.DirExists(l.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat locale directory %s: %w", dir, err)
	}
	if !exists {
		return nil, &DirectoryMissingError{Locale: name, Path: dir}
	}

	files, err := l.listFiles(dir)
	if err != nil {
		return nil, err
	}

	results := make([]fileResult, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = l.loadFile(dir, file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading locale %s: %w", name, err)
	}

	loc := NewLocale(name)
	for i, file := range files {
		if err := results[i].err; err != nil {
			slog.Warn("Failed to load resource file", "locale", name, "file", file, "err", err)
			loc.Errors[file] = err
			continue
		}
		loc.Resources[file] = results[i].resource
	}

	slog.Info("Loaded locale", "locale", name, "files", len(loc.Resources), "failed", len(loc.Errors))
	return loc, nil
}

func (l *Loader) loadFile(dir, file string) fileResult {
	parser, ok := l.registry.ForFile(file)
	if !ok {
		return fileResult{err: fmt.Errorf("no parser registered for %s", file)}
	}

	data, err := afero.ReadFile(l.fs, filepath.Join(dir, filepath.FromSlash(file)))
	if err != nil {
		return fileResult{err: fmt.Errorf("failed to read resource file: %w", err)}
	}

	res, err := parser.Parse(data)
	if err != nil {
		return fileResult{err: err}
	}
	return fileResult{resource: res}
}

// listFiles returns the slash separated paths of the files the registry can
// parse, sorted.
func (l *Loader) listFiles(dir string) ([]string, error) {
	var files []string
	accept := func(rel string) {
		if _, ok := l.registry.ForFile(rel); !ok {
			slog.Debug("Skipping file without a registered parser", "dir", dir, "file", rel)
			return
		}
		files = append(files, filepath.ToSlash(rel))
	}

	if !l.recursive {
		entries, err := afero.ReadDir(l.fs, dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read locale directory %s: %w", dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			accept(entry.Name())
		}
		sort.Strings(files)
		return files, nil
	}

	err := afero.Walk(l.fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		accept(rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk locale directory %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

package checker

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/makeitchaccha/fluent-locale-checker/checker/check"
	"github.com/makeitchaccha/fluent-locale-checker/checker/locale"
	"github.com/makeitchaccha/fluent-locale-checker/checker/report"
	"github.com/makeitchaccha/fluent-locale-checker/checker/resource"
	"github.com/makeitchaccha/fluent-locale-checker/checker/resource/fluent"
	"github.com/makeitchaccha/fluent-locale-checker/checker/resource/tomlres"
)

// DefaultRegistry returns a registry with every supported resource format.
func DefaultRegistry() *resource.Registry {
	return resource.NewRegistry(fluent.New(), tomlres.New())
}

type Runner struct {
	fs          afero.Fs
	loader      *locale.Loader
	checker     *check.Checker
	reference   string
	concurrency int
}

func NewRunner(cfg Config, fs afero.Fs, registry *resource.Registry) *Runner {
	return &Runner{
		fs: fs,
		loader: locale.NewLoader(fs, cfg.Root, registry,
			locale.WithRecursive(cfg.Check.Recursive),
			locale.WithConcurrency(cfg.Check.Concurrency),
		),
		checker:     check.New(check.WithStrict(cfg.Check.Strict)),
		reference:   cfg.Check.DefaultLocale,
		concurrency: max(cfg.Check.Concurrency, 1),
	}
}

// Run checks every locale under the root directory against the reference
// locale. A missing reference locale aborts before any comparison.
func (r *Runner) Run(ctx context.Context) (*report.Report, error) {
	locales, err := locale.Discover(r.fs, r.loader.Root())
	if err != nil {
		return nil, err
	}
	if !slices.Contains(locales, r.reference) {
		return nil, &locale.DirectoryMissingError{Locale: r.reference, Path: r.loader.Dir(r.reference)}
	}

	reference, err := r.loader.Load(ctx, r.reference)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference locale: %w", err)
	}

	rep := &report.Report{
		Root:            r.loader.Root(),
		ReferenceLocale: r.reference,
	}
	if len(reference.Errors) > 0 {
		rep.Results = append(rep.Results, check.CheckReference(reference))
	}

	targets := lo.Without(locales, r.reference)
	results := make([]check.Result, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, name := range targets {
		g.Go(func() error {
			target, err := r.loader.Load(ctx, name)
			if err != nil {
				return err
			}
			result, err := r.checker.Check(reference, target)
			if err != nil {
				return err
			}
			slog.Info("Checked locale", "locale", name, "problems", len(result.Problems), "notes", len(result.Notes))
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rep.Results = append(rep.Results, results...)
	slices.SortStableFunc(rep.Results, func(a, b check.Result) int {
		return cmp.Compare(a.Locale, b.Locale)
	})
	return rep, nil
}

package check

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/makeitchaccha/fluent-locale-checker/checker/locale"
	"github.com/makeitchaccha/fluent-locale-checker/checker/resource"
)

var (
	ErrParserInvariantViolated = errors.New("parser invariant violated")
)

// InvariantError reports a resource that the parser should never have
// produced, such as one holding the same key twice.
type InvariantError struct {
	Locale string
	File   string
	Key    string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: locale %s, file %s: duplicate identifier %q", ErrParserInvariantViolated, e.Locale, e.File, e.Key)
}

func (e *InvariantError) Is(target error) bool {
	return target == ErrParserInvariantViolated
}

type Checker struct {
	strict bool
}

type Option func(*Checker)

// WithStrict reports entries that only exist in the target locale as
// problems instead of notes.
func WithStrict(strict bool) Option {
	return func(c *Checker) {
		c.strict = strict
	}
}

func New(opts ...Option) *Checker {
	c := &Checker{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check compares target against the reference locale. Structural differences
// are returned as data; an error is only returned for resources that break
// the parser invariants.
func (c *Checker) Check(reference, target *locale.Locale) (Result, error) {
	result := Result{Locale: target.Name, Problems: []Diff{}}

	for _, file := range reference.Files() {
		if !target.Has(file) {
			result.add(Diff{
				Kind:   KindMissingFile,
				File:   file,
				Detail: fmt.Sprintf("The file %s is missing.", file),
			}, false)
			continue
		}

		if err, ok := target.Errors[file]; ok {
			result.add(Diff{
				Kind:   KindParseError,
				File:   file,
				Detail: fmt.Sprintf("The file %s could not be parsed: %v", file, err),
			}, false)
			continue
		}

		// reference parse errors are reported once for the reference locale
		ref, ok := reference.Resources[file]
		if !ok {
			continue
		}

		if err := c.checkFile(&result, reference.Name, target.Name, file, ref, target.Resources[file]); err != nil {
			return Result{}, err
		}
	}

	result.sort()
	return result, nil
}

// CheckReference reports the files of the reference locale that could not be
// loaded. Their entries cannot be compared in any target locale.
func CheckReference(reference *locale.Locale) Result {
	result := Result{Locale: reference.Name, Problems: []Diff{}}
	for file, err := range reference.Errors {
		result.add(Diff{
			Kind:   KindParseError,
			File:   file,
			Detail: fmt.Sprintf("The reference file %s could not be parsed: %v", file, err),
		}, false)
	}
	result.sort()
	return result
}

func (c *Checker) checkFile(result *Result, refLocale, targetLocale, file string, ref, target *resource.Resource) error {
	refEntries, err := index(refLocale, file, ref)
	if err != nil {
		return err
	}
	targetEntries, err := index(targetLocale, file, target)
	if err != nil {
		return err
	}

	for _, key := range ref.Keys() {
		targetEntry, ok := targetEntries[key]
		if !ok {
			result.add(Diff{
				Kind:   KindMissingEntry,
				File:   file,
				Entry:  key,
				Detail: fmt.Sprintf("The entry %s is missing.", key),
			}, false)
			continue
		}

		if problems := compareEntry(refEntries[key], targetEntry); len(problems) > 0 {
			result.add(Diff{
				Kind:   KindShapeMismatch,
				File:   file,
				Entry:  key,
				Detail: fmt.Sprintf("The entry %s does not match the reference: %s.", key, strings.Join(problems, "; ")),
			}, false)
		}
	}

	for _, key := range target.Keys() {
		if _, ok := refEntries[key]; ok {
			continue
		}
		result.add(Diff{
			Kind:   KindExtraEntry,
			File:   file,
			Entry:  key,
			Detail: fmt.Sprintf("The entry %s does not exist in the reference.", key),
		}, !c.strict)
	}

	return nil
}

func index(localeName, file string, res *resource.Resource) (map[string]*resource.Entry, error) {
	entries := make(map[string]*resource.Entry, len(res.Entries))
	for _, entry := range res.Entries {
		key := entry.Key()
		if _, dup := entries[key]; dup {
			return nil, &InvariantError{Locale: localeName, File: file, Key: key}
		}
		entries[key] = entry
	}
	return entries, nil
}

// compareEntry lists every structural difference between a reference entry
// and its translation. Literal text and element order are ignored.
func compareEntry(ref, target *resource.Entry) []string {
	problems := comparePattern("value", ref.Value, target.Value)

	refAttrs := ref.AttributeNames()
	targetAttrs := target.AttributeNames()
	missing, extra := lo.Difference(refAttrs, targetAttrs)
	for _, name := range missing {
		problems = append(problems, fmt.Sprintf("missing attribute .%s", name))
	}
	for _, name := range extra {
		problems = append(problems, fmt.Sprintf("unexpected attribute .%s", name))
	}

	for _, name := range lo.Intersect(refAttrs, targetAttrs) {
		refAttr, _ := ref.Attribute(name)
		targetAttr, _ := target.Attribute(name)
		problems = append(problems, comparePattern("attribute ."+name, refAttr.Value, targetAttr.Value)...)
	}

	return problems
}

func comparePattern(what string, ref, target *resource.Pattern) []string {
	if ref == nil {
		if target != nil {
			return []string{fmt.Sprintf("unexpected %s", what)}
		}
		return nil
	}
	if target == nil {
		return []string{fmt.Sprintf("missing %s", what)}
	}

	var problems []string
	missing, extra := lo.Difference(ref.Variables(), target.Variables())
	for _, name := range missing {
		problems = append(problems, fmt.Sprintf("%s is missing placeable $%s", what, name))
	}
	for _, name := range extra {
		problems = append(problems, fmt.Sprintf("%s has unexpected placeable $%s", what, name))
	}

	if ref.HasSelector() && !hasVariants(target) {
		problems = append(problems, fmt.Sprintf("%s is missing a selector", what))
	}
	return problems
}

func hasVariants(p *resource.Pattern) bool {
	return lo.SomeBy(p.Selectors(), func(s resource.SelectExpression) bool {
		return len(s.Variants) > 0
	})
}

func (r *Result) add(diff Diff, note bool) {
	if note {
		r.Notes = append(r.Notes, diff)
		return
	}
	r.Problems = append(r.Problems, diff)
}

func (r *Result) sort() {
	slices.SortStableFunc(r.Problems, compareDiffs)
	slices.SortStableFunc(r.Notes, compareDiffs)
}

func compareDiffs(a, b Diff) int {
	return cmp.Or(
		cmp.Compare(a.File, b.File),
		cmp.Compare(a.Kind.rank(), b.Kind.rank()),
		cmp.Compare(a.Entry, b.Entry),
	)
}

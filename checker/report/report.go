package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fatih/color"
	"github.com/samber/lo"

	"github.com/makeitchaccha/fluent-locale-checker/checker/check"
)

// Exit statuses of a run.
const (
	ExitOK           = 0
	ExitInconsistent = 1
	ExitSetup        = 2
	ExitInternal     = 3
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatTOML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q, expected text, json or toml", s)
	}
}

// Report aggregates the results of every checked locale, sorted by locale.
type Report struct {
	Root            string         `json:"root" toml:"root"`
	ReferenceLocale string         `json:"reference_locale" toml:"reference_locale"`
	Results         []check.Result `json:"results" toml:"results"`
}

func (r *Report) OK() bool {
	return lo.EveryBy(r.Results, check.Result.OK)
}

func (r *Report) ProblemCount() int {
	return lo.SumBy(r.Results, func(res check.Result) int { return len(res.Problems) })
}

func (r *Report) NoteCount() int {
	return lo.SumBy(r.Results, func(res check.Result) int { return len(res.Notes) })
}

func ExitStatus(r *Report) int {
	if r.OK() {
		return ExitOK
	}
	return ExitInconsistent
}

type Reporter struct {
	format Format
	color  bool
	notes  bool
}

type Option func(*Reporter)

func WithColor(enabled bool) Option {
	return func(r *Reporter) {
		r.color = enabled
	}
}

// WithNotes controls whether informational notes are rendered.
func WithNotes(enabled bool) Option {
	return func(r *Reporter) {
		r.notes = enabled
	}
}

func New(format Format, opts ...Option) *Reporter {
	r := &Reporter{
		format: format,
		notes:  true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reporter) Write(w io.Writer, rep *Report) error {
	if !r.notes {
		rep = withoutNotes(rep)
	}

	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case FormatTOML:
		return toml.NewEncoder(w).Encode(rep)
	case FormatText, "":
		return r.writeText(w, rep)
	default:
		return fmt.Errorf("unknown output format %q", r.format)
	}
}

func withoutNotes(rep *Report) *Report {
	stripped := *rep
	stripped.Results = lo.Map(rep.Results, func(res check.Result, _ int) check.Result {
		res.Notes = nil
		return res
	})
	return &stripped
}

func (r *Reporter) palette(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if r.color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func (r *Reporter) writeText(w io.Writer, rep *Report) error {
	var (
		title   = r.palette(color.Bold)
		problem = r.palette(color.FgRed)
		note    = r.palette(color.FgYellow)
		ok      = r.palette(color.FgGreen)
	)

	var sb strings.Builder
	for _, res := range rep.Results {
		if res.Empty() {
			fmt.Fprintf(&sb, "%s: %s\n", title.Sprint(res.Locale), ok.Sprint("ok"))
			continue
		}

		fmt.Fprintf(&sb, "%s: %s\n", title.Sprint(res.Locale), summary(len(res.Problems), len(res.Notes)))
		problems := lo.GroupBy(res.Problems, func(d check.Diff) string { return d.File })
		notes := lo.GroupBy(res.Notes, func(d check.Diff) string { return d.File })
		files := lo.Uniq(append(
			lo.Map(res.Problems, func(d check.Diff, _ int) string { return d.File }),
			lo.Map(res.Notes, func(d check.Diff, _ int) string { return d.File })...,
		))
		sort.Strings(files)

		for _, file := range files {
			fmt.Fprintf(&sb, "  %s\n", file)
			for _, d := range problems[file] {
				fmt.Fprintf(&sb, "    %s %s\n", problem.Sprintf("[%s]", d.Kind), d.Detail)
			}
			for _, d := range notes[file] {
				fmt.Fprintf(&sb, "    %s %s\n", note.Sprintf("[note: %s]", d.Kind), d.Detail)
			}
		}
	}

	if rep.OK() {
		fmt.Fprintf(&sb, "%s\n", ok.Sprintf("All %d locales are consistent with %s.", len(rep.Results), rep.ReferenceLocale))
	} else {
		fmt.Fprintf(&sb, "%s\n", problem.Sprintf("Found %s across %d locales checked against %s.",
			plural(rep.ProblemCount(), "problem"), len(rep.Results), rep.ReferenceLocale))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func summary(problems, notes int) string {
	if notes == 0 {
		return plural(problems, "problem")
	}
	return plural(problems, "problem") + ", " + plural(notes, "note")
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

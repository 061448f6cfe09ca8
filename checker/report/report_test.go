package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makeitchaccha/fluent-locale-checker/checker/check"
)

func sampleReport() *Report {
	return &Report{
		Root:            "locales",
		ReferenceLocale: "en-US",
		Results: []check.Result{
			{Locale: "de", Problems: []check.Diff{}},
			{
				Locale: "fr",
				Problems: []check.Diff{
					{Kind: check.KindMissingEntry, File: "a.ftl", Entry: "bye", Detail: "The entry bye is missing."},
					{Kind: check.KindMissingFile, File: "b.ftl", Detail: "The file b.ftl is missing."},
				},
				Notes: []check.Diff{
					{Kind: check.KindExtraEntry, File: "a.ftl", Entry: "-brand", Detail: "The entry -brand does not exist in the reference."},
				},
			},
		},
	}
}

func TestExitStatus(t *testing.T) {
	testcases := []struct {
		name string
		rep  *Report
		want int
	}{
		{
			name: "no results",
			rep:  &Report{ReferenceLocale: "en-US"},
			want: ExitOK,
		},
		{
			name: "only notes",
			rep: &Report{Results: []check.Result{
				{Locale: "fr", Notes: []check.Diff{{Kind: check.KindExtraEntry, File: "a.ftl", Entry: "x"}}},
			}},
			want: ExitOK,
		},
		{
			name: "problems",
			rep:  sampleReport(),
			want: ExitInconsistent,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExitStatus(tc.rep))
		})
	}
}

func TestCounts(t *testing.T) {
	rep := sampleReport()
	assert.Equal(t, 2, rep.ProblemCount())
	assert.Equal(t, 1, rep.NoteCount())
	assert.False(t, rep.OK())
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(FormatText).Write(&buf, sampleReport()))

	want := `de: ok
fr: 2 problems, 1 note
  a.ftl
    [missing-entry] The entry bye is missing.
    [note: extra-entry] The entry -brand does not exist in the reference.
  b.ftl
    [missing-file] The file b.ftl is missing.
Found 2 problems across 2 locales checked against en-US.
`
	assert.Equal(t, want, buf.String())
}

func TestWriteTextWithoutNotes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(FormatText, WithNotes(false)).Write(&buf, sampleReport()))

	assert.Contains(t, buf.String(), "fr: 2 problems\n")
	assert.NotContains(t, buf.String(), "-brand")
}

func TestWriteTextConsistent(t *testing.T) {
	var buf bytes.Buffer
	rep := &Report{
		ReferenceLocale: "en-US",
		Results:         []check.Result{{Locale: "de"}, {Locale: "fr"}},
	}
	require.NoError(t, New(FormatText).Write(&buf, rep))
	assert.Equal(t, "de: ok\nfr: ok\nAll 2 locales are consistent with en-US.\n", buf.String())
}

func TestWriteTextColor(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(FormatText, WithColor(true)).Write(&buf, sampleReport()))
	assert.Contains(t, buf.String(), "\x1b[31m[missing-entry]")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(FormatJSON).Write(&buf, sampleReport()))

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, *sampleReport(), decoded)
	assert.Contains(t, buf.String(), `"kind": "missing-entry"`)
}

func TestWriteTOML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(FormatTOML).Write(&buf, sampleReport()))

	var decoded Report
	_, err := toml.Decode(buf.String(), &decoded)
	require.NoError(t, err)
	assert.Equal(t, "en-US", decoded.ReferenceLocale)
	require.Len(t, decoded.Results, 2)
	require.Len(t, decoded.Results[1].Problems, 2)
	assert.Equal(t, check.KindMissingFile, decoded.Results[1].Problems[1].Kind)
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"text", "JSON", "toml"} {
		_, err := ParseFormat(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseFormat("yaml")
	assert.Error(t, err)
}

package check

type Kind string

const (
	KindMissingFile   Kind = "missing-file"
	KindParseError    Kind = "parse-error"
	KindMissingEntry  Kind = "missing-entry"
	KindShapeMismatch Kind = "shape-mismatch"
	KindExtraEntry    Kind = "extra-entry"
)

func (k Kind) String() string {
	return string(k)
}

func (k Kind) rank() int {
	switch k {
	case KindMissingFile:
		return 0
	case KindParseError:
		return 1
	case KindMissingEntry:
		return 2
	case KindShapeMismatch:
		return 3
	case KindExtraEntry:
		return 4
	default:
		return 5
	}
}

// Diff is one difference between a locale and the reference locale.
type Diff struct {
	Kind   Kind   `json:"kind" toml:"kind"`
	File   string `json:"file" toml:"file"`
	Entry  string `json:"entry,omitempty" toml:"entry,omitempty"`
	Detail string `json:"detail" toml:"detail"`
}

// Result holds the differences found for one locale, ordered by file, kind
// and entry. Notes never fail a run.
type Result struct {
	Locale   string `json:"locale" toml:"locale"`
	Problems []Diff `json:"problems" toml:"problems"`
	Notes    []Diff `json:"notes,omitempty" toml:"notes,omitempty"`
}

func (r Result) OK() bool {
	return len(r.Problems) == 0
}

func (r Result) Empty() bool {
	return len(r.Problems) == 0 && len(r.Notes) == 0
}

package resource

import (
	"bytes"
	"path"
	"sort"
	"strings"
)

type Parser interface {
	// Format returns the file extension handled by the parser, e.g. ".ftl".
	Format() string
	Parse(data []byte) (*Resource, error)
}

type Registry struct {
	byFormat map[string]Parser
}

func NewRegistry(parsers ...Parser) *Registry {
	r := &Registry{byFormat: make(map[string]Parser)}
	for _, p := range parsers {
		r.Register(p)
	}
	return r
}

func (r *Registry) Register(p Parser) {
	r.byFormat[strings.ToLower(p.Format())] = p
}

func (r *Registry) Get(format string) (Parser, bool) {
	p, ok := r.byFormat[strings.ToLower(format)]
	return p, ok
}

// ForFile picks the parser registered for the extension of name.
func (r *Registry) ForFile(name string) (Parser, bool) {
	return r.Get(path.Ext(name))
}

func (r *Registry) Formats() []string {
	formats := make([]string, 0, len(r.byFormat))
	for format := range r.byFormat {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

// Normalize strips a UTF-8 byte order mark and converts CRLF line endings.
func Normalize(data []byte) []byte {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	return bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
}

// Package tomlres reads TOML locale files made of nested tables of strings,
// e.g.
//
//	[commands.join]
//	description = "Start text-to-speech in %[1]s"
//
// Every string leaf becomes a message keyed by its dotted path and every Go
// format verb becomes a variable placeable named after its argument index.
package tomlres

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/makeitchaccha/fluent-locale-checker/checker/resource"
)

var _ resource.Parser = (*Parser)(nil)

var verbPattern = regexp.MustCompile(`%(?:\[(\d+)\])?[-+# 0]*(?:\d+|\*)?(?:\.(?:\d+|\*))?([a-zA-Z%])`)

type Parser struct{}

func New() *Parser { return &Parser{} }

func (p *Parser) Format() string { return ".toml" }

func (p *Parser) Parse(data []byte) (*resource.Resource, error) { return Parse(data) }

func Parse(data []byte) (*resource.Resource, error) {
	var raw map[string]any
	metadata, err := toml.NewDecoder(bytes.NewReader(resource.Normalize(data))).Decode(&raw)
	if err != nil {
		var perr toml.ParseError
		if errors.As(err, &perr) {
			return nil, &resource.ParseError{Line: perr.Position.Line, Message: perr.Message}
		}
		return nil, &resource.ParseError{Message: err.Error()}
	}

	leaves := make(map[string]any)
	flatten(nil, raw, leaves)

	res := &resource.Resource{}
	added := make(map[string]bool, len(leaves))
	add := func(key string) error {
		value, ok := leaves[key]
		if !ok || added[key] {
			return nil
		}
		added[key] = true
		text, ok := value.(string)
		if !ok {
			return &resource.ParseError{Message: fmt.Sprintf("key %q: unsupported value of type %T, expected a string", key, value)}
		}
		res.Entries = append(res.Entries, &resource.Entry{
			ID:    key,
			Kind:  resource.KindMessage,
			Value: parseFormat(text),
		})
		return nil
	}

	// metadata keys follow document order
	for _, key := range metadata.Keys() {
		if err := add(key.String()); err != nil {
			return nil, err
		}
	}
	rest := make([]string, 0)
	for key := range leaves {
		if !added[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		if err := add(key); err != nil {
			return nil, err
		}
	}

	return res, nil
}

func flatten(path toml.Key, node map[string]any, leaves map[string]any) {
	for name, value := range node {
		key := append(append(toml.Key{}, path...), name)
		if table, ok := value.(map[string]any); ok {
			flatten(key, table, leaves)
			continue
		}
		leaves[key.String()] = value
	}
}

// parseFormat splits a fmt-style string into text and placeables. Unindexed
// verbs take the next argument the way fmt does after an explicit index.
func parseFormat(text string) *resource.Pattern {
	var elements []resource.Element
	appendText := func(s string) {
		if s == "" {
			return
		}
		if n := len(elements); n > 0 {
			if prev, ok := elements[n-1].(resource.Text); ok {
				elements[n-1] = resource.Text{Value: prev.Value + s}
				return
			}
		}
		elements = append(elements, resource.Text{Value: s})
	}

	next := 1
	last := 0
	for _, m := range verbPattern.FindAllStringSubmatchIndex(text, -1) {
		appendText(text[last:m[0]])
		last = m[1]

		if text[m[4]:m[5]] == "%" {
			appendText("%")
			continue
		}
		arg := next
		if m[2] >= 0 {
			arg, _ = strconv.Atoi(text[m[2]:m[3]])
		}
		next = arg + 1
		elements = append(elements, resource.Placeable{
			Expression: resource.VariableReference{Name: strconv.Itoa(arg)},
		})
	}
	appendText(text[last:])

	if len(elements) == 0 {
		return nil
	}
	return &resource.Pattern{Elements: elements}
}

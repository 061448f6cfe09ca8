// Package fluent parses Fluent (.ftl) localization resources.
//
// The parser covers the parts of the Fluent syntax that matter for structural
// comparison: messages, terms, attributes, multiline patterns, placeables with
// variable/message/term/function references and select expressions. Malformed
// input fails the whole file with a *resource.ParseError instead of producing
// junk entries.
package fluent

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/makeitchaccha/fluent-locale-checker/checker/resource"
)

var _ resource.Parser = (*Parser)(nil)

type Parser struct{}

func New() *Parser { return &Parser{} }

func (p *Parser) Format() string { return ".ftl" }

func (p *Parser) Parse(data []byte) (*resource.Resource, error) { return Parse(data) }

// Parse parses the text of one .ftl file.
func Parse(data []byte) (*resource.Resource, error) {
	ps := &parser{src: string(resource.Normalize(data))}
	return ps.parseResource()
}

type parser struct {
	src string
	pos int
}

func (p *parser) parseResource() (*resource.Resource, error) {
	res := &resource.Resource{}
	defined := make(map[string]int) // key -> line
	var pending []string

	for p.pos < len(p.src) {
		start := p.pos
		line := p.currentLine()

		switch {
		case strings.TrimSpace(line) == "":
			pending = nil
			p.skipLine()
		case line[0] == '#':
			level, text := parseComment(line)
			if level == 1 {
				pending = append(pending, text)
			} else {
				res.Comments = append(res.Comments, text)
				pending = nil
			}
			p.skipLine()
		case line[0] == '-' || isIdentStart(line[0]):
			entry, err := p.parseEntry()
			if err != nil {
				return nil, err
			}
			if first, ok := defined[entry.Key()]; ok {
				return nil, p.errorf(start, "duplicate identifier %q, first defined on line %d", entry.Key(), first)
			}
			defined[entry.Key()] = entry.Line
			entry.Comment = strings.Join(pending, "\n")
			pending = nil
			res.Entries = append(res.Entries, entry)
		case line[0] == ' ' || line[0] == '\t':
			return nil, p.errorf(start, "unexpected indented line outside of an entry")
		default:
			return nil, p.errorf(start, "expected message, term or comment, got %s", p.describe(start))
		}
	}

	return res, nil
}

func (p *parser) parseEntry() (*resource.Entry, error) {
	line, _ := p.position(p.pos)
	entry := &resource.Entry{Kind: resource.KindMessage, Line: line}
	if p.peek() == '-' {
		entry.Kind = resource.KindTerm
		p.pos++
	}

	id, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	entry.ID = id

	p.skipInlineBlank()
	if !p.consume('=') {
		return nil, p.errorf(p.pos, "expected \"=\" after identifier %q, got %s", id, p.describe(p.pos))
	}
	p.skipInlineBlank()

	if entry.Value, err = p.parsePattern(false); err != nil {
		return nil, err
	}

	for {
		at, ok := p.nextAttribute()
		if !ok {
			break
		}
		p.pos = at + 1
		name, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		if _, dup := entry.Attribute(name); dup {
			return nil, p.errorf(at, "duplicate attribute %q in %q", name, entry.Key())
		}
		p.skipInlineBlank()
		if !p.consume('=') {
			return nil, p.errorf(p.pos, "expected \"=\" after attribute %q, got %s", name, p.describe(p.pos))
		}
		p.skipInlineBlank()
		value, err := p.parsePattern(false)
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, p.errorf(at, "attribute %q of %q has no value", name, entry.Key())
		}
		entry.Attributes = append(entry.Attributes, &resource.Attribute{ID: name, Value: value})
	}

	switch {
	case entry.Kind == resource.KindTerm && entry.Value == nil:
		return nil, p.errorf(p.pos, "term %q must have a value", entry.Key())
	case entry.Value == nil && len(entry.Attributes) == 0:
		return nil, p.errorf(p.pos, "message %q has neither a value nor attributes", entry.Key())
	}

	return entry, nil
}

// parsePattern reads a pattern up to the end of its last line. Inside a
// variant an unmatched "}" also ends the pattern.
func (p *parser) parsePattern(inVariant bool) (*resource.Pattern, error) {
	var (
		elements []resource.Element
		text     strings.Builder
	)
	flush := func() {
		if text.Len() > 0 {
			elements = append(elements, resource.Text{Value: text.String()})
			text.Reset()
		}
	}

loop:
	for p.pos < len(p.src) {
		switch c := p.src[p.pos]; c {
		case '\n':
			next, ok := p.continuation()
			if !ok {
				break loop
			}
			if text.Len() > 0 || len(elements) > 0 {
				text.WriteByte('\n')
			}
			p.pos = next
		case '{':
			open := p.pos
			p.pos++
			expr, err := p.parsePlaceable(open)
			if err != nil {
				return nil, err
			}
			flush()
			elements = append(elements, resource.Placeable{Expression: expr})
		case '}':
			if inVariant {
				break loop
			}
			return nil, p.errorf(p.pos, "unbalanced closing brace in text")
		default:
			text.WriteByte(c)
			p.pos++
		}
	}
	flush()

	if n := len(elements); n > 0 {
		if last, ok := elements[n-1].(resource.Text); ok {
			last.Value = strings.TrimRight(last.Value, " \t\n")
			if last.Value == "" {
				elements = elements[:n-1]
			} else {
				elements[n-1] = last
			}
		}
	}
	if len(elements) == 0 {
		return nil, nil
	}
	return &resource.Pattern{Elements: elements}, nil
}

// continuation reports whether the line after the newline at p.pos continues
// the current pattern, returning the offset of its first non-blank character.
func (p *parser) continuation() (int, bool) {
	i := p.pos
	for i < len(p.src) && p.src[i] == '\n' {
		start := i + 1
		j := start
		for j < len(p.src) && (p.src[j] == ' ' || p.src[j] == '\t') {
			j++
		}
		if j >= len(p.src) {
			return 0, false
		}
		if p.src[j] == '\n' {
			i = j
			continue
		}
		if j == start {
			return 0, false
		}
		switch p.src[j] {
		case '.', '[', '*', '}':
			return 0, false
		}
		return j, true
	}
	return 0, false
}

// nextAttribute looks past the end of the current line for an indented
// ".name =" line and returns the offset of its dot.
func (p *parser) nextAttribute() (int, bool) {
	i := p.pos
	for i < len(p.src) && p.src[i] == '\n' {
		start := i + 1
		j := start
		for j < len(p.src) && (p.src[j] == ' ' || p.src[j] == '\t') {
			j++
		}
		if j >= len(p.src) {
			return 0, false
		}
		if p.src[j] == '\n' {
			i = j
			continue
		}
		if j > start && p.src[j] == '.' {
			return j, true
		}
		return 0, false
	}
	return 0, false
}

func (p *parser) parsePlaceable(open int) (resource.Expression, error) {
	p.skipBlank()
	if p.pos >= len(p.src) {
		return nil, p.errorf(open, "unterminated placeable")
	}

	expr, err := p.parseInlineExpression(open)
	if err != nil {
		return nil, err
	}

	p.skipBlank()
	if strings.HasPrefix(p.src[p.pos:], "->") {
		switch expr.(type) {
		case resource.MessageReference, resource.Placeable:
			return nil, p.errorf(p.pos, "malformed selector: message references and nested placeables cannot select variants")
		}
		p.pos += 2
		variants, err := p.parseVariants(open)
		if err != nil {
			return nil, err
		}
		return resource.SelectExpression{Selector: expr, Variants: variants}, nil
	}

	if p.pos >= len(p.src) {
		return nil, p.errorf(open, "unterminated placeable")
	}
	if !p.consume('}') {
		return nil, p.errorf(p.pos, "unterminated placeable: expected \"}\", got %s", p.describe(p.pos))
	}
	return expr, nil
}

func (p *parser) parseInlineExpression(open int) (resource.Expression, error) {
	if p.pos >= len(p.src) {
		return nil, p.errorf(open, "unterminated placeable")
	}

	switch c := p.src[p.pos]; {
	case c == '"':
		return p.parseStringLiteral()
	case c == '{':
		inner := p.pos
		p.pos++
		expr, err := p.parsePlaceable(inner)
		if err != nil {
			return nil, err
		}
		return resource.Placeable{Expression: expr}, nil
	case isDigit(c) || (c == '-' && isDigit(p.peekAt(p.pos+1))):
		return resource.NumberLiteral{Value: p.parseNumber()}, nil
	case c == '$':
		p.pos++
		name, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		return resource.VariableReference{Name: name}, nil
	case c == '-':
		p.pos++
		id, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		attr, err := p.parseAttributeAccessor()
		if err != nil {
			return nil, err
		}
		ref := resource.TermReference{ID: id, Attribute: attr}
		if p.peek() == '(' {
			if ref.Arguments, err = p.parseCallArguments(); err != nil {
				return nil, err
			}
		}
		return ref, nil
	case isIdentStart(c):
		id, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		if p.peek() == '(' {
			args, err := p.parseCallArguments()
			if err != nil {
				return nil, err
			}
			return resource.FunctionReference{Name: id, Arguments: args}, nil
		}
		attr, err := p.parseAttributeAccessor()
		if err != nil {
			return nil, err
		}
		return resource.MessageReference{ID: id, Attribute: attr}, nil
	default:
		return nil, p.errorf(p.pos, "expected expression in placeable, got %s", p.describe(p.pos))
	}
}

func (p *parser) parseAttributeAccessor() (string, error) {
	if p.peek() != '.' {
		return "", nil
	}
	p.pos++
	return p.parseIdentifier()
}

func (p *parser) parseCallArguments() (*resource.CallArguments, error) {
	open := p.pos
	p.pos++ // (
	args := &resource.CallArguments{}
	named := make(map[string]bool)

	for {
		p.skipBlank()
		if p.pos >= len(p.src) {
			return nil, p.errorf(open, "unterminated call arguments")
		}
		if p.consume(')') {
			return args, nil
		}

		start := p.pos
		name, value, err := p.parseArgument(open)
		if err != nil {
			return nil, err
		}
		if name == "" {
			args.Positional = append(args.Positional, value)
		} else {
			if named[name] {
				return nil, p.errorf(start, "duplicate named argument %q", name)
			}
			named[name] = true
			args.Named = append(args.Named, resource.NamedArgument{Name: name, Value: value})
		}

		p.skipBlank()
		if p.consume(',') {
			continue
		}
		if p.peek() != ')' {
			return nil, p.errorf(p.pos, "expected \",\" or \")\" in call arguments, got %s", p.describe(p.pos))
		}
	}
}

// parseArgument reads one call argument; name is empty for positional ones.
func (p *parser) parseArgument(open int) (string, resource.Expression, error) {
	start := p.pos
	if isIdentStart(p.peek()) {
		name, _ := p.parseIdentifier()
		p.skipBlank()
		if p.consume(':') {
			p.skipBlank()
			value, err := p.parseInlineExpression(open)
			return name, value, err
		}
		p.pos = start
	}
	value, err := p.parseInlineExpression(open)
	return "", value, err
}

func (p *parser) parseVariants(open int) ([]*resource.Variant, error) {
	var variants []*resource.Variant
	keys := make(map[string]bool)
	defaults := 0

	for {
		p.skipBlank()
		if p.pos >= len(p.src) {
			return nil, p.errorf(open, "malformed selector: unterminated select expression")
		}
		if p.consume('}') {
			break
		}

		start := p.pos
		variant := &resource.Variant{}
		if p.consume('*') {
			variant.Default = true
			defaults++
		}
		if !p.consume('[') {
			return nil, p.errorf(p.pos, "malformed selector: expected variant key, got %s", p.describe(p.pos))
		}
		p.skipBlank()

		switch c := p.peek(); {
		case isDigit(c) || c == '-':
			variant.Key = p.parseNumber()
		case isIdentStart(c):
			variant.Key, _ = p.parseIdentifier()
		default:
			return nil, p.errorf(p.pos, "malformed selector: invalid variant key %s", p.describe(p.pos))
		}

		p.skipBlank()
		if !p.consume(']') {
			return nil, p.errorf(p.pos, "malformed selector: unterminated variant key %q", variant.Key)
		}
		if keys[variant.Key] {
			return nil, p.errorf(start, "malformed selector: duplicate variant key %q", variant.Key)
		}
		keys[variant.Key] = true

		p.skipInlineBlank()
		value, err := p.parsePattern(true)
		if err != nil {
			return nil, err
		}
		variant.Value = value
		variants = append(variants, variant)
	}

	if len(variants) == 0 {
		return nil, p.errorf(open, "malformed selector: no variants")
	}
	if defaults != 1 {
		return nil, p.errorf(open, "malformed selector: expected exactly one default variant, found %d", defaults)
	}
	return variants, nil
}

func (p *parser) parseStringLiteral() (resource.Expression, error) {
	open := p.pos
	p.pos++ // "
	var sb strings.Builder
	for p.pos < len(p.src) {
		switch c := p.src[p.pos]; c {
		case '"':
			p.pos++
			return resource.StringLiteral{Value: sb.String()}, nil
		case '\n':
			return nil, p.errorf(open, "unterminated string literal")
		case '\\':
			if p.pos+1 < len(p.src) && p.src[p.pos+1] != '\n' {
				sb.WriteByte(p.src[p.pos+1])
				p.pos += 2
				continue
			}
			return nil, p.errorf(open, "unterminated string literal")
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
	return nil, p.errorf(open, "unterminated string literal")
}

func (p *parser) parseNumber() string {
	start := p.pos
	if p.peek() == '-' {
		p.pos++
	}
	for isDigit(p.peek()) {
		p.pos++
	}
	if p.peek() == '.' && isDigit(p.peekAt(p.pos+1)) {
		p.pos++
		for isDigit(p.peek()) {
			p.pos++
		}
	}
	return p.src[start:p.pos]
}

func (p *parser) parseIdentifier() (string, error) {
	start := p.pos
	if !isIdentStart(p.peek()) {
		return "", p.errorf(p.pos, "expected identifier, got %s", p.describe(p.pos))
	}
	p.pos++
	for isIdentChar(p.peek()) {
		p.pos++
	}
	return p.src[start:p.pos], nil
}

func (p *parser) currentLine() string {
	end := strings.IndexByte(p.src[p.pos:], '\n')
	if end < 0 {
		return p.src[p.pos:]
	}
	return p.src[p.pos : p.pos+end]
}

func (p *parser) skipLine() {
	end := strings.IndexByte(p.src[p.pos:], '\n')
	if end < 0 {
		p.pos = len(p.src)
		return
	}
	p.pos += end + 1
}

func (p *parser) skipInlineBlank() {
	for p.peek() == ' ' || p.peek() == '\t' {
		p.pos++
	}
}

func (p *parser) skipBlank() {
	for {
		switch p.peek() {
		case ' ', '\t', '\n':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) consume(c byte) bool {
	if p.peek() == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) peek() byte {
	return p.peekAt(p.pos)
}

func (p *parser) peekAt(i int) byte {
	if i < len(p.src) {
		return p.src[i]
	}
	return 0
}

func (p *parser) describe(pos int) string {
	if pos >= len(p.src) {
		return "end of input"
	}
	if p.src[pos] == '\n' {
		return "end of line"
	}
	r, _ := utf8.DecodeRuneInString(p.src[pos:])
	return fmt.Sprintf("%q", r)
}

// position converts a byte offset into a 1-based line and rune column.
func (p *parser) position(pos int) (line, column int) {
	if pos > len(p.src) {
		pos = len(p.src)
	}
	before := p.src[:pos]
	line = strings.Count(before, "\n") + 1
	lineStart := strings.LastIndexByte(before, '\n') + 1
	column = utf8.RuneCountInString(before[lineStart:]) + 1
	return line, column
}

func (p *parser) errorf(pos int, format string, args ...any) error {
	line, column := p.position(pos)
	return &resource.ParseError{Line: line, Column: column, Message: fmt.Sprintf(format, args...)}
}

func parseComment(line string) (level int, text string) {
	for level < len(line) && level < 3 && line[level] == '#' {
		level++
	}
	return level, strings.TrimPrefix(line[level:], " ")
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '_' || c == '-'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

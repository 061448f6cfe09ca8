package resource

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrParse = errors.New("malformed resource")
)

type Kind string

const (
	KindMessage Kind = "message"
	KindTerm    Kind = "term"
)

func (k Kind) String() string {
	return string(k)
}

// Resource is the parsed content of one localization file.
type Resource struct {
	Entries  []*Entry
	Comments []string
}

// Entry returns the entry stored under key, "-id" for terms.
func (r *Resource) Entry(key string) (*Entry, bool) {
	for _, entry := range r.Entries {
		if entry.Key() == key {
			return entry, true
		}
	}
	return nil, false
}

// Keys returns the entry keys in document order.
func (r *Resource) Keys() []string {
	keys := make([]string, 0, len(r.Entries))
	for _, entry := range r.Entries {
		keys = append(keys, entry.Key())
	}
	return keys
}

type Entry struct {
	ID         string
	Kind       Kind
	Value      *Pattern
	Attributes []*Attribute
	Comment    string
	Line       int
}

// Key identifies the entry within its resource. Terms and messages live in
// separate namespaces, so terms keep their leading dash.
func (e *Entry) Key() string {
	if e.Kind == KindTerm {
		return "-" + e.ID
	}
	return e.ID
}

func (e *Entry) Attribute(name string) (*Attribute, bool) {
	for _, attr := range e.Attributes {
		if attr.ID == name {
			return attr, true
		}
	}
	return nil, false
}

func (e *Entry) AttributeNames() []string {
	names := make([]string, 0, len(e.Attributes))
	for _, attr := range e.Attributes {
		names = append(names, attr.ID)
	}
	sort.Strings(names)
	return names
}

type Attribute struct {
	ID    string
	Value *Pattern
}

// Pattern is a translatable value: literal text interleaved with placeables.
type Pattern struct {
	Elements []Element
}

type Element interface {
	element()
}

type Text struct {
	Value string
}

type Placeable struct {
	Expression Expression
}

func (Text) element()      {}
func (Placeable) element() {}

type Expression interface {
	expression()
}

type VariableReference struct {
	Name string
}

type MessageReference struct {
	ID        string
	Attribute string
}

type TermReference struct {
	ID        string
	Attribute string
	Arguments *CallArguments
}

type FunctionReference struct {
	Name      string
	Arguments *CallArguments
}

type StringLiteral struct {
	Value string
}

type NumberLiteral struct {
	Value string
}

type SelectExpression struct {
	Selector Expression
	Variants []*Variant
}

type Variant struct {
	Key     string
	Default bool
	Value   *Pattern
}

type CallArguments struct {
	Positional []Expression
	Named      []NamedArgument
}

type NamedArgument struct {
	Name  string
	Value Expression
}

func (VariableReference) expression() {}
func (MessageReference) expression()  {}
func (TermReference) expression()     {}
func (FunctionReference) expression() {}
func (StringLiteral) expression()     {}
func (NumberLiteral) expression()     {}
func (SelectExpression) expression()  {}
func (Placeable) expression()         {}

// Variables returns the sorted, de-duplicated names of every variable the
// pattern references, including those inside selectors, call arguments and
// variant values.
func (p *Pattern) Variables() []string {
	if p == nil {
		return nil
	}
	seen := make(map[string]struct{})
	p.walk(func(expr Expression) {
		if v, ok := expr.(VariableReference); ok {
			seen[v.Name] = struct{}{}
		}
	})
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Selectors returns every select expression in the pattern, outermost first.
func (p *Pattern) Selectors() []SelectExpression {
	if p == nil {
		return nil
	}
	var selectors []SelectExpression
	p.walk(func(expr Expression) {
		if s, ok := expr.(SelectExpression); ok {
			selectors = append(selectors, s)
		}
	})
	return selectors
}

func (p *Pattern) HasSelector() bool {
	return len(p.Selectors()) > 0
}

// String renders the literal text of the pattern with placeables collapsed
// to "{…}". It is meant for log and report output only.
func (p *Pattern) String() string {
	if p == nil {
		return ""
	}
	var sb strings.Builder
	for _, el := range p.Elements {
		switch el := el.(type) {
		case Text:
			sb.WriteString(el.Value)
		case Placeable:
			sb.WriteString("{…}")
		}
	}
	return sb.String()
}

func (p *Pattern) walk(visit func(Expression)) {
	for _, el := range p.Elements {
		if placeable, ok := el.(Placeable); ok {
			walkExpression(placeable.Expression, visit)
		}
	}
}

func walkExpression(expr Expression, visit func(Expression)) {
	if expr == nil {
		return
	}
	visit(expr)
	switch expr := expr.(type) {
	case Placeable:
		walkExpression(expr.Expression, visit)
	case TermReference:
		walkArguments(expr.Arguments, visit)
	case FunctionReference:
		walkArguments(expr.Arguments, visit)
	case SelectExpression:
		walkExpression(expr.Selector, visit)
		for _, variant := range expr.Variants {
			if variant.Value != nil {
				variant.Value.walk(visit)
			}
		}
	}
}

func walkArguments(args *CallArguments, visit func(Expression)) {
	if args == nil {
		return
	}
	for _, arg := range args.Positional {
		walkExpression(arg, visit)
	}
	for _, arg := range args.Named {
		walkExpression(arg.Value, visit)
	}
}

// ParseError reports malformed resource text at a 1-based line and column.
type ParseError struct {
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return e.Message
	}
	if e.Column > 0 {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.Line, e.Message)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubParser struct {
	format string
}

func (s stubParser) Format() string { return s.format }

func (s stubParser) Parse([]byte) (*Resource, error) { return &Resource{}, nil }

func TestRegistryForFile(t *testing.T) {
	registry := NewRegistry(stubParser{format: ".ftl"}, stubParser{format: ".TOML"})

	testcases := []struct {
		name   string
		file   string
		wantOK bool
	}{
		{name: "fluent file", file: "main.ftl", wantOK: true},
		{name: "nested fluent file", file: "menus/context.ftl", wantOK: true},
		{name: "extension is case insensitive", file: "bot.Toml", wantOK: true},
		{name: "unknown extension", file: "README.md", wantOK: false},
		{name: "no extension", file: "LICENSE", wantOK: false},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := registry.ForFile(tc.file)
			assert.Equal(t, tc.wantOK, ok)
		})
	}

	assert.Equal(t, []string{".ftl", ".toml"}, registry.Formats())
}

func TestNormalize(t *testing.T) {
	got := Normalize([]byte("\xEF\xBB\xBFa = 1\r\nb = 2\r\n"))
	assert.Equal(t, "a = 1\nb = 2\n", string(got))
}

func TestPatternQueries(t *testing.T) {
	pattern := &Pattern{Elements: []Element{
		Text{Value: "You have "},
		Placeable{Expression: SelectExpression{
			Selector: FunctionReference{
				Name:      "NUMBER",
				Arguments: &CallArguments{Positional: []Expression{VariableReference{Name: "count"}}},
			},
			Variants: []*Variant{
				{Key: "one", Value: &Pattern{Elements: []Element{Text{Value: "one message"}}}},
				{Key: "other", Default: true, Value: &Pattern{Elements: []Element{
					Placeable{Expression: VariableReference{Name: "count"}},
					Text{Value: " messages from "},
					Placeable{Expression: TermReference{ID: "brand"}},
					Placeable{Expression: VariableReference{Name: "sender"}},
				}}},
			},
		}},
	}}

	assert.Equal(t, []string{"count", "sender"}, pattern.Variables())
	assert.True(t, pattern.HasSelector())
	assert.Equal(t, "You have {…}", pattern.String())

	var empty *Pattern
	assert.Nil(t, empty.Variables())
	assert.False(t, empty.HasSelector())
}

func TestParseErrorMessage(t *testing.T) {
	assert.Equal(t, "3:7: unterminated placeable", (&ParseError{Line: 3, Column: 7, Message: "unterminated placeable"}).Error())
	assert.Equal(t, "2: bad key", (&ParseError{Line: 2, Message: "bad key"}).Error())
	assert.Equal(t, "bad value", (&ParseError{Message: "bad value"}).Error())
	assert.ErrorIs(t, &ParseError{}, ErrParse)
}

package schedule

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/Libretto-Pic/the-sage-game/internal/engine"
)

var ErrBadFrequency = errors.New("frequency must be: daily | every day | every other day | every <n> days")

var frequencyLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Keyword", Pattern: `\b(?:daily|everyday|every|other|days|day)\b`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[a-z_]\w*`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
})

type frequencyExpr struct {
	Daily bool       `parser:"( @(\"daily\" | \"everyday\")"`
	Every *everyExpr `parser:"| \"every\" @@ )"`
}

type everyExpr struct {
	Other bool `parser:"( @\"other\" (\"day\" | \"days\")"`
	Day   bool `parser:"| @\"day\""`
	N     *int `parser:"| @Int (\"day\" | \"days\") )"`
}

var frequencyParser = participle.MustBuild[frequencyExpr](
	participle.Lexer(frequencyLexer),
	participle.Elide("Whitespace"),
)

// Frequency is a parsed ritual cadence.
type Frequency struct {
	Type  engine.FrequencyType
	Value int
}

// ParseFrequency reads phrases such as "daily", "every other day" or "every 3 days".
// "every 1 day" is daily.
func ParseFrequency(input string) (Frequency, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return Frequency{}, ErrBadFrequency
	}
	expr, err := frequencyParser.ParseString("", s)
	if err != nil {
		return Frequency{}, fmt.Errorf("%w: %q", ErrBadFrequency, input)
	}
	switch {
	case expr.Daily:
		return Frequency{Type: engine.FrequencyDaily, Value: 1}, nil
	case expr.Every.Day:
		return Frequency{Type: engine.FrequencyDaily, Value: 1}, nil
	case expr.Every.Other:
		return Frequency{Type: engine.FrequencyEveryDays, Value: 2}, nil
	case expr.Every.N != nil:
		n := *expr.Every.N
		if n < 1 {
			return Frequency{}, fmt.Errorf("%w: interval must be at least 1", ErrBadFrequency)
		}
		if n == 1 {
			return Frequency{Type: engine.FrequencyDaily, Value: 1}, nil
		}
		return Frequency{Type: engine.FrequencyEveryDays, Value: n}, nil
	}
	return Frequency{}, ErrBadFrequency
}

func (f Frequency) String() string {
	return Describe(f.Type, f.Value)
}

// Describe renders a ritual cadence the way ParseFrequency reads it.
func Describe(t engine.FrequencyType, value int) string {
	if t == engine.FrequencyDaily || value <= 1 {
		return "daily"
	}
	if value == 2 {
		return "every other day"
	}
	return fmt.Sprintf("every %d days", value)
}

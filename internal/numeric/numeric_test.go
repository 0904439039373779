package numeric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{name: "plain integer", input: "42", want: 42},
		{name: "dot decimal", input: "3.14", want: 3.14},
		{name: "comma decimal", input: "3,14", want: 3.14},
		{name: "spaces as thousand separators", input: "1 234,50", want: 1234.50},
		{name: "non-breaking spaces", input: "1\u00a0234", want: 1234},
		{name: "garbage", input: "abc", want: 0},
		{name: "empty", input: "", want: 0},
		{name: "negative", input: "-2,5", want: -2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseDecimal(tt.input), 1e-9)
		})
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, Round2(1.2349))
	assert.Equal(t, 1.24, Round2(1.235))
	assert.Equal(t, 69.0, Round2(300*23.0/100))
	assert.Equal(t, 0.0, Round2(0))
	assert.Equal(t, -1.24, Round2(-1.235))
}

func TestAlmostEqual(t *testing.T) {
	assert.True(t, AlmostEqual(1.00, 1.01))
	assert.True(t, AlmostEqual(1.01, 1.00))
	assert.True(t, AlmostEqual(5, 5))
	assert.False(t, AlmostEqual(1.00, 1.02))
	assert.False(t, AlmostEqual(0, 0.011))
}

func TestNewClientID(t *testing.T) {
	a := NewClientID()
	b := NewClientID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestEvalExpression(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		ok    bool
	}{
		{name: "plain number", input: "7", want: 7, ok: true},
		{name: "multiplication", input: "3*3", want: 9, ok: true},
		{name: "precedence", input: "2+2*2", want: 6, ok: true},
		{name: "parentheses", input: "(2+2)*2", want: 8, ok: true},
		{name: "comma decimals", input: "2,5*4", want: 10, ok: true},
		{name: "unary minus", input: "-3+5", want: 2, ok: true},
		{name: "division", input: "10/4", want: 2.5, ok: true},
		{name: "whitespace", input: " 1 + 2 ", want: 3, ok: true},
		{name: "letters rejected", input: "2*x", ok: false},
		{name: "empty rejected", input: "", ok: false},
		{name: "unbalanced paren", input: "(1+2", ok: false},
		{name: "trailing operator", input: "3*", ok: false},
		{name: "division by zero is non-finite", input: "1/0", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := EvalExpression(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestQuantityFromInput(t *testing.T) {
	assert.Equal(t, 9.0, QuantityFromInput("3*3"))
	assert.Equal(t, 1.0, QuantityFromInput("garbage"))
	assert.Equal(t, 1.0, QuantityFromInput("0"))
	assert.Equal(t, 1.0, QuantityFromInput("-5"))
	assert.Equal(t, 2.5, QuantityFromInput("2,5"))
}

// Package formula evaluates small arithmetic formulas stored as data, such as
// correction factors and converted results, against a set of named values.
//
// The language has `+`, `-`, `*`, `/`, `^` (left-associative), unary minus,
// parentheses, numeric literals, variables and the builtin `LOG10(...)`.
// Variables may be written as `{dotted.path}` placeholders; braces and dots are
// stripped from both the expression and the variable keys before lookup.
//
// Some results are deliberately forgiving: dividing by zero makes the whole
// `*`/`/` chain 0, and a variable bound to an empty or non-numeric string
// reads as 0.
package formula

import (
	"math"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// constants are always bound unless a sub-call overrides them.
var constants = map[string]interface{}{
	"pi": math.Pi,
	"e":  math.E,
}

// Option configures an Evaluator.
type Option func(*config)

type config struct {
	subCall bool
}

// SubCall marks an evaluation made to resolve a dependency of another
// formula. Sub-calls may rebind any name, including `pi` and `e`.
func SubCall() Option {
	return func(c *config) {
		c.subCall = true
	}
}

// Evaluator holds one normalized expression and its binding set. It is
// created for a single evaluation and shares no state with other instances.
type Evaluator struct {
	expression string
	bindings   map[string]interface{}
}

// New normalizes the expression and builds the binding set. Values may be
// numbers, numeric strings, or empty/non-numeric strings which read as 0. The
// caller's map is not modified. Unless SubCall is given, binding a name that
// already has a non-empty value fails with ErrVariableRedefined.
func New(expression string, variables map[string]interface{}, opts ...Option) (*Evaluator, Error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	bindings := make(map[string]interface{}, len(constants)+len(variables))
	maps.Copy(bindings, constants)

	keys := maps.Keys(variables)
	slices.Sort(keys)
	for _, key := range keys {
		name := Normalize(key)
		if !cfg.subCall {
			if existing, ok := bindings[name]; ok && !isEmpty(existing) {
				return nil, errVariableRedefined(key)
			}
		}
		bindings[name] = variables[key]
	}

	return &Evaluator{
		expression: NormalizeExpression(expression),
		bindings:   bindings,
	}, nil
}

// Expression returns the normalized expression. Error offsets refer to it.
func (e *Evaluator) Expression() string {
	return e.expression
}

// Evaluate parses the expression and computes its value.
func (e *Evaluator) Evaluate() (float64, Error) {
	ast, err := parse(e.expression)
	if err != nil {
		return 0, err
	}
	return newInterpreter(e.bindings).run(ast)
}

// Eval is a convenience function which constructs an evaluator and runs it.
func Eval(expression string, variables map[string]interface{}, opts ...Option) (float64, Error) {
	e, err := New(expression, variables, opts...)
	if err != nil {
		return 0, err
	}
	return e.Evaluate()
}

// References returns the sorted, de-duplicated variable names an expression
// uses, after normalization. Function names are not included.
func References(expression string) ([]string, Error) {
	ast, err := parse(NormalizeExpression(expression))
	if err != nil {
		return nil, err
	}
	var names []string
	ast.walk(func(n *node) {
		if n.typ == nodeIdentifier {
			names = append(names, n.name)
		}
	})
	slices.Sort(names)
	return slices.Compact(names), nil
}

package formula

import "math"

// builtin is a function callable from an expression. It reports false when
// the argument is outside the function's domain.
type builtin func(float64) (float64, bool)

var builtins = map[string]builtin{
	"LOG10": func(x float64) (float64, bool) {
		if x <= 0 || math.IsNaN(x) {
			return 0, false
		}
		return math.Log10(x), true
	},
}

// interpreter walks a parsed tree against a binding set.
type interpreter struct {
	bindings map[string]interface{}
}

func newInterpreter(bindings map[string]interface{}) *interpreter {
	return &interpreter{bindings: bindings}
}

func (i *interpreter) run(ast *node) (float64, Error) {
	switch ast.typ {
	case nodeLiteral:
		return ast.value, nil
	case nodeIdentifier:
		v, ok := i.bindings[ast.name]
		if !ok || v == nil {
			return 0, errUnrecognizedVariable(ast.offset, ast.name)
		}
		return toNumber(v), nil
	case nodeFunction:
		// The argument is a sub-call: a fresh interpreter over the same
		// bindings.
		arg, err := newInterpreter(i.bindings).run(ast.right)
		if err != nil {
			return 0, err
		}
		result, ok := builtins[ast.name](arg)
		if !ok {
			return 0, errDomain(ast.offset, ast.name, arg)
		}
		return result, nil
	case nodeNegate:
		right, err := i.run(ast.right)
		if err != nil {
			return 0, err
		}
		return -1 * right, nil
	case nodeAdd, nodeSubtract:
		return i.sum(ast)
	case nodeMultiply, nodeDivide:
		return i.product(ast)
	case nodePower:
		left, err := i.run(ast.left)
		if err != nil {
			return 0, err
		}
		right, err := i.run(ast.right)
		if err != nil {
			return 0, err
		}
		return math.Pow(left, right), nil
	}
	return 0, NewError(ErrUnexpectedCharacter, ast.offset, "", "unknown node type %d", ast.typ)
}

// chain flattens a left-associative run of the given operators into its
// operands, leftmost first, along with the operator preceding each operand
// after the first. Parenthesized sub-trees stay whole.
func chain(ast *node, a, b nodeType) ([]*node, []nodeType) {
	var operands []*node
	var ops []nodeType
	n := ast
	for (n.typ == a || n.typ == b) && (n == ast || !n.grouped) {
		operands = append(operands, n.right)
		ops = append(ops, n.typ)
		n = n.left
	}
	operands = append(operands, n)

	// Reverse into source order.
	for l, r := 0, len(operands)-1; l < r; l, r = l+1, r-1 {
		operands[l], operands[r] = operands[r], operands[l]
	}
	for l, r := 0, len(ops)-1; l < r; l, r = l+1, r-1 {
		ops[l], ops[r] = ops[r], ops[l]
	}
	return operands, ops
}

func (i *interpreter) sum(ast *node) (float64, Error) {
	operands, ops := chain(ast, nodeAdd, nodeSubtract)
	total := 0.0
	for k, operand := range operands {
		v, err := i.run(operand)
		if err != nil {
			return 0, err
		}
		if k > 0 && ops[k-1] == nodeSubtract {
			v = -1 * v
		}
		total += v
	}
	return total, nil
}

// product multiplies the operands of a `*`/`/` chain from left to right. A
// zero divisor anywhere in the chain makes the whole chain 0 and the
// remaining operands are not evaluated. They are still parsed, so `1/0*2` is
// 0 here where a parser that stops at the zero divisor would reject the `*`.
func (i *interpreter) product(ast *node) (float64, Error) {
	operands, ops := chain(ast, nodeMultiply, nodeDivide)
	total := 1.0
	for k, operand := range operands {
		v, err := i.run(operand)
		if err != nil {
			return 0, err
		}
		if k > 0 && ops[k-1] == nodeDivide {
			if v == 0 {
				return 0, nil
			}
			v = 1 / v
		}
		total *= v
	}
	return total, nil
}

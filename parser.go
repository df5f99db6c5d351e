package formula

import (
	"errors"
	"strconv"
)

// nodeType defines the type of the abstract syntax tree node.
type nodeType int

const (
	nodeUnknown nodeType = iota
	nodeLiteral
	nodeIdentifier
	nodeFunction
	nodeNegate
	nodeAdd
	nodeSubtract
	nodeMultiply
	nodeDivide
	nodePower
)

var operators = map[nodeType]string{
	nodeAdd:      "+",
	nodeSubtract: "-",
	nodeMultiply: "*",
	nodeDivide:   "/",
	nodePower:    "^",
}

// node is a unit of the binary tree that makes up the abstract syntax tree.
// Literals carry value, identifiers and functions carry name. Unary nodes
// only use right.
type node struct {
	typ     nodeType
	offset  int
	value   float64
	name    string
	grouped bool
	left    *node
	right   *node
}

// String renders the tree fully parenthesized, for debugging and tests.
func (n *node) String() string {
	switch n.typ {
	case nodeLiteral:
		return strconv.FormatFloat(n.value, 'g', -1, 64)
	case nodeIdentifier:
		return n.name
	case nodeFunction:
		return n.name + "(" + n.right.String() + ")"
	case nodeNegate:
		return "(-" + n.right.String() + ")"
	}
	return "(" + n.left.String() + " " + operators[n.typ] + " " + n.right.String() + ")"
}

// parser is a predictive recursive-descent parser. Every rule decides what
// to do from a single character of lookahead and the cursor never rewinds
// past a consumed character.
type parser struct {
	c *cursor
}

// parse the whole expression and return the root node. Anything left over
// after a complete expression is an error.
func parse(expression string) (*node, Error) {
	p := &parser{c: newCursor(expression)}
	n, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.c.skipWhitespace()
	if !p.c.done() {
		return nil, errUnexpectedCharacter(p.c.current(), p.c.pos)
	}
	return n, nil
}

func (p *parser) parseExpression() (*node, Error) {
	return p.parseAddition()
}

// parseBinary parses a left-associative chain of `operand (op operand)*`
// where op is any rune in ops.
func (p *parser) parseBinary(ops map[rune]nodeType, operand func() (*node, Error)) (*node, Error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for {
		p.c.skipWhitespace()
		offset := p.c.pos
		typ, ok := ops[p.c.peek()]
		if !ok {
			return left, nil
		}
		p.c.next()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = &node{typ: typ, offset: offset, left: left, right: right}
	}
}

var (
	additive       = map[rune]nodeType{'+': nodeAdd, '-': nodeSubtract}
	multiplicative = map[rune]nodeType{'*': nodeMultiply, '/': nodeDivide}
	exponential    = map[rune]nodeType{'^': nodePower}
)

func (p *parser) parseAddition() (*node, Error) {
	return p.parseBinary(additive, p.parseMultiplication)
}

func (p *parser) parseMultiplication() (*node, Error) {
	return p.parseBinary(multiplicative, p.parsePower)
}

func (p *parser) parsePower() (*node, Error) {
	return p.parseBinary(exponential, p.parseParenthesis)
}

// closeParenthesis consumes the `)` that must follow a parenthesized
// expression.
func (p *parser) closeParenthesis() Error {
	p.c.skipWhitespace()
	if p.c.peek() != ')' {
		return errClosingParenthesis(p.c.pos)
	}
	p.c.next()
	return nil
}

func (p *parser) parseParenthesis() (*node, Error) {
	p.c.skipWhitespace()
	if p.c.peek() != '(' {
		return p.parseNegative()
	}
	p.c.next()
	n, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.closeParenthesis(); err != nil {
		return nil, err
	}
	n.grouped = true
	return n, nil
}

func (p *parser) parseNegative() (*node, Error) {
	p.c.skipWhitespace()
	if p.c.peek() != '-' {
		return p.parseValue()
	}
	offset := p.c.pos
	p.c.next()
	operand, err := p.parseParenthesis()
	if err != nil {
		return nil, err
	}
	return &node{typ: nodeNegate, offset: offset, right: operand}, nil
}

func (p *parser) parseValue() (*node, Error) {
	p.c.skipWhitespace()
	r := p.c.peek()
	switch {
	case r == eof:
		return nil, errUnexpectedEnd(p.c.pos)
	case isDigit(r) || r == '.':
		return p.parseNumber()
	case isNameRune(r):
		return p.parseName()
	}
	return nil, errNumberExpected(p.c.pos, string(r))
}

// parseNumber reads digits and at most one period.
func (p *parser) parseNumber() (*node, Error) {
	start := p.c.pos
	period := false
	for {
		r := p.c.next()
		if r == '.' {
			if period {
				return nil, errExtraPeriod(p.c.pos - 1)
			}
			period = true
			continue
		}
		if !isDigit(r) {
			p.c.back()
			break
		}
	}
	text := p.c.expression[start:p.c.pos]
	f, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil, errNumberExpected(start, text)
	}
	return &node{typ: nodeLiteral, offset: start, value: f}, nil
}

// parseName reads a variable name, or a builtin function call when the name
// is a known function followed by `(`.
func (p *parser) parseName() (*node, Error) {
	start := p.c.pos
	for isNameRune(p.c.peek()) {
		p.c.next()
	}
	name := p.c.expression[start:p.c.pos]

	if _, ok := builtins[name]; ok {
		p.c.skipWhitespace()
		if p.c.peek() == '(' {
			p.c.next()
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if err := p.closeParenthesis(); err != nil {
				return nil, err
			}
			return &node{typ: nodeFunction, offset: start, name: name, right: arg}, nil
		}
	}

	return &node{typ: nodeIdentifier, offset: start, name: name}, nil
}

// walk calls fn for every node of the tree, parents before children.
func (n *node) walk(fn func(*node)) {
	if n == nil {
		return
	}
	fn(n)
	n.left.walk(fn)
	n.right.walk(fn)
}

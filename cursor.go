package formula

import "unicode/utf8"

const eof rune = -1

// cursor walks an expression one rune at a time. It only moves forward except
// for a single-rune step back after a look at the next character.
type cursor struct {
	expression string
	pos        int
	lastWidth  int
}

func newCursor(expression string) *cursor {
	return &cursor{expression: expression}
}

// next returns the next rune in the expression at the current position.
func (c *cursor) next() rune {
	if c.pos >= len(c.expression) {
		c.lastWidth = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(c.expression[c.pos:])
	c.pos += w
	c.lastWidth = w
	return r
}

// back moves back one rune.
func (c *cursor) back() {
	c.pos -= c.lastWidth
	c.lastWidth = 0
}

// peek returns the next rune without moving the position forward.
func (c *cursor) peek() rune {
	r := c.next()
	c.back()
	return r
}

// skipWhitespace advances past spaces, tabs and line breaks.
func (c *cursor) skipWhitespace() {
	for isWhitespace(c.peek()) {
		c.next()
	}
}

// done reports whether the whole expression has been consumed.
func (c *cursor) done() bool {
	return c.pos >= len(c.expression)
}

// current returns the rune at the cursor as a string, or "" at the end.
func (c *cursor) current() string {
	r := c.peek()
	if r == eof {
		return ""
	}
	return string(r)
}

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// isNameRune reports whether r may appear in a variable name. Letters are
// ASCII only, in either case.
func isNameRune(r rune) bool {
	return r == '_' || isDigit(r) || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

package liquid

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// exprParser is a small recursive descent parser over the tokens of a single
// tag or output. It never fails: whatever it cannot place is skipped.
type exprParser struct {
	p    *parser
	toks []lexer.Token
	pos  int
}

func newExprParser(p *parser, toks []lexer.Token) *exprParser {
	return &exprParser{p: p, toks: toks}
}

func (e *exprParser) done() bool {
	return e.pos >= len(e.toks)
}

func (e *exprParser) at(i int) *lexer.Token {
	if e.pos+i >= len(e.toks) {
		return nil
	}
	return &e.toks[e.pos+i]
}

func (e *exprParser) peekIdent(s string) bool {
	t := e.at(0)
	return t != nil && t.Type == tokIdent && t.Value == s
}

func (e *exprParser) peekPunctAt(i int, s string) bool {
	t := e.at(i)
	return t != nil && t.Type == tokPunct && t.Value == s
}

func (e *exprParser) peekPunct(s string) bool {
	return e.peekPunctAt(0, s)
}

func (e *exprParser) binary(kind NodeKind, left, right *Node) *Node {
	n := e.p.newNode(kind, left.start, right.end)
	attach(n, "left", left)
	attach(n, "right", right)
	return n
}

// parseExpression parses `a and b or c`.
func (e *exprParser) parseExpression() *Node {
	left := e.parseComparison()
	if left == nil {
		return nil
	}
	for e.peekIdent("and") || e.peekIdent("or") {
		e.pos++
		right := e.parseComparison()
		if right == nil {
			break
		}
		left = e.binary(KindLogicalExpression, left, right)
	}
	return left
}

func (e *exprParser) parseComparison() *Node {
	left := e.parseFiltered()
	if left == nil {
		return nil
	}
	t := e.at(0)
	if t == nil || !(t.Type == tokCompare || (t.Type == tokIdent && t.Value == "contains")) {
		return left
	}
	e.pos++
	right := e.parseFiltered()
	if right == nil {
		return left
	}
	return e.binary(KindComparison, left, right)
}

// parseFiltered parses a primary followed by any number of `| name: args`.
func (e *exprParser) parseFiltered() *Node {
	body := e.parsePrimary()
	if body == nil {
		return nil
	}
	for e.peekPunct("|") {
		name := e.at(1)
		if name == nil || name.Type != tokIdent {
			e.pos++
			break
		}
		e.pos += 2
		f := e.p.newNode(KindFilter, body.start, name.Pos.Offset+len(name.Value))
		attach(f, "body", body)
		attach(f, "name", e.p.tokNode(KindIdentifier, *name))
		if e.peekPunct(":") {
			colon := e.at(0)
			e.pos++
			list := e.p.newNode(KindArgumentList, colon.Pos.Offset+1, colon.Pos.Offset+1)
			for _, arg := range e.arguments(e.parsePrimary, true) {
				attach(list, "", arg)
			}
			attach(f, "arguments", list)
		}
		body = f
	}
	return body
}

// parseArguments parses the trailing `a, b, key: value` list of a tag.
func (e *exprParser) parseArguments() []*Node {
	return e.arguments(e.parseFiltered, false)
}

func (e *exprParser) arguments(value func() *Node, stopAtPipe bool) []*Node {
	var out []*Node
	for !e.done() {
		if e.peekPunct(",") {
			e.pos++
			continue
		}
		if stopAtPipe && e.peekPunct("|") {
			break
		}
		if t := e.at(0); t.Type == tokIdent && e.peekPunctAt(1, ":") {
			key := e.p.tokNode(KindIdentifier, *t)
			e.pos += 2
			na := e.p.newNode(KindNamedArgument, key.start, key.end)
			attach(na, "key", key)
			attach(na, "value", value())
			out = append(out, na)
			continue
		}
		v := value()
		if v == nil {
			e.pos++
			continue
		}
		out = append(out, v)
	}
	return out
}

var literalIdents = map[string]bool{
	"true":  true,
	"false": true,
	"nil":   true,
	"null":  true,
	"blank": true,
	"empty": true,
}

func (e *exprParser) parsePrimary() *Node {
	t := e.at(0)
	if t == nil {
		return nil
	}
	switch {
	case t.Type == tokString:
		e.pos++
		return e.p.tokNode(KindString, *t)
	case t.Type == tokNumber:
		e.pos++
		return e.p.tokNode(KindNumber, *t)
	case t.Type == tokIdent && literalIdents[t.Value]:
		e.pos++
		return e.p.tokNode(KindBoolean, *t)
	case t.Type == tokIdent:
		e.pos++
		return e.parsePath(e.p.tokNode(KindIdentifier, *t))
	case t.Type == tokPunct && t.Value == "(":
		return e.parseGroup()
	case t.Type == tokPunct && t.Value == "[":
		// [name] looks a variable up by the value of name
		for i := 1; e.at(i) != nil; i++ {
			if e.peekPunctAt(i, "]") {
				end := e.at(i)
				n := e.p.newNode(KindIdentifier, t.Pos.Offset, end.Pos.Offset+1)
				e.pos += i + 1
				return e.parsePath(n)
			}
		}
	}
	return nil
}

func (e *exprParser) parsePath(cur *Node) *Node {
	for {
		switch {
		case e.peekPunct(".") && e.at(1) != nil && e.at(1).Type == tokIdent:
			prop := e.p.tokNode(KindIdentifier, *e.at(1))
			e.pos += 2
			n := e.p.newNode(KindAccess, cur.start, prop.end)
			attach(n, "receiver", cur)
			attach(n, "property", prop)
			cur = n
		case e.peekPunct("["):
			e.pos++
			idx := e.parseExpression()
			end := cur.end
			if idx != nil {
				end = idx.end
			}
			if e.peekPunct("]") {
				end = e.at(0).Pos.Offset + 1
				e.pos++
			}
			n := e.p.newNode(KindAccess, cur.start, end)
			attach(n, "receiver", cur)
			if idx != nil {
				attach(n, "index", idx)
			}
			n.end = max(n.end, end)
			cur = n
		default:
			return cur
		}
	}
}

// parseGroup handles (a..b) ranges and parenthesised expressions.
func (e *exprParser) parseGroup() *Node {
	open := e.at(0)
	e.pos++
	lo := e.parseComparison()
	if lo != nil && e.at(0) != nil && e.at(0).Type == tokDotDot {
		e.pos++
		hi := e.parseFiltered()
		n := e.p.newNode(KindRange, open.Pos.Offset, open.Pos.Offset+1)
		attach(n, "start", lo)
		if hi != nil {
			attach(n, "end", hi)
		}
		if e.peekPunct(")") {
			n.end = max(n.end, e.at(0).Pos.Offset+1)
			e.pos++
		}
		return n
	}
	if lo == nil {
		return nil
	}
	for e.peekIdent("and") || e.peekIdent("or") {
		e.pos++
		right := e.parseComparison()
		if right == nil {
			break
		}
		lo = e.binary(KindLogicalExpression, lo, right)
	}
	if e.peekPunct(")") {
		e.pos++
	}
	return lo
}

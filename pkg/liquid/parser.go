package liquid

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/walteh/liquidscope/pkg/position"
	"gitlab.com/tozd/go/errors"
)

// ErrParse is returned when the source cannot be tokenized at all. Malformed
// tags never fail a parse; they become ERROR nodes.
var ErrParse = errors.Base("liquid parse failure")

type segmentKind int

const (
	segText segmentKind = iota
	segOutput
	segTag
	segComment
	segRaw
)

// segment is one top-level region of the template: a text run, a {{ }} output,
// a {% %} tag or a swallowed comment/raw block.
type segment struct {
	kind    segmentKind
	start   int
	end     int
	keyword *lexer.Token
	args    []lexer.Token
}

func (s *segment) keywordText() string {
	if s.keyword == nil {
		return ""
	}
	return s.keyword.Value
}

// Parse builds a syntax tree for src.
func Parse(src []byte) (*Tree, error) {
	toks, err := Tokenize(src)
	if err != nil {
		return nil, errors.Errorf("%w: %s", ErrParse, err.Error())
	}

	tree := &Tree{src: src, lines: position.NewLineIndex(src)}
	p := &parser{tree: tree, segs: segmentize(toks, len(src))}

	root := p.newNode(KindProgram, 0, len(src))
	tree.root = root
	p.parseBody(root, nil)

	return tree, nil
}

func segmentize(toks []lexer.Token, size int) []*segment {
	var segs []*segment
	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		switch tok.Type {
		case tokCommentBlock:
			segs = append(segs, &segment{kind: segComment, start: tok.Pos.Offset, end: tok.Pos.Offset + len(tok.Value)})
		case tokRawBlock:
			segs = append(segs, &segment{kind: segRaw, start: tok.Pos.Offset, end: tok.Pos.Offset + len(tok.Value)})
		case tokOutputOpen, tokTagOpen:
			closer := tokOutputClose
			kind := segOutput
			if tok.Type == tokTagOpen {
				closer = tokTagClose
				kind = segTag
			}
			seg := &segment{kind: kind, start: tok.Pos.Offset, end: size}
			j := i + 1
			for ; j < len(toks); j++ {
				if toks[j].Type == closer || toks[j].Type == tokOutputOpen || toks[j].Type == tokTagOpen {
					break
				}
			}
			body := toks[i+1 : j]
			next := j
			switch {
			case j == len(toks):
			case toks[j].Type == closer:
				seg.end = toks[j].Pos.Offset + len(toks[j].Value)
			default:
				// an unterminated tag runs into the next opener
				seg.end = toks[j].Pos.Offset
				next = j - 1
			}
			if kind == segTag && len(body) > 0 && body[0].Type == tokIdent {
				kw := body[0]
				seg.keyword = &kw
				body = body[1:]
			}
			seg.args = body
			segs = append(segs, seg)
			i = next
		default:
			if n := len(segs); n > 0 && segs[n-1].kind == segText && segs[n-1].end == tok.Pos.Offset {
				segs[n-1].end += len(tok.Value)
				continue
			}
			segs = append(segs, &segment{kind: segText, start: tok.Pos.Offset, end: tok.Pos.Offset + len(tok.Value)})
		}
	}
	return segs
}

type parser struct {
	tree  *Tree
	segs  []*segment
	pos   int
	stops [][]string
}

func (p *parser) newNode(kind NodeKind, start, end int) *Node {
	return &Node{kind: kind, start: start, end: end, tree: p.tree}
}

func (p *parser) tokNode(kind NodeKind, tok lexer.Token) *Node {
	return p.newNode(kind, tok.Pos.Offset, tok.Pos.Offset+len(tok.Value))
}

func attach(parent *Node, field string, child *Node) *Node {
	if child == nil {
		return nil
	}
	child.parent = parent
	child.field = field
	parent.children = append(parent.children, child)
	if child.end > parent.end {
		parent.end = child.end
	}
	return child
}

// parseBody consumes segments into parent until a tag in stops is met. The
// terminating segment is returned (and consumed); nil means the body ran to
// EOF or hit a terminator that belongs to an enclosing statement.
func (p *parser) parseBody(parent *Node, stops []string) *segment {
	p.stops = append(p.stops, stops)
	defer func() { p.stops = p.stops[:len(p.stops)-1] }()

	for p.pos < len(p.segs) {
		seg := p.segs[p.pos]
		switch seg.kind {
		case segText:
			attach(parent, "", p.newNode(KindTemplateContent, seg.start, seg.end))
		case segComment:
			attach(parent, "", p.newNode(KindComment, seg.start, seg.end))
		case segRaw:
			attach(parent, "", p.newNode(KindRaw, seg.start, seg.end))
		case segOutput:
			if expr := newExprParser(p, seg.args).parseExpression(); expr != nil {
				attach(parent, "", expr)
			}
		case segTag:
			kw := seg.keywordText()
			if contains(stops, kw) {
				p.pos++
				return seg
			}
			if p.enclosingStop(kw) {
				return nil
			}
			p.pos++
			attach(parent, "", p.parseTag(seg))
			continue
		}
		p.pos++
	}
	return nil
}

func (p *parser) enclosingStop(kw string) bool {
	for i := len(p.stops) - 2; i >= 0; i-- {
		if contains(p.stops[i], kw) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (p *parser) keywordNode(seg *segment, kind NodeKind) *Node {
	return p.tokNode(kind, *seg.keyword)
}

func (p *parser) parseTag(seg *segment) *Node {
	if seg.keyword == nil {
		return p.newNode(KindError, seg.start, seg.end)
	}

	switch kw := seg.keyword.Value; kw {
	case "assign":
		return p.parseAssign(seg)
	case "capture":
		return p.parseCapture(seg)
	case "for", "fori":
		return p.parseFor(seg)
	case "if", "ifi":
		return p.parseConditional(seg, KindIfStatement, "end"+kw)
	case "unless":
		return p.parseConditional(seg, KindUnlessStatement, "endunless")
	case "case":
		return p.parseCase(seg)
	case "push", "pop":
		return p.parsePushPop(seg)
	case "include":
		return p.parseInclude(seg)
	case "t":
		return p.parseTranslation(seg)
	default:
		return p.parseCustom(seg)
	}
}

func (p *parser) statement(kind NodeKind, seg *segment) *Node {
	n := p.newNode(kind, seg.start, seg.end)
	attach(n, "keyword", p.keywordNode(seg, KindKeyword))
	return n
}

// bindingName parses the left-hand side of assign/capture: a plain name or
// the bracket form [name]. Both produce a single identifier node.
func (p *parser) bindingName(args []lexer.Token) (*Node, []lexer.Token) {
	if len(args) == 0 {
		return nil, args
	}
	if args[0].Type == tokPunct && args[0].Value == "[" {
		for i := 1; i < len(args); i++ {
			if args[i].Type == tokPunct && args[i].Value == "]" {
				n := p.newNode(KindIdentifier, args[0].Pos.Offset, args[i].Pos.Offset+1)
				return n, args[i+1:]
			}
		}
		return nil, args
	}
	if args[0].Type == tokIdent {
		return p.tokNode(KindIdentifier, args[0]), args[1:]
	}
	return nil, args
}

func (p *parser) parseAssign(seg *segment) *Node {
	n := p.statement(KindAssignmentStatement, seg)
	name, rest := p.bindingName(seg.args)
	if name == nil || len(rest) == 0 || rest[0].Type != tokAssign {
		n.kind = KindError
		return n
	}
	attach(n, "variable_name", name)
	attach(n, "value", newExprParser(p, rest[1:]).parseExpression())
	return n
}

func (p *parser) parseCapture(seg *segment) *Node {
	n := p.statement(KindCaptureStatement, seg)
	if name, _ := p.bindingName(seg.args); name != nil {
		attach(n, "variable", name)
	}
	p.parseBlock(n, "body", []string{"endcapture"})
	return n
}

func (p *parser) parseFor(seg *segment) *Node {
	n := p.statement(KindForLoopStatement, seg)
	args := seg.args
	if len(args) > 0 && args[0].Type == tokIdent {
		attach(n, "item", p.tokNode(KindIdentifier, args[0]))
		args = args[1:]
	}
	if len(args) > 0 && args[0].Type == tokIdent && args[0].Value == "in" {
		ep := newExprParser(p, args[1:])
		attach(n, "iterator", ep.parseFiltered())
		for _, arg := range ep.parseArguments() {
			attach(n, "", arg)
		}
	}
	end := "end" + seg.keyword.Value
	term := p.parseBlock(n, "body", []string{"else", end})
	if term != nil && term.keywordText() == "else" {
		p.parseElse(n, term, []string{end})
	}
	return n
}

func (p *parser) parseConditional(seg *segment, kind NodeKind, end string) *Node {
	n := p.statement(kind, seg)
	attach(n, "condition", newExprParser(p, seg.args).parseExpression())
	stops := []string{"elsif", "else", end}
	term := p.parseBlock(n, "consequence", stops)
	for term != nil && term.keywordText() == "elsif" {
		clause := p.statement(KindElsifClause, term)
		attach(clause, "condition", newExprParser(p, term.args).parseExpression())
		attach(n, "alternative", clause)
		term = p.parseBlock(clause, "consequence", stops)
		n.end = max(n.end, clause.end)
	}
	if term != nil && term.keywordText() == "else" {
		p.parseElse(n, term, []string{end})
	}
	return n
}

func (p *parser) parseElse(n *Node, seg *segment, stops []string) {
	clause := p.statement(KindElseClause, seg)
	attach(n, "alternative", clause)
	p.parseBlock(clause, "consequence", stops)
	n.end = max(n.end, clause.end)
}

func (p *parser) parseCase(seg *segment) *Node {
	n := p.statement(KindCaseStatement, seg)
	attach(n, "value", newExprParser(p, seg.args).parseExpression())
	stops := []string{"when", "else", "endcase"}
	// text between case and the first when is discarded by liquid
	term := p.parseBlock(p.newNode(KindBlock, seg.end, seg.end), "", stops)
	if term != nil && term.keywordText() == "endcase" {
		n.end = max(n.end, term.end)
	}
	for term != nil && term.keywordText() == "when" {
		clause := p.statement(KindWhenClause, term)
		for _, v := range newExprParser(p, term.args).parseArguments() {
			attach(clause, "value", v)
		}
		attach(n, "alternative", clause)
		term = p.parseBlock(clause, "consequence", stops)
		n.end = max(n.end, clause.end)
	}
	if term != nil && term.keywordText() == "else" {
		p.parseElse(n, term, []string{"endcase"})
	}
	return n
}

// parseBlock parses a body into a block node stored under field on n and
// stretches n over the terminating tag.
func (p *parser) parseBlock(n *Node, field string, stops []string) *segment {
	block := p.newNode(KindBlock, n.end, n.end)
	term := p.parseBody(block, stops)
	if len(block.children) > 0 {
		block.start = block.children[0].start
		block.end = block.children[len(block.children)-1].end
	}
	if field != "" || n.kind != KindBlock {
		attach(n, field, block)
	}
	if term != nil {
		n.end = max(n.end, term.end)
	}
	return term
}

// parsePushPop handles {% push item to:array %} and {% pop array to:item %}.
func (p *parser) parsePushPop(seg *segment) *Node {
	kind, first, second := KindPushStatement, "item", "array"
	if seg.keyword.Value == "pop" {
		kind, first, second = KindPopStatement, "array", "item"
	}
	n := p.statement(kind, seg)
	ep := newExprParser(p, seg.args)
	attach(n, first, ep.parseFiltered())
	if ep.peekIdent("to") && ep.peekPunctAt(1, ":") {
		ep.pos += 2
		attach(n, second, ep.parseFiltered())
	}
	return n
}

func (p *parser) parseInclude(seg *segment) *Node {
	n := p.statement(KindIncludeStatement, seg)
	ep := newExprParser(p, seg.args)
	attach(n, "path", ep.parsePrimary())
	for _, arg := range ep.parseArguments() {
		attach(n, "", arg)
	}
	return n
}

// parseTranslation handles both {% t= "key" default:"..." nl:"..." %}
// (definition) and {% t "key" %} (use).
func (p *parser) parseTranslation(seg *segment) *Node {
	args := seg.args
	kind := KindTranslationExpression
	adjacent := false
	if len(args) > 0 && args[0].Type == tokAssign {
		kind = KindTranslationStatement
		adjacent = args[0].Pos.Offset == seg.keyword.Pos.Offset+1
		args = args[1:]
	}
	n := p.statement(kind, seg)
	if adjacent {
		// the keyword of a definition is "t=" as written
		n.children[0].end++
	}
	ep := newExprParser(p, args)
	key := ep.parsePrimary()
	if key == nil {
		n.kind = KindError
		return n
	}
	attach(n, "key", key)
	for _, arg := range ep.parseArguments() {
		attach(n, "argument", arg)
	}
	return n
}

func (p *parser) parseCustom(seg *segment) *Node {
	kw := seg.keyword.Value
	kind := KindCustomUnpairedStatement
	if !strings.HasPrefix(kw, "end") && p.hasEnd("end"+kw) {
		kind = KindCustomPairedStatement
	}
	n := p.newNode(kind, seg.start, seg.end)
	attach(n, "keyword", p.keywordNode(seg, KindCustomKeyword))
	if len(seg.args) > 0 {
		list := p.newNode(KindArgumentList, seg.args[0].Pos.Offset, seg.args[0].Pos.Offset)
		for _, arg := range newExprParser(p, seg.args).parseArguments() {
			attach(list, "", arg)
		}
		if len(list.children) > 0 {
			attach(n, "arguments", list)
		}
	}
	if kind == KindCustomPairedStatement {
		p.parseBlock(n, "body", []string{"end" + kw})
	}
	return n
}

func (p *parser) hasEnd(end string) bool {
	for _, s := range p.segs[p.pos:] {
		if s.kind == segTag && s.keywordText() == end {
			return true
		}
	}
	return false
}

package liquid

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"gitlab.com/tozd/go/errors"
)

var ErrQuery = errors.Base("invalid query")

var (
	queryLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "comment", Pattern: `;[^\n]*`},
		{Name: "whitespace", Pattern: `\s+`},
		{Name: "Capture", Pattern: `@[A-Za-z_][A-Za-z0-9_.]*`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
		{Name: "Punct", Pattern: `[():]`},
	})

	queryParser = participle.MustBuild[queryFile](
		participle.Lexer(queryLexer),
		participle.Elide("whitespace", "comment"),
		participle.UseLookahead(2),
	)
)

// queryFile is a list of s-expression patterns in the tree-sitter query style:
//
//	(translation_statement key: (string) @key) @definition
type queryFile struct {
	Patterns []*queryPattern `parser:"@@*"`
}

type queryPattern struct {
	Pos      lexer.Position
	Kind     string        `parser:"\"(\" @Ident"`
	Children []*queryChild `parser:"@@* \")\""`
	Capture  string        `parser:"@Capture?"`
}

type queryChild struct {
	Field   string        `parser:"(@Ident \":\")?"`
	Pattern *queryPattern `parser:"@@"`
}

// Query is a compiled set of patterns. A query is safe for concurrent use.
type Query struct {
	source   string
	patterns []*queryPattern
}

type Capture struct {
	Name string
	Node *Node
}

type Match struct {
	// Pattern is the index of the pattern that matched, in source order.
	Pattern  int
	Captures []Capture
}

// Capture returns the first node captured under name, nil if none.
func (m Match) Capture(name string) *Node {
	for _, c := range m.Captures {
		if c.Name == name {
			return c.Node
		}
	}
	return nil
}

func NewQuery(src string) (*Query, error) {
	file, err := queryParser.ParseString("", src)
	if err != nil {
		return nil, errors.Errorf("%w: %s", ErrQuery, err.Error())
	}
	if len(file.Patterns) == 0 {
		return nil, errors.Errorf("%w: no patterns", ErrQuery)
	}
	for _, p := range file.Patterns {
		if err := p.validate(); err != nil {
			return nil, err
		}
	}
	return &Query{source: src, patterns: file.Patterns}, nil
}

// MustQuery is NewQuery for package-level fixed queries.
func MustQuery(src string) *Query {
	q, err := NewQuery(src)
	if err != nil {
		panic(err)
	}
	return q
}

func (q *Query) String() string {
	return q.source
}

func (p *queryPattern) validate() error {
	if p.Kind != "_" && KindFromName(p.Kind) == KindUnknown {
		return errors.Errorf("%w: unknown node kind %q at %s", ErrQuery, p.Kind, p.Pos)
	}
	for _, c := range p.Children {
		if err := c.Pattern.validate(); err != nil {
			return err
		}
	}
	return nil
}

// Matches runs every pattern against n and its descendants, in document order.
func (q *Query) Matches(n *Node) []Match {
	var out []Match
	n.Walk(func(n *Node) bool {
		for i, p := range q.patterns {
			for _, caps := range p.match(n, nil) {
				out = append(out, Match{Pattern: i, Captures: caps})
			}
		}
		return true
	})
	return out
}

// match returns every capture set under which the pattern matches n. Each
// child pattern must match at least one child; several matching children
// produce one result each.
func (p *queryPattern) match(n *Node, caps []Capture) [][]Capture {
	if p.Kind != "_" && n.Type() != p.Kind {
		return nil
	}
	if p.Capture != "" {
		caps = append(caps[:len(caps):len(caps)], Capture{Name: p.Capture[1:], Node: n})
	}
	sets := [][]Capture{caps}
	for _, cp := range p.Children {
		var next [][]Capture
		for _, set := range sets {
			for _, child := range n.children {
				if cp.Field != "" && child.field != cp.Field {
					continue
				}
				next = append(next, cp.Pattern.match(child, set)...)
			}
		}
		if len(next) == 0 {
			return nil
		}
		sets = next
	}
	return sets
}
